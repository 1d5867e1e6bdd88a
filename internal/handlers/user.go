package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"noticeboard/auth"
	"noticeboard/httpx"
	"noticeboard/internal/services"
	"noticeboard/logger"
	"noticeboard/validation"
)

// UserHandler exposes admin-only user management.
type UserHandler struct {
	Users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	users, total, pages, err := h.Users.List(page, perPage)
	if err != nil {
		logger.Log.WithError(err).Error("user listing failed")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, listEnvelope("users", users, total, pages, page, perPage))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_user_id", nil)
		return
	}
	user, err := h.Users.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
			return
		}
		logger.Log.WithError(err).Error("user lookup failed")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_user_id", nil)
		return
	}
	var input struct {
		Username *string `json:"username"`
		Password *string `json:"password"`
		IsAdmin  *bool   `json:"is_admin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if input.Username != nil {
		validation.Username("username", *input.Username, v)
	}
	if input.Password != nil {
		validation.Password("password", *input.Password, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	user, err := h.Users.Update(id, services.UserUpdate{
		Username: input.Username,
		Password: input.Password,
		IsAdmin:  input.IsAdmin,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
		case errors.Is(err, services.ErrUsernameTaken):
			httpx.JSONError(w, http.StatusBadRequest, "username_taken", nil)
		case errors.Is(err, services.ErrInvalidInput):
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", nil)
		default:
			logger.Log.WithError(err).Error("user update failed")
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_user_id", nil)
		return
	}
	if callerID, ok := auth.UserIDFromContext(r.Context()); ok && callerID == id {
		httpx.JSONError(w, http.StatusBadRequest, "cannot_delete_own_account", nil)
		return
	}
	if err := h.Users.Delete(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
			return
		}
		logger.Log.WithError(err).Error("user deletion failed")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "user_deleted")
}
