package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"noticeboard/auth"
	"noticeboard/httpx"
	"noticeboard/internal/services"
	"noticeboard/logger"
	"noticeboard/validation"
)

type AuthHandler struct {
	Users     *services.UserService
	JWTSecret string
	TokenTTL  time.Duration
}

func NewAuthHandler(users *services.UserService, secret string, ttl time.Duration) *AuthHandler {
	return &AuthHandler{Users: users, JWTSecret: secret, TokenTTL: ttl}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("username", input.Username, v)
	validation.Required("password", input.Password, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	user, err := h.Users.Authenticate(input.Username, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
			return
		}
		logger.Log.WithError(err).Error("login failed")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	token, err := auth.IssueToken(h.JWTSecret, user.ID, user.Username, h.TokenTTL)
	if err != nil {
		logger.Log.WithError(err).Error("token signing failed")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"access_token": token, "user": user})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Username("username", input.Username, v)
	validation.Password("password", input.Password, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	// Self-registration always yields a regular account. Admin rights are
	// granted only through the user management endpoints.
	user, err := h.Users.Create(input.Username, input.Password, false)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			httpx.JSONError(w, http.StatusBadRequest, "username_taken", nil)
		case errors.Is(err, services.ErrInvalidInput):
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", nil)
		default:
			logger.Log.WithError(err).Error("user creation failed")
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"message": "registered", "user": user})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	user, err := h.Users.Get(claims.UserID)
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

// Logout revokes the presented token. The token stays invalid for the
// lifetime of the process.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	auth.Revoke(claims.ID)
	httpx.Message(w, http.StatusOK, "logged_out")
}
