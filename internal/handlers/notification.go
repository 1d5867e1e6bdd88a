package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"noticeboard/auth"
	"noticeboard/httpx"
	"noticeboard/internal/models"
	"noticeboard/internal/services"
	"noticeboard/logger"
	"noticeboard/validation"
)

type NotificationHandler struct {
	Notifications *services.NotificationService
}

func NewNotificationHandler(svc *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: svc}
}

// pageParams reads the 1-indexed pagination query parameters.
func pageParams(r *http.Request) (int, int) {
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	perPage := 10
	if v := r.URL.Query().Get("per_page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			perPage = n
		}
	}
	return page, perPage
}

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func listEnvelope(key string, items any, total int64, pages, page, perPage int) map[string]any {
	return map[string]any{
		key:            items,
		"total":        total,
		"pages":        pages,
		"current_page": page,
		"per_page":     perPage,
	}
}

// List is the public feed: published notifications only, newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	filter := services.NotificationFilter{
		Priority:      r.URL.Query().Get("priority"),
		Search:        r.URL.Query().Get("search"),
		PublishedOnly: true,
	}
	if filter.Priority != "" && !models.ValidPriority(filter.Priority) {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_priority", nil)
		return
	}
	items, total, pages, err := h.Notifications.List(filter, page, perPage)
	if err != nil {
		logger.Log.WithError(err).Error("notification listing failed")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, listEnvelope("notifications", items, total, pages, page, perPage))
}

// AdminList includes unpublished drafts. Reached only through the admin
// subrouter, so the policy check already ran.
func (h *NotificationHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	items, total, pages, err := h.Notifications.List(services.NotificationFilter{}, page, perPage)
	if err != nil {
		logger.Log.WithError(err).Error("admin notification listing failed")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, listEnvelope("notifications", items, total, pages, page, perPage))
}

func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_notification_id", nil)
		return
	}
	// Public path: unpublished reads as absent.
	n, err := h.Notifications.Get(id, false)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "notification_not_found", nil)
			return
		}
		logger.Log.WithError(err).Error("notification lookup failed")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title       string `json:"title"`
		Content     string `json:"content"`
		Priority    string `json:"priority"`
		IsPublished *bool  `json:"is_published"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("title", input.Title, v)
	validation.MaxLen("title", input.Title, 200, v)
	validation.Required("content", input.Content, v)
	if input.Priority != "" {
		validation.OneOf("priority", input.Priority, []string{models.PriorityLow, models.PriorityMedium, models.PriorityHigh}, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())
	n, err := h.Notifications.Create(input.Title, input.Content, input.Priority, userID, input.IsPublished)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", nil)
			return
		}
		logger.Log.WithError(err).Error("notification creation failed")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, n)
}

func (h *NotificationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_notification_id", nil)
		return
	}
	var input struct {
		Title       *string `json:"title"`
		Content     *string `json:"content"`
		Priority    *string `json:"priority"`
		IsPublished *bool   `json:"is_published"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if input.Title != nil {
		validation.Required("title", *input.Title, v)
		validation.MaxLen("title", *input.Title, 200, v)
	}
	if input.Content != nil {
		validation.Required("content", *input.Content, v)
	}
	if input.Priority != nil {
		validation.OneOf("priority", *input.Priority, []string{models.PriorityLow, models.PriorityMedium, models.PriorityHigh}, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	n, err := h.Notifications.Update(id, services.NotificationUpdate{
		Title:       input.Title,
		Content:     input.Content,
		Priority:    input.Priority,
		IsPublished: input.IsPublished,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			httpx.JSONError(w, http.StatusNotFound, "notification_not_found", nil)
		case errors.Is(err, services.ErrInvalidInput):
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", nil)
		default:
			logger.Log.WithError(err).Error("notification update failed")
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_notification_id", nil)
		return
	}
	if err := h.Notifications.Delete(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "notification_not_found", nil)
			return
		}
		logger.Log.WithError(err).Error("notification deletion failed")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "notification_deleted")
}
