package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"noticeboard/httpx"
	"noticeboard/internal/services"
	"noticeboard/logger"
)

type AttachmentHandler struct {
	Attachments   *services.AttachmentService
	MaxUploadSize int64
}

func NewAttachmentHandler(svc *services.AttachmentService, maxUploadSize int64) *AttachmentHandler {
	return &AttachmentHandler{Attachments: svc, MaxUploadSize: maxUploadSize}
}

// multipartSlack covers multipart framing overhead on top of the file size
// cap enforced by the store.
const multipartSlack = 1 << 20

// Upload accepts one multipart file with an optional notification_id form
// field linking it to an existing notification.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadSize+multipartSlack)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httpx.JSONError(w, http.StatusRequestEntityTooLarge, "payload_too_large", nil)
			return
		}
		httpx.JSONError(w, http.StatusBadRequest, "invalid_multipart_form", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "no_file_selected", nil)
		return
	}
	defer file.Close()

	var notificationID *uint
	if v := r.FormValue("notification_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil || id == 0 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_notification_id", nil)
			return
		}
		nid := uint(id)
		notificationID = &nid
	}

	att, err := h.Attachments.Upload(file, header.Filename, header.Header.Get("Content-Type"), header.Size, notificationID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			httpx.JSONError(w, http.StatusBadRequest, "no_file_selected", nil)
		case errors.Is(err, services.ErrUnsupportedType):
			httpx.JSONError(w, http.StatusBadRequest, "unsupported_file_type", nil)
		case errors.Is(err, services.ErrTooLarge):
			httpx.JSONError(w, http.StatusRequestEntityTooLarge, "payload_too_large", nil)
		case errors.Is(err, services.ErrNotFound):
			httpx.JSONError(w, http.StatusNotFound, "notification_not_found", nil)
		default:
			logger.Log.WithError(err).Error("upload failed")
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"message": "file_uploaded", "attachment": att})
}

// Download streams a stored file under its original name.
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]
	att, err := h.Attachments.Download(filename)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFileRemoved):
			// Metadata without a backing file: still a 404 on the wire,
			// but logged apart from a plain unknown filename.
			logger.Log.WithField("filename", filename).Warn("attachment file removed from storage")
			httpx.JSONError(w, http.StatusNotFound, "file_removed", nil)
		case errors.Is(err, services.ErrNotFound):
			httpx.JSONError(w, http.StatusNotFound, "file_not_found", nil)
		default:
			logger.Log.WithError(err).Error("download failed")
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		}
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+att.OriginalFilename+`"`)
	w.Header().Set("Content-Type", att.MimeType)
	http.ServeFile(w, r, att.FilePath)
}

func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_attachment_id", nil)
		return
	}
	if err := h.Attachments.Delete(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "attachment_not_found", nil)
			return
		}
		logger.Log.WithError(err).Error("attachment deletion failed")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.Message(w, http.StatusOK, "attachment_deleted")
}

// ListByNotification is the public attachment listing for one notification.
func (h *AttachmentHandler) ListByNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_notification_id", nil)
		return
	}
	attachments, err := h.Attachments.ListByNotification(id, false)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "notification_not_found", nil)
			return
		}
		logger.Log.WithError(err).Error("attachment listing failed")
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, attachments)
}
