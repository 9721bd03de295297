package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lms-backend/internal/model"
	"lms-backend/internal/service"
	"lms-backend/pkg/apierror"
)

type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notifications.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.NotificationsResponse{Success: true, Notifications: notifications})
}

// MarkRead flips one notification to read and returns the refreshed list.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, apierror.BadRequest("Notification id is required"))
		return
	}

	notifications, err := h.notifications.MarkRead(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.NotificationsResponse{Success: true, Notifications: notifications})
}
