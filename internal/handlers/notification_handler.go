package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitbook/backend/internal/service"
)

// NotificationHandler serves the notification feed.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler creates a notification handler.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List handles GET /api/notifications.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notifs, err := h.notifications.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNotificationViews(notifs))
}

// UnreadCount handles GET /api/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifications.UnreadCount(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// MarkRead handles POST /api/notifications/{notificationID}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkRead(r.Context(), chi.URLParam(r, "notificationID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// MarkAllRead handles POST /api/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkAllRead(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Delete handles DELETE /api/notifications/{notificationID}.
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.Delete(r.Context(), chi.URLParam(r, "notificationID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// DeleteAll handles DELETE /api/notifications.
func (h *NotificationHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.notifications.DeleteAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

// DeleteRead handles DELETE /api/notifications/read.
func (h *NotificationHandler) DeleteRead(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.notifications.DeleteRead(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}
