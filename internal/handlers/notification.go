package handlers

import (
	"net/http"
	"strconv"

	"party-photo-backend/internal/middleware"
	"party-photo-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// GetNotifications handles GET /api/v1/notifications
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil {
			limit = parsedLimit
		}
	}

	notifications, err := h.notificationService.GetUserNotifications(ctx, userID, limit)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list notifications")
		respondError(w, "Failed to list notifications", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"notifications": notifications})
}

// GetUnreadCount handles GET /api/v1/notifications/unread-count
func (h *NotificationHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	count, err := h.notificationService.GetUnreadCount(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to count unread notifications")
		respondError(w, "Failed to count notifications", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"unread_count": count})
}

// MarkRead handles PUT /api/v1/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	notificationID := chi.URLParam(r, "id")

	if err := h.notificationService.MarkNotificationAsRead(ctx, notificationID); err != nil {
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// MarkAllRead handles PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if err := h.notificationService.MarkAllNotificationsAsRead(ctx, userID); err != nil {
		respondError(w, "Failed to mark notifications as read", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DeleteNotification handles DELETE /api/v1/notifications/{id}
func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	notificationID := chi.URLParam(r, "id")

	if err := h.notificationService.DeleteNotification(ctx, notificationID); err != nil {
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ClearAll handles DELETE /api/v1/notifications
func (h *NotificationHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if err := h.notificationService.ClearAllNotifications(ctx, userID); err != nil {
		respondError(w, "Failed to clear notifications", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
