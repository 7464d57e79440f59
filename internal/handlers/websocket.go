package handlers

import (
	"encoding/json"
	"net/http"

	"party-photo-backend/internal/middleware"
	"party-photo-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for MVP
	},
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub                 *services.WSHub
	userService         *services.UserService
	notificationService *services.NotificationService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *services.WSHub,
	userService *services.UserService,
	notificationService *services.NotificationService,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:                 hub,
		userService:         userService,
		notificationService: notificationService,
	}
}

// HandleWebSocket handles WebSocket connections
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Get token from query parameter
	token := r.URL.Query().Get("token")
	userID, err := middleware.ValidateWebSocketToken(token, h.userService)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	// Upgrade connection
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID)

	// Send the unread count on connect so the client can render the badge
	// immediately.
	ctx := r.Context()
	if count, err := h.notificationService.GetUnreadCount(ctx, userID); err == nil {
		countMsg := services.WSMessage{
			Type: services.MessageUnreadCount,
			Data: map[string]int{"unread_count": count},
		}
		if err := h.hub.SendToUser(userID, countMsg); err != nil {
			log.Error().
				Err(err).
				Str("user_id", userID).
				Msg("Failed to send unread count message")
		}
	}

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	// Handle messages
	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to parse WebSocket message")
			h.sendErrorToUser(userID, "Invalid message format")
			continue
		}

		if err := h.handleMessage(userID, msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Str("type", msg.Type).Msg("Failed to handle message")
			h.sendErrorToUser(userID, err.Error())
		}
	}
}

// handleMessage processes incoming WebSocket messages
func (h *WebSocketHandler) handleMessage(userID string, msg services.WSMessage) error {
	switch msg.Type {
	case services.MessageSubscribeEvent:
		return h.handleSubscribeEvent(userID, msg)
	case services.MessageUnsubscribeEvent:
		return h.handleUnsubscribeEvent(userID, msg)
	default:
		return h.sendErrorToUser(userID, "Unknown message type")
	}
}

// handleSubscribeEvent handles subscribe_event messages
func (h *WebSocketHandler) handleSubscribeEvent(userID string, msg services.WSMessage) error {
	if msg.EventID == "" {
		return h.sendErrorToUser(userID, "event_id is required")
	}
	h.hub.SubscribeEvent(userID, msg.EventID)
	log.Debug().
		Str("user_id", userID).
		Str("event_id", msg.EventID).
		Msg("Subscribed to event")
	return nil
}

// handleUnsubscribeEvent handles unsubscribe_event messages
func (h *WebSocketHandler) handleUnsubscribeEvent(userID string, msg services.WSMessage) error {
	if msg.EventID == "" {
		return h.sendErrorToUser(userID, "event_id is required")
	}
	h.hub.UnsubscribeEvent(userID, msg.EventID)
	return nil
}

// sendErrorToUser sends an error message through the hub, which serializes
// writes to the user's connection.
func (h *WebSocketHandler) sendErrorToUser(userID, message string) error {
	msg := services.WSMessage{
		Type:    services.MessageError,
		Message: message,
	}
	return h.hub.SendToUser(userID, msg)
}
