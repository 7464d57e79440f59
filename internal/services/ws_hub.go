package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocket message types
const (
	MessageNotification     = "notification"
	MessageUnreadCount      = "unread_count"
	MessageParticipations   = "participations"
	MessageImageUploaded    = "image_uploaded"
	MessageSubscribeEvent   = "subscribe_event"
	MessageUnsubscribeEvent = "unsubscribe_event"
	MessageError            = "error"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	EventID string      `json:"event_id,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// wsClient pairs a connection with a write lock. gorilla/websocket allows
// at most one concurrent writer per connection, and several handler
// goroutines can target the same user at once.
type wsClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsClient) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

// WSHub manages WebSocket connections: one connection per user, plus
// per-event subscriber sets used to fan out feed updates to everyone
// watching an event (including realtime display views).
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*wsClient
	eventSubs   map[string]map[string]struct{} // eventID -> set of userIDs
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*wsClient),
		eventSubs:   make(map[string]map[string]struct{}),
	}
}

// Register registers a new WebSocket connection for a user. An existing
// connection for the same user is replaced.
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, exists := h.connections[userID]; exists {
		existing.conn.Close()
	}
	h.connections[userID] = &wsClient{conn: conn}

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes a user's WebSocket connection and all of their event
// subscriptions.
func (h *WSHub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, exists := h.connections[userID]; exists {
		client.conn.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
	for eventID, subs := range h.eventSubs {
		delete(subs, userID)
		if len(subs) == 0 {
			delete(h.eventSubs, eventID)
		}
	}
}

// SubscribeEvent adds the user to an event's subscriber set
func (h *WSHub) SubscribeEvent(userID, eventID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.eventSubs[eventID]
	if !ok {
		subs = make(map[string]struct{})
		h.eventSubs[eventID] = subs
	}
	subs[userID] = struct{}{}
}

// UnsubscribeEvent removes the user from an event's subscriber set
func (h *WSHub) UnsubscribeEvent(userID, eventID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.eventSubs[eventID]; ok {
		delete(subs, userID)
		if len(subs) == 0 {
			delete(h.eventSubs, eventID)
		}
	}
}

// SendToUser sends a message to a specific user
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	client, exists := h.connections[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := client.write(websocket.TextMessage, data); err != nil {
		h.Unregister(userID)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// BroadcastToEvent sends a message to every subscriber of an event
func (h *WSHub) BroadcastToEvent(eventID string, message WSMessage) {
	h.mu.RLock()
	subscribers := make([]string, 0, len(h.eventSubs[eventID]))
	for userID := range h.eventSubs[eventID] {
		subscribers = append(subscribers, userID)
	}
	h.mu.RUnlock()

	for _, userID := range subscribers {
		if err := h.SendToUser(userID, message); err != nil {
			log.Debug().
				Err(err).
				Str("user_id", userID).
				Str("event_id", eventID).
				Msg("Failed to broadcast to event subscriber")
		}
	}
}

// IsOnline checks if a user has a live connection
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[userID]
	return exists
}
