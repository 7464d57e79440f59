package handlers

import (
	"encoding/json"
	"net/http"

	"party-photo-backend/internal/middleware"
	"party-photo-backend/internal/repository"
	"party-photo-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	eventService *services.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// CreateEventRequest is the body of POST /api/v1/events
type CreateEventRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateEvent handles POST /api/v1/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	event, err := h.eventService.CreateEvent(ctx, req.Name, req.Description, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create event")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusCreated, event)
}

// GetMyEvents handles GET /api/v1/events
func (h *EventHandler) GetMyEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	events, err := h.eventService.GetUserEvents(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list events")
		respondError(w, "Failed to list events", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// GetActiveEvents handles GET /api/v1/events/active
func (h *EventHandler) GetActiveEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := h.eventService.GetAllActiveEvents(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list active events")
		respondError(w, "Failed to list events", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// GetEvent handles GET /api/v1/events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID := chi.URLParam(r, "id")

	event, err := h.eventService.GetEventByID(ctx, eventID)
	if err != nil {
		respondError(w, "Failed to get event", http.StatusInternalServerError)
		return
	}
	if event == nil {
		respondError(w, "Event not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, event)
}

// GetEventByCode handles GET /api/v1/events/code/{code}. Only active events
// resolve; a deactivated invite code reads as missing.
func (h *EventHandler) GetEventByCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	event, err := h.eventService.GetEventByInviteCode(ctx, code)
	if err != nil {
		respondError(w, "Failed to get event", http.StatusInternalServerError)
		return
	}
	if event == nil {
		respondError(w, "Event not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, event)
}

// UpdateEventRequest is the body of PATCH /api/v1/events/{id}
type UpdateEventRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateEvent handles PATCH /api/v1/events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	eventID := chi.URLParam(r, "id")

	var req UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	event, err := h.eventService.GetEventByID(ctx, eventID)
	if err != nil {
		respondError(w, "Failed to get event", http.StatusInternalServerError)
		return
	}
	if event == nil {
		respondError(w, "Event not found", http.StatusNotFound)
		return
	}
	if event.CreatedBy != userID {
		respondError(w, "Only the event creator can update it", http.StatusForbidden)
		return
	}

	update := repository.EventUpdate{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	if err := h.eventService.UpdateEvent(ctx, eventID, update); err != nil {
		log.Error().Err(err).Str("event_id", eventID).Msg("Failed to update event")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	updated, err := h.eventService.GetEventByID(ctx, eventID)
	if err != nil || updated == nil {
		respondError(w, "Failed to get event", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// DeactivateEvent handles DELETE /api/v1/events/{id}
func (h *EventHandler) DeactivateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	eventID := chi.URLParam(r, "id")

	event, err := h.eventService.GetEventByID(ctx, eventID)
	if err != nil {
		respondError(w, "Failed to get event", http.StatusInternalServerError)
		return
	}
	if event == nil {
		respondError(w, "Event not found", http.StatusNotFound)
		return
	}
	if event.CreatedBy != userID {
		respondError(w, "Only the event creator can deactivate it", http.StatusForbidden)
		return
	}

	if err := h.eventService.DeactivateEvent(ctx, eventID); err != nil {
		log.Error().Err(err).Str("event_id", eventID).Msg("Failed to deactivate event")
		respondError(w, "Failed to deactivate event", statusFromError(err))
		return
	}

	log.Info().
		Str("event_id", eventID).
		Str("user_id", userID).
		Msg("Event deactivated")

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// JoinEvent handles POST /api/v1/events/code/{code}/join
func (h *EventHandler) JoinEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	code := chi.URLParam(r, "code")

	if code == "" {
		respondError(w, "invite code is required", http.StatusBadRequest)
		return
	}

	event, participation, err := h.eventService.JoinByInviteCode(ctx, userID, code)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("invite_code", code).
			Msg("Failed to join event")
		status := statusFromError(err)
		message := "Failed to join event"
		if status == http.StatusNotFound {
			message = "Event not found"
		}
		respondError(w, message, status)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("event_id", event.ID).
		Msg("User joined event")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"event":         event,
		"participation": participation,
	})
}
