package handlers

import (
	"net/http"

	"party-photo-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// DisplayHandler serves the unauthenticated event display. A venue screen
// polls it by invite code to show the live photo wall.
type DisplayHandler struct {
	eventService *services.EventService
	imageService *services.ImageService
}

// NewDisplayHandler creates a new display handler
func NewDisplayHandler(eventService *services.EventService, imageService *services.ImageService) *DisplayHandler {
	return &DisplayHandler{
		eventService: eventService,
		imageService: imageService,
	}
}

// GetDisplay handles GET /api/v1/display/{code}. Only active events are exposed.
func (h *DisplayHandler) GetDisplay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	event, err := h.eventService.GetEventByInviteCode(ctx, code)
	if err != nil {
		log.Error().Err(err).Str("invite_code", code).Msg("Failed to load display event")
		respondError(w, "Failed to load event", http.StatusInternalServerError)
		return
	}
	if event == nil {
		respondError(w, "Event not found", http.StatusNotFound)
		return
	}

	images, err := h.imageService.GetAllImages(ctx, &event.ID)
	if err != nil {
		log.Error().Err(err).Str("event_id", event.ID).Msg("Failed to load display images")
		respondError(w, "Failed to load images", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"event":  event,
		"images": images,
	})
}
