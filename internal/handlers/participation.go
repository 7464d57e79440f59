package handlers

import (
	"net/http"

	"party-photo-backend/internal/middleware"
	"party-photo-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ParticipationHandler handles participation-related HTTP requests
type ParticipationHandler struct {
	participationService *services.ParticipationService
}

// NewParticipationHandler creates a new participation handler
func NewParticipationHandler(participationService *services.ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{
		participationService: participationService,
	}
}

// GetMyParticipations handles GET /api/v1/participations
func (h *ParticipationHandler) GetMyParticipations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	participations, err := h.participationService.GetUserParticipations(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list participations")
		respondError(w, "Failed to list participations", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"participations": participations})
}

// RemoveParticipation handles DELETE /api/v1/participations/{id}
func (h *ParticipationHandler) RemoveParticipation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	participationID := chi.URLParam(r, "id")

	if err := h.participationService.RemoveParticipation(ctx, participationID, userID); err != nil {
		log.Error().
			Err(err).
			Str("participation_id", participationID).
			Str("user_id", userID).
			Msg("Failed to remove participation")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
