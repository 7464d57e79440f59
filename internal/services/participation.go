package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"party-photo-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ParticipationRepo is the persistence surface the participation ledger
// needs.
type ParticipationRepo interface {
	Create(ctx context.Context, p *models.Participation) (*models.Participation, error)
	GetByID(ctx context.Context, id string) (*models.Participation, error)
	GetByUserAndEvent(ctx context.Context, userID, eventID string) (*models.Participation, error)
	GetByUser(ctx context.Context, userID string) ([]*models.Participation, error)
	Delete(ctx context.Context, id string) error
	UpdateEventData(ctx context.Context, eventID, eventName, eventInviteCode string) (int64, error)
}

// ParticipationService maintains the ledger of who joined which event.
type ParticipationService struct {
	participationRepo ParticipationRepo
	hub               *WSHub
}

// NewParticipationService creates a new participation service. hub may be
// nil; live list pushes are then skipped.
func NewParticipationService(participationRepo ParticipationRepo, hub *WSHub) *ParticipationService {
	return &ParticipationService{
		participationRepo: participationRepo,
		hub:               hub,
	}
}

// AddParticipation records that a user joined an event. Idempotent: an
// existing (user, event) row is returned unchanged, and the repository's
// uniqueness constraint collapses concurrent joins into one row.
func (s *ParticipationService) AddParticipation(ctx context.Context, userID, eventID, eventName, eventInviteCode, role string) (*models.Participation, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", models.ErrInvalidInput)
	}
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", models.ErrInvalidInput)
	}
	if role == "" {
		role = models.RoleParticipant
	}

	existing, err := s.participationRepo.GetByUserAndEvent(ctx, userID, eventID)
	if err == nil {
		log.Debug().
			Str("user_id", userID).
			Str("event_id", eventID).
			Msg("User already participates in event")
		return existing, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to check participation: %w", err)
	}

	participation := &models.Participation{
		ID:              uuid.New().String(),
		UserID:          userID,
		EventID:         eventID,
		EventName:       eventName,
		EventInviteCode: eventInviteCode,
		Role:            role,
		JoinedAt:        time.Now(),
	}

	created, err := s.participationRepo.Create(ctx, participation)
	if err != nil {
		return nil, fmt.Errorf("failed to create participation: %w", err)
	}

	log.Info().
		Str("user_id", userID).
		Str("event_id", eventID).
		Str("role", created.Role).
		Msg("Participation recorded")

	s.pushParticipations(ctx, userID)

	return created, nil
}

// GetParticipationByUserAndEvent retrieves one participation, nil when absent
func (s *ParticipationService) GetParticipationByUserAndEvent(ctx context.Context, userID, eventID string) (*models.Participation, error) {
	p, err := s.participationRepo.GetByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// GetUserParticipations lists a user's participations, most recent first
func (s *ParticipationService) GetUserParticipations(ctx context.Context, userID string) ([]*models.Participation, error) {
	return s.participationRepo.GetByUser(ctx, userID)
}

// RemoveParticipation removes a participation. Only the participant may
// remove their own row.
func (s *ParticipationService) RemoveParticipation(ctx context.Context, participationID, userID string) error {
	participation, err := s.participationRepo.GetByID(ctx, participationID)
	if err != nil {
		return err
	}
	if participation.UserID != userID {
		return fmt.Errorf("%w: participation belongs to another user", models.ErrForbidden)
	}

	if err := s.participationRepo.Delete(ctx, participationID); err != nil {
		return err
	}

	s.pushParticipations(ctx, userID)
	return nil
}

// UpdateEventData bulk-patches the denormalized event name and code held by
// every participation of an event.
func (s *ParticipationService) UpdateEventData(ctx context.Context, eventID, eventName, eventInviteCode string) error {
	patched, err := s.participationRepo.UpdateEventData(ctx, eventID, eventName, eventInviteCode)
	if err != nil {
		return err
	}
	log.Info().
		Str("event_id", eventID).
		Int64("patched", patched).
		Msg("Participation event data updated")
	return nil
}

// pushParticipations sends the refreshed participation list to the user's
// live connection, if any. Best-effort.
func (s *ParticipationService) pushParticipations(ctx context.Context, userID string) {
	if s.hub == nil || !s.hub.IsOnline(userID) {
		return
	}
	participations, err := s.participationRepo.GetByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load participations for push")
		return
	}
	if err := s.hub.SendToUser(userID, WSMessage{Type: MessageParticipations, Data: participations}); err != nil {
		log.Debug().Err(err).Str("user_id", userID).Msg("Failed to push participations")
	}
}
