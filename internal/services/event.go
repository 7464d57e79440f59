package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"time"

	"party-photo-backend/internal/models"
	"party-photo-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	inviteCodeLength = 6
	inviteCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// EventRepo is the persistence surface the event directory needs.
type EventRepo interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	GetByInviteCode(ctx context.Context, code string) (*models.Event, error)
	GetByCreator(ctx context.Context, userID string) ([]*models.Event, error)
	GetAllActive(ctx context.Context) ([]*models.Event, error)
	Update(ctx context.Context, id string, update repository.EventUpdate) error
}

// EventService handles the event directory: creating parties, resolving
// invite codes and maintaining event records.
type EventService struct {
	eventRepo      EventRepo
	participations *ParticipationService
	baseURL        string
	qrEndpoint     string
}

// NewEventService creates a new event service
func NewEventService(eventRepo EventRepo, participations *ParticipationService, baseURL, qrEndpoint string) *EventService {
	return &EventService{
		eventRepo:      eventRepo,
		participations: participations,
		baseURL:        baseURL,
		qrEndpoint:     qrEndpoint,
	}
}

// CreateEvent creates an event with a fresh invite code and records the
// creator's participation. The participation write is best-effort: the event
// is returned even if it fails, a later join by code heals the ledger.
func (s *EventService) CreateEvent(ctx context.Context, name, description, createdBy string) (*models.Event, error) {
	if name == "" || createdBy == "" {
		return nil, fmt.Errorf("%w: event name and creator are required", models.ErrInvalidInput)
	}

	inviteCode := generateInviteCode()

	event := &models.Event{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		InviteCode:  inviteCode,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now(),
		IsActive:    true,
		QRCode:      s.qrCodeURL(inviteCode),
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	if _, err := s.participations.AddParticipation(ctx, createdBy, event.ID, event.Name, event.InviteCode, models.RoleCreator); err != nil {
		log.Error().
			Err(err).
			Str("event_id", event.ID).
			Str("user_id", createdBy).
			Msg("Failed to record creator participation")
	}

	return event, nil
}

// GetEventByInviteCode resolves an active event by its invite code. Returns
// nil when no active event matches.
func (s *EventService) GetEventByInviteCode(ctx context.Context, code string) (*models.Event, error) {
	event, err := s.eventRepo.GetByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return event, nil
}

// GetEventByID retrieves an event by ID. Returns nil when it does not exist.
func (s *EventService) GetEventByID(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return event, nil
}

// GetUserEvents lists the events a user created, newest first
func (s *EventService) GetUserEvents(ctx context.Context, userID string) ([]*models.Event, error) {
	return s.eventRepo.GetByCreator(ctx, userID)
}

// GetAllActiveEvents lists every active event, newest first
func (s *EventService) GetAllActiveEvents(ctx context.Context) ([]*models.Event, error) {
	return s.eventRepo.GetAllActive(ctx)
}

// UpdateEvent applies a partial update. A rename propagates to the
// denormalized copies held by the participation ledger.
func (s *EventService) UpdateEvent(ctx context.Context, eventID string, update repository.EventUpdate) error {
	if err := s.eventRepo.Update(ctx, eventID, update); err != nil {
		return err
	}

	if update.Name != nil {
		event, err := s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			return fmt.Errorf("failed to reload event: %w", err)
		}
		if err := s.participations.UpdateEventData(ctx, eventID, event.Name, event.InviteCode); err != nil {
			log.Error().
				Err(err).
				Str("event_id", eventID).
				Msg("Failed to propagate event rename to participations")
		}
	}

	return nil
}

// DeactivateEvent soft-disables an event so its invite code stops resolving
func (s *EventService) DeactivateEvent(ctx context.Context, eventID string) error {
	inactive := false
	return s.eventRepo.Update(ctx, eventID, repository.EventUpdate{IsActive: &inactive})
}

// JoinByInviteCode resolves an active event and records a participant-role
// participation for the user.
func (s *EventService) JoinByInviteCode(ctx context.Context, userID, code string) (*models.Event, *models.Participation, error) {
	event, err := s.GetEventByInviteCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if event == nil {
		return nil, nil, models.ErrNotFound
	}

	participation, err := s.participations.AddParticipation(ctx, userID, event.ID, event.Name, event.InviteCode, models.RoleParticipant)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record participation: %w", err)
	}

	return event, participation, nil
}

// qrCodeURL embeds the event join URL into the QR rendering endpoint
func (s *EventService) qrCodeURL(inviteCode string) string {
	joinURL := fmt.Sprintf("%s/event/%s", s.baseURL, inviteCode)
	return fmt.Sprintf("%s?size=200x200&data=%s", s.qrEndpoint, url.QueryEscape(joinURL))
}

// generateInviteCode generates a random 6-character uppercase-alphanumeric
// code. Uniqueness is not enforced, the 36^6 space makes collisions
// negligible.
func generateInviteCode() string {
	code := make([]byte, inviteCodeLength)
	for i := range code {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(inviteCodeChars))))
		code[i] = inviteCodeChars[n.Int64()]
	}
	return string(code)
}
