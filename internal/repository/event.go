package repository

import (
	"context"
	"errors"
	"fmt"

	"party-photo-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventRepository handles database operations for events
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create creates a new event
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO parties (id, name, description, invite_code, created_by, created_at, is_active, qr_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		event.ID, event.Name, event.Description, event.InviteCode,
		event.CreatedBy, event.CreatedAt, event.IsActive, event.QRCode,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	return r.scanOne(ctx, eventSelect+` WHERE id = $1`, id)
}

// GetByInviteCode retrieves an active event by its invite code. The code is
// an exact, case-sensitive key.
func (r *EventRepository) GetByInviteCode(ctx context.Context, code string) (*models.Event, error) {
	return r.scanOne(ctx, eventSelect+` WHERE invite_code = $1 AND is_active = true`, code)
}

// GetByCreator retrieves all events created by a user, newest first
func (r *EventRepository) GetByCreator(ctx context.Context, userID string) ([]*models.Event, error) {
	return r.scanMany(ctx, eventSelect+` WHERE created_by = $1 ORDER BY created_at DESC`, userID)
}

// GetAllActive retrieves all active events, newest first
func (r *EventRepository) GetAllActive(ctx context.Context) ([]*models.Event, error) {
	return r.scanMany(ctx, eventSelect+` WHERE is_active = true ORDER BY created_at DESC`)
}

// EventUpdate holds the updatable fields of an event. Nil fields are left
// untouched.
type EventUpdate struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// Update applies a partial update to an event
func (r *EventRepository) Update(ctx context.Context, id string, update EventUpdate) error {
	query := `
		UPDATE parties
		SET name        = COALESCE($2, name),
		    description = COALESCE($3, description),
		    is_active   = COALESCE($4, is_active)
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query, id, update.Name, update.Description, update.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

const eventSelect = `
	SELECT id, name, description, invite_code, created_by, created_at, is_active, qr_code
	FROM parties`

func (r *EventRepository) scanOne(ctx context.Context, query string, args ...any) (*models.Event, error) {
	var event models.Event
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&event.ID, &event.Name, &event.Description, &event.InviteCode,
		&event.CreatedBy, &event.CreatedAt, &event.IsActive, &event.QRCode,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

func (r *EventRepository) scanMany(ctx context.Context, query string, args ...any) ([]*models.Event, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		var event models.Event
		err := rows.Scan(
			&event.ID, &event.Name, &event.Description, &event.InviteCode,
			&event.CreatedBy, &event.CreatedAt, &event.IsActive, &event.QRCode,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}
