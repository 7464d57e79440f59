package repository

import (
	"context"
	"errors"
	"fmt"

	"party-photo-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ParticipationRepository handles database operations for event participations
type ParticipationRepository struct {
	db *pgxpool.Pool
}

// NewParticipationRepository creates a new participation repository
func NewParticipationRepository(db *pgxpool.Pool) *ParticipationRepository {
	return &ParticipationRepository{db: db}
}

// Create inserts a participation. A unique index on (user_id, event_id) makes
// concurrent joins collapse to a single row; when the row already exists the
// existing record is returned.
func (r *ParticipationRepository) Create(ctx context.Context, p *models.Participation) (*models.Participation, error) {
	query := `
		INSERT INTO event_participations (id, user_id, event_id, event_name, event_invite_code, role, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, event_id) DO NOTHING
	`
	result, err := r.db.Exec(ctx, query,
		p.ID, p.UserID, p.EventID, p.EventName, p.EventInviteCode, p.Role, p.JoinedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create participation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.GetByUserAndEvent(ctx, p.UserID, p.EventID)
	}
	return p, nil
}

// GetByUserAndEvent retrieves the participation for a (user, event) pair
func (r *ParticipationRepository) GetByUserAndEvent(ctx context.Context, userID, eventID string) (*models.Participation, error) {
	query := participationSelect + ` WHERE user_id = $1 AND event_id = $2`
	var p models.Participation
	err := r.db.QueryRow(ctx, query, userID, eventID).Scan(
		&p.ID, &p.UserID, &p.EventID, &p.EventName, &p.EventInviteCode, &p.Role, &p.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get participation: %w", err)
	}
	return &p, nil
}

// GetByUser retrieves all participations for a user, most recent join first
func (r *ParticipationRepository) GetByUser(ctx context.Context, userID string) ([]*models.Participation, error) {
	query := participationSelect + ` WHERE user_id = $1 ORDER BY joined_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participations: %w", err)
	}
	defer rows.Close()

	var participations []*models.Participation
	for rows.Next() {
		var p models.Participation
		err := rows.Scan(
			&p.ID, &p.UserID, &p.EventID, &p.EventName, &p.EventInviteCode, &p.Role, &p.JoinedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participation: %w", err)
		}
		participations = append(participations, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participations: %w", err)
	}

	return participations, nil
}

// GetByID retrieves a participation by ID
func (r *ParticipationRepository) GetByID(ctx context.Context, id string) (*models.Participation, error) {
	query := participationSelect + ` WHERE id = $1`
	var p models.Participation
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.EventID, &p.EventName, &p.EventInviteCode, &p.Role, &p.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get participation: %w", err)
	}
	return &p, nil
}

// Delete removes a participation by ID
func (r *ParticipationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM event_participations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete participation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdateEventData bulk-patches the denormalized event name and invite code on
// every participation referencing the event. Returns the number of patched
// rows.
func (r *ParticipationRepository) UpdateEventData(ctx context.Context, eventID, eventName, eventInviteCode string) (int64, error) {
	query := `
		UPDATE event_participations
		SET event_name = $2, event_invite_code = $3
		WHERE event_id = $1
	`
	result, err := r.db.Exec(ctx, query, eventID, eventName, eventInviteCode)
	if err != nil {
		return 0, fmt.Errorf("failed to update participation event data: %w", err)
	}
	return result.RowsAffected(), nil
}

const participationSelect = `
	SELECT id, user_id, event_id, event_name, event_invite_code, role, joined_at
	FROM event_participations`
