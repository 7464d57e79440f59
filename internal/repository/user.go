package repository

import (
	"context"
	"errors"
	"fmt"

	"party-photo-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, avatar, provider, subject, password_hash, push_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.Avatar, user.Provider,
		user.Subject, user.PasswordHash, user.PushToken, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.scanOne(ctx, userSelect+` WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.scanOne(ctx, userSelect+` WHERE email = $1`, email)
}

// GetBySubject retrieves a user by provider and OIDC subject
func (r *UserRepository) GetBySubject(ctx context.Context, provider, subject string) (*models.User, error) {
	return r.scanOne(ctx, userSelect+` WHERE provider = $1 AND subject = $2`, provider, subject)
}

// UpdateProfile updates the display name and avatar for a user
func (r *UserRepository) UpdateProfile(ctx context.Context, userID, name string, avatar *string) error {
	query := `UPDATE users SET name = $1, avatar = $2 WHERE id = $3`
	_, err := r.db.Exec(ctx, query, name, avatar, userID)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	return nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, pushToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return nil
}

const userSelect = `
	SELECT id, name, email, avatar, provider, subject, password_hash, push_token, created_at
	FROM users`

func (r *UserRepository) scanOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&user.ID, &user.Name, &user.Email, &user.Avatar, &user.Provider,
		&user.Subject, &user.PasswordHash, &user.PushToken, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
