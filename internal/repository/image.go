package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"party-photo-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ImageRepository handles database operations for images. Comments live
// inline in a JSONB column and the like set is a text[] column, so comment
// append and like add/remove keep the commutative set semantics of the
// original document model.
type ImageRepository struct {
	db *pgxpool.Pool
}

// NewImageRepository creates a new image repository
func NewImageRepository(db *pgxpool.Pool) *ImageRepository {
	return &ImageRepository{db: db}
}

// Create creates a new image record
func (r *ImageRepository) Create(ctx context.Context, image *models.Image) error {
	comments, err := json.Marshal(image.Comments)
	if err != nil {
		return fmt.Errorf("failed to marshal comments: %w", err)
	}
	query := `
		INSERT INTO images (id, url, filename, storage_key, uploaded_at, user_id, user_name, user_avatar, event_id, comments, liked_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.Exec(ctx, query,
		image.ID, image.URL, image.Filename, image.StorageKey, image.UploadedAt,
		image.UserID, image.UserName, image.UserAvatar, image.EventID,
		comments, image.LikedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	return nil
}

// GetByID retrieves an image by ID
func (r *ImageRepository) GetByID(ctx context.Context, id string) (*models.Image, error) {
	row := r.db.QueryRow(ctx, imageSelect+` WHERE id = $1`, id)
	image, err := scanImage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return image, nil
}

// List retrieves images newest first, restricted to an event when eventID is
// non-nil.
func (r *ImageRepository) List(ctx context.Context, eventID *string) ([]*models.Image, error) {
	query := imageSelect
	args := []any{}
	if eventID != nil {
		query += ` WHERE event_id = $1`
		args = append(args, *eventID)
	}
	query += ` ORDER BY uploaded_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get images: %w", err)
	}
	defer rows.Close()

	var images []*models.Image
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, image)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}

	return images, nil
}

// AppendComment appends a comment to an image with set-union semantics: an
// exact duplicate (all fields identical) collapses into the existing element.
func (r *ImageRepository) AppendComment(ctx context.Context, imageID string, comment models.Comment) error {
	single, err := json.Marshal([]models.Comment{comment})
	if err != nil {
		return fmt.Errorf("failed to marshal comment: %w", err)
	}
	query := `
		UPDATE images
		SET comments = comments || $2::jsonb
		WHERE id = $1 AND NOT (comments @> $2::jsonb)
	`
	result, err := r.db.Exec(ctx, query, imageID, single)
	if err != nil {
		return fmt.Errorf("failed to append comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.ensureExists(ctx, imageID)
	}
	return nil
}

// AddLike adds a user to the like set. Adding twice is a no-op.
func (r *ImageRepository) AddLike(ctx context.Context, imageID, userID string) error {
	query := `
		UPDATE images
		SET liked_by = array_append(liked_by, $2)
		WHERE id = $1 AND NOT ($2 = ANY(liked_by))
	`
	result, err := r.db.Exec(ctx, query, imageID, userID)
	if err != nil {
		return fmt.Errorf("failed to add like: %w", err)
	}
	if result.RowsAffected() == 0 {
		return r.ensureExists(ctx, imageID)
	}
	return nil
}

// RemoveLike removes a user from the like set. Removing an absent user is a
// no-op.
func (r *ImageRepository) RemoveLike(ctx context.Context, imageID, userID string) error {
	query := `UPDATE images SET liked_by = array_remove(liked_by, $2) WHERE id = $1`
	result, err := r.db.Exec(ctx, query, imageID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove like: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes an image record
func (r *ImageRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ensureExists distinguishes "row missing" from "update matched nothing
// because the set already contained the element".
func (r *ImageRepository) ensureExists(ctx context.Context, imageID string) error {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM images WHERE id = $1)`, imageID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check image existence: %w", err)
	}
	if !exists {
		return models.ErrNotFound
	}
	return nil
}

const imageSelect = `
	SELECT id, url, filename, storage_key, uploaded_at, user_id, user_name, user_avatar, event_id, comments, liked_by
	FROM images`

func scanImage(row pgx.Row) (*models.Image, error) {
	var image models.Image
	var comments []byte
	err := row.Scan(
		&image.ID, &image.URL, &image.Filename, &image.StorageKey, &image.UploadedAt,
		&image.UserID, &image.UserName, &image.UserAvatar, &image.EventID,
		&comments, &image.LikedBy,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(comments, &image.Comments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal comments: %w", err)
	}
	if image.Comments == nil {
		image.Comments = []models.Comment{}
	}
	if image.LikedBy == nil {
		image.LikedBy = []string{}
	}
	image.Likes = len(image.LikedBy)
	return &image, nil
}
