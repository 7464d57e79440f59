package repository

import (
	"context"
	"fmt"

	"party-photo-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository handles database operations for notifications.
// Deleting is a soft flag; all reads exclude flagged rows.
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create creates a new notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (id, type, user_id, user_name, user_avatar, image_id, image_url, content, created_at, read, deleted, recipient_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, false, $11)
	`
	_, err := r.db.Exec(ctx, query,
		n.ID, n.Type, n.UserID, n.UserName, n.UserAvatar,
		n.ImageID, n.ImageURL, n.Content, n.Timestamp, n.Read, n.RecipientID,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetByRecipient retrieves the most recent notifications for a recipient
func (r *NotificationRepository) GetByRecipient(ctx context.Context, recipientID string, limit int) ([]*models.Notification, error) {
	query := `
		SELECT id, type, user_id, user_name, user_avatar, image_id, image_url, content, created_at, read, recipient_id
		FROM notifications
		WHERE recipient_id = $1 AND deleted = false
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(
			&n.ID, &n.Type, &n.UserID, &n.UserName, &n.UserAvatar,
			&n.ImageID, &n.ImageURL, &n.Content, &n.Timestamp, &n.Read, &n.RecipientID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, nil
}

// CountUnread counts unread notifications for a recipient
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read = false AND deleted = false`
	var count int
	if err := r.db.QueryRow(ctx, query, recipientID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks a single notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `UPDATE notifications SET read = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification for a recipient as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string) error {
	query := `UPDATE notifications SET read = true WHERE recipient_id = $1 AND read = false`
	_, err := r.db.Exec(ctx, query, recipientID)
	if err != nil {
		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return nil
}

// SoftDelete flags a single notification as deleted
func (r *NotificationRepository) SoftDelete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `UPDATE notifications SET deleted = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SoftDeleteAll flags every notification for a recipient as deleted
func (r *NotificationRepository) SoftDeleteAll(ctx context.Context, recipientID string) error {
	query := `UPDATE notifications SET deleted = true WHERE recipient_id = $1`
	_, err := r.db.Exec(ctx, query, recipientID)
	if err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}
	return nil
}
