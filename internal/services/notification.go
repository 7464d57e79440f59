package services

import (
	"context"
	"fmt"
	"time"

	"party-photo-backend/internal/models"
	"party-photo-backend/internal/push"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultNotificationLimit = 50

// NotificationRepo is the persistence surface the notification fan-out
// needs.
type NotificationRepo interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByRecipient(ctx context.Context, recipientID string, limit int) ([]*models.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, recipientID string) error
	SoftDelete(ctx context.Context, id string) error
	SoftDeleteAll(ctx context.Context, recipientID string) error
}

// NotificationService fans comment notifications out to photo owners and
// delivers them over the live connection and, when a device token is
// registered, as a push.
type NotificationService struct {
	notificationRepo NotificationRepo
	userRepo         UserRepo
	hub              *WSHub
	pusher           push.Sender
}

// NewNotificationService creates a new notification service. hub and pusher
// may be nil; the corresponding delivery channel is then skipped.
func NewNotificationService(notificationRepo NotificationRepo, userRepo UserRepo, hub *WSHub, pusher push.Sender) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		hub:              hub,
		pusher:           pusher,
	}
}

// CreateCommentNotification writes an unread notification addressed to the
// photo owner. No-op when the commenter is the owner.
func (s *NotificationService) CreateCommentNotification(
	ctx context.Context,
	imageID, imageURL, content string,
	actorID, actorName string, actorAvatar *string,
	recipientID string,
) (*models.Notification, error) {
	if actorID == recipientID {
		return nil, nil
	}

	notification := &models.Notification{
		ID:          uuid.New().String(),
		Type:        models.NotificationTypeComment,
		UserID:      actorID,
		UserName:    actorName,
		UserAvatar:  actorAvatar,
		ImageID:     imageID,
		ImageURL:    imageURL,
		Content:     content,
		Timestamp:   time.Now(),
		Read:        false,
		RecipientID: recipientID,
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	s.deliver(ctx, notification)

	return notification, nil
}

// GetUserNotifications lists the most recent notifications for a user.
// Cleared (soft-deleted) rows are excluded.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	return s.notificationRepo.GetByRecipient(ctx, userID, limit)
}

// GetUnreadCount counts unread notifications for a user
func (s *NotificationService) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

// MarkNotificationAsRead marks one notification as read
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, notificationID string) error {
	return s.notificationRepo.MarkRead(ctx, notificationID)
}

// MarkAllNotificationsAsRead marks every unread notification for a user as
// read
func (s *NotificationService) MarkAllNotificationsAsRead(ctx context.Context, userID string) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

// DeleteNotification soft-flags one notification as deleted
func (s *NotificationService) DeleteNotification(ctx context.Context, notificationID string) error {
	return s.notificationRepo.SoftDelete(ctx, notificationID)
}

// ClearAllNotifications soft-flags all of a user's notifications as deleted
func (s *NotificationService) ClearAllNotifications(ctx context.Context, userID string) error {
	return s.notificationRepo.SoftDeleteAll(ctx, userID)
}

// deliver pushes the notification through the live channels. Every channel
// is best-effort; failures are logged and swallowed.
func (s *NotificationService) deliver(ctx context.Context, n *models.Notification) {
	unread, err := s.notificationRepo.CountUnread(ctx, n.RecipientID)
	if err != nil {
		log.Error().Err(err).Str("user_id", n.RecipientID).Msg("Failed to count unread notifications")
		unread = 0
	}

	if s.hub != nil && s.hub.IsOnline(n.RecipientID) {
		if err := s.hub.SendToUser(n.RecipientID, WSMessage{Type: MessageNotification, Data: n}); err != nil {
			log.Debug().Err(err).Str("user_id", n.RecipientID).Msg("Failed to push notification")
		}
		if err := s.hub.SendToUser(n.RecipientID, WSMessage{Type: MessageUnreadCount, Data: unread}); err != nil {
			log.Debug().Err(err).Str("user_id", n.RecipientID).Msg("Failed to push unread count")
		}
	}

	if s.pusher == nil {
		return
	}
	recipient, err := s.userRepo.GetByID(ctx, n.RecipientID)
	if err != nil {
		log.Error().Err(err).Str("user_id", n.RecipientID).Msg("Failed to load push recipient")
		return
	}
	if recipient.PushToken == nil {
		return
	}
	if err := s.pusher.SendCommentPush(*recipient.PushToken, n.UserName, n.Content, unread); err != nil {
		log.Error().Err(err).Str("user_id", n.RecipientID).Msg("Failed to send push notification")
	}
}
