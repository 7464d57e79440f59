package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"party-photo-backend/internal/models"
	"party-photo-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ImageRepo is the persistence surface the image store needs.
type ImageRepo interface {
	Create(ctx context.Context, image *models.Image) error
	GetByID(ctx context.Context, id string) (*models.Image, error)
	List(ctx context.Context, eventID *string) ([]*models.Image, error)
	AppendComment(ctx context.Context, imageID string, comment models.Comment) error
	AddLike(ctx context.Context, imageID, userID string) error
	RemoveLike(ctx context.Context, imageID, userID string) error
	Delete(ctx context.Context, id string) error
}

// ImageService handles image uploads, the event feed, and the comment and
// like mutations on an image.
type ImageService struct {
	imageRepo     ImageRepo
	blobs         storage.BlobStore
	notifications *NotificationService
	hub           *WSHub

	likeRetry    RetryPolicy
	commentRetry RetryPolicy
}

// NewImageService creates a new image service. notifications and hub may be
// nil; the corresponding side effects are then skipped.
func NewImageService(imageRepo ImageRepo, blobs storage.BlobStore, notifications *NotificationService, hub *WSHub) *ImageService {
	return &ImageService{
		imageRepo:     imageRepo,
		blobs:         blobs,
		notifications: notifications,
		hub:           hub,
		likeRetry:     DefaultRetryPolicy,
		commentRetry:  CommentRetryPolicy,
	}
}

// UploadImage stores the blob under a per-user key and writes the metadata
// record. The returned UploadedAt is the service clock at upload time; the
// stored value is authoritative on subsequent reads.
func (s *ImageService) UploadImage(
	ctx context.Context,
	body io.Reader, size int64, filename, contentType string,
	userID, userName string, userAvatar *string, eventID *string,
) (*models.Image, error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", models.ErrInvalidInput)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", models.ErrInvalidInput)
	}

	now := time.Now()
	key := fmt.Sprintf("images/%s/%d_%s", userID, now.UnixMilli(), filename)

	url, err := s.blobs.Upload(ctx, key, contentType, body, size)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	image := &models.Image{
		ID:         uuid.New().String(),
		URL:        url,
		Filename:   filename,
		StorageKey: key,
		UploadedAt: now,
		UserID:     userID,
		UserName:   userName,
		UserAvatar: userAvatar,
		EventID:    eventID,
		Comments:   []models.Comment{},
		LikedBy:    []string{},
	}

	if err := s.imageRepo.Create(ctx, image); err != nil {
		return nil, fmt.Errorf("failed to create image record: %w", err)
	}

	log.Info().
		Str("image_id", image.ID).
		Str("user_id", userID).
		Str("filename", filename).
		Msg("Image uploaded")

	if s.hub != nil && eventID != nil {
		s.hub.BroadcastToEvent(*eventID, WSMessage{
			Type:    MessageImageUploaded,
			EventID: *eventID,
			Data:    image,
		})
	}

	return image, nil
}

// GetAllImages lists images newest first, restricted to an event when
// eventID is non-nil. Likes is derived from the like set on every read.
func (s *ImageService) GetAllImages(ctx context.Context, eventID *string) ([]*models.Image, error) {
	return s.imageRepo.List(ctx, eventID)
}

// AddComment appends a comment to an image. The append is retried with
// exponential backoff and each attempt is bounded by a timeout. On success a
// notification is fanned out to the photo owner, best-effort.
func (s *ImageService) AddComment(
	ctx context.Context,
	imageID, content string,
	userID, userName string, userAvatar *string,
) (*models.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is required", models.ErrInvalidInput)
	}

	image, err := s.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:         newTimeID(),
		Content:    content,
		CreatedAt:  time.Now(),
		UserID:     userID,
		UserName:   userName,
		UserAvatar: userAvatar,
	}

	err = s.commentRetry.Do(ctx, func(ctx context.Context) error {
		return s.imageRepo.AppendComment(ctx, imageID, comment)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	log.Info().
		Str("image_id", imageID).
		Str("user_id", userID).
		Msg("Comment added")

	if s.notifications != nil {
		_, err := s.notifications.CreateCommentNotification(
			ctx, imageID, image.URL, content, userID, userName, userAvatar, image.UserID,
		)
		if err != nil {
			log.Error().
				Err(err).
				Str("image_id", imageID).
				Str("recipient_id", image.UserID).
				Msg("Failed to create comment notification")
		}
	}

	return &comment, nil
}

// LikeImage adds the user to an image's like set. Idempotent.
func (s *ImageService) LikeImage(ctx context.Context, imageID, userID string) error {
	err := s.likeRetry.Do(ctx, func(ctx context.Context) error {
		return s.imageRepo.AddLike(ctx, imageID, userID)
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to like image: %w", err)
	}
	return nil
}

// UnlikeImage removes the user from an image's like set. Idempotent.
func (s *ImageService) UnlikeImage(ctx context.Context, imageID, userID string) error {
	err := s.likeRetry.Do(ctx, func(ctx context.Context) error {
		return s.imageRepo.RemoveLike(ctx, imageID, userID)
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to unlike image: %w", err)
	}
	return nil
}

// DeleteImage removes an image. Owner-only. The metadata record is removed
// first; blob deletion is best-effort.
func (s *ImageService) DeleteImage(ctx context.Context, imageID, userID string) error {
	image, err := s.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	if image.UserID != userID {
		return fmt.Errorf("%w: only the owner can delete an image", models.ErrForbidden)
	}

	if err := s.imageRepo.Delete(ctx, imageID); err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, image.StorageKey); err != nil {
		log.Error().
			Err(err).
			Str("image_id", imageID).
			Str("storage_key", image.StorageKey).
			Msg("Failed to delete image blob")
	}

	log.Info().
		Str("image_id", imageID).
		Str("user_id", userID).
		Msg("Image deleted")

	return nil
}

// newTimeID generates a millisecond-epoch string id, kept for wire
// compatibility with clients that treat comment ids as numeric timestamps.
func newTimeID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}
