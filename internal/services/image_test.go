package services

import (
	"context"
	"errors"
	"testing"

	"party-photo-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadTestImage(t *testing.T, env *testEnv, userID, userName string, eventID *string) *models.Image {
	t.Helper()
	image, err := env.imageService.UploadImage(context.Background(), blobReader("jpeg-bytes"), 10, "photo.jpg", "image/jpeg", userID, userName, nil, eventID)
	require.NoError(t, err)
	return image
}

func TestUploadImage(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	image := uploadTestImage(t, env, "user-1", "Alice", nil)

	assert.NotEmpty(t, image.ID)
	assert.True(t, env.blobs.Has(image.StorageKey))
	assert.Empty(t, image.Comments)
	assert.Empty(t, image.LikedBy)
	assert.Zero(t, image.Likes)

	images, err := env.imageService.GetAllImages(ctx, nil)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, image.ID, images[0].ID)
}

func TestUploadImageValidation(t *testing.T) {
	env := newTestEnv()

	_, err := env.imageService.UploadImage(context.Background(), blobReader(""), 0, "", "image/jpeg", "user-1", "Alice", nil, nil)
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestGetAllImagesFiltersByEvent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	eventA := "event-a"
	eventB := "event-b"
	uploadTestImage(t, env, "user-1", "Alice", &eventA)
	uploadTestImage(t, env, "user-1", "Alice", &eventB)
	uploadTestImage(t, env, "user-1", "Alice", nil)

	all, err := env.imageService.GetAllImages(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onlyA, err := env.imageService.GetAllImages(ctx, &eventA)
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, eventA, *onlyA[0].EventID)
}

func TestLikeImageIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	image := uploadTestImage(t, env, "user-1", "Alice", nil)

	require.NoError(t, env.imageService.LikeImage(ctx, image.ID, "user-2"))
	require.NoError(t, env.imageService.LikeImage(ctx, image.ID, "user-2"))
	require.NoError(t, env.imageService.LikeImage(ctx, image.ID, "user-3"))

	images, err := env.imageService.GetAllImages(ctx, nil)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, 2, images[0].Likes)
	assert.ElementsMatch(t, []string{"user-2", "user-3"}, images[0].LikedBy)
}

func TestUnlikeImage(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	image := uploadTestImage(t, env, "user-1", "Alice", nil)

	require.NoError(t, env.imageService.LikeImage(ctx, image.ID, "user-2"))
	require.NoError(t, env.imageService.UnlikeImage(ctx, image.ID, "user-2"))
	// Unliking when not in the like set is a no-op.
	require.NoError(t, env.imageService.UnlikeImage(ctx, image.ID, "user-2"))

	images, err := env.imageService.GetAllImages(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, images[0].Likes)
}

func TestLikeMissingImage(t *testing.T) {
	env := newTestEnv()

	err := env.imageService.LikeImage(context.Background(), "missing", "user-1")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestLikeImageRetriesTransientFailure(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	image := uploadTestImage(t, env, "user-1", "Alice", nil)

	env.images.ErrOnNextCall = errors.New("connection reset")
	require.NoError(t, env.imageService.LikeImage(ctx, image.ID, "user-2"))

	images, err := env.imageService.GetAllImages(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, images[0].Likes)
}

func TestAddComment(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	image := uploadTestImage(t, env, "user-1", "Alice", nil)

	comment, err := env.imageService.AddComment(ctx, image.ID, "Nice!", "user-2", "Bob", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, comment.ID)
	assert.Equal(t, "Nice!", comment.Content)

	images, err := env.imageService.GetAllImages(ctx, nil)
	require.NoError(t, err)
	require.Len(t, images[0].Comments, 1)
	assert.Equal(t, comment.ID, images[0].Comments[0].ID)
}

func TestAddCommentValidation(t *testing.T) {
	env := newTestEnv()
	image := uploadTestImage(t, env, "user-1", "Alice", nil)

	_, err := env.imageService.AddComment(context.Background(), image.ID, "", "user-2", "Bob", nil)
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestAddCommentMissingImage(t *testing.T) {
	env := newTestEnv()

	_, err := env.imageService.AddComment(context.Background(), "missing", "Nice!", "user-2", "Bob", nil)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestAddCommentReplayDoesNotDuplicate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	image := uploadTestImage(t, env, "user-1", "Alice", nil)

	_, err := env.imageService.AddComment(ctx, image.ID, "Nice!", "user-2", "Bob", nil)
	require.NoError(t, err)

	// A retried append after an ambiguous failure replays the identical
	// comment; the set semantics must collapse it.
	images, err := env.imageService.GetAllImages(ctx, nil)
	require.NoError(t, err)
	require.Len(t, images[0].Comments, 1)
	require.NoError(t, env.images.AppendComment(ctx, image.ID, images[0].Comments[0]))

	images, err = env.imageService.GetAllImages(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, images[0].Comments, 1)
}

func TestAddCommentNotifiesOwner(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	owner := env.addUser(t, "Alice", "alice@example.com")
	image := uploadTestImage(t, env, owner.ID, owner.Name, nil)

	_, err := env.imageService.AddComment(ctx, image.ID, "Nice!", "user-2", "Bob", nil)
	require.NoError(t, err)

	count, err := env.notificationService.GetUnreadCount(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAddCommentOnOwnImageSkipsNotification(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	owner := env.addUser(t, "Alice", "alice@example.com")
	image := uploadTestImage(t, env, owner.ID, owner.Name, nil)

	_, err := env.imageService.AddComment(ctx, image.ID, "My own photo", owner.ID, owner.Name, nil)
	require.NoError(t, err)

	count, err := env.notificationService.GetUnreadCount(ctx, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteImageOwnerOnly(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	image := uploadTestImage(t, env, "user-1", "Alice", nil)

	err := env.imageService.DeleteImage(ctx, image.ID, "user-2")
	require.ErrorIs(t, err, models.ErrForbidden)

	require.NoError(t, env.imageService.DeleteImage(ctx, image.ID, "user-1"))
	assert.False(t, env.blobs.Has(image.StorageKey))

	images, err := env.imageService.GetAllImages(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestDeleteImageSurvivesBlobFailure(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	image := uploadTestImage(t, env, "user-1", "Alice", nil)

	env.blobs.DeleteErr = errors.New("s3 unavailable")
	require.NoError(t, env.imageService.DeleteImage(ctx, image.ID, "user-1"))

	images, err := env.imageService.GetAllImages(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, images)
}
