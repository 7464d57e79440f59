package services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"party-photo-backend/internal/models"
	"party-photo-backend/internal/repository"
	"party-photo-backend/internal/storage"

	"github.com/stretchr/testify/require"
)

// testEnv wires every service against in-memory repositories.
type testEnv struct {
	users          *repository.MemoryUserRepository
	events         *repository.MemoryEventRepository
	participations *repository.MemoryParticipationRepository
	images         *repository.MemoryImageRepository
	notifications  *repository.MemoryNotificationRepository
	blobs          *storage.MemoryStore

	userService          *UserService
	eventService         *EventService
	participationService *ParticipationService
	imageService         *ImageService
	notificationService  *NotificationService
	sessionService       *SessionService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:          repository.NewMemoryUserRepository(),
		events:         repository.NewMemoryEventRepository(),
		participations: repository.NewMemoryParticipationRepository(),
		images:         repository.NewMemoryImageRepository(),
		notifications:  repository.NewMemoryNotificationRepository(),
		blobs:          storage.NewMemoryStore(),
	}

	hub := NewWSHub()
	env.userService = NewUserService(env.users, nil, "test-secret")
	env.participationService = NewParticipationService(env.participations, hub)
	env.eventService = NewEventService(env.events, env.participationService, "https://party.example.com", "https://api.qrserver.com/v1/create-qr-code/")
	env.notificationService = NewNotificationService(env.notifications, env.users, hub, nil)
	env.imageService = NewImageService(env.images, env.blobs, env.notificationService, hub)
	env.sessionService = NewSessionService(env.eventService, env.participationService)

	// Fast retries keep failure-path tests from sleeping.
	env.imageService.likeRetry.BaseDelay = time.Millisecond
	env.imageService.commentRetry.BaseDelay = time.Millisecond

	return env
}

func blobReader(content string) io.Reader {
	return strings.NewReader(content)
}

func (env *testEnv) addUser(t *testing.T, name, email string) *models.User {
	t.Helper()
	result, err := env.userService.Register(context.Background(), name, email, "secret123")
	require.NoError(t, err)
	return result.User
}

// TestPartyFlow walks a two-user party end to end: Alice hosts, Bob joins by
// invite code, uploads a photo, Alice comments, and Bob gets the
// notification.
func TestPartyFlow(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	alice := env.addUser(t, "Alice", "alice@example.com")
	bob := env.addUser(t, "Bob", "bob@example.com")

	event, err := env.eventService.CreateEvent(ctx, "Beach Party", "Sunset at the pier", alice.ID)
	require.NoError(t, err)

	hostRow, err := env.participationService.GetParticipationByUserAndEvent(ctx, alice.ID, event.ID)
	require.NoError(t, err)
	require.NotNil(t, hostRow)
	require.Equal(t, models.RoleCreator, hostRow.Role)

	joined, participation, err := env.eventService.JoinByInviteCode(ctx, bob.ID, event.InviteCode)
	require.NoError(t, err)
	require.Equal(t, event.ID, joined.ID)
	require.Equal(t, models.RoleParticipant, participation.Role)
	require.Equal(t, event.Name, participation.EventName)

	image, err := env.imageService.UploadImage(ctx, blobReader("beach"), 5, "beach.jpg", "image/jpeg", bob.ID, bob.Name, nil, &event.ID)
	require.NoError(t, err)
	require.True(t, env.blobs.Has(image.StorageKey))

	comment, err := env.imageService.AddComment(ctx, image.ID, "Great shot!", alice.ID, alice.Name, nil)
	require.NoError(t, err)
	require.Equal(t, "Great shot!", comment.Content)

	count, err := env.notificationService.GetUnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	list, err := env.notificationService.GetUserNotifications(ctx, bob.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, image.ID, list[0].ImageID)
	require.Equal(t, alice.ID, list[0].UserID)
}
