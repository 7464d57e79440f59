package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestNotification(t *testing.T, env *testEnv, actorID, recipientID string) {
	t.Helper()
	n, err := env.notificationService.CreateCommentNotification(
		context.Background(), "image-1", "https://blobs.test/image-1", "Nice!", actorID, "Bob", nil, recipientID,
	)
	require.NoError(t, err)
	require.NotNil(t, n)
}

func TestCreateCommentNotificationSkipsSelf(t *testing.T) {
	env := newTestEnv()

	n, err := env.notificationService.CreateCommentNotification(
		context.Background(), "image-1", "url", "Nice!", "user-1", "Alice", nil, "user-1",
	)
	require.NoError(t, err)
	assert.Nil(t, n)

	count, err := env.notificationService.GetUnreadCount(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	createTestNotification(t, env, "user-2", "user-1")
	createTestNotification(t, env, "user-3", "user-1")

	count, err := env.notificationService.GetUnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	list, err := env.notificationService.GetUserNotifications(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, env.notificationService.MarkNotificationAsRead(ctx, list[0].ID))

	count, err = env.notificationService.GetUnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMarkAllNotificationsAsRead(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	createTestNotification(t, env, "user-2", "user-1")
	createTestNotification(t, env, "user-3", "user-1")

	require.NoError(t, env.notificationService.MarkAllNotificationsAsRead(ctx, "user-1"))

	count, err := env.notificationService.GetUnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	// The rows themselves survive; only the unread flag changes.
	list, err := env.notificationService.GetUserNotifications(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestClearAllNotifications(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	createTestNotification(t, env, "user-2", "user-1")
	createTestNotification(t, env, "user-3", "user-1")

	require.NoError(t, env.notificationService.ClearAllNotifications(ctx, "user-1"))

	list, err := env.notificationService.GetUserNotifications(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	count, err := env.notificationService.GetUnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteNotification(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	createTestNotification(t, env, "user-2", "user-1")

	list, err := env.notificationService.GetUserNotifications(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, env.notificationService.DeleteNotification(ctx, list[0].ID))

	list, err = env.notificationService.GetUserNotifications(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNotificationsScopedToRecipient(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	createTestNotification(t, env, "user-2", "user-1")
	createTestNotification(t, env, "user-1", "user-2")

	count, err := env.notificationService.GetUnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	list, err := env.notificationService.GetUserNotifications(ctx, "user-2", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "user-1", list[0].UserID)
}
