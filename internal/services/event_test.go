package services

import (
	"context"
	"regexp"
	"testing"

	"party-photo-backend/internal/models"
	"party-photo-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var inviteCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestCreateEvent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.addUser(t, "Alice", "alice@example.com")

	event, err := env.eventService.CreateEvent(ctx, "Beach Party", "Sunset at the pier", host.ID)
	require.NoError(t, err)

	assert.Regexp(t, inviteCodePattern, event.InviteCode)
	assert.True(t, event.IsActive)
	assert.Equal(t, host.ID, event.CreatedBy)
	assert.Contains(t, event.QRCode, "size=200x200")
	assert.Contains(t, event.QRCode, event.InviteCode)

	found, err := env.eventService.GetEventByInviteCode(ctx, event.InviteCode)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, event.ID, found.ID)
}

func TestCreateEventValidation(t *testing.T) {
	env := newTestEnv()

	_, err := env.eventService.CreateEvent(context.Background(), "", "", "user-1")
	require.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = env.eventService.CreateEvent(context.Background(), "Party", "", "")
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCreateEventRecordsCreatorParticipation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.addUser(t, "Alice", "alice@example.com")

	event, err := env.eventService.CreateEvent(ctx, "Beach Party", "", host.ID)
	require.NoError(t, err)

	p, err := env.participationService.GetParticipationByUserAndEvent(ctx, host.ID, event.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, models.RoleCreator, p.Role)
	assert.Equal(t, event.InviteCode, p.EventInviteCode)
}

func TestGetEventByInviteCodeUnknown(t *testing.T) {
	env := newTestEnv()

	event, err := env.eventService.GetEventByInviteCode(context.Background(), "ZZZZZZ")
	require.NoError(t, err)
	assert.Nil(t, event)
}

func TestDeactivatedEventStopsResolving(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.addUser(t, "Alice", "alice@example.com")
	guest := env.addUser(t, "Bob", "bob@example.com")

	event, err := env.eventService.CreateEvent(ctx, "Beach Party", "", host.ID)
	require.NoError(t, err)

	require.NoError(t, env.eventService.DeactivateEvent(ctx, event.ID))

	found, err := env.eventService.GetEventByInviteCode(ctx, event.InviteCode)
	require.NoError(t, err)
	assert.Nil(t, found)

	_, _, err = env.eventService.JoinByInviteCode(ctx, guest.ID, event.InviteCode)
	require.ErrorIs(t, err, models.ErrNotFound)

	// The event itself is still readable by id.
	byID, err := env.eventService.GetEventByID(ctx, event.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.False(t, byID.IsActive)
}

func TestUpdateEventRenamePropagates(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.addUser(t, "Alice", "alice@example.com")
	guest := env.addUser(t, "Bob", "bob@example.com")

	event, err := env.eventService.CreateEvent(ctx, "Beach Party", "", host.ID)
	require.NoError(t, err)
	_, _, err = env.eventService.JoinByInviteCode(ctx, guest.ID, event.InviteCode)
	require.NoError(t, err)

	newName := "Rooftop Party"
	err = env.eventService.UpdateEvent(ctx, event.ID, repository.EventUpdate{Name: &newName})
	require.NoError(t, err)

	for _, userID := range []string{host.ID, guest.ID} {
		p, err := env.participationService.GetParticipationByUserAndEvent(ctx, userID, event.ID)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, newName, p.EventName)
	}
}

func TestJoinByInviteCodeIsIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	host := env.addUser(t, "Alice", "alice@example.com")
	guest := env.addUser(t, "Bob", "bob@example.com")

	event, err := env.eventService.CreateEvent(ctx, "Beach Party", "", host.ID)
	require.NoError(t, err)

	_, first, err := env.eventService.JoinByInviteCode(ctx, guest.ID, event.InviteCode)
	require.NoError(t, err)
	_, second, err := env.eventService.JoinByInviteCode(ctx, guest.ID, event.InviteCode)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	participations, err := env.participationService.GetUserParticipations(ctx, guest.ID)
	require.NoError(t, err)
	assert.Len(t, participations, 1)
}
