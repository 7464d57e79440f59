package services

import (
	"context"
	"fmt"
	"testing"

	"party-photo-backend/internal/models"
	"party-photo-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	registered, err := env.userService.Register(ctx, "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, models.ProviderLocal, registered.User.Provider)
	assert.NotEmpty(t, registered.Token)

	loggedIn, err := env.userService.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.userService.Register(ctx, "", "alice@example.com", "secret123")
	require.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = env.userService.Register(ctx, "Alice", "alice@example.com", "short")
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.userService.Register(ctx, "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	_, err = env.userService.Register(ctx, "Other Alice", "alice@example.com", "secret456")
	require.ErrorIs(t, err, models.ErrAlreadyExists)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.userService.Register(ctx, "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	_, err = env.userService.Login(ctx, "alice@example.com", "wrong")
	require.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = env.userService.Login(ctx, "nobody@example.com", "secret123")
	require.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestJWTRoundtrip(t *testing.T) {
	env := newTestEnv()

	token, err := env.userService.GenerateJWT("user-1")
	require.NoError(t, err)

	userID, err := env.userService.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestValidateJWTWrongSecret(t *testing.T) {
	issuer := NewUserService(repository.NewMemoryUserRepository(), nil, "secret-a")
	checker := NewUserService(repository.NewMemoryUserRepository(), nil, "secret-b")

	token, err := issuer.GenerateJWT("user-1")
	require.NoError(t, err)

	_, err = checker.ValidateJWT(token)
	require.Error(t, err)
}

// stubVerifier returns a fixed identity for any token.
type stubVerifier struct {
	identity Identity
	err      error
}

func (v *stubVerifier) Verify(ctx context.Context, provider, rawIDToken string) (*Identity, error) {
	if v.err != nil {
		return nil, v.err
	}
	id := v.identity
	return &id, nil
}

func TestLoginWithIDTokenCreatesUser(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	verifier := &stubVerifier{identity: Identity{Subject: "sub-1", Email: "alice@gmail.com", Name: "Alice"}}
	svc := NewUserService(users, verifier, "test-secret")

	result, err := svc.LoginWithIDToken(context.Background(), models.ProviderGoogle, "raw-token")
	require.NoError(t, err)
	assert.Equal(t, models.ProviderGoogle, result.User.Provider)
	require.NotNil(t, result.User.Subject)
	assert.Equal(t, "sub-1", *result.User.Subject)
	assert.NotEmpty(t, result.Token)
}

func TestLoginWithIDTokenReusesAndSyncsUser(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	verifier := &stubVerifier{identity: Identity{Subject: "sub-1", Email: "alice@gmail.com", Name: "Alice"}}
	svc := NewUserService(users, verifier, "test-secret")

	first, err := svc.LoginWithIDToken(context.Background(), models.ProviderGoogle, "raw-token")
	require.NoError(t, err)

	avatar := "https://example.com/alice.png"
	verifier.identity.Name = "Alice Updated"
	verifier.identity.Avatar = &avatar

	second, err := svc.LoginWithIDToken(context.Background(), models.ProviderGoogle, "raw-token")
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, "Alice Updated", second.User.Name)
	require.NotNil(t, second.User.Avatar)
	assert.Equal(t, avatar, *second.User.Avatar)
}

func TestLoginWithIDTokenRejectsBadToken(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	verifier := &stubVerifier{err: fmt.Errorf("token expired")}
	svc := NewUserService(users, verifier, "test-secret")

	_, err := svc.LoginWithIDToken(context.Background(), models.ProviderGoogle, "raw-token")
	require.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestLoginWithIDTokenUnconfigured(t *testing.T) {
	svc := NewUserService(repository.NewMemoryUserRepository(), nil, "test-secret")

	_, err := svc.LoginWithIDToken(context.Background(), models.ProviderGoogle, "raw-token")
	require.ErrorIs(t, err, models.ErrInvalidInput)
}
