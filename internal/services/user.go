package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"party-photo-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const jwtExpDays = 365

// UserRepo is the persistence surface the identity resolver needs.
type UserRepo interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetBySubject(ctx context.Context, provider, subject string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID, name string, avatar *string) error
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// Identity is the set of claims extracted from a verified provider session.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Avatar  *string
}

// TokenVerifier verifies a raw provider ID token and returns its identity
// claims.
type TokenVerifier interface {
	Verify(ctx context.Context, provider, rawIDToken string) (*Identity, error)
}

// UserService resolves authentication sessions to local user records and
// issues the bearer tokens the rest of the API trusts.
type UserService struct {
	userRepo  UserRepo
	verifier  TokenVerifier
	jwtSecret string
}

// NewUserService creates a new user service. verifier may be nil when no
// social providers are configured.
func NewUserService(userRepo UserRepo, verifier TokenVerifier, jwtSecret string) *UserService {
	return &UserService{
		userRepo:  userRepo,
		verifier:  verifier,
		jwtSecret: jwtSecret,
	}
}

// AuthResult bundles the resolved user with a fresh bearer token.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a local-provider user from name, email and password.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", models.ErrInvalidInput)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", models.ErrInvalidInput)
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already in use", models.ErrAlreadyExists)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)

	user := &models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		Provider:     models.ProviderLocal,
		PasswordHash: &hashStr,
		CreatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.authResult(user)
}

// Login authenticates a local-provider user by email and password.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
	}

	return s.authResult(user)
}

// LoginWithIDToken verifies a provider-issued ID token and upserts the
// matching user record, keeping name and avatar in sync with the session.
func (s *UserService) LoginWithIDToken(ctx context.Context, provider, rawIDToken string) (*AuthResult, error) {
	if s.verifier == nil {
		return nil, fmt.Errorf("%w: social login is not configured", models.ErrInvalidInput)
	}

	identity, err := s.verifier.Verify(ctx, provider, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}

	user, err := s.userRepo.GetBySubject(ctx, provider, identity.Subject)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		subject := identity.Subject
		user = &models.User{
			ID:        uuid.New().String(),
			Name:      identity.Name,
			Email:     identity.Email,
			Avatar:    identity.Avatar,
			Provider:  provider,
			Subject:   &subject,
			CreatedAt: time.Now(),
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return s.authResult(user)
	}

	if user.Name != identity.Name || !equalAvatar(user.Avatar, identity.Avatar) {
		if err := s.userRepo.UpdateProfile(ctx, user.ID, identity.Name, identity.Avatar); err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
		user.Name = identity.Name
		user.Avatar = identity.Avatar
	}

	return s.authResult(user)
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdatePushToken registers or clears a device push token for a user
func (s *UserService) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	return s.userRepo.UpdatePushToken(ctx, userID, pushToken)
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}

func (s *UserService) authResult(user *models.User) (*AuthResult, error) {
	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func equalAvatar(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
