package handlers

import (
	"encoding/json"
	"net/http"

	"party-photo-backend/internal/middleware"
	"party-photo-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// RegisterRequest is the body of POST /api/v1/users
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/v1/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.userService.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to register user")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	log.Info().
		Str("user_id", result.User.ID).
		Msg("User registered")

	respondJSON(w, http.StatusCreated, result)
}

// LoginRequest is the body of POST /api/v1/users/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ProviderLoginRequest is the body of POST /api/v1/users/oidc
type ProviderLoginRequest struct {
	Provider string `json:"provider"`
	IDToken  string `json:"id_token"`
}

// LoginWithProvider handles POST /api/v1/users/oidc
func (h *UserHandler) LoginWithProvider(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ProviderLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Provider == "" || req.IDToken == "" {
		respondError(w, "provider and id_token are required", http.StatusBadRequest)
		return
	}

	result, err := h.userService.LoginWithIDToken(ctx, req.Provider, req.IDToken)
	if err != nil {
		log.Error().Err(err).Str("provider", req.Provider).Msg("Provider login failed")
		respondError(w, "Invalid identity token", http.StatusUnauthorized)
		return
	}

	log.Info().
		Str("user_id", result.User.ID).
		Str("provider", req.Provider).
		Msg("User logged in via provider")

	respondJSON(w, http.StatusOK, result)
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		respondError(w, "User not found", statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// PushTokenRequest is the body of PUT /api/v1/users/push-token
type PushTokenRequest struct {
	PushToken *string `json:"push_token"`
}

// UpdatePushToken handles PUT /api/v1/users/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req PushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.userService.UpdatePushToken(ctx, userID, req.PushToken); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update push token")
		respondError(w, "Failed to update push token", statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
