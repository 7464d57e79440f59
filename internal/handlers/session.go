package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"party-photo-backend/internal/middleware"
	"party-photo-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// SessionHandler handles session resolution requests
type SessionHandler struct {
	sessionService *services.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

// ResolveSessionRequest is the body of POST /api/v1/session/resolve
type ResolveSessionRequest struct {
	Path string `json:"path"`
}

// ResolveSession handles POST /api/v1/session/resolve. It reads the last-event
// cookies, resolves the current event for the user, and re-sets the cookies to
// match the outcome.
func (h *SessionHandler) ResolveSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req ResolveSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		// An empty body means no path context; malformed JSON does not.
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cookies := services.SessionState{
		EventID:         cookieValue(r, services.CookieLastEventID),
		EventName:       cookieValue(r, services.CookieLastEventName),
		EventInviteCode: cookieValue(r, services.CookieLastEventInviteCode),
	}

	session, err := h.sessionService.Resolve(ctx, userID, req.Path, cookies)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to resolve session")
		respondError(w, "Failed to resolve session", http.StatusInternalServerError)
		return
	}

	setSessionCookie(w, services.CookieLastEventID, session.Cookies.EventID)
	setSessionCookie(w, services.CookieLastEventName, session.Cookies.EventName)
	setSessionCookie(w, services.CookieLastEventInviteCode, session.Cookies.EventInviteCode)

	respondJSON(w, http.StatusOK, session)
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// setSessionCookie persists a session cookie for thirty days. An empty value
// expires the cookie instead.
func setSessionCookie(w http.ResponseWriter, name, value string) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(services.SessionCookieMaxAge.Seconds()),
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	http.SetCookie(w, cookie)
}
