package services

import (
	"context"
	"regexp"
	"time"

	"party-photo-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// Cookie keys persisting the last selected event between visits.
const (
	CookieLastEventID         = "lastEventId"
	CookieLastEventName       = "lastEventName"
	CookieLastEventInviteCode = "lastEventInviteCode"
)

// SessionCookieMaxAge is how long the last-event cookies live.
const SessionCookieMaxAge = 30 * 24 * time.Hour

var invitePathPattern = regexp.MustCompile(`/event/([A-Z0-9]+)`)

// SessionState carries the last-event cookie values as plain strings; the
// handler layer owns actual cookie I/O.
type SessionState struct {
	EventID         string `json:"event_id"`
	EventName       string `json:"event_name"`
	EventInviteCode string `json:"event_invite_code"`
}

// ResolvedSession is the outcome of session resolution: the selected event
// (may be nil), the user's full event picture, and the cookie state to
// persist.
type ResolvedSession struct {
	CurrentEvent   *models.Event           `json:"current_event"`
	Events         []*models.Event         `json:"events"`
	Participations []*models.Participation `json:"participations"`
	Cookies        SessionState            `json:"-"`
}

// SessionService resolves which event a user is currently looking at. It
// holds no state itself; everything request-scoped comes in as arguments.
type SessionService struct {
	events         *EventService
	participations *ParticipationService
}

// NewSessionService creates a new session service
func NewSessionService(events *EventService, participations *ParticipationService) *SessionService {
	return &SessionService{
		events:         events,
		participations: participations,
	}
}

// Resolve picks the current event with the precedence: an invite code
// embedded in the path wins and joins the user to that event; otherwise the
// cookie-persisted event is re-validated against the directory; otherwise the
// first of the user's combined events is auto-selected.
func (s *SessionService) Resolve(ctx context.Context, userID, path string, cookies SessionState) (*ResolvedSession, error) {
	resolved := &ResolvedSession{}

	if code := ExtractInviteCode(path); code != "" {
		event, _, err := s.events.JoinByInviteCode(ctx, userID, code)
		if err == nil {
			resolved.CurrentEvent = event
		} else {
			log.Warn().
				Err(err).
				Str("user_id", userID).
				Str("invite_code", code).
				Msg("Failed to join event from path")
		}
	}

	if resolved.CurrentEvent == nil && cookies.EventID != "" {
		event, err := s.events.GetEventByID(ctx, cookies.EventID)
		if err != nil {
			return nil, err
		}
		if event != nil && event.IsActive {
			resolved.CurrentEvent = event
		}
	}

	events, err := s.events.GetUserEvents(ctx, userID)
	if err != nil {
		return nil, err
	}
	participations, err := s.participations.GetUserParticipations(ctx, userID)
	if err != nil {
		return nil, err
	}
	resolved.Events = CombineEvents(events, participations)
	resolved.Participations = participations

	if resolved.CurrentEvent == nil && len(resolved.Events) > 0 {
		resolved.CurrentEvent = resolved.Events[0]
	}

	if resolved.CurrentEvent != nil {
		resolved.Cookies = SessionState{
			EventID:         resolved.CurrentEvent.ID,
			EventName:       resolved.CurrentEvent.Name,
			EventInviteCode: resolved.CurrentEvent.InviteCode,
		}
	}

	return resolved, nil
}

// ExtractInviteCode pulls an invite code out of a path like /event/XJ4K9P.
// Returns "" when the path carries none.
func ExtractInviteCode(path string) string {
	match := invitePathPattern.FindStringSubmatch(path)
	if match == nil {
		return ""
	}
	return match[1]
}

// CombineEvents merges the events a user created with the ones they joined
// into a single list deduplicated by event id, created events first.
// Participated events are synthesized from the ledger's denormalized copies.
func CombineEvents(created []*models.Event, participations []*models.Participation) []*models.Event {
	seen := make(map[string]struct{}, len(created))
	combined := make([]*models.Event, 0, len(created)+len(participations))

	for _, event := range created {
		if _, ok := seen[event.ID]; ok {
			continue
		}
		seen[event.ID] = struct{}{}
		combined = append(combined, event)
	}

	for _, p := range participations {
		if _, ok := seen[p.EventID]; ok {
			continue
		}
		seen[p.EventID] = struct{}{}
		combined = append(combined, &models.Event{
			ID:         p.EventID,
			Name:       p.EventName,
			InviteCode: p.EventInviteCode,
			IsActive:   true,
			CreatedAt:  p.JoinedAt,
		})
	}

	return combined
}
