package push

import (
	"fmt"

	"party-photo-backend/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// Sender delivers a push notification to a device token. Delivery is always
// best-effort: callers log failures and move on.
type Sender interface {
	SendCommentPush(deviceToken, actorName, content string, badge int) error
}

// APNSSender sends comment pushes through Apple's push service using
// token-based (.p8) authentication.
type APNSSender struct {
	client *apns2.Client
	topic  string
}

// NewAPNSSender creates an APNs sender, or nil when push is disabled.
func NewAPNSSender(cfg config.APNSConfig) (*APNSSender, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	authKey, err := token.AuthKeyFromFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
	}

	t := &token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	}

	client := apns2.NewTokenClient(t)
	if cfg.Sandbox {
		client = client.Development()
	} else {
		client = client.Production()
	}

	return &APNSSender{client: client, topic: cfg.Topic}, nil
}

// SendCommentPush pushes a "X commented on your photo" alert
func (s *APNSSender) SendCommentPush(deviceToken, actorName, content string, badge int) error {
	p := payload.NewPayload().
		AlertTitle(fmt.Sprintf("%s commented on your photo", actorName)).
		AlertBody(content).
		Badge(badge).
		Sound("default")

	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       s.topic,
		Payload:     p,
	}

	res, err := s.client.Push(notification)
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("push rejected: %s", res.Reason)
	}

	log.Debug().Str("apns_id", res.ApnsID).Msg("Push delivered")
	return nil
}
