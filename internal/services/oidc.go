package services

import (
	"context"
	"fmt"

	"party-photo-backend/internal/config"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCVerifier verifies provider ID tokens against the issuers configured in
// the auth section.
type OIDCVerifier struct {
	verifiers map[string]*oidc.IDTokenVerifier
}

// NewOIDCVerifier performs discovery for every configured provider. Returns
// nil when none are configured.
func NewOIDCVerifier(ctx context.Context, cfg config.AuthConfig) (*OIDCVerifier, error) {
	if len(cfg.Providers) == 0 {
		return nil, nil
	}

	verifiers := make(map[string]*oidc.IDTokenVerifier, len(cfg.Providers))
	for _, p := range cfg.Providers {
		provider, err := oidc.NewProvider(ctx, p.Issuer)
		if err != nil {
			return nil, fmt.Errorf("failed to discover provider %s: %w", p.Name, err)
		}
		verifiers[p.Name] = provider.Verifier(&oidc.Config{ClientID: p.ClientID})
	}

	return &OIDCVerifier{verifiers: verifiers}, nil
}

// Verify checks the raw ID token and extracts the identity claims
func (v *OIDCVerifier) Verify(ctx context.Context, provider, rawIDToken string) (*Identity, error) {
	verifier, ok := v.verifiers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", provider)
	}

	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse ID token claims: %w", err)
	}

	identity := &Identity{
		Subject: idToken.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}
	if claims.Picture != "" {
		identity.Avatar = &claims.Picture
	}
	return identity, nil
}
