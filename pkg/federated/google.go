// Package federated verifies identity tokens minted by third-party providers.
package federated

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"github.com/lborres/roster/core"
)

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

var (
	ErrAudienceMismatch = errors.New("audience mismatch")
	ErrIssuerMismatch   = errors.New("unexpected issuer")
	ErrTokenExpired     = errors.New("token expired")
	ErrMissingClaim     = errors.New("missing required claim")
)

// tokenValidator is satisfied by *idtoken.Validator.
type tokenValidator interface {
	Validate(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

// GoogleVerifier checks Google ID tokens obtained by a client-side sign-in.
// See https://developers.google.com/identity/sign-in/web/backend-auth
type GoogleVerifier struct {
	clientID  string
	validator tokenValidator
	now       func() time.Time
}

var _ core.FederatedVerifier = (*GoogleVerifier)(nil)

// NewGoogleVerifier builds a verifier for tokens issued to clientID. Signing
// keys are fetched and cached by the idtoken package.
func NewGoogleVerifier(ctx context.Context, clientID string, opts ...option.ClientOption) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, errors.New("google client id is required")
	}
	v, err := idtoken.NewValidator(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create id token validator: %w", err)
	}
	return &GoogleVerifier{clientID: clientID, validator: v, now: time.Now}, nil
}

// Verify validates raw and returns its profile claims. Every failure wraps
// core.ErrInvalidFederatedToken.
func (g *GoogleVerifier) Verify(ctx context.Context, raw string) (*core.FederatedClaims, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidFederatedToken, ErrMissingClaim)
	}

	payload, err := g.validator.Validate(ctx, raw, g.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidFederatedToken, err)
	}

	if payload.Audience != g.clientID {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidFederatedToken, ErrAudienceMismatch)
	}
	if !googleIssuers[payload.Issuer] {
		return nil, fmt.Errorf("%w: %w: %q", core.ErrInvalidFederatedToken, ErrIssuerMismatch, payload.Issuer)
	}
	if !g.now().Before(time.Unix(payload.Expires, 0)) {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidFederatedToken, ErrTokenExpired)
	}

	claims := &core.FederatedClaims{
		Subject: payload.Subject,
		Email:   stringClaim(payload.Claims, "email"),
		Name:    stringClaim(payload.Claims, "name"),
		Picture: stringClaim(payload.Claims, "picture"),
	}
	if claims.Subject == "" {
		claims.Subject = stringClaim(payload.Claims, "sub")
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidFederatedToken, ErrMissingClaim)
	}

	return claims, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
