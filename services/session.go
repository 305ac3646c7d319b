package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lborres/roster/core"
)

// SessionManager mints and checks stateless HS256 session tokens. Nothing is
// persisted; a token lives until its exp claim.
type SessionManager struct {
	config core.SessionConfig
	secret []byte
	now    func() time.Time
}

func NewSessionManager(secret string, config core.SessionConfig) *SessionManager {
	return &SessionManager{config: config, secret: []byte(secret), now: time.Now}
}

// Issue returns a signed token for userID and the instant it stops being
// accepted.
func (sm *SessionManager) Issue(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("cannot issue a session without a subject")
	}

	// NumericDate has second precision; report the expiry the token carries.
	now := sm.now().Truncate(time.Second)
	expiresAt := now.Add(sm.config.MaxAge)

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    sm.config.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return token, expiresAt, nil
}

// Verify checks signature, algorithm, issuer and expiry. A token is accepted
// strictly before its exp. Every failure is core.ErrInvalidSession.
func (sm *SessionManager) Verify(token string) (core.Identity, error) {
	if token == "" {
		return core.Identity{}, core.ErrInvalidSession
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(sm.now),
	}
	if sm.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(sm.config.Issuer))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return sm.secret, nil
	}, opts...)
	if err != nil {
		return core.Identity{}, fmt.Errorf("%w: %w", core.ErrInvalidSession, err)
	}

	if claims.Subject == "" {
		return core.Identity{}, core.ErrInvalidSession
	}

	return core.Identity{UserID: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}
