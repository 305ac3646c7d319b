package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lborres/roster/core"
)

const testSecret = "test-secret-that-is-at-least-32-bytes-long"

var testNow = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

func newTestSessionManager(now func() time.Time) *SessionManager {
	sm := NewSessionManager(testSecret, core.SessionConfig{MaxAge: 24 * time.Hour, Issuer: "roster"})
	sm.now = now
	return sm
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSessionManager_Issue(t *testing.T) {
	// Arrange
	sm := newTestSessionManager(fixedClock(testNow))

	// Act
	token, expiresAt, err := sm.Issue("user-1")

	// Assert
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}
	if len(strings.Split(token, ".")) != 3 {
		t.Errorf("Issue() token should be a compact JWS, got %q", token)
	}
	if want := testNow.Add(24 * time.Hour); !expiresAt.Equal(want) {
		t.Errorf("expiresAt = %v, want %v", expiresAt, want)
	}
}

func TestSessionManager_Issue_RequiresSubject(t *testing.T) {
	sm := newTestSessionManager(fixedClock(testNow))

	if _, _, err := sm.Issue(""); err == nil {
		t.Error("Issue() should fail without a user id")
	}
}

// Requirement: a token minted for a user verifies back to that user until the
// instant it expires, and not at or after it.
func TestSessionManager_Verify_Expiry(t *testing.T) {
	tests := []struct {
		name    string
		at      time.Time
		wantErr bool
	}{
		{name: "just issued", at: testNow},
		{name: "one second before expiry", at: testNow.Add(24*time.Hour - time.Second)},
		{name: "exactly at expiry", at: testNow.Add(24 * time.Hour), wantErr: true},
		{name: "after expiry", at: testNow.Add(25 * time.Hour), wantErr: true},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			token, _, err := newTestSessionManager(fixedClock(testNow)).Issue("user-1")
			if err != nil {
				t.Fatalf("Issue() error = %v", err)
			}
			verifier := newTestSessionManager(fixedClock(test.at))

			// Act
			identity, err := verifier.Verify(token)

			// Assert
			if test.wantErr {
				if !errors.Is(err, core.ErrInvalidSession) {
					t.Fatalf("Verify() error = %v, want ErrInvalidSession", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if identity.UserID != "user-1" {
				t.Errorf("UserID = %q, want user-1", identity.UserID)
			}
			if !identity.ExpiresAt.Equal(testNow.Add(24 * time.Hour)) {
				t.Errorf("ExpiresAt = %v", identity.ExpiresAt)
			}
		})
	}
}

func TestSessionManager_Verify_Rejects(t *testing.T) {
	sign := func(method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("SignedString() error = %v", err)
		}
		return token
	}
	valid := jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "roster",
		IssuedAt:  jwt.NewNumericDate(testNow),
		ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
	}
	withoutExp := valid
	withoutExp.ExpiresAt = nil
	withoutSub := valid
	withoutSub.Subject = ""
	otherIssuer := valid
	otherIssuer.Issuer = "someone-else"

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "malformed", token: "not.a.jwt"},
		{name: "garbage", token: "garbage"},
		{name: "wrong secret", token: sign(jwt.SigningMethodHS256, []byte("another-secret-that-is-32-bytes-long!!"), valid)},
		{name: "wrong algorithm", token: sign(jwt.SigningMethodHS512, []byte(testSecret), valid)},
		{name: "unsigned", token: sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid)},
		{name: "missing exp", token: sign(jwt.SigningMethodHS256, []byte(testSecret), withoutExp)},
		{name: "missing subject", token: sign(jwt.SigningMethodHS256, []byte(testSecret), withoutSub)},
		{name: "other issuer", token: sign(jwt.SigningMethodHS256, []byte(testSecret), otherIssuer)},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			sm := newTestSessionManager(fixedClock(testNow))

			// Act
			_, err := sm.Verify(test.token)

			// Assert
			if !errors.Is(err, core.ErrInvalidSession) {
				t.Errorf("Verify() error = %v, want ErrInvalidSession", err)
			}
		})
	}
}

func TestSessionManager_Verify_TamperedPayload(t *testing.T) {
	// Arrange
	sm := newTestSessionManager(fixedClock(testNow))
	token, _, _ := sm.Issue("user-1")
	other, _, _ := sm.Issue("user-2")
	parts := strings.Split(token, ".")
	otherParts := strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]

	// Act
	_, err := sm.Verify(forged)

	// Assert
	if !errors.Is(err, core.ErrInvalidSession) {
		t.Errorf("Verify() error = %v, want ErrInvalidSession", err)
	}
}
