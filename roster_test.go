package roster

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lborres/roster/core"
	"github.com/lborres/roster/services"
)

const testSecret = "01234567890123456789012345678901"

type recordingHTTP struct {
	app      core.App
	basePath string
	err      error
}

func (r *recordingHTTP) RegisterRoutes(app core.App, basePath string) error {
	r.app = app
	r.basePath = basePath
	return r.err
}

func TestNewShouldReturnErrSecretRequired(t *testing.T) {
	_, err := New(Config{Storage: services.NewFakeStorage()})
	if !errors.Is(err, ErrSecretRequired) {
		t.Fatalf("expected ErrSecretRequired, got %v", err)
	}
}

func TestNewShouldReturnErrSecretTooShort(t *testing.T) {
	cfg := Config{
		Secret:  "short-secret",
		Storage: services.NewFakeStorage(),
	}

	_, err := New(cfg)
	if !errors.Is(err, ErrSecretTooShort) {
		t.Fatalf("expected ErrSecretTooShort sentinel (errors.Is), got %v", err)
	}
	// Message should include the minimum length
	if !strings.Contains(err.Error(), "32") {
		t.Fatalf("expected error message to include minimum length, got %v", err)
	}
}

func TestNewShouldReturnErrStorageRequired(t *testing.T) {
	_, err := New(Config{Secret: testSecret})
	if !errors.Is(err, ErrStorageRequired) {
		t.Fatalf("expected ErrStorageRequired, got %v", err)
	}
}

func TestNewShouldApplyDefaults(t *testing.T) {
	// Arrange
	http := &recordingHTTP{}

	// Act
	r, err := New(Config{Secret: testSecret, Storage: services.NewFakeStorage(), HTTP: http})

	// Assert
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if r.BasePath != "/api" || http.basePath != "/api" {
		t.Errorf("BasePath = %q / %q, want /api", r.BasePath, http.basePath)
	}
	if len(http.app.Endpoints) != len(services.BaseEndpoints()) {
		t.Errorf("mounted %d endpoints, want %d", len(http.app.Endpoints), len(services.BaseEndpoints()))
	}
	if http.app.Auth == nil || http.app.Authorizer == nil || http.app.Students == nil || http.app.Storage == nil {
		t.Errorf("app is missing a service: %+v", http.app)
	}

	_, expiresAt, err := r.Sessions.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if ttl := time.Until(expiresAt); ttl < 23*time.Hour || ttl > 24*time.Hour {
		t.Errorf("default session lifetime = %v, want ~24h", ttl)
	}
}

func TestNewShouldHonourSessionConfig(t *testing.T) {
	r, err := New(Config{
		Secret:        testSecret,
		Storage:       services.NewFakeStorage(),
		SessionConfig: &SessionConfig{MaxAge: time.Hour},
		BasePath:      "/v1",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, expiresAt, _ := r.Sessions.Issue("user-1")
	if ttl := time.Until(expiresAt); ttl > time.Hour {
		t.Errorf("session lifetime = %v, want <= 1h", ttl)
	}
	if r.BasePath != "/v1" {
		t.Errorf("BasePath = %q, want /v1", r.BasePath)
	}
}

func TestNewShouldPropagateRouteErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(Config{Secret: testSecret, Storage: services.NewFakeStorage(), HTTP: &recordingHTTP{err: boom}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected route error, got %v", err)
	}
}

// Requirement: a session minted at registration is accepted by the gate and
// resolves to the registered user.
func TestNewServicesShareOneSessionKey(t *testing.T) {
	// Arrange
	r, err := New(Config{Secret: testSecret, Storage: services.NewFakeStorage(), PasswordHasher: NewBcrypt()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	result, err := r.Auth.Register(context.Background(), core.RegisterInput{Email: "a@b.co", Password: "secret"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Act
	identity, err := r.Gate.Authorize("Bearer " + result.Token)

	// Assert
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if identity.UserID != result.User.ID {
		t.Errorf("UserID = %q, want %q", identity.UserID, result.User.ID)
	}
}
