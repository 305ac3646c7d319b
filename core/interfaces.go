package core

import (
	"context"
	"time"
)

// Ports define interfaces for external dependencies

// ============================================
// STORAGE PORTS (Database operations)
// ============================================

// UserStorage is the credential store. Email is the unique key; CreateUser
// must fail with ErrDuplicateIdentity when the email is taken, and the store
// itself is the arbiter of that uniqueness.
type UserStorage interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// SetGoogleID backfills the federated subject of an existing user.
	SetGoogleID(ctx context.Context, userID, googleID string) error
}

// StudentStorage persists student records. Every method that addresses a
// single record matches on both the record id and the owner id, and returns
// ErrRecordNotFound when nothing matches.
type StudentStorage interface {
	CreateStudent(ctx context.Context, s *Student) error
	ListStudents(ctx context.Context, ownerID string) ([]*Student, error)
	UpdateStudent(ctx context.Context, id, ownerID string, patch StudentPatch) (*Student, error)
	DeleteStudent(ctx context.Context, id, ownerID string) error
}

type StorageAdapter interface {
	UserStorage
	StudentStorage

	Ping(ctx context.Context) error
}

// ============================================
// CRYPTO PORTS
// ============================================

// PasswordHandler hashes and verifies local passwords
type PasswordHandler interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// FederatedVerifier validates a third-party identity token
type FederatedVerifier interface {
	Verify(ctx context.Context, rawToken string) (*FederatedClaims, error)
}

// ============================================
// SERVICE PORTS (for HTTP adapters)
// ============================================

// AuthHandler provides authentication operations for HTTP adapters
type AuthHandler interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	LoginWithGoogle(ctx context.Context, rawToken string) (*AuthResult, error)
	Session(ctx context.Context, caller Identity) (*SessionData, error)
}

// Authorizer turns the raw Authorization header into an identity
type Authorizer interface {
	Authorize(authorizationHeader string) (Identity, error)
}

// StudentHandler provides owner-scoped record operations for HTTP adapters
type StudentHandler interface {
	Create(ctx context.Context, caller Identity, patch StudentPatch) (*Student, error)
	List(ctx context.Context, caller Identity) ([]*Student, error)
	Update(ctx context.Context, caller Identity, id string, patch StudentPatch) (*Student, error)
	Delete(ctx context.Context, caller Identity, id string) error
}

// ============================================
// HTTP PORT
// ============================================

type HTTPAdapter interface {
	RegisterRoutes(app App, basePath string) error
}

// App is what the root package hands to an HTTP adapter.
type App struct {
	Auth       AuthHandler
	Authorizer Authorizer
	Students   StudentHandler
	Storage    StorageAdapter
	Endpoints  []*Endpoint
}

// SessionConfig configures session tokens
type SessionConfig struct {
	MaxAge time.Duration
	Issuer string
}
