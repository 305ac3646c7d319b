package roster

import (
	"fmt"
	"time"

	"github.com/lborres/roster/core"
	"github.com/lborres/roster/pkg/crypto"
	"github.com/lborres/roster/services"
)

// interfaces
type (
	StorageAdapter    = core.StorageAdapter
	HTTPAdapter       = core.HTTPAdapter
	PasswordHandler   = core.PasswordHandler
	FederatedVerifier = core.FederatedVerifier
)

// structs
type (
	SessionConfig = core.SessionConfig
	User          = core.User
	UserProfile   = core.UserProfile
	Student       = core.Student
	StudentPatch  = core.StudentPatch
	Identity      = core.Identity
	AuthResult    = core.AuthResult
	SessionData   = core.SessionData
)

const (
	defaultBasePath  = "/api"
	defaultSecretLen = 32
	defaultMaxAge    = 24 * time.Hour
	defaultIssuer    = "roster"
)

// Constructors & helpers (convenience re-exports)
var (
	NewArgon2 = crypto.NewArgon2
	NewBcrypt = crypto.NewBcrypt
)

var (
	ErrDuplicateIdentity     = core.ErrDuplicateIdentity
	ErrUserNotFound          = core.ErrUserNotFound
	ErrWrongProvider         = core.ErrWrongProvider
	ErrBadCredential         = core.ErrBadCredential
	ErrInvalidFederatedToken = core.ErrInvalidFederatedToken
)

var (
	ErrMissingCredential = core.ErrMissingCredential
	ErrInvalidSession    = core.ErrInvalidSession
	ErrRecordNotFound    = core.ErrRecordNotFound
)

var (
	ErrStorageRequired = core.ErrStorageRequired
	ErrSecretRequired  = core.ErrSecretRequired
	ErrSecretTooShort  = core.ErrSecretTooShort
	ErrNotImplemented  = core.ErrNotImplemented
)

type Config struct {
	// Secret signs session tokens. At least 32 characters.
	Secret string

	Storage StorageAdapter

	// HTTP, when set, gets every endpoint mounted under BasePath.
	HTTP HTTPAdapter

	// PasswordHasher defaults to Argon2id. Stored bcrypt digests still
	// verify whichever hasher is chosen.
	PasswordHasher PasswordHandler

	// Google enables Google sign-in. Nil answers that endpoint with 501.
	Google FederatedVerifier

	SessionConfig *SessionConfig
	BasePath      string
}

// Roster wires the services together. Adapters reach it only through the
// core ports it exposes.
type Roster struct {
	Auth     *services.AuthService
	Students *services.StudentService
	Sessions *services.SessionManager
	Gate     *services.Gate
	BasePath string
}

func New(config Config) (*Roster, error) {
	if config.Secret == "" {
		return nil, ErrSecretRequired
	}
	if len(config.Secret) < defaultSecretLen {
		return nil, fmt.Errorf("%w - minimum of %d characters", ErrSecretTooShort, defaultSecretLen)
	}
	if config.Storage == nil {
		return nil, ErrStorageRequired
	}

	// Set Defaults

	sessionConfig := SessionConfig{MaxAge: defaultMaxAge, Issuer: defaultIssuer}
	if config.SessionConfig != nil {
		if config.SessionConfig.MaxAge > 0 {
			sessionConfig.MaxAge = config.SessionConfig.MaxAge
		}
		if config.SessionConfig.Issuer != "" {
			sessionConfig.Issuer = config.SessionConfig.Issuer
		}
	}

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = crypto.NewArgon2()
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}

	sessions := services.NewSessionManager(config.Secret, sessionConfig)
	r := &Roster{
		Auth:     services.NewAuthService(config.Storage, crypto.NewDetecting(passwordHasher), sessions, config.Google),
		Students: services.NewStudentService(config.Storage),
		Sessions: sessions,
		Gate:     services.NewGate(sessions),
		BasePath: basePath,
	}

	if config.HTTP != nil {
		app := core.App{
			Auth:       r.Auth,
			Authorizer: r.Gate,
			Students:   r.Students,
			Storage:    config.Storage,
			Endpoints:  services.NewEndpointRegistry().Endpoints(),
		}
		if err := config.HTTP.RegisterRoutes(app, basePath); err != nil {
			return nil, err
		}
	}

	return r, nil
}
