package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lborres/roster/core"
	"github.com/lborres/roster/pkg/logging"
)

const maxPasswordBytes = 256

type AuthService struct {
	db             core.UserStorage
	passwordHasher core.PasswordHandler
	sessionManager *SessionManager
	google         core.FederatedVerifier // nil when Google sign-in is not configured
}

// Ensure AuthService implements AuthHandler
var _ core.AuthHandler = (*AuthService)(nil)

func NewAuthService(db core.UserStorage, passwordHasher core.PasswordHandler, sessionManager *SessionManager, google core.FederatedVerifier) *AuthService {
	return &AuthService{
		db:             db,
		passwordHasher: passwordHasher,
		sessionManager: sessionManager,
		google:         google,
	}
}

// Register creates a local account and signs it in
func (s *AuthService) Register(ctx context.Context, input core.RegisterInput) (*core.AuthResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	// Step 1: Hash the password
	hashedPassword, err := s.passwordHasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Step 2: Create the user. The store's unique email index decides
	// duplicates, so there is no separate existence check to race against.
	user := &core.User{
		Email:        email,
		PasswordHash: &hashedPassword,
		Name:         strings.TrimSpace(input.Name),
		AuthProvider: core.ProviderLocal,
	}
	if err := s.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateIdentity) {
			return nil, core.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logging.FromContext(ctx).Info("user registered", zap.String("user_id", user.ID))

	// Step 3: Sign the new user in
	return s.signIn(user)
}

// Login authenticates a local account with email and password
func (s *AuthService) Login(ctx context.Context, input core.LoginInput) (*core.AuthResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, core.ErrPasswordRequired
	}

	// Step 1: Find the user by email
	user, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	// Step 2: Federated accounts have no password to check
	if user.AuthProvider != core.ProviderLocal || user.PasswordHash == nil {
		return nil, core.ErrWrongProvider
	}

	// Step 3: Verify the password
	if !s.passwordHasher.Verify(input.Password, *user.PasswordHash) {
		return nil, core.ErrBadCredential
	}

	return s.signIn(user)
}

// LoginWithGoogle signs in with a Google ID token, provisioning an account on
// first use. An email already owned by a local account is never merged.
func (s *AuthService) LoginWithGoogle(ctx context.Context, rawToken string) (*core.AuthResult, error) {
	if s.google == nil {
		return nil, core.ErrNotImplemented
	}
	if rawToken == "" {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidFederatedToken, core.ErrTokenRequired)
	}

	// Step 1: Verify the token
	claims, err := s.google.Verify(ctx, rawToken)
	if err != nil {
		logging.FromContext(ctx).Warn("google token rejected", zap.Error(err))
		if errors.Is(err, core.ErrInvalidFederatedToken) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidFederatedToken, err)
	}

	email, err := normalizeEmail(claims.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidFederatedToken, err)
	}

	// Step 2: Find or provision the user. A lost race on the unique email
	// index falls back to the lookup once.
	for attempt := 0; attempt < 2; attempt++ {
		user, err := s.db.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			if err := s.linkGoogle(ctx, user, claims.Subject); err != nil {
				return nil, err
			}
			return s.signIn(user)
		case !errors.Is(err, core.ErrUserNotFound):
			return nil, fmt.Errorf("failed to find user: %w", err)
		}

		user = newGoogleUser(email, claims)
		err = s.db.CreateUser(ctx, user)
		if err == nil {
			logging.FromContext(ctx).Info("google user provisioned", zap.String("user_id", user.ID))
			return s.signIn(user)
		}
		if !errors.Is(err, core.ErrDuplicateIdentity) {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	return nil, core.ErrDuplicateIdentity
}

// Session returns the profile behind an authenticated identity
func (s *AuthService) Session(ctx context.Context, caller core.Identity) (*core.SessionData, error) {
	if caller.UserID == "" {
		return nil, core.ErrInvalidSession
	}

	user, err := s.db.GetUserByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &core.SessionData{
		User:      user.Profile(),
		ExpiresAt: caller.ExpiresAt,
	}, nil
}

func (s *AuthService) linkGoogle(ctx context.Context, user *core.User, subject string) error {
	if user.AuthProvider != core.ProviderGoogle {
		return core.ErrWrongProvider
	}

	if user.GoogleID == nil || *user.GoogleID == "" {
		if err := s.db.SetGoogleID(ctx, user.ID, subject); err != nil {
			return fmt.Errorf("failed to link google account: %w", err)
		}
		user.GoogleID = &subject
		return nil
	}

	if *user.GoogleID != subject {
		return fmt.Errorf("%w: subject does not match linked account", core.ErrInvalidFederatedToken)
	}
	return nil
}

func (s *AuthService) signIn(user *core.User) (*core.AuthResult, error) {
	token, expiresAt, err := s.sessionManager.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &core.AuthResult{
		Token:     token,
		User:      user.Profile(),
		ExpiresAt: expiresAt,
	}, nil
}

func newGoogleUser(email string, claims *core.FederatedClaims) *core.User {
	subject := claims.Subject
	user := &core.User{
		Email:        email,
		GoogleID:     &subject,
		Name:         claims.Name,
		AuthProvider: core.ProviderGoogle,
	}
	if user.Name == "" {
		user.Name = email
	}
	if claims.Picture != "" {
		picture := claims.Picture
		user.Picture = &picture
	}
	return user
}

// normalizeEmail trims an address and checks it has the local@domain shape.
// Case is kept: the email is a case-sensitive key.
func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", core.ErrEmailRequired
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.Count(email, "@") != 1 {
		return "", core.ErrInvalidEmail
	}
	return email, nil
}

func validatePassword(password string) error {
	if password == "" {
		return core.ErrPasswordRequired
	}
	if len(password) > maxPasswordBytes {
		return core.ErrPasswordTooLong
	}
	return nil
}
