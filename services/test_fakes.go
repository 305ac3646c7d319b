package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lborres/roster/core"
)

// FakeStorage is a test-only fake implementing core.StorageAdapter.
// It keeps users and students in maps and exposes error fields for behavior
// injection.
type FakeStorage struct {
	mu       sync.RWMutex
	users    map[string]*core.User
	students map[string]*core.Student
	order    []string
	seq      int

	createUserErr    error
	getUserErr       error
	setGoogleIDErr   error
	createStudentErr error
	listStudentsErr  error
	pingErr          error

	setGoogleIDCalls int
}

var _ core.StorageAdapter = (*FakeStorage)(nil)

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{
		users:    make(map[string]*core.User),
		students: make(map[string]*core.Student),
	}
}

func (f *FakeStorage) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

// UserStorage implementation
func (f *FakeStorage) CreateUser(_ context.Context, u *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createUserErr != nil {
		return f.createUserErr
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return core.ErrDuplicateIdentity
		}
	}
	if u.ID == "" {
		u.ID = f.nextID("user")
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	stored := *u
	f.users[u.ID] = &stored
	return nil
}

func (f *FakeStorage) GetUserByID(_ context.Context, id string) (*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	if u, ok := f.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, core.ErrUserNotFound
}

func (f *FakeStorage) GetUserByEmail(_ context.Context, email string) (*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, core.ErrUserNotFound
}

func (f *FakeStorage) SetGoogleID(_ context.Context, userID, googleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setGoogleIDCalls++
	if f.setGoogleIDErr != nil {
		return f.setGoogleIDErr
	}
	u, ok := f.users[userID]
	if !ok {
		return core.ErrUserNotFound
	}
	u.GoogleID = &googleID
	return nil
}

// StudentStorage implementation
func (f *FakeStorage) CreateStudent(_ context.Context, s *core.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createStudentErr != nil {
		return f.createStudentErr
	}
	s.ID = f.nextID("student")
	now := time.Now()
	s.CreatedAt, s.UpdatedAt = now, now
	stored := *s
	f.students[s.ID] = &stored
	f.order = append(f.order, s.ID)
	return nil
}

func (f *FakeStorage) ListStudents(_ context.Context, ownerID string) ([]*core.Student, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.listStudentsErr != nil {
		return nil, f.listStudentsErr
	}
	var result []*core.Student
	for _, id := range f.order {
		if s, ok := f.students[id]; ok && s.UserID == ownerID {
			clone := *s
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (f *FakeStorage) UpdateStudent(_ context.Context, id, ownerID string, patch core.StudentPatch) (*core.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[id]
	if !ok || s.UserID != ownerID {
		return nil, core.ErrRecordNotFound
	}
	patch.Apply(s)
	s.UpdatedAt = time.Now()
	clone := *s
	return &clone, nil
}

func (f *FakeStorage) DeleteStudent(_ context.Context, id, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[id]
	if !ok || s.UserID != ownerID {
		return core.ErrRecordNotFound
	}
	delete(f.students, id)
	return nil
}

func (f *FakeStorage) Ping(context.Context) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.pingErr
}

// Test helper methods

// SetPingError makes every later Ping return err.
func (f *FakeStorage) SetPingError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingErr = err
}

func (f *FakeStorage) UserCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.users)
}

func (f *FakeStorage) StudentCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.students)
}

// FakeVerifier is a test-only fake implementing core.FederatedVerifier.
// Tokens map to claims; unknown tokens fail like a rejected signature.
type FakeVerifier struct {
	mu     sync.Mutex
	tokens map[string]*core.FederatedClaims
	calls  int
}

var _ core.FederatedVerifier = (*FakeVerifier)(nil)

func NewFakeVerifier() *FakeVerifier {
	return &FakeVerifier{tokens: make(map[string]*core.FederatedClaims)}
}

func (f *FakeVerifier) Add(token string, claims core.FederatedClaims) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = &claims
}

func (f *FakeVerifier) Verify(_ context.Context, raw string) (*core.FederatedClaims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	claims, ok := f.tokens[raw]
	if !ok {
		return nil, fmt.Errorf("%w: unknown token", core.ErrInvalidFederatedToken)
	}
	clone := *claims
	return &clone, nil
}
