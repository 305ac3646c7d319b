// Package memory is an in-process core.StorageAdapter. Data lives as long as
// the process does.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lborres/roster/core"
	"github.com/lborres/roster/pkg/crypto"
)

type Adapter struct {
	mu       sync.RWMutex
	users    map[string]*core.User
	byEmail  map[string]string
	students map[string]*core.Student
	order    []string // student ids in insertion order
	now      func() time.Time
}

var _ core.StorageAdapter = (*Adapter)(nil)

func New() *Adapter {
	return &Adapter{
		users:    make(map[string]*core.User),
		byEmail:  make(map[string]string),
		students: make(map[string]*core.Student),
		now:      time.Now,
	}
}

func (a *Adapter) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (a *Adapter) CreateUser(ctx context.Context, u *core.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, taken := a.byEmail[u.Email]; taken {
		return core.ErrDuplicateIdentity
	}

	id, err := crypto.NewID()
	if err != nil {
		return fmt.Errorf("failed to generate user id: %w", err)
	}

	now := a.now().UTC()
	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now

	a.users[id] = cloneUser(u)
	a.byEmail[u.Email] = id
	return nil
}

func (a *Adapter) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	u, ok := a.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	id, ok := a.byEmail[email]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return cloneUser(a.users[id]), nil
}

func (a *Adapter) SetGoogleID(ctx context.Context, userID, googleID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	u, ok := a.users[userID]
	if !ok {
		return core.ErrUserNotFound
	}
	u.GoogleID = &googleID
	u.UpdatedAt = a.now().UTC()
	return nil
}

func (a *Adapter) CreateStudent(ctx context.Context, s *core.Student) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id, err := crypto.NewID()
	if err != nil {
		return fmt.Errorf("failed to generate student id: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now().UTC()
	s.ID = id
	s.CreatedAt = now
	s.UpdatedAt = now

	a.students[id] = cloneStudent(s)
	a.order = append(a.order, id)
	return nil
}

func (a *Adapter) ListStudents(ctx context.Context, ownerID string) ([]*core.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	result := []*core.Student{}
	for _, id := range a.order {
		s, ok := a.students[id]
		if ok && s.UserID == ownerID {
			result = append(result, cloneStudent(s))
		}
	}
	return result, nil
}

func (a *Adapter) UpdateStudent(ctx context.Context, id, ownerID string, patch core.StudentPatch) (*core.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.students[id]
	if !ok || s.UserID != ownerID {
		return nil, core.ErrRecordNotFound
	}

	patch.Apply(s)
	s.UpdatedAt = a.now().UTC()
	return cloneStudent(s), nil
}

func (a *Adapter) DeleteStudent(ctx context.Context, id, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.students[id]
	if !ok || s.UserID != ownerID {
		return core.ErrRecordNotFound
	}

	delete(a.students, id)
	for i, candidate := range a.order {
		if candidate == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return nil
}

func cloneUser(u *core.User) *core.User {
	c := *u
	c.PasswordHash = cloneString(u.PasswordHash)
	c.GoogleID = cloneString(u.GoogleID)
	c.Picture = cloneString(u.Picture)
	return &c
}

func cloneStudent(s *core.Student) *core.Student {
	c := *s
	if s.AdmissionDate != nil {
		d := *s.AdmissionDate
		c.AdmissionDate = &d
	}
	if s.GPA != nil {
		g := *s.GPA
		c.GPA = &g
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
