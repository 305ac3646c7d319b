// Package storagetests provides common acceptance tests for
// core.StorageAdapter implementations.
package storagetests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lborres/roster/core"
)

func strPtr(s string) *string {
	return &s
}

func localUser(email string) *core.User {
	return &core.User{
		Email:        email,
		PasswordHash: strPtr("$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA"),
		Name:         "Local " + email,
		AuthProvider: core.ProviderLocal,
	}
}

func googleUser(email, subject string) *core.User {
	return &core.User{
		Email:        email,
		GoogleID:     strPtr(subject),
		Name:         "Google " + email,
		Picture:      strPtr("https://example.com/p.png"),
		AuthProvider: core.ProviderGoogle,
	}
}

func mustCreateUser(t *testing.T, s core.StorageAdapter, u *core.User) *core.User {
	t.Helper()
	require.NoError(t, s.CreateUser(context.Background(), u))
	require.NotEmpty(t, u.ID)
	return u
}

func mustCreateStudent(t *testing.T, s core.StorageAdapter, owner, first string) *core.Student {
	t.Helper()
	st := &core.Student{UserID: owner, FirstName: first, LastName: "Doe", Email: first + "@school.test"}
	require.NoError(t, s.CreateStudent(context.Background(), st))
	require.NotEmpty(t, st.ID)
	return st
}

// Run exercises newStore against the storage contract. Each subtest gets its
// own store.
func Run(t *testing.T, newStore func() core.StorageAdapter) {
	ctx := context.Background()

	t.Run("Ping", func(t *testing.T) {
		s := newStore()
		assert.NoError(t, s.Ping(ctx))
	})

	t.Run("CreateUserRoundTrip", func(t *testing.T) {
		s := newStore()
		u := mustCreateUser(t, s, localUser("alice@example.com"))
		assert.False(t, u.CreatedAt.IsZero(), "CreatedAt should be set")

		byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)
		assert.Equal(t, core.ProviderLocal, byEmail.AuthProvider)
		require.NotNil(t, byEmail.PasswordHash)
		assert.Equal(t, *u.PasswordHash, *byEmail.PasswordHash)
		assert.Nil(t, byEmail.GoogleID)
		assert.Nil(t, byEmail.Picture)

		byID, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", byID.Email)
		assert.Equal(t, u.Name, byID.Name)
	})

	t.Run("CreateGoogleUserRoundTrip", func(t *testing.T) {
		s := newStore()
		u := mustCreateUser(t, s, googleUser("bob@example.com", "g-1"))

		got, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, core.ProviderGoogle, got.AuthProvider)
		assert.Nil(t, got.PasswordHash)
		require.NotNil(t, got.GoogleID)
		assert.Equal(t, "g-1", *got.GoogleID)
		require.NotNil(t, got.Picture)
		assert.Equal(t, "https://example.com/p.png", *got.Picture)
	})

	t.Run("UserNotFound", func(t *testing.T) {
		s := newStore()
		_, err := s.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, core.ErrUserNotFound)
		_, err = s.GetUserByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, core.ErrUserNotFound)
		_, err = s.GetUserByID(ctx, "not-an-id")
		assert.ErrorIs(t, err, core.ErrUserNotFound)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		s := newStore()
		mustCreateUser(t, s, localUser("alice@example.com"))
		err := s.CreateUser(ctx, googleUser("alice@example.com", "g-2"))
		assert.ErrorIs(t, err, core.ErrDuplicateIdentity)
	})

	t.Run("EmailIsCaseSensitive", func(t *testing.T) {
		s := newStore()
		upper := mustCreateUser(t, s, localUser("Alice@X.com"))
		lower := mustCreateUser(t, s, localUser("alice@x.com"))
		assert.NotEqual(t, upper.ID, lower.ID)

		got, err := s.GetUserByEmail(ctx, "Alice@X.com")
		require.NoError(t, err)
		assert.Equal(t, upper.ID, got.ID)
		assert.Equal(t, "Alice@X.com", got.Email)

		_, err = s.GetUserByEmail(ctx, "ALICE@X.COM")
		assert.ErrorIs(t, err, core.ErrUserNotFound)
	})

	t.Run("ConcurrentDuplicateEmail", func(t *testing.T) {
		s := newStore()
		const n = 6
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = s.CreateUser(ctx, localUser("race@example.com"))
			}(i)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, core.ErrDuplicateIdentity)
		}
		assert.Equal(t, 1, wins)
	})

	t.Run("SetGoogleID", func(t *testing.T) {
		s := newStore()
		u := googleUser("bob@example.com", "")
		u.GoogleID = nil
		mustCreateUser(t, s, u)

		require.NoError(t, s.SetGoogleID(ctx, u.ID, "g-9"))

		got, err := s.GetUserByEmail(ctx, "bob@example.com")
		require.NoError(t, err)
		require.NotNil(t, got.GoogleID)
		assert.Equal(t, "g-9", *got.GoogleID)

		assert.ErrorIs(t, s.SetGoogleID(ctx, "missing-user", "g-9"), core.ErrUserNotFound)
	})

	t.Run("StudentRoundTrip", func(t *testing.T) {
		s := newStore()
		owner := mustCreateUser(t, s, localUser("alice@example.com"))
		admitted := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
		gpa := 3.75
		st := &core.Student{
			UserID:           owner.ID,
			FirstName:        "Ann",
			LastName:         "Lee",
			Email:            "ann@school.test",
			Phone:            "555-0100",
			Address:          "1 Main St",
			Course:           "Maths",
			AdmissionDate:    &admitted,
			GPA:              &gpa,
			Gender:           "female",
			EmergencyContact: "Mum",
		}
		require.NoError(t, s.CreateStudent(ctx, st))
		require.NotEmpty(t, st.ID)

		list, err := s.ListStudents(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		got := list[0]
		assert.Equal(t, st.ID, got.ID)
		assert.Equal(t, owner.ID, got.UserID)
		assert.Equal(t, "Ann", got.FirstName)
		assert.Equal(t, "Lee", got.LastName)
		assert.Equal(t, "ann@school.test", got.Email)
		assert.Equal(t, "555-0100", got.Phone)
		assert.Equal(t, "1 Main St", got.Address)
		assert.Equal(t, "Maths", got.Course)
		assert.Equal(t, "female", got.Gender)
		assert.Equal(t, "Mum", got.EmergencyContact)
		require.NotNil(t, got.AdmissionDate)
		assert.True(t, admitted.Equal(*got.AdmissionDate), "AdmissionDate = %v", got.AdmissionDate)
		require.NotNil(t, got.GPA)
		assert.InDelta(t, 3.75, *got.GPA, 1e-9)
	})

	t.Run("StudentOptionalFieldsStayEmpty", func(t *testing.T) {
		s := newStore()
		owner := mustCreateUser(t, s, localUser("alice@example.com"))
		mustCreateStudent(t, s, owner.ID, "Ann")

		list, err := s.ListStudents(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Nil(t, list[0].AdmissionDate)
		assert.Nil(t, list[0].GPA)
	})

	t.Run("ListIsOwnerScopedAndOrdered", func(t *testing.T) {
		s := newStore()
		alice := mustCreateUser(t, s, localUser("alice@example.com"))
		bob := mustCreateUser(t, s, localUser("bob@example.com"))
		mustCreateStudent(t, s, alice.ID, "A")
		mustCreateStudent(t, s, bob.ID, "X")
		mustCreateStudent(t, s, alice.ID, "B")
		mustCreateStudent(t, s, alice.ID, "C")

		list, err := s.ListStudents(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, list, 3)
		for i, want := range []string{"A", "B", "C"} {
			assert.Equal(t, want, list[i].FirstName)
			assert.Equal(t, alice.ID, list[i].UserID)
		}

		empty, err := s.ListStudents(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("UpdateStudent", func(t *testing.T) {
		s := newStore()
		owner := mustCreateUser(t, s, localUser("alice@example.com"))
		st := mustCreateStudent(t, s, owner.ID, "Ann")
		course := "Physics"
		gpa := core.FlexFloat{Float: 3.1, Valid: true}

		updated, err := s.UpdateStudent(ctx, st.ID, owner.ID, core.StudentPatch{Course: &course, GPA: &gpa})
		require.NoError(t, err)
		assert.Equal(t, "Physics", updated.Course)
		assert.Equal(t, "Ann", updated.FirstName)
		require.NotNil(t, updated.GPA)
		assert.InDelta(t, 3.1, *updated.GPA, 1e-9)
		assert.Equal(t, owner.ID, updated.UserID)

		list, err := s.ListStudents(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Physics", list[0].Course)

		cleared := core.FlexFloat{}
		updated, err = s.UpdateStudent(ctx, st.ID, owner.ID, core.StudentPatch{GPA: &cleared})
		require.NoError(t, err)
		assert.Nil(t, updated.GPA)
	})

	t.Run("UpdateStudentScopedToOwner", func(t *testing.T) {
		s := newStore()
		alice := mustCreateUser(t, s, localUser("alice@example.com"))
		bob := mustCreateUser(t, s, localUser("bob@example.com"))
		st := mustCreateStudent(t, s, alice.ID, "Ann")
		course := "Hijacked"

		_, err := s.UpdateStudent(ctx, st.ID, bob.ID, core.StudentPatch{Course: &course})
		assert.ErrorIs(t, err, core.ErrRecordNotFound)

		_, err = s.UpdateStudent(ctx, "missing", alice.ID, core.StudentPatch{Course: &course})
		assert.ErrorIs(t, err, core.ErrRecordNotFound)

		list, err := s.ListStudents(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Empty(t, list[0].Course)
	})

	t.Run("DeleteStudent", func(t *testing.T) {
		s := newStore()
		alice := mustCreateUser(t, s, localUser("alice@example.com"))
		bob := mustCreateUser(t, s, localUser("bob@example.com"))
		st := mustCreateStudent(t, s, alice.ID, "Ann")

		err := s.DeleteStudent(ctx, st.ID, bob.ID)
		assert.ErrorIs(t, err, core.ErrRecordNotFound)

		require.NoError(t, s.DeleteStudent(ctx, st.ID, alice.ID))

		err = s.DeleteStudent(ctx, st.ID, alice.ID)
		assert.True(t, errors.Is(err, core.ErrRecordNotFound), "second delete: %v", err)

		list, err := s.ListStudents(ctx, alice.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
