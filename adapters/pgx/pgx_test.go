package pgx

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lborres/roster/adapters/storagetests"
	"github.com/lborres/roster/core"
)

// Runs only against a disposable database named by ROSTER_TEST_DATABASE_URL;
// every subtest truncates both tables.
func TestPgxAdapter(t *testing.T) {
	dsn := os.Getenv("ROSTER_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("ROSTER_TEST_DATABASE_URL not set, skipping PostgreSQL tests")
	}

	ctx := context.Background()
	pool, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	a := New(pool)
	require.NoError(t, a.Migrate(ctx))

	storagetests.Run(t, func() core.StorageAdapter {
		_, err := pool.Exec(ctx, `TRUNCATE public.students, public.users`)
		require.NoError(t, err)
		return a
	})

	t.Run("DeletingOwnerDoesNotCascade", func(t *testing.T) {
		_, err := pool.Exec(ctx, `TRUNCATE public.students, public.users`)
		require.NoError(t, err)
		owner := &core.User{Email: "owner@example.com", AuthProvider: core.ProviderLocal}
		require.NoError(t, a.CreateUser(ctx, owner))
		require.NoError(t, a.CreateStudent(ctx, &core.Student{UserID: owner.ID, FirstName: "Jo"}))

		_, err = pool.Exec(ctx, `DELETE FROM public.users WHERE id = $1`, owner.ID)

		require.Error(t, err)
		list, err := a.ListStudents(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
	})
}

func TestIsUniqueViolation(t *testing.T) {
	require.False(t, isUniqueViolation(nil))
	require.False(t, isUniqueViolation(context.Canceled))
}
