package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lborres/roster/adapters/storagetests"
	"github.com/lborres/roster/core"
)

func TestMemoryAdapter(t *testing.T) {
	storagetests.Run(t, func() core.StorageAdapter {
		return New()
	})
}

func TestMemoryAdapter_ReturnsCopies(t *testing.T) {
	// Arrange
	ctx := context.Background()
	a := New()
	st := &core.Student{UserID: "owner", FirstName: "Ann"}
	require.NoError(t, a.CreateStudent(ctx, st))

	// Act
	list, err := a.ListStudents(ctx, "owner")
	require.NoError(t, err)
	list[0].FirstName = "Mutated"
	st.FirstName = "AlsoMutated"

	// Assert
	again, err := a.ListStudents(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, "Ann", again[0].FirstName)
}

func TestMemoryAdapter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New().Ping(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
