package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDisplayMirrorContract runs a suite of tests to verify that a DisplayMirror implementation
// adheres to the defined interface contract.
func RunDisplayMirrorContract(t *testing.T, mirror DisplayMirror) {
	ctx := context.Background()

	t.Run("Notify and Read Back", func(t *testing.T) {
		require.NoError(t, mirror.Notify(ctx, "sum", 2))
		require.NoError(t, mirror.Notify(ctx, "other", -1.5))

		values, err := mirror.Values(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2.0, values["sum"])
		assert.Equal(t, -1.5, values["other"])
	})

	t.Run("Last Write Wins", func(t *testing.T) {
		require.NoError(t, mirror.Notify(ctx, "sum", 2))
		require.NoError(t, mirror.Notify(ctx, "sum", 6))

		values, err := mirror.Values(ctx)
		require.NoError(t, err)
		assert.Equal(t, 6.0, values["sum"])
	})

	t.Run("Forget", func(t *testing.T) {
		require.NoError(t, mirror.Notify(ctx, "gone", 1))
		require.NoError(t, mirror.Forget(ctx, "gone"))

		values, err := mirror.Values(ctx)
		require.NoError(t, err)
		_, exists := values["gone"]
		assert.False(t, exists)

		assert.NoError(t, mirror.Forget(ctx, "never-seen"), "forgetting an unknown node is a no-op")
	})
}
