package lock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-content-watch/internal/watcher/lock"
)

func TestMemoryExecutionLock_AcquireAndRelease(t *testing.T) {
	l := lock.NewMemoryExecutionLock()
	ctx := context.Background()

	release, acquired, err := l.Acquire(ctx, 1)
	require.NoError(t, err)
	require.True(t, acquired)

	_, second, err := l.Acquire(ctx, 1)
	require.NoError(t, err)
	assert.False(t, second)

	_, other, err := l.Acquire(ctx, 2)
	require.NoError(t, err)
	assert.True(t, other)

	release()

	_, again, err := l.Acquire(ctx, 1)
	require.NoError(t, err)
	assert.True(t, again)
}
