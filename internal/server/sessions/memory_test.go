package sessions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RevokeAndExpire(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	revoked, err := s.IsRevoked(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, "s1", time.Minute))

	revoked, err = s.IsRevoked(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = s.IsRevoked(ctx, "s2")
	assert.False(t, revoked)

	now = now.Add(time.Minute)
	revoked, err = s.IsRevoked(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Empty(t, s.revoked)
}

func TestMemoryStore_RevokeSweepsExpired(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Revoke(ctx, "old", time.Second))
	now = now.Add(2 * time.Second)
	require.NoError(t, s.Revoke(ctx, "new", time.Minute))

	assert.Len(t, s.revoked, 1)
	assert.NoError(t, s.Ping(ctx))
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Revoke(ctx, "s", time.Minute)
			_, _ = s.IsRevoked(ctx, "s")
		}()
	}
	wg.Wait()

	revoked, err := s.IsRevoked(ctx, "s")
	require.NoError(t, err)
	assert.True(t, revoked)
}
