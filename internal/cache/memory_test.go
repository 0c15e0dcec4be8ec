package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/pkg/platform/sentinel"
)

func TestMemory_TTL(t *testing.T) {
	now := time.Now()
	c := NewMemory().WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 60*time.Second))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	now = now.Add(61 * time.Second)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestMemory_DelPattern(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "projects:tenant:a", "v", time.Minute))
	require.NoError(t, c.Set(ctx, "tasks:tenant:a", "v", time.Minute))

	require.NoError(t, c.DelPattern(ctx, "projects:*"))

	_, err := c.Get(ctx, "projects:tenant:a")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	_, err = c.Get(ctx, "tasks:tenant:a")
	assert.NoError(t, err)
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = c.Set(ctx, "k", "v", time.Minute)
		}()
		go func() {
			defer wg.Done()
			_, _ = c.Get(ctx, "k")
		}()
	}
	wg.Wait()
}
