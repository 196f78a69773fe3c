package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCounter struct {
	counts map[string]int64
	ttls   map[string]time.Duration
	err    error
}

func newMemCounter() *memCounter {
	return &memCounter{counts: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (m *memCounter) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.counts[key]++
	m.ttls[key] = ttl
	return m.counts[key], nil
}

func TestFixedWindow(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("limit per key per window", func(t *testing.T) {
		counter := newMemCounter()
		l := NewFixedWindow(counter, "upload", 2, time.Minute)
		l.now = func() time.Time { return base }

		for i, want := range []bool{true, true, false} {
			ok, err := l.Allow(ctx, "10.0.0.1")
			require.NoError(t, err)
			assert.Equal(t, want, ok, "hit %d", i+1)
		}

		ok, err := l.Allow(ctx, "10.0.0.2")
		require.NoError(t, err)
		assert.True(t, ok)

		l.now = func() time.Time { return base.Add(time.Minute) }
		ok, err = l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)

		for _, ttl := range counter.ttls {
			assert.Equal(t, time.Minute, ttl)
		}
	})

	t.Run("non positive limit disables limiting", func(t *testing.T) {
		counter := newMemCounter()
		l := NewFixedWindow(counter, "upload", 0, time.Minute)

		for range 5 {
			ok, err := l.Allow(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
		}
		assert.Empty(t, counter.counts)
	})

	t.Run("counter failure", func(t *testing.T) {
		counter := newMemCounter()
		counter.err = errors.New("redis down")
		l := NewFixedWindow(counter, "upload", 1, time.Minute)

		ok, err := l.Allow(ctx, "k")
		assert.False(t, ok)
		assert.ErrorContains(t, err, "redis down")
	})
}
