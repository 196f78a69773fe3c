package cache

import (
	"context"
	"fmt"
	"time"
)

// Counter increments a key that expires after ttl.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// FixedWindow allows at most limit hits per key in each window.
type FixedWindow struct {
	counter Counter
	limit   int
	window  time.Duration
	prefix  string
	now     func() time.Time
}

func NewFixedWindow(counter Counter, prefix string, limit int, window time.Duration) *FixedWindow {
	if window <= 0 {
		window = time.Minute
	}
	return &FixedWindow{
		counter: counter,
		limit:   limit,
		window:  window,
		prefix:  prefix,
		now:     time.Now,
	}
}

// Allow records one hit for key and reports whether it is within the limit.
// A non-positive limit disables limiting.
func (l *FixedWindow) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}
	slot := l.now().UnixNano() / int64(l.window)
	n, err := l.counter.Incr(ctx, fmt.Sprintf("%s:%s:%d", l.prefix, key, slot), l.window)
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return n <= int64(l.limit), nil
}
