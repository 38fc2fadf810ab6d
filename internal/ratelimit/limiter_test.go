package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rifatsekerariot/ariowan/internal/config"
)

func newTestLimiter(max int, window time.Duration) (*Limiter, *time.Time) {
	l := NewLimiter(&config.RateLimitConfig{MaxRequests: max, Window: config.Duration(window)})

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestAdmitWithinWindow(t *testing.T) {
	l, clock := newTestLimiter(2, time.Second)

	assert.True(t, l.Admit("10.0.0.1"))
	assert.True(t, l.Admit("10.0.0.1"))
	assert.False(t, l.Admit("10.0.0.1"))

	// After the window passes, a slot frees up again.
	*clock = clock.Add(1100 * time.Millisecond)
	assert.True(t, l.Admit("10.0.0.1"))
}

func TestAdmitIsolatesIdentities(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	assert.True(t, l.Admit("a"))
	assert.False(t, l.Admit("a"))
	assert.True(t, l.Admit("b"))
}

func TestRemaining(t *testing.T) {
	l, clock := newTestLimiter(3, time.Minute)

	assert.Equal(t, 3, l.Remaining("a"))
	require.True(t, l.Admit("a"))
	require.True(t, l.Admit("a"))
	assert.Equal(t, 1, l.Remaining("a"))

	*clock = clock.Add(2 * time.Minute)
	assert.Equal(t, 3, l.Remaining("a"))
}

func TestRetryAfter(t *testing.T) {
	l, clock := newTestLimiter(1, time.Minute)

	assert.Zero(t, l.RetryAfter("a"))
	require.True(t, l.Admit("a"))
	assert.Equal(t, time.Minute, l.RetryAfter("a"))

	*clock = clock.Add(40 * time.Second)
	assert.Equal(t, 20*time.Second, l.RetryAfter("a"))
}

func TestSweepDropsIdleIdentities(t *testing.T) {
	l, clock := newTestLimiter(5, time.Second)

	require.True(t, l.Admit("a"))
	require.True(t, l.Admit("b"))
	assert.Len(t, l.buckets, 2)

	*clock = clock.Add(2 * time.Second)
	require.True(t, l.Admit("b"))

	l.Sweep()
	assert.Len(t, l.buckets, 1)
	assert.Contains(t, l.buckets, "b")
}

func TestConcurrentAdmitAndSweep(t *testing.T) {
	l := NewLimiter(&config.RateLimitConfig{MaxRequests: 1000, Window: config.Duration(time.Minute)})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.Admit("shared")
				l.Remaining("shared")
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			l.Sweep()
		}
	}()
	wg.Wait()

	// 8 goroutines x 100 admits, all inside the window and under the cap.
	assert.Equal(t, 1000-800, l.Remaining("shared"))
}
