package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rifatsekerariot/ariowan/internal/config"
)

// Limiter is a sliding-window rate limiter keyed by caller identity.
// State is process-local; a single coarse lock covers all buckets,
// which is fine at webhook traffic rates.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string][]time.Time

	maxRequests int
	window      time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

// NewLimiter creates a limiter from configuration.
func NewLimiter(cfg *config.RateLimitConfig) *Limiter {
	return &Limiter{
		buckets:     make(map[string][]time.Time),
		maxRequests: cfg.MaxRequests,
		window:      cfg.Window.Std(),
		now:         time.Now,
	}
}

// Admit records and admits a request for identity if its window has
// room, otherwise rejects it. Never panics, never blocks on I/O.
func (l *Limiter) Admit(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bucket := l.evict(identity, now)

	if len(bucket) >= l.maxRequests {
		l.buckets[identity] = bucket
		return false
	}

	l.buckets[identity] = append(bucket, now)
	return true
}

// Remaining reports how many requests identity may still make in the
// current window.
func (l *Limiter) Remaining(identity string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket := l.evict(identity, l.now())
	l.buckets[identity] = bucket

	remaining := l.maxRequests - len(bucket)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// RetryAfter reports how long identity must wait for a slot to free up.
// Zero means a request would be admitted now.
func (l *Limiter) RetryAfter(identity string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bucket := l.evict(identity, now)
	l.buckets[identity] = bucket

	if len(bucket) < l.maxRequests {
		return 0
	}

	// Oldest timestamp leaves the window first.
	return bucket[0].Add(l.window).Sub(now)
}

// Limit returns the configured per-window maximum.
func (l *Limiter) Limit() int {
	return l.maxRequests
}

// Sweep evicts expired timestamps for all identities and drops
// identities left with empty buckets, bounding memory growth.
func (l *Limiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for identity := range l.buckets {
		bucket := l.evict(identity, now)
		if len(bucket) == 0 {
			delete(l.buckets, identity)
		} else {
			l.buckets[identity] = bucket
		}
	}
}

// Start runs the periodic sweep until ctx is cancelled.
func (l *Limiter) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Debug().Dur("interval", interval).Msg("Rate limiter sweep started")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Rate limiter sweep stopped")
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// evict drops timestamps older than the window from the front of the
// identity's bucket. Buckets are time-ordered by construction. Caller
// must hold l.mu.
func (l *Limiter) evict(identity string, now time.Time) []time.Time {
	bucket := l.buckets[identity]
	cutoff := now.Add(-l.window)

	i := 0
	for i < len(bucket) && !bucket[i].After(cutoff) {
		i++
	}
	return bucket[i:]
}
