package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter keeps one golang.org/x/time/rate bucket per client key.
// Buckets idle for more than twice the cleanup interval are evicted by a
// background goroutine until Close is called.
type ClientLimiter struct {
	rate            rate.Limit
	burst           int
	perMinute       int
	cleanupInterval time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	done    chan struct{}
	closed  bool
}

// NewClientLimiter creates a limiter allowing requestsPerMinute with the given
// burst for every distinct key.
func NewClientLimiter(requestsPerMinute, burst int, cleanupInterval time.Duration) *ClientLimiter {
	l := &ClientLimiter{
		rate:            rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:           burst,
		perMinute:       requestsPerMinute,
		cleanupInterval: cleanupInterval,
		buckets:         make(map[string]*bucket),
		done:            make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// Allow consumes a token from key's bucket if one is available.
func (l *ClientLimiter) Allow(key string) (bool, Info) {
	now := time.Now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)

	info := Info{
		Limit:     l.perMinute,
		Remaining: int(math.Max(0, math.Floor(tokens))),
		ResetAt:   now,
	}

	if missing := float64(l.burst) - tokens; missing > 0 {
		info.ResetAt = now.Add(time.Duration(missing / float64(l.rate) * float64(time.Second)))
	}

	if !allowed {
		// Time until one whole token is available again.
		info.RetryAfter = time.Duration((1 - tokens) / float64(l.rate) * float64(time.Second))
	}

	return allowed, info
}

// Clients returns the number of tracked client buckets.
func (l *ClientLimiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Close stops the background cleanup goroutine. It is safe to call twice.
func (l *ClientLimiter) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		close(l.done)
	}
}

func (l *ClientLimiter) cleanup() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case now := <-ticker.C:
			l.evictStale(now)
		}
	}
}

func (l *ClientLimiter) evictStale(now time.Time) {
	cutoff := now.Add(-2 * l.cleanupInterval)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}
