// Package ratelimit provides a per-key token bucket limiter.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultIdleTTL is how long an unused key keeps its bucket.
const DefaultIdleTTL = 10 * time.Minute

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter gives every key (client IP, for uploads) its own bucket.
// Buckets idle longer than the TTL are dropped by a background sweep.
type KeyedRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// Option configures a KeyedRateLimiter.
type Option func(*KeyedRateLimiter)

// WithIdleTTL overrides DefaultIdleTTL.
func WithIdleTTL(ttl time.Duration) Option {
	return func(k *KeyedRateLimiter) {
		k.idleTTL = ttl
	}
}

// New creates a limiter allowing rps requests per second with the given burst per key.
func New(rps float64, burst int, opts ...Option) *KeyedRateLimiter {
	k := &KeyedRateLimiter{
		entries: make(map[string]*entry),
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: DefaultIdleTTL,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(k)
	}

	go k.sweep()
	return k
}

// PerMinute creates a limiter allowing n requests per minute per key, all of
// which may arrive at once.
func PerMinute(n int, opts ...Option) *KeyedRateLimiter {
	return New(float64(n)/60, n, opts...)
}

// Allow reports whether a request for key may proceed now.
func (k *KeyedRateLimiter) Allow(key string) bool {
	return k.get(key).Allow()
}

// Wait blocks until key may proceed or ctx ends.
func (k *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	return k.get(key).Wait(ctx)
}

// Len returns the number of tracked keys.
func (k *KeyedRateLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

// Stop ends the background sweep. Safe to call more than once.
func (k *KeyedRateLimiter) Stop() {
	k.stopOnce.Do(func() {
		close(k.done)
	})
}

func (k *KeyedRateLimiter) get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.entries[key] = e
	}
	e.lastSeen = k.now()
	return e.limiter
}

func (k *KeyedRateLimiter) sweep() {
	ticker := time.NewTicker(k.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-k.done:
			return
		case <-ticker.C:
			k.evictIdle()
		}
	}
}

// evictIdle drops buckets not used within the TTL.
func (k *KeyedRateLimiter) evictIdle() {
	cutoff := k.now().Add(-k.idleTTL)

	k.mu.Lock()
	defer k.mu.Unlock()
	for key, e := range k.entries {
		if e.lastSeen.Before(cutoff) {
			delete(k.entries, key)
		}
	}
}
