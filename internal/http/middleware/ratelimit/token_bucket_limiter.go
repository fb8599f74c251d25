package ratelimit

import (
	"sync"
	"time"
)

// Config stores TokenBucketLimiter settings.
type Config struct {
	Rate       float64       // tokens added per second
	Burst      int           // bucket capacity
	TTL        time.Duration // evict buckets idle longer than this (0 disables)
	MaxBuckets int           // cap on tracked keys, 0 means unlimited
}

// TokenBucketLimiter is a per-key token bucket. Buckets refill continuously
// at cfg.Rate up to cfg.Burst. When MaxBuckets is reached, requests from new
// keys are denied until eviction frees a slot.
type TokenBucketLimiter struct {
	cfg     Config
	clock   Clock
	mu      sync.RWMutex
	buckets map[string]*bucket
	swept   time.Time
}

type bucket struct {
	mu     sync.Mutex
	tokens float64
	refill time.Time // last refill instant
	seen   time.Time // last Allow call, drives TTL eviction
}

// NewTokenBucketLimiter creates a limiter with an explicit config. A nil
// clock falls back to wall time; degenerate rate and burst are clamped to 1.
func NewTokenBucketLimiter(clock Clock, cfg Config) *TokenBucketLimiter {
	if clock == nil {
		clock = RealClock{}
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.MaxBuckets < 0 {
		cfg.MaxBuckets = 0
	}
	return &TokenBucketLimiter{
		cfg:     cfg,
		clock:   clock,
		buckets: make(map[string]*bucket),
	}
}

// NewTokenBucketPerWindow is a convenience constructor for "limit requests
// per window" style configuration.
func NewTokenBucketPerWindow(clock Clock, limit int, window, ttl time.Duration, maxBuckets int) *TokenBucketLimiter {
	if window <= 0 {
		window = time.Second
	}
	if limit <= 0 {
		limit = 1
	}
	return NewTokenBucketLimiter(clock, Config{
		Rate:       float64(limit) / window.Seconds(),
		Burst:      limit,
		TTL:        ttl,
		MaxBuckets: maxBuckets,
	})
}

// Allow reports whether the key may proceed and consumes one token if so.
func (l *TokenBucketLimiter) Allow(key string) bool {
	now := l.clock.Now()
	l.sweep(now)

	b := l.lookup(key, now)
	if b == nil {
		return false
	}
	return b.take(now, l.cfg.Rate, float64(l.cfg.Burst))
}

func (l *TokenBucketLimiter) lookup(key string, now time.Time) *bucket {
	l.mu.RLock()
	b := l.buckets[key]
	l.mu.RUnlock()
	if b != nil {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if b = l.buckets[key]; b != nil {
		return b
	}
	if l.cfg.MaxBuckets > 0 && len(l.buckets) >= l.cfg.MaxBuckets {
		return nil
	}

	b = &bucket{
		tokens: float64(l.cfg.Burst),
		refill: now,
		seen:   now,
	}
	l.buckets[key] = b
	return b
}

func (b *bucket) take(now time.Time, rate, burst float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if dt := now.Sub(b.refill); dt > 0 {
		b.tokens += dt.Seconds() * rate
		if b.tokens > burst {
			b.tokens = burst
		}
		b.refill = now
	}
	b.seen = now

	if b.tokens < 1.0 {
		return false
	}
	b.tokens -= 1.0
	return true
}

// sweep drops idle buckets. Runs at most once per minute (or per TTL/2 when
// that is longer) so the hot path stays on the read lock.
func (l *TokenBucketLimiter) sweep(now time.Time) {
	if l.cfg.TTL <= 0 {
		return
	}

	interval := time.Minute
	if half := l.cfg.TTL / 2; half > interval {
		interval = half
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.swept.IsZero() && now.Sub(l.swept) < interval {
		return
	}
	l.swept = now

	for k, b := range l.buckets {
		b.mu.Lock()
		seen := b.seen
		b.mu.Unlock()

		if now.Sub(seen) > l.cfg.TTL {
			delete(l.buckets, k)
		}
	}
}
