package ratelimit

// Limiter decides whether a keyed request may proceed.
type Limiter interface {
	Allow(key string) bool
}

// NopLimiter admits everything. Used when throttling is disabled by config.
type NopLimiter struct{}

// Allow always reports true.
func (NopLimiter) Allow(string) bool { return true }

// NewNopLimiter returns a NopLimiter as a Limiter.
func NewNopLimiter() Limiter { return NopLimiter{} }
