package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"service-dispatch/internal/config"
	"service-dispatch/internal/http/middleware/ratelimit"
	"service-dispatch/internal/logx"
)

func newRateLimitClock() ratelimit.Clock {
	return ratelimit.RealClock{}
}

// newRateLimiter picks the limiter for driver-facing routes. Disabled config
// yields the nop limiter so the middleware stays wired either way.
func newRateLimiter(cfg *config.Config, clock ratelimit.Clock) ratelimit.Limiter {
	rl := cfg.RateLimit
	if !rl.Enabled {
		return ratelimit.NewNopLimiter()
	}
	return ratelimit.NewTokenBucketLimiter(clock, ratelimit.Config{
		Rate:       rl.Rate,
		Burst:      rl.Burst,
		TTL:        rl.TTL,
		MaxBuckets: rl.MaxBuckets,
	})
}

type rateLimitIn struct {
	dig.In

	Logger  logx.Logger
	Limiter ratelimit.Limiter
	Denied  prometheus.Counter `name:"rate_limit_exceeded_total"`
}

func newRateLimitMiddleware(in rateLimitIn) *ratelimit.Middleware {
	return ratelimit.New(in.Logger, in.Denied, in.Limiter)
}
