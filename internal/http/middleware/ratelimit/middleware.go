// Package ratelimit throttles driver-facing endpoints. Offer responses and
// location pings come straight from driver devices, so a single misbehaving
// client must not be able to starve the dispatch API.
package ratelimit

import (
	"io"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"service-dispatch/internal/logx"
)

// Middleware rejects requests over the per-client budget with 429.
type Middleware struct {
	logger  logx.Logger
	counter prometheus.Counter
	limiter Limiter
}

// New builds the middleware. A nil limiter disables throttling entirely, a
// nil counter just skips the denial metric.
func New(logger logx.Logger, counter prometheus.Counter, limiter Limiter) *Middleware {
	if limiter == nil {
		limiter = NopLimiter{}
	}
	return &Middleware{
		logger:  logger,
		counter: counter,
		limiter: limiter,
	}
}

// Handler returns chi-style middleware keyed by client address.
func (m *Middleware) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if m.limiter.Allow(key) {
				next.ServeHTTP(w, r)
				return
			}
			m.reject(w, r, key)
		})
	}
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, key string) {
	if m.counter != nil {
		m.counter.Inc()
	}
	m.logger.Warn("rate limit exceeded",
		logx.String("ip", key),
		logx.String("method", r.Method),
		logx.String("path", r.URL.Path),
	)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusTooManyRequests)
	if _, err := io.WriteString(w, `{"error":"too many requests"}`); err != nil {
		// the client may have hung up already, nothing to do about it
		m.logger.Debug("rate limit response write failed",
			logx.String("ip", key),
			logx.Any("err", err),
		)
	}
}

// clientIP keys buckets by remote address. The router runs RealIP ahead of
// this middleware, so RemoteAddr already reflects the forwarded client.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
