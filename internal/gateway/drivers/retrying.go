package drivers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"service-dispatch/internal/logx"
)

type gateway interface {
	GetByID(context.Context, int64) (*Profile, error)
	ListAvailable(context.Context) ([]Profile, error)
}

type counter interface {
	Inc()
}

// RetryConfig describes the retry behavior of RetryingGateway.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingGateway retries transient profile-service failures with
// exponential backoff.
type RetryingGateway struct {
	next    gateway
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetryingGateway wraps next with retries; returns nil when next is nil.
func NewRetryingGateway(next gateway, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingGateway {
	if next == nil {
		return nil
	}
	return &RetryingGateway{next: next, logger: logger, retries: retries, cfg: cfg}
}

// GetByID fetches one profile, retrying transient failures.
func (g *RetryingGateway) GetByID(ctx context.Context, id int64) (*Profile, error) {
	var p *Profile
	err := g.do(ctx, "GetByID", func() error {
		var err error
		p, err = g.next.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListAvailable fetches available profiles, retrying transient failures.
func (g *RetryingGateway) ListAvailable(ctx context.Context) ([]Profile, error) {
	var list []Profile
	err := g.do(ctx, "ListAvailable", func() error {
		var err error
		list, err = g.next.ListAvailable(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (g *RetryingGateway) do(ctx context.Context, method string, call func() error) error {
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		err := call()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == g.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(g.cfg.BaseDelay, g.cfg.MaxDelay, attempt)
		if g.retries != nil {
			g.retries.Inc()
		}
		g.logger.Warn("drivers gateway retry",
			logx.String("method", method),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Any("err", err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return lastErr
}

// isRetryable treats throttling and upstream availability failures as
// transient; everything else fails fast.
func isRetryable(err error) bool {
	var st *StatusError
	if !errors.As(err, &st) {
		return false
	}
	switch st.Code {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// backoff computes the retry delay for an attempt.
func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
