// Package sweeper runs the periodic reassignment cycle: expire overdue
// offers, then re-dispatch clusters that still lack a driver, failing those
// that ran out of retries.
package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/ports/dispatchtx"
)

// Sweeper is the single background writer of offer expiry. Expired rows are
// flipped only here; the accept path merely refuses a late accept.
type Sweeper struct {
	offers    expirer
	repo      repository
	assigner  assigner
	publisher statusPublisher
	settings  domain.AssignmentSettings
	logger    logx.Logger

	cycles   counter
	expired  counter
	retries  counter
	failed   counter
	inFlight atomic.Bool
	now      func() time.Time
}

// Counters groups the sweep metrics.
type Counters struct {
	Cycles  counter
	Expired counter
	Retries counter
	Failed  counter
}

// New creates a Sweeper.
func New(offers expirer, repo repository, assigner assigner, publisher statusPublisher, settings domain.AssignmentSettings, counters Counters, logger logx.Logger) *Sweeper {
	return &Sweeper{
		offers:    offers,
		repo:      repo,
		assigner:  assigner,
		publisher: publisher,
		settings:  settings,
		logger:    logger,
		cycles:    counters.Cycles,
		expired:   counters.Expired,
		retries:   counters.Retries,
		failed:    counters.Failed,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run sweeps every CheckInterval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.settings.CheckInterval)
	defer ticker.Stop()

	s.logger.Info("sweeper started",
		logx.Duration("interval", s.settings.CheckInterval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs one cycle. A cycle still in flight makes the call a no-op,
// so a slow database can never stack sweeps.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("sweep cycle skipped, previous one still running")
		return
	}
	defer s.inFlight.Store(false)

	s.expireOffers(ctx)
	s.retryClusters(ctx)
	s.retryDeliveries(ctx)
	s.cycles.Inc()
}

func (s *Sweeper) expireOffers(ctx context.Context) {
	expired, err := s.offers.ExpireOverdue(ctx)
	if err != nil {
		s.logger.Error("offer expiry failed", logx.Any("err", err))
		return
	}
	if len(expired) == 0 {
		return
	}

	for range expired {
		s.expired.Inc()
	}
	s.logger.Info("offers expired",
		logx.String("event", "offers_expired"),
		logx.Int("count", len(expired)),
	)
}

func (s *Sweeper) retryClusters(ctx context.Context) {
	cutoff := s.now().Add(-s.settings.RetryDelay)
	clusters, err := s.repo.ClustersForRetry(ctx, cutoff)
	if err != nil {
		s.logger.Error("retry scan failed", logx.Any("err", err))
		return
	}

	for _, c := range clusters {
		if err := s.retryOne(ctx, c); err != nil {
			s.logger.Error("cluster retry failed",
				logx.Int64("cluster_id", c.ID),
				logx.Any("err", err),
			)
		}
	}
}

// retryOne re-dispatches a single cluster, or fails it once retries run out.
// A cycle with no eligible driver still consumes one retry, and a cycle that
// consumes the last retry without finding a driver fails the cluster
// immediately instead of waiting for the next tick.
func (s *Sweeper) retryOne(ctx context.Context, c domain.DeliveryCluster) error {
	if c.RetryCount >= s.settings.MaxRetries {
		return s.failCluster(ctx, c)
	}

	if err := s.repo.IncrementClusterRetry(ctx, c.ID, s.now()); err != nil {
		return err
	}
	s.retries.Inc()

	_, err := s.assigner.AutoAssign(ctx, c.ID, nil)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperr.ErrNoCandidate):
		if c.RetryCount+1 >= s.settings.MaxRetries {
			return s.failCluster(ctx, c)
		}
		s.logger.Debug("no candidate this cycle",
			logx.Int64("cluster_id", c.ID),
			logx.Int("retry_count", c.RetryCount+1),
		)
		return nil
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrNotFound):
		// the cluster moved on between the scan and the dispatch
		return nil
	default:
		return err
	}
}

// failCluster marks an exhausted cluster failed and, when it was the last
// open leg, the delivery too.
func (s *Sweeper) failCluster(ctx context.Context, c domain.DeliveryCluster) error {
	var evt *domain.ClusterStatusEvent
	err := s.repo.WithTx(ctx, func(tx dispatchtx.Repository) error {
		locked, err := tx.GetClusterForUpdate(ctx, c.ID)
		if err != nil {
			return err
		}
		if locked == nil || locked.Status.Terminal() || locked.AssignedDriverID != nil {
			return nil
		}

		now := s.now()
		if err := tx.UpdateClusterStatus(ctx, c.ID, domain.ClusterFailed); err != nil {
			return err
		}
		if err := tx.UpdateTracking(ctx, c.ID, string(domain.ClusterFailed), "no driver found"); err != nil {
			return err
		}

		clusters, err := tx.ClustersByDelivery(ctx, locked.DeliveryID)
		if err != nil {
			return err
		}
		open := false
		for _, sibling := range clusters {
			if sibling.ID != c.ID && !sibling.Status.Terminal() {
				open = true
				break
			}
		}
		if !open {
			if err := tx.UpdateDeliveryStatus(ctx, locked.DeliveryID, domain.DeliveryFailed); err != nil {
				return err
			}
		}

		evt = &domain.ClusterStatusEvent{
			DeliveryID: locked.DeliveryID,
			ClusterID:  &c.ID,
			Status:     string(domain.ClusterFailed),
			At:         now,
		}
		return nil
	})
	if err != nil {
		return err
	}
	if evt == nil {
		return nil
	}

	s.failed.Inc()
	if s.publisher != nil {
		if pubErr := s.publisher.PublishClusterStatus(ctx, *evt); pubErr != nil {
			s.logger.Warn("cluster status event publish failed",
				logx.Int64("cluster_id", c.ID),
				logx.Any("err", pubErr),
			)
		}
	}

	s.logger.Warn("cluster failed after exhausting retries",
		logx.String("event", "cluster_failed"),
		logx.Int64("cluster_id", c.ID),
		logx.Int("retry_count", c.RetryCount),
	)
	return nil
}

// retryDeliveries rescans legless deliveries whose direct offers all expired
// or were declined. They have no cluster row, so the cluster scan never sees
// them; without this pass they would sit in dispatching forever.
func (s *Sweeper) retryDeliveries(ctx context.Context) {
	cutoff := s.now().Add(-s.settings.RetryDelay)
	deliveries, err := s.repo.DeliveriesForRetry(ctx, cutoff)
	if err != nil {
		s.logger.Error("delivery retry scan failed", logx.Any("err", err))
		return
	}

	for _, d := range deliveries {
		if err := s.retryOneDelivery(ctx, d); err != nil {
			s.logger.Error("delivery retry failed",
				logx.Int64("delivery_id", d.ID),
				logx.Any("err", err),
			)
		}
	}
}

// retryOneDelivery mirrors retryOne for the direct variant, under the same
// retry budget.
func (s *Sweeper) retryOneDelivery(ctx context.Context, d domain.Delivery) error {
	if d.RetryCount >= s.settings.MaxRetries {
		return s.failDelivery(ctx, d)
	}

	if err := s.repo.IncrementDeliveryRetry(ctx, d.ID, s.now()); err != nil {
		return err
	}
	s.retries.Inc()

	_, err := s.assigner.AutoAssignDirect(ctx, d.ID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperr.ErrNoCandidate):
		if d.RetryCount+1 >= s.settings.MaxRetries {
			return s.failDelivery(ctx, d)
		}
		s.logger.Debug("no candidate this cycle",
			logx.Int64("delivery_id", d.ID),
			logx.Int("retry_count", d.RetryCount+1),
		)
		return nil
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrNotFound):
		return nil
	default:
		return err
	}
}

// failDelivery marks an exhausted legless delivery failed.
func (s *Sweeper) failDelivery(ctx context.Context, d domain.Delivery) error {
	failed := false
	err := s.repo.WithTx(ctx, func(tx dispatchtx.Repository) error {
		locked, err := tx.GetDelivery(ctx, d.ID)
		if err != nil {
			return err
		}
		if locked == nil || locked.Status != domain.DeliveryDispatching {
			return nil
		}
		if err := tx.UpdateDeliveryStatus(ctx, d.ID, domain.DeliveryFailed); err != nil {
			return err
		}
		failed = true
		return nil
	})
	if err != nil {
		return err
	}
	if !failed {
		return nil
	}

	s.failed.Inc()
	if s.publisher != nil {
		evt := domain.ClusterStatusEvent{
			DeliveryID: d.ID,
			Status:     string(domain.DeliveryFailed),
			At:         s.now(),
		}
		if pubErr := s.publisher.PublishClusterStatus(ctx, evt); pubErr != nil {
			s.logger.Warn("cluster status event publish failed",
				logx.Int64("delivery_id", d.ID),
				logx.Any("err", pubErr),
			)
		}
	}

	s.logger.Warn("delivery failed after exhausting retries",
		logx.String("event", "delivery_failed"),
		logx.Int64("delivery_id", d.ID),
		logx.Int("retry_count", d.RetryCount),
	)
	return nil
}
