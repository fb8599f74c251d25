package cluster

import (
	"context"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/geo"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/ports/dispatchtx"
)

// Builder splits a delivery into per-vendor pickup clusters with estimated
// distance and price.
type Builder struct {
	repo     txRunner
	settings domain.AssignmentSettings
	logger   logx.Logger
}

// NewBuilder creates a cluster Builder.
func NewBuilder(repo txRunner, settings domain.AssignmentSettings, logger logx.Logger) *Builder {
	return &Builder{
		repo:     repo,
		settings: settings,
		logger:   logger,
	}
}

// BuildForDelivery creates one cluster per distinct vendor leg. A delivery
// that already has clusters is returned as-is; re-running the split never
// duplicates clusters. A single-vendor delivery produces exactly one cluster;
// callers treat it the same as any multi-leg result.
func (b *Builder) BuildForDelivery(ctx context.Context, deliveryID int64, legs []domain.VendorLeg) ([]domain.DeliveryCluster, error) {
	if len(legs) == 0 {
		return nil, apperr.ErrInvalid
	}
	for _, leg := range legs {
		if leg.VendorID <= 0 || !leg.Location.Valid() {
			return nil, apperr.ErrInvalid
		}
	}

	var out []domain.DeliveryCluster
	err := b.repo.WithTx(ctx, func(tx dispatchtx.Repository) error {
		d, err := tx.GetDelivery(ctx, deliveryID)
		if err != nil {
			return err
		}
		if d == nil {
			return apperr.ErrNotFound
		}
		if d.Status.Terminal() {
			return apperr.ErrConflict
		}

		existing, err := tx.ClustersByDelivery(ctx, deliveryID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			out = existing
			return nil
		}

		seen := make(map[int64]bool, len(legs))
		for i, leg := range legs {
			if seen[leg.VendorID] {
				continue
			}
			seen[leg.VendorID] = true

			seq := leg.SequenceOrder
			if seq == 0 {
				seq = i + 1
			}
			c, err := b.insertCluster(ctx, tx, d, leg.VendorID, leg.Location, seq)
			if err != nil {
				return err
			}
			out = append(out, *c)
		}

		return tx.UpdateDeliveryStatus(ctx, deliveryID, domain.DeliveryDispatching)
	})
	if err != nil {
		return nil, err
	}

	b.logger.Info("delivery split into clusters",
		logx.String("event", "clusters_built"),
		logx.Int64("delivery_id", deliveryID),
		logx.Int("clusters", len(out)),
	)
	return out, nil
}

// CreateCluster adds one pickup leg to a delivery. If the vendor already has
// a cluster on this delivery, its ID is returned unchanged.
func (b *Builder) CreateCluster(ctx context.Context, deliveryID int64, leg domain.VendorLeg) (int64, error) {
	if leg.VendorID <= 0 || !leg.Location.Valid() {
		return 0, apperr.ErrInvalid
	}

	var id int64
	err := b.repo.WithTx(ctx, func(tx dispatchtx.Repository) error {
		d, err := tx.GetDelivery(ctx, deliveryID)
		if err != nil {
			return err
		}
		if d == nil {
			return apperr.ErrNotFound
		}
		if d.Status.Terminal() {
			return apperr.ErrConflict
		}

		existing, err := tx.ClustersByDelivery(ctx, deliveryID)
		if err != nil {
			return err
		}
		for _, c := range existing {
			if c.VendorID == leg.VendorID {
				id = c.ID
				return nil
			}
		}

		seq := leg.SequenceOrder
		if seq == 0 {
			seq = len(existing) + 1
		}
		c, err := b.insertCluster(ctx, tx, d, leg.VendorID, leg.Location, seq)
		if err != nil {
			return err
		}
		id = c.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Split re-partitions a leg when its driver can only take part of it: a new
// unassigned cluster is created after the original with the same vendor
// pickup and fresh estimates. The original keeps its driver.
func (b *Builder) Split(ctx context.Context, deliveryID, clusterID, driverID int64) (*domain.DeliveryCluster, error) {
	var out *domain.DeliveryCluster
	err := b.repo.WithTx(ctx, func(tx dispatchtx.Repository) error {
		orig, err := tx.GetClusterForUpdate(ctx, clusterID)
		if err != nil {
			return err
		}
		if orig == nil || orig.DeliveryID != deliveryID {
			return apperr.ErrNotFound
		}
		if orig.Status.Terminal() {
			return apperr.ErrConflict
		}
		if orig.AssignedDriverID != nil && *orig.AssignedDriverID != driverID {
			return apperr.ErrConflict
		}

		d, err := tx.GetDelivery(ctx, deliveryID)
		if err != nil {
			return err
		}
		if d == nil {
			return apperr.ErrNotFound
		}

		c, err := b.insertCluster(ctx, tx, d, orig.VendorID, orig.VendorLocation, orig.SequenceOrder+1)
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.logger.Info("cluster split",
		logx.String("event", "cluster_split"),
		logx.Int64("delivery_id", deliveryID),
		logx.Int64("cluster_id", clusterID),
		logx.Int64("new_cluster_id", out.ID),
		logx.Int64("driver_id", driverID),
	)
	return out, nil
}

func (b *Builder) insertCluster(ctx context.Context, tx dispatchtx.Repository, d *domain.Delivery, vendorID int64, pickup domain.Coordinates, seq int) (*domain.DeliveryCluster, error) {
	distance := geo.VendorToCustomerKm(pickup, d.Dropoff)
	c := domain.DeliveryCluster{
		DeliveryID:          d.ID,
		VendorID:            vendorID,
		VendorLocation:      pickup,
		Status:              domain.ClusterPending,
		EstimatedDistanceKm: distance,
		EstimatedPrice:      distance * b.settings.PricePerKm,
		SequenceOrder:       seq,
	}

	id, err := tx.InsertCluster(ctx, &c)
	if err != nil {
		return nil, err
	}
	c.ID = id

	err = tx.InsertTracking(ctx, &domain.ClusterTracking{
		ClusterID: id,
		Status:    string(domain.ClusterPending),
		Location:  "awaiting dispatch",
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}
