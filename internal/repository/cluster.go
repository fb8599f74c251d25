package repository

import (
	"context"
	"fmt"
	"time"

	"service-dispatch/internal/domain"
)

const clusterColumns = `id, delivery_id, vendor_id, vendor_lat, vendor_lon,
	status, estimated_distance_km, estimated_price, distance_km, price,
	assigned_driver_id, assignment_time, sequence_order,
	pickup_confirmed, pickup_confirmed_at, retry_count`

func scanCluster(row interface{ Scan(...any) error }) (*domain.DeliveryCluster, error) {
	var c domain.DeliveryCluster
	err := row.Scan(
		&c.ID, &c.DeliveryID, &c.VendorID, &c.VendorLocation.Lat, &c.VendorLocation.Lon,
		&c.Status, &c.EstimatedDistanceKm, &c.EstimatedPrice, &c.DistanceKm, &c.Price,
		&c.AssignedDriverID, &c.AssignmentTime, &c.SequenceOrder,
		&c.PickupConfirmed, &c.PickupConfirmedAt, &c.RetryCount,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// InsertCluster stores a new cluster and returns its generated ID.
func (s queries) InsertCluster(ctx context.Context, c *domain.DeliveryCluster) (int64, error) {
	var id int64
	err := s.q.QueryRow(ctx, `
        INSERT INTO delivery_clusters
            (delivery_id, vendor_id, vendor_lat, vendor_lon, status,
             estimated_distance_km, estimated_price, distance_km, price,
             sequence_order, pickup_confirmed, retry_count)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,false,0)
        RETURNING id
    `, c.DeliveryID, c.VendorID, c.VendorLocation.Lat, c.VendorLocation.Lon,
		string(c.Status), c.EstimatedDistanceKm, c.EstimatedPrice,
		c.DistanceKm, c.Price, c.SequenceOrder,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert cluster for delivery %d: %w", c.DeliveryID, err)
	}
	return id, nil
}

// GetCluster returns a cluster by ID, nil when absent.
func (s queries) GetCluster(ctx context.Context, id int64) (*domain.DeliveryCluster, error) {
	c, err := scanCluster(s.q.QueryRow(ctx,
		`SELECT `+clusterColumns+` FROM delivery_clusters WHERE id=$1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cluster %d: %w", id, err)
	}
	return c, nil
}

// GetClusterForUpdate locks the cluster row for the rest of the transaction.
func (s queries) GetClusterForUpdate(ctx context.Context, id int64) (*domain.DeliveryCluster, error) {
	c, err := scanCluster(s.q.QueryRow(ctx,
		`SELECT `+clusterColumns+` FROM delivery_clusters WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock cluster %d: %w", id, err)
	}
	return c, nil
}

// ClustersByDelivery returns all clusters of a delivery ordered by sequence.
func (s queries) ClustersByDelivery(ctx context.Context, deliveryID int64) ([]domain.DeliveryCluster, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+clusterColumns+` FROM delivery_clusters
         WHERE delivery_id=$1 ORDER BY sequence_order, id`, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("clusters by delivery %d: %w", deliveryID, err)
	}
	defer rows.Close()

	var out []domain.DeliveryCluster
	for rows.Next() {
		c, err := scanCluster(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// UpdateClusterStatus - update cluster status.
func (s queries) UpdateClusterStatus(ctx context.Context, id int64, status domain.ClusterStatus) error {
	ct, err := s.q.Exec(ctx, `
        UPDATE delivery_clusters SET status=$2 WHERE id=$1
    `, id, string(status))
	if err != nil {
		return fmt.Errorf("update cluster status %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("cluster %d not found", id)
	}
	return nil
}

// AssignCluster sets the assigned driver if, and only if, nobody else won the
// cluster first. Returns false when the precondition failed.
func (s queries) AssignCluster(ctx context.Context, clusterID, driverID int64, at time.Time) (bool, error) {
	ct, err := s.q.Exec(ctx, `
        UPDATE delivery_clusters
        SET assigned_driver_id=$2, assignment_time=$3, status='assigned'
        WHERE id=$1 AND assigned_driver_id IS NULL AND status IN ('pending','offered')
    `, clusterID, driverID, at)
	if err != nil {
		return false, fmt.Errorf("assign cluster %d: %w", clusterID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// IncrementClusterRetry bumps the retry counter and stamps the tracking row.
func (s queries) IncrementClusterRetry(ctx context.Context, clusterID int64, at time.Time) error {
	ct, err := s.q.Exec(ctx, `
        UPDATE delivery_clusters SET retry_count=retry_count+1 WHERE id=$1
    `, clusterID)
	if err != nil {
		return fmt.Errorf("increment retry %d: %w", clusterID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("cluster %d not found", clusterID)
	}
	_, err = s.q.Exec(ctx, `
        UPDATE cluster_tracking SET last_retry_time=$2 WHERE cluster_id=$1
    `, clusterID, at)
	if err != nil {
		return fmt.Errorf("stamp retry time %d: %w", clusterID, err)
	}
	return nil
}

// InsertTracking creates the one-to-one tracking record of a cluster.
func (s queries) InsertTracking(ctx context.Context, t *domain.ClusterTracking) error {
	_, err := s.q.Exec(ctx, `
        INSERT INTO cluster_tracking (cluster_id, status, location, last_retry_time)
        VALUES ($1,$2,$3,$4)
    `, t.ClusterID, t.Status, t.Location, t.LastRetryTime)
	if err != nil {
		return fmt.Errorf("insert tracking %d: %w", t.ClusterID, err)
	}
	return nil
}

// UpdateTracking - update the tracking snapshot of a cluster.
func (s queries) UpdateTracking(ctx context.Context, clusterID int64, status, location string) error {
	ct, err := s.q.Exec(ctx, `
        UPDATE cluster_tracking SET status=$2, location=$3 WHERE cluster_id=$1
    `, clusterID, status, location)
	if err != nil {
		return fmt.Errorf("update tracking %d: %w", clusterID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("tracking for cluster %d not found", clusterID)
	}
	return nil
}

// GetTracking returns the tracking snapshot of a cluster, nil when absent.
func (s queries) GetTracking(ctx context.Context, clusterID int64) (*domain.ClusterTracking, error) {
	var t domain.ClusterTracking
	err := s.q.QueryRow(ctx, `
        SELECT cluster_id, status, location, last_retry_time
        FROM cluster_tracking WHERE cluster_id=$1
    `, clusterID).Scan(&t.ClusterID, &t.Status, &t.Location, &t.LastRetryTime)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tracking %d: %w", clusterID, err)
	}
	return &t, nil
}

// UnassignedClusters returns clusters still waiting for a driver.
func (s queries) UnassignedClusters(ctx context.Context) ([]domain.DeliveryCluster, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+clusterColumns+` FROM delivery_clusters
         WHERE status IN ('pending','offered') ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("unassigned clusters: %w", err)
	}
	defer rows.Close()

	var out []domain.DeliveryCluster
	for rows.Next() {
		c, err := scanCluster(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// ClustersForRetry returns matchable clusters with zero live offers whose
// last retry happened at or before the cutoff (or never).
func (s queries) ClustersForRetry(ctx context.Context, cutoff time.Time) ([]domain.DeliveryCluster, error) {
	rows, err := s.q.Query(ctx, `
        SELECT `+qualifiedClusterColumns+`
        FROM delivery_clusters c
        JOIN cluster_tracking t ON t.cluster_id = c.id
        WHERE c.status IN ('pending','offered')
          AND NOT EXISTS (
              SELECT 1 FROM driver_offers o
              WHERE o.cluster_id = c.id AND o.status = 'pending')
          AND (t.last_retry_time IS NULL OR t.last_retry_time <= $1)
        ORDER BY c.id
    `, cutoff)
	if err != nil {
		return nil, fmt.Errorf("clusters for retry: %w", err)
	}
	defer rows.Close()

	var out []domain.DeliveryCluster
	for rows.Next() {
		c, err := scanCluster(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

const qualifiedClusterColumns = `c.id, c.delivery_id, c.vendor_id, c.vendor_lat, c.vendor_lon,
	c.status, c.estimated_distance_km, c.estimated_price, c.distance_km, c.price,
	c.assigned_driver_id, c.assignment_time, c.sequence_order,
	c.pickup_confirmed, c.pickup_confirmed_at, c.retry_count`
