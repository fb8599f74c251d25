package repository

import (
	"context"
	"fmt"
	"time"

	"service-dispatch/internal/domain"
)

const deliveryColumns = `id, order_id, parent_delivery_id, sequence_order,
	pickup_lat, pickup_lon, dropoff_lat, dropoff_lon, dropoff_address,
	fee, status, retry_count, last_retry_time, created_at, updated_at`

func scanDelivery(row interface{ Scan(...any) error }) (*domain.Delivery, error) {
	var d domain.Delivery
	err := row.Scan(
		&d.ID, &d.OrderID, &d.ParentDeliveryID, &d.SequenceOrder,
		&d.Pickup.Lat, &d.Pickup.Lon, &d.Dropoff.Lat, &d.Dropoff.Lon,
		&d.DropoffAddress, &d.Fee, &d.Status, &d.RetryCount, &d.LastRetryTime,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// InsertDelivery stores a new delivery and returns its generated ID.
func (s queries) InsertDelivery(ctx context.Context, d *domain.Delivery) (int64, error) {
	var id int64
	err := s.q.QueryRow(ctx, `
        INSERT INTO deliveries
            (order_id, parent_delivery_id, sequence_order,
             pickup_lat, pickup_lon, dropoff_lat, dropoff_lon,
             dropoff_address, fee, status, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now(),now())
        RETURNING id
    `, d.OrderID, d.ParentDeliveryID, d.SequenceOrder,
		d.Pickup.Lat, d.Pickup.Lon, d.Dropoff.Lat, d.Dropoff.Lon,
		d.DropoffAddress, d.Fee, string(d.Status),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert delivery %s: %w", d.OrderID, err)
	}
	return id, nil
}

// GetDelivery returns a delivery by ID, nil when absent.
func (s queries) GetDelivery(ctx context.Context, id int64) (*domain.Delivery, error) {
	d, err := scanDelivery(s.q.QueryRow(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries WHERE id=$1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery %d: %w", id, err)
	}
	return d, nil
}

// GetDeliveryByOrderID returns a delivery by its marketplace order ID.
func (s queries) GetDeliveryByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error) {
	d, err := scanDelivery(s.q.QueryRow(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries WHERE order_id=$1`, orderID))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery by order %s: %w", orderID, err)
	}
	return d, nil
}

// UpdateDeliveryStatus - update delivery status.
func (s queries) UpdateDeliveryStatus(ctx context.Context, id int64, status domain.DeliveryStatus) error {
	ct, err := s.q.Exec(ctx, `
        UPDATE deliveries SET status=$2, updated_at=now() WHERE id=$1
    `, id, string(status))
	if err != nil {
		return fmt.Errorf("update delivery status %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("delivery %d not found", id)
	}
	return nil
}

// AssignDelivery claims a legless delivery for an accepted direct offer. The
// conditional write makes the first acceptance win; false means another
// driver already holds the delivery or it moved to a terminal state.
func (s queries) AssignDelivery(ctx context.Context, id int64, at time.Time) (bool, error) {
	ct, err := s.q.Exec(ctx, `
        UPDATE deliveries SET status='assigned', updated_at=$2
        WHERE id=$1 AND status IN ('pending','dispatching')
    `, id, at)
	if err != nil {
		return false, fmt.Errorf("assign delivery %d: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

// DeliveriesForRetry returns legless deliveries stuck in dispatching with no
// live offers, ready for another dispatch attempt once the retry delay has
// passed. Deliveries that were split into clusters are handled through the
// cluster scan instead.
func (s queries) DeliveriesForRetry(ctx context.Context, cutoff time.Time) ([]domain.Delivery, error) {
	rows, err := s.q.Query(ctx, `
        SELECT `+deliveryColumns+` FROM deliveries d
        WHERE d.status='dispatching'
          AND NOT EXISTS (
              SELECT 1 FROM delivery_clusters c WHERE c.delivery_id = d.id
          )
          AND NOT EXISTS (
              SELECT 1 FROM driver_offers o
              WHERE o.delivery_id = d.id AND o.status = 'pending'
          )
          AND (d.last_retry_time IS NULL OR d.last_retry_time <= $1)
        ORDER BY d.id
    `, cutoff)
	if err != nil {
		return nil, fmt.Errorf("deliveries for retry: %w", err)
	}
	defer rows.Close()

	var out []domain.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// IncrementDeliveryRetry bumps the retry counter of a legless delivery and
// records the attempt time.
func (s queries) IncrementDeliveryRetry(ctx context.Context, id int64, at time.Time) error {
	ct, err := s.q.Exec(ctx, `
        UPDATE deliveries SET retry_count=retry_count+1, last_retry_time=$2, updated_at=now()
        WHERE id=$1
    `, id, at)
	if err != nil {
		return fmt.Errorf("increment delivery retry %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("delivery %d not found", id)
	}
	return nil
}
