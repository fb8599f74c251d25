package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"service-dispatch/internal/domain"
)

// DriverRepo represents driver repository.
type DriverRepo struct{ db *pgxpool.Pool }

// NewDriverRepo creates a new DriverRepo.
func NewDriverRepo(db *pgxpool.Pool) *DriverRepo { return &DriverRepo{db: db} }

const driverColumns = `id, name, phone, available, account_status,
	vehicle_type, lat, lon, location_updated_at`

func scanDriver(row interface{ Scan(...any) error }) (*domain.Driver, error) {
	var d domain.Driver
	err := row.Scan(
		&d.ID, &d.Name, &d.Phone, &d.Available, &d.AccountStatus,
		&d.VehicleType, &d.Location.Lat, &d.Location.Lon, &d.LocationUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Get - returns driver by its ID, nil when absent.
func (r *DriverRepo) Get(ctx context.Context, id int64) (*domain.Driver, error) {
	d, err := scanDriver(r.db.QueryRow(ctx,
		`SELECT `+driverColumns+` FROM drivers WHERE id=$1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get driver %d: %w", id, err)
	}
	return d, nil
}

// ListDispatchable returns every available driver with an active account.
func (r *DriverRepo) ListDispatchable(ctx context.Context) ([]domain.Driver, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+driverColumns+` FROM drivers
         WHERE available AND account_status='active' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list dispatchable drivers: %w", err)
	}
	defer rows.Close()

	var out []domain.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// List returns drivers ordered by id. If limit/offset are nil, returns the full list.
func (r *DriverRepo) List(ctx context.Context, limit, offset *int) ([]domain.Driver, error) {
	q := `SELECT ` + driverColumns + ` FROM drivers ORDER BY id`
	args := make([]any, 0, 2)
	if limit != nil {
		q += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, *limit)
	}
	if offset != nil {
		q += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, *offset)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Create persists a new driver and returns its generated ID.
func (r *DriverRepo) Create(ctx context.Context, d *domain.Driver) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
        INSERT INTO drivers
            (name, phone, available, account_status, vehicle_type,
             lat, lon, location_updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id
    `, d.Name, d.Phone, d.Available, string(d.AccountStatus), d.VehicleType,
		d.Location.Lat, d.Location.Lon, d.LocationUpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create driver: %w", err)
	}
	return id, nil
}

// UpdateLocation stores the latest coordinates of a driver.
// Returns false when the driver does not exist.
func (r *DriverRepo) UpdateLocation(ctx context.Context, id int64, loc domain.Coordinates, at time.Time) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE drivers SET lat=$2, lon=$3, location_updated_at=$4 WHERE id=$1
    `, id, loc.Lat, loc.Lon, at)
	if err != nil {
		return false, fmt.Errorf("update driver location %d: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

// SetAvailability flips the driver availability flag.
// Returns false when the driver does not exist.
func (r *DriverRepo) SetAvailability(ctx context.Context, id int64, available bool) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE drivers SET available=$2 WHERE id=$1
    `, id, available)
	if err != nil {
		return false, fmt.Errorf("set driver availability %d: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

// UpdatePartial applies a partial update. Returns true if a row was updated.
func (r *DriverRepo) UpdatePartial(ctx context.Context, u domain.PartialDriverUpdate) (bool, error) {
	q := `UPDATE drivers SET `
	args := make([]any, 0, 5)
	set := func(col string, v any) {
		if len(args) > 0 {
			q += ", "
		}
		args = append(args, v)
		q += fmt.Sprintf("%s=$%d", col, len(args))
	}
	if u.Name != nil {
		set("name", *u.Name)
	}
	if u.Phone != nil {
		set("phone", *u.Phone)
	}
	if u.Available != nil {
		set("available", *u.Available)
	}
	if u.AccountStatus != nil {
		set("account_status", string(*u.AccountStatus))
	}
	if u.VehicleType != nil {
		set("vehicle_type", *u.VehicleType)
	}
	if len(args) == 0 {
		return false, nil
	}
	args = append(args, u.ID)
	q += fmt.Sprintf(" WHERE id=$%d", len(args))

	ct, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("update driver %d: %w", u.ID, err)
	}
	return ct.RowsAffected() > 0, nil
}
