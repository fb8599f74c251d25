package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"service-dispatch/internal/domain"
)

// SettingsRepo reads the singleton assignment settings row.
type SettingsRepo struct{ db *pgxpool.Pool }

// NewSettingsRepo creates a new SettingsRepo.
func NewSettingsRepo(db *pgxpool.Pool) *SettingsRepo { return &SettingsRepo{db: db} }

// Load returns the settings row, or nil when none exists and the config
// defaults should apply. Durations are stored as whole seconds.
func (r *SettingsRepo) Load(ctx context.Context) (*domain.AssignmentSettings, error) {
	var (
		s             domain.AssignmentSettings
		expirySec     int64
		checkSec      int64
		retryDelaySec int64
	)
	err := r.db.QueryRow(ctx, `
        SELECT max_retries, price_per_km, max_offers_per_driver,
               offer_expiry_seconds, assign_nearest_first,
               allow_multiple_drivers, fan_out_count, max_driver_distance_km,
               check_interval_seconds, retry_delay_seconds, enable_reassignment
        FROM assignment_settings
        LIMIT 1
    `).Scan(
		&s.MaxRetries, &s.PricePerKm, &s.MaxOffersPerDriver,
		&expirySec, &s.AssignNearestFirst,
		&s.AllowMultipleDrivers, &s.FanOutCount, &s.MaxDriverDistanceKm,
		&checkSec, &retryDelaySec, &s.EnableReassignment,
	)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load assignment settings: %w", err)
	}

	s.OfferExpiry = time.Duration(expirySec) * time.Second
	s.CheckInterval = time.Duration(checkSec) * time.Second
	s.RetryDelay = time.Duration(retryDelaySec) * time.Second
	s = s.Normalize()
	return &s, nil
}
