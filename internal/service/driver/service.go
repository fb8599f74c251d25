// Package driver is the courier registry: profile data, availability and the
// live position feed that matching reads from.
package driver

import (
	"context"
	"time"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
)

// Service manages couriers.
type Service struct {
	repo    driverRepository
	cache   locationCache
	offers  offerWithdrawer
	gateway profileGateway
	logger  logx.Logger
	now     func() time.Time
}

// NewService creates a driver Service. cache and gateway may be nil.
func NewService(repo driverRepository, cache locationCache, offers offerWithdrawer, gateway profileGateway, logger logx.Logger) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		offers:  offers,
		gateway: gateway,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Get returns a driver by ID.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Driver, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.ErrNotFound
	}
	return d, nil
}

// List returns drivers with optional pagination.
func (s *Service) List(ctx context.Context, limit, offset *int) ([]domain.Driver, error) {
	return s.repo.List(ctx, limit, offset)
}

// Create registers a new courier.
func (s *Service) Create(ctx context.Context, d *domain.Driver) (int64, error) {
	if d.Name == "" || !domain.ValidatePhone(d.Phone) {
		return 0, apperr.ErrInvalid
	}
	if d.AccountStatus == "" {
		d.AccountStatus = domain.DriverActive
	}
	if !d.AccountStatus.Valid() {
		return 0, apperr.ErrInvalid
	}
	if d.LocationUpdatedAt.IsZero() {
		d.LocationUpdatedAt = s.now()
	}

	id, err := s.repo.Create(ctx, d)
	if err != nil {
		return 0, err
	}

	s.logger.Info("driver registered",
		logx.String("event", "driver_registered"),
		logx.Int64("driver_id", id),
	)
	return id, nil
}

// UpdatePartial applies the non-nil fields of the update. Flipping
// availability off withdraws the driver's pending offers.
func (s *Service) UpdatePartial(ctx context.Context, u domain.PartialDriverUpdate) error {
	if u.Phone != nil && !domain.ValidatePhone(*u.Phone) {
		return apperr.ErrInvalid
	}
	if u.AccountStatus != nil && !u.AccountStatus.Valid() {
		return apperr.ErrInvalid
	}

	ok, err := s.repo.UpdatePartial(ctx, u)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}

	goesDark := u.Available != nil && !*u.Available
	if u.AccountStatus != nil && *u.AccountStatus != domain.DriverActive {
		goesDark = true
	}
	if goesDark {
		s.withdraw(ctx, u.ID)
	}
	return nil
}

// UpdateLocation stores the driver's position in both the table and the
// matching cache. The cache write is best effort; the table is the record.
func (s *Service) UpdateLocation(ctx context.Context, id int64, loc domain.Coordinates) error {
	if !loc.Valid() {
		return apperr.ErrInvalid
	}

	ok, err := s.repo.UpdateLocation(ctx, id, loc, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, id, loc); err != nil {
			s.logger.Warn("driver position cache write failed",
				logx.Int64("driver_id", id),
				logx.Any("err", err),
			)
		}
	}
	return nil
}

// SetAvailability flips the driver's availability. Going offline withdraws
// pending offers and evicts the cached position.
func (s *Service) SetAvailability(ctx context.Context, id int64, available bool) error {
	ok, err := s.repo.SetAvailability(ctx, id, available)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}

	if !available {
		s.withdraw(ctx, id)
		if s.cache != nil {
			if err := s.cache.Remove(ctx, id); err != nil {
				s.logger.Warn("driver position cache evict failed",
					logx.Int64("driver_id", id),
					logx.Any("err", err),
				)
			}
		}
	}

	s.logger.Info("driver availability changed",
		logx.String("event", "driver_availability"),
		logx.Int64("driver_id", id),
		logx.Bool("available", available),
	)
	return nil
}

// SyncProfile refreshes a driver from the marketplace profile service.
// Returns the updated driver, or ErrNotFound when neither side knows the ID.
func (s *Service) SyncProfile(ctx context.Context, id int64) (*domain.Driver, error) {
	if s.gateway == nil {
		return s.Get(ctx, id)
	}

	p, err := s.gateway.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return s.Get(ctx, id)
	}

	status := domain.DriverAccountStatus(p.AccountStatus)
	if !status.Valid() {
		status = domain.DriverSuspended
	}
	u := domain.PartialDriverUpdate{
		ID:            id,
		Name:          &p.Name,
		Phone:         &p.Phone,
		Available:     &p.Available,
		AccountStatus: &status,
		VehicleType:   &p.VehicleType,
	}

	ok, err := s.repo.UpdatePartial(ctx, u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if !p.Available || status != domain.DriverActive {
		s.withdraw(ctx, id)
	}

	return s.Get(ctx, id)
}

func (s *Service) withdraw(ctx context.Context, driverID int64) {
	if s.offers == nil {
		return
	}
	if _, err := s.offers.CancelForDriver(ctx, driverID); err != nil {
		s.logger.Error("offer withdrawal failed",
			logx.Int64("driver_id", driverID),
			logx.Any("err", err),
		)
	}
}
