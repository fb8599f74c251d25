package domain

import "time"

// AssignmentSettings is the per-run dispatch configuration. It is loaded once
// at process start (singleton settings row, falling back to config defaults)
// and passed read-only to every component constructor.
type AssignmentSettings struct {
	MaxRetries           int
	PricePerKm           float64
	MaxOffersPerDriver   int
	OfferExpiry          time.Duration
	AssignNearestFirst   bool
	AllowMultipleDrivers bool
	FanOutCount          int
	MaxDriverDistanceKm  float64
	CheckInterval        time.Duration
	RetryDelay           time.Duration
	EnableReassignment   bool
}

// Normalize clamps nonsensical values to safe minimums.
func (s AssignmentSettings) Normalize() AssignmentSettings {
	if s.MaxRetries < 0 {
		s.MaxRetries = 0
	}
	if s.PricePerKm < 0 {
		s.PricePerKm = 0
	}
	if s.MaxOffersPerDriver <= 0 {
		s.MaxOffersPerDriver = 1
	}
	if s.OfferExpiry <= 0 {
		s.OfferExpiry = time.Minute
	}
	if s.FanOutCount <= 0 {
		s.FanOutCount = 1
	}
	if s.MaxDriverDistanceKm <= 0 {
		s.MaxDriverDistanceKm = 1
	}
	if s.CheckInterval <= 0 {
		s.CheckInterval = time.Second
	}
	if s.RetryDelay < 0 {
		s.RetryDelay = 0
	}
	return s
}
