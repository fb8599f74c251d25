package config

import (
	"time"

	"service-dispatch/internal/domain"
)

const defaultPort = 8080

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "dispatch",
	Pass: "dispatch",
	Name: "dispatch_db",
}

var defaultKafka = Kafka{
	GroupID:          "service-dispatch",
	DeliveryTopic:    "delivery.events",
	StatusEventTopic: "dispatch.cluster-status",
}

var defaultDriversGateway = DriversGateway{
	MaxAttempts: 4,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    200 * time.Millisecond,
}

var defaultRateLimit = RateLimit{
	Enabled:    true,
	Rate:       5,
	Burst:      10,
	TTL:        10 * time.Minute,
	MaxBuckets: 10000,
}

var defaultAssignment = domain.AssignmentSettings{
	MaxRetries:           5,
	PricePerKm:           5.0,
	MaxOffersPerDriver:   3,
	OfferExpiry:          10 * time.Minute,
	AssignNearestFirst:   true,
	AllowMultipleDrivers: false,
	FanOutCount:          3,
	MaxDriverDistanceKm:  15,
	CheckInterval:        30 * time.Second,
	RetryDelay:           time.Minute,
	EnableReassignment:   true,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultKafka returns the default Kafka settings.
func DefaultKafka() Kafka {
	return defaultKafka
}

// DefaultDriversGateway returns the default profile-service gateway settings.
func DefaultDriversGateway() DriversGateway {
	return defaultDriversGateway
}

// DefaultRateLimit returns the default driver-action rate limit settings.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}

// DefaultAssignment returns the default assignment settings.
func DefaultAssignment() domain.AssignmentSettings {
	return defaultAssignment
}
