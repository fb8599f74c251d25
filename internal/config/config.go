package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"service-dispatch/internal/domain"
)

// DB stores Postgres connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN builds a Postgres connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Pass, d.Host, d.Port, d.Name)
}

// Kafka stores Kafka consumer/producer settings. Empty brokers disable
// the Kafka transport entirely.
type Kafka struct {
	Brokers          []string
	GroupID          string
	DeliveryTopic    string
	StatusEventTopic string
}

// Redis stores the driver-location cache settings. Empty address disables
// the cache and the matcher reads coordinates from Postgres only.
type Redis struct {
	Addr string
}

// DriversGateway stores the profile-service gateway settings.
type DriversGateway struct {
	BaseURL     string
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RateLimit stores the token-bucket settings of the driver action routes.
type RateLimit struct {
	Enabled    bool
	Rate       float64
	Burst      int
	TTL        time.Duration
	MaxBuckets int
}

// Pprof stores the pprof server settings.
type Pprof struct {
	Port int
	User string
	Pass string
}

// Config stores dispatch service settings.
type Config struct {
	Port       int
	DB         DB
	Kafka      Kafka
	Redis      Redis
	Gateway    DriversGateway
	Pprof      Pprof
	RateLimit  RateLimit
	Assignment domain.AssignmentSettings
}

// Load reads configuration in order: .env (if present) → environment → flags.
// Assignment values act as defaults; the settings row in the database
// overrides them at startup.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:       envInt("PORT", DefaultPort()),
		DB:         loadDB(),
		Kafka:      loadKafka(),
		Redis:      Redis{Addr: os.Getenv("REDIS_ADDR")},
		Gateway:    loadGateway(),
		Pprof:      loadPprof(),
		RateLimit:  loadRateLimit(),
		Assignment: loadAssignment(),
	}

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.Parse()

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	return cfg, nil
}

func loadDB() DB {
	db := DefaultDB()
	db.Host = envStr("DB_HOST", db.Host)
	db.Port = envStr("DB_PORT", db.Port)
	db.User = envStr("DB_USER", db.User)
	db.Pass = envStr("DB_PASS", db.Pass)
	db.Name = envStr("DB_NAME", db.Name)
	return db
}

func loadKafka() Kafka {
	k := DefaultKafka()
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		k.Brokers = splitCSV(v)
	}
	k.GroupID = envStr("KAFKA_GROUP_ID", k.GroupID)
	k.DeliveryTopic = envStr("KAFKA_DELIVERY_TOPIC", k.DeliveryTopic)
	k.StatusEventTopic = envStr("KAFKA_STATUS_TOPIC", k.StatusEventTopic)
	return k
}

func loadGateway() DriversGateway {
	g := DefaultDriversGateway()
	g.BaseURL = envStr("DRIVERS_GATEWAY_URL", g.BaseURL)
	g.MaxAttempts = envInt("DRIVERS_GATEWAY_MAX_ATTEMPTS", g.MaxAttempts)
	g.BaseDelay = envDuration("DRIVERS_GATEWAY_BASE_DELAY", g.BaseDelay)
	g.MaxDelay = envDuration("DRIVERS_GATEWAY_MAX_DELAY", g.MaxDelay)
	return g
}

func loadPprof() Pprof {
	return Pprof{
		Port: envInt("PPROF_PORT", 0),
		User: os.Getenv("PPROF_USER"),
		Pass: os.Getenv("PPROF_PASS"),
	}
}

func loadRateLimit() RateLimit {
	rl := DefaultRateLimit()
	rl.Enabled = envBool("RATE_LIMIT_ENABLED", rl.Enabled)
	rl.Rate = envFloat("RATE_LIMIT_RATE", rl.Rate)
	rl.Burst = envInt("RATE_LIMIT_BURST", rl.Burst)
	rl.TTL = envDuration("RATE_LIMIT_TTL", rl.TTL)
	rl.MaxBuckets = envInt("RATE_LIMIT_MAX_BUCKETS", rl.MaxBuckets)
	return rl
}

func loadAssignment() domain.AssignmentSettings {
	s := DefaultAssignment()
	s.MaxRetries = envInt("ASSIGN_MAX_RETRIES", s.MaxRetries)
	s.PricePerKm = envFloat("ASSIGN_PRICE_PER_KM", s.PricePerKm)
	s.MaxOffersPerDriver = envInt("ASSIGN_MAX_OFFERS_PER_DRIVER", s.MaxOffersPerDriver)
	s.OfferExpiry = envDuration("ASSIGN_OFFER_EXPIRY", s.OfferExpiry)
	s.AssignNearestFirst = envBool("ASSIGN_NEAREST_FIRST", s.AssignNearestFirst)
	s.AllowMultipleDrivers = envBool("ASSIGN_ALLOW_MULTIPLE_DRIVERS", s.AllowMultipleDrivers)
	s.FanOutCount = envInt("ASSIGN_FAN_OUT_COUNT", s.FanOutCount)
	s.MaxDriverDistanceKm = envFloat("ASSIGN_MAX_DRIVER_DISTANCE_KM", s.MaxDriverDistanceKm)
	s.CheckInterval = envDuration("ASSIGN_CHECK_INTERVAL", s.CheckInterval)
	s.RetryDelay = envDuration("ASSIGN_RETRY_DELAY", s.RetryDelay)
	s.EnableReassignment = envBool("ASSIGN_ENABLE_REASSIGNMENT", s.EnableReassignment)
	return s.Normalize()
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
