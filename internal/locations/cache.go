// Package locations caches current driver coordinates in Redis GEO so the
// matcher ranks against fresh positions without hitting Postgres per driver.
package locations

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"service-dispatch/internal/domain"
)

const geoKey = "dispatch:drivers:geo"

// NewClient creates a Redis client, nil when the address is empty (cache
// disabled, the matcher falls back to stored coordinates).
func NewClient(addr string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr})
}

// Cache is a best-effort driver position cache. All methods tolerate a nil
// client and report a miss instead.
type Cache struct {
	rdb *redis.Client
}

// NewCache creates a Cache over the given client (nil disables it).
func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Set stores the driver position.
func (c *Cache) Set(ctx context.Context, driverID int64, loc domain.Coordinates) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	err := c.rdb.GeoAdd(ctx, geoKey, &redis.GeoLocation{
		Name:      strconv.FormatInt(driverID, 10),
		Longitude: loc.Lon,
		Latitude:  loc.Lat,
	}).Err()
	if err != nil {
		return fmt.Errorf("cache driver %d position: %w", driverID, err)
	}
	return nil
}

// Get returns the cached driver position, nil on a miss.
func (c *Cache) Get(ctx context.Context, driverID int64) (*domain.Coordinates, error) {
	if c == nil || c.rdb == nil {
		return nil, nil
	}
	pos, err := c.rdb.GeoPos(ctx, geoKey, strconv.FormatInt(driverID, 10)).Result()
	if err != nil {
		return nil, fmt.Errorf("read driver %d position: %w", driverID, err)
	}
	if len(pos) == 0 || pos[0] == nil {
		return nil, nil
	}
	return &domain.Coordinates{Lat: pos[0].Latitude, Lon: pos[0].Longitude}, nil
}

// Remove drops the driver from the cache (driver deleted or suspended).
func (c *Cache) Remove(ctx context.Context, driverID int64) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	if err := c.rdb.ZRem(ctx, geoKey, strconv.FormatInt(driverID, 10)).Err(); err != nil {
		return fmt.Errorf("remove driver %d position: %w", driverID, err)
	}
	return nil
}
