// Package drivers talks to the marketplace profile service, the system of
// record for courier identity and account status.
package drivers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Profile is a courier profile as exposed by the profile service.
type Profile struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	Available     bool    `json:"available"`
	AccountStatus string  `json:"account_status"`
	VehicleType   string  `json:"vehicle_type"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
}

// StatusError is an unexpected HTTP status from the profile service.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("profile service status %d", e.Code)
}

// HTTPGateway is a drivers gateway backed by the profile service REST API.
type HTTPGateway struct {
	base   string
	client *http.Client
}

// NewHTTPGateway creates a drivers gateway, nil when no base URL is set.
func NewHTTPGateway(baseURL string) *HTTPGateway {
	if baseURL == "" {
		return nil
	}
	return &HTTPGateway{
		base:   baseURL,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// GetByID fetches one courier profile. Returns nil when the profile service
// does not know the driver.
func (g *HTTPGateway) GetByID(ctx context.Context, id int64) (*Profile, error) {
	url := fmt.Sprintf("%s/drivers/%d", g.base, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("drivers gateway: build request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("drivers gateway: GetByID: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("drivers gateway: decode profile: %w", err)
	}
	return &p, nil
}

// ListAvailable fetches every courier currently marked available.
func (g *HTTPGateway) ListAvailable(ctx context.Context) ([]Profile, error) {
	url := g.base + "/drivers?available=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("drivers gateway: build request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("drivers gateway: ListAvailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var list []Profile
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("drivers gateway: decode profiles: %w", err)
	}
	return list, nil
}
