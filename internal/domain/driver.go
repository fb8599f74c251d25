package domain

import (
	"regexp"
	"time"
)

// Driver represents a delivery courier. Drivers are referenced, never owned:
// offer and cluster history survives driver deletion with the reference
// nulled out.
type Driver struct {
	ID                int64
	Name              string
	Phone             string
	Available         bool
	AccountStatus     DriverAccountStatus
	VehicleType       string
	Location          Coordinates
	LocationUpdatedAt time.Time
}

// Dispatchable reports whether the driver may receive offers.
func (d Driver) Dispatchable() bool {
	return d.Available && d.AccountStatus == DriverActive
}

// PartialDriverUpdate carries optional fields to update a driver.
// A nil field means “do not change” that attribute.
type PartialDriverUpdate struct {
	ID            int64
	Name          *string
	Phone         *string
	Available     *bool
	AccountStatus *DriverAccountStatus
	VehicleType   *string
}

// rePhone is a regex to validate phone numbers
var rePhone = regexp.MustCompile(`^\+[0-9]{9,14}$`)

// ValidatePhone validates the phone number format
func ValidatePhone(s string) bool {
	return rePhone.MatchString(s)
}
