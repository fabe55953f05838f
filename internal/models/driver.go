package models

import (
	"errors"
	"time"
)

// DriverStatus represents a driver's duty state
type DriverStatus string

const (
	DriverStatusOnDuty  DriverStatus = "on-duty"
	DriverStatusOnline  DriverStatus = "online"
	DriverStatusOffline DriverStatus = "offline"
)

// ValidDriverStatus reports whether the given string is a known driver status
func ValidDriverStatus(s string) bool {
	switch DriverStatus(s) {
	case DriverStatusOnDuty, DriverStatusOnline, DriverStatusOffline:
		return true
	}
	return false
}

// Driver represents a driver employed by a transporter.
//
// AssignedBus is a denormalized bus number, mirroring Bus.AssignedDriver.
type Driver struct {
	ID            string       `json:"id" db:"id"`
	TransporterID string       `json:"transporter_id" db:"transporter_id"`
	Name          string       `json:"name" db:"name"`
	Contact       string       `json:"contact" db:"contact"`
	LicenseNumber string       `json:"license_number" db:"license_number"`
	LicenseExpiry *time.Time   `json:"license_expiry,omitempty" db:"license_expiry"`
	Status        DriverStatus `json:"status" db:"status"`
	AssignedBus   *string      `json:"assigned_bus,omitempty" db:"assigned_bus"`
	Rating        float64      `json:"rating" db:"rating"`
	TripCount     int          `json:"trip_count" db:"trip_count"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// CreateDriverRequest represents the request to add a driver
type CreateDriverRequest struct {
	Name          string  `json:"name" binding:"required"`
	Contact       string  `json:"contact" binding:"required"`
	LicenseNumber string  `json:"license_number" binding:"required"`
	LicenseExpiry *string `json:"license_expiry,omitempty"` // Format: YYYY-MM-DD
	AssignedBus   *string `json:"assigned_bus,omitempty"`
}

// UpdateDriverRequest represents the request to update driver information
type UpdateDriverRequest struct {
	Name          *string  `json:"name,omitempty"`
	Contact       *string  `json:"contact,omitempty"`
	LicenseNumber *string  `json:"license_number,omitempty"`
	LicenseExpiry *string  `json:"license_expiry,omitempty"` // Format: YYYY-MM-DD
	Status        *string  `json:"status,omitempty"`
	AssignedBus   *string  `json:"assigned_bus,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
}

// DriverStats summarizes a transporter's drivers, computed on read
type DriverStats struct {
	Total   int `json:"total"`
	OnDuty  int `json:"on_duty"`
	Online  int `json:"online"`
	Offline int `json:"offline"`
}

// Validate validates the CreateDriverRequest
func (req *CreateDriverRequest) Validate() error {
	return validateDateField(req.LicenseExpiry, "license_expiry")
}

// ToDriver builds a Driver from a validated create request. New drivers
// start offline with no rating or trip history.
func (req *CreateDriverRequest) ToDriver(id, transporterID string) *Driver {
	driver := &Driver{
		ID:            id,
		TransporterID: transporterID,
		Name:          req.Name,
		Contact:       req.Contact,
		LicenseNumber: req.LicenseNumber,
		Status:        DriverStatusOffline,
	}
	if req.AssignedBus != nil && *req.AssignedBus != "" {
		bus := *req.AssignedBus
		driver.AssignedBus = &bus
	}
	driver.LicenseExpiry = parseDateField(req.LicenseExpiry)
	return driver
}

// Validate validates the UpdateDriverRequest
func (req *UpdateDriverRequest) Validate() error {
	if req.Status != nil && !ValidDriverStatus(*req.Status) {
		return errors.New("invalid status: must be on-duty, online, or offline")
	}
	if req.Rating != nil && (*req.Rating < 0 || *req.Rating > 5) {
		return errors.New("rating must be between 0 and 5")
	}
	return validateDateField(req.LicenseExpiry, "license_expiry")
}
