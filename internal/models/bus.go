package models

import (
	"errors"
	"time"
)

// BusStatus represents the current operational status of a bus
type BusStatus string

const (
	BusStatusActive      BusStatus = "active"
	BusStatusMaintenance BusStatus = "maintenance"
	BusStatusInactive    BusStatus = "inactive"
)

// ValidBusStatus reports whether the given string is a known bus status
func ValidBusStatus(s string) bool {
	switch BusStatus(s) {
	case BusStatusActive, BusStatusMaintenance, BusStatusInactive:
		return true
	}
	return false
}

// Bus represents a vehicle in a transporter's fleet.
//
// AssignedDriver is a denormalized driver name, not an id reference. Nothing
// prevents assigning an unknown driver, or the same driver to two buses.
type Bus struct {
	ID              string     `json:"id" db:"id"`
	TransporterID   string     `json:"transporter_id" db:"transporter_id"`
	Number          string     `json:"number" db:"number"`
	Registration    string     `json:"registration" db:"registration"`
	Capacity        int        `json:"capacity" db:"capacity"`
	Status          BusStatus  `json:"status" db:"status"`
	AssignedDriver  *string    `json:"assigned_driver,omitempty" db:"assigned_driver"`
	LastMaintenance *time.Time `json:"last_maintenance,omitempty" db:"last_maintenance"`
	NextMaintenance *time.Time `json:"next_maintenance,omitempty" db:"next_maintenance"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// CreateBusRequest represents the request to add a bus to the fleet
type CreateBusRequest struct {
	Number          string  `json:"number" binding:"required"`
	Registration    string  `json:"registration" binding:"required"`
	Capacity        int     `json:"capacity" binding:"required,gt=0"`
	Status          *string `json:"status,omitempty"`
	AssignedDriver  *string `json:"assigned_driver,omitempty"`
	LastMaintenance *string `json:"last_maintenance,omitempty"` // Format: YYYY-MM-DD
	NextMaintenance *string `json:"next_maintenance,omitempty"` // Format: YYYY-MM-DD
}

// UpdateBusRequest represents the request to update bus information
type UpdateBusRequest struct {
	Number          *string `json:"number,omitempty"`
	Registration    *string `json:"registration,omitempty"`
	Capacity        *int    `json:"capacity,omitempty"`
	Status          *string `json:"status,omitempty"`
	AssignedDriver  *string `json:"assigned_driver,omitempty"`
	LastMaintenance *string `json:"last_maintenance,omitempty"` // Format: YYYY-MM-DD
	NextMaintenance *string `json:"next_maintenance,omitempty"` // Format: YYYY-MM-DD
}

// FleetStats summarizes a transporter's fleet, computed on read
type FleetStats struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	Maintenance int `json:"maintenance"`
	Inactive    int `json:"inactive"`
}

// Validate validates the CreateBusRequest
func (req *CreateBusRequest) Validate() error {
	if req.Capacity <= 0 {
		return errors.New("capacity must be greater than 0")
	}
	if req.Status != nil && !ValidBusStatus(*req.Status) {
		return errors.New("invalid status: must be active, maintenance, or inactive")
	}
	if err := validateDateField(req.LastMaintenance, "last_maintenance"); err != nil {
		return err
	}
	return validateDateField(req.NextMaintenance, "next_maintenance")
}

// Validate validates the UpdateBusRequest
func (req *UpdateBusRequest) Validate() error {
	if req.Capacity != nil && *req.Capacity <= 0 {
		return errors.New("capacity must be greater than 0")
	}
	if req.Status != nil && !ValidBusStatus(*req.Status) {
		return errors.New("invalid status: must be active, maintenance, or inactive")
	}
	if err := validateDateField(req.LastMaintenance, "last_maintenance"); err != nil {
		return err
	}
	return validateDateField(req.NextMaintenance, "next_maintenance")
}

// ToBus builds a Bus from a validated create request. New buses default
// to active when no status is given.
func (req *CreateBusRequest) ToBus(id, transporterID string) *Bus {
	bus := &Bus{
		ID:            id,
		TransporterID: transporterID,
		Number:        req.Number,
		Registration:  req.Registration,
		Capacity:      req.Capacity,
		Status:        BusStatusActive,
	}
	if req.Status != nil {
		bus.Status = BusStatus(*req.Status)
	}
	if req.AssignedDriver != nil && *req.AssignedDriver != "" {
		driver := *req.AssignedDriver
		bus.AssignedDriver = &driver
	}
	bus.LastMaintenance = parseDateField(req.LastMaintenance)
	bus.NextMaintenance = parseDateField(req.NextMaintenance)
	return bus
}

// parseDateField converts a validated YYYY-MM-DD string to a time
func parseDateField(value *string) *time.Time {
	if value == nil {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil
	}
	return &parsed
}

func validateDateField(value *string, field string) error {
	if value == nil {
		return nil
	}
	if _, err := time.Parse("2006-01-02", *value); err != nil {
		return errors.New("invalid " + field + " format. Use YYYY-MM-DD")
	}
	return nil
}
