package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TripStatus represents the lifecycle state of a scheduled trip
type TripStatus string

const (
	TripStatusActive    TripStatus = "active"
	TripStatusUpcoming  TripStatus = "upcoming"
	TripStatusDelayed   TripStatus = "delayed"
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
)

// ValidTripStatus reports whether the given string is a known trip status
func ValidTripStatus(s string) bool {
	switch TripStatus(s) {
	case TripStatusActive, TripStatusUpcoming, TripStatusDelayed,
		TripStatusCompleted, TripStatusCancelled:
		return true
	}
	return false
}

// Trip represents a repeating scheduled trip. Bus, driver, and route are
// referenced by denormalized values; no overlap checking is performed
// against other trips using the same bus or driver.
type Trip struct {
	ID             string     `json:"id" db:"id"`
	TransporterID  string     `json:"transporter_id" db:"transporter_id"`
	RouteCode      string     `json:"route_code" db:"route_code"`
	BusNumber      string     `json:"bus_number" db:"bus_number"`
	DriverName     string     `json:"driver_name" db:"driver_name"`
	DepartureTime  string     `json:"departure_time" db:"departure_time"` // HH:MM
	ArrivalTime    string     `json:"arrival_time" db:"arrival_time"`     // HH:MM
	RepeatDays     string     `json:"repeat_days" db:"repeat_days"`       // "0,1,2" (comma-separated weekday numbers, 0=Sunday)
	Status         TripStatus `json:"status" db:"status"`
	PassengerCount int        `json:"passenger_count" db:"passenger_count"`
	Revenue        float64    `json:"revenue" db:"revenue"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// UpdateTripRequest represents the request to update a trip
type UpdateTripRequest struct {
	DepartureTime  *string  `json:"departure_time,omitempty"`
	ArrivalTime    *string  `json:"arrival_time,omitempty"`
	RepeatDays     *string  `json:"repeat_days,omitempty"`
	Status         *string  `json:"status,omitempty"`
	PassengerCount *int     `json:"passenger_count,omitempty"`
	Revenue        *float64 `json:"revenue,omitempty"`
}

// TripStats aggregates trips, computed on read
type TripStats struct {
	Total           int     `json:"total"`
	Active          int     `json:"active"`
	Upcoming        int     `json:"upcoming"`
	Delayed         int     `json:"delayed"`
	Completed       int     `json:"completed"`
	Cancelled       int     `json:"cancelled"`
	TotalPassengers int     `json:"total_passengers"`
	TotalRevenue    float64 `json:"total_revenue"`
}

// Validate validates the UpdateTripRequest
func (req *UpdateTripRequest) Validate() error {
	if req.DepartureTime != nil {
		if err := ValidateClockTime(*req.DepartureTime); err != nil {
			return err
		}
	}
	if req.ArrivalTime != nil {
		if err := ValidateClockTime(*req.ArrivalTime); err != nil {
			return err
		}
	}
	if req.RepeatDays != nil {
		if _, err := StringToIntSlice(*req.RepeatDays); err != nil {
			return err
		}
	}
	if req.Status != nil && !ValidTripStatus(*req.Status) {
		return errors.New("invalid status: must be active, upcoming, delayed, completed, or cancelled")
	}
	if req.PassengerCount != nil && *req.PassengerCount < 0 {
		return errors.New("passenger_count cannot be negative")
	}
	if req.Revenue != nil && *req.Revenue < 0 {
		return errors.New("revenue cannot be negative")
	}
	return nil
}

// GetRepeatDaysSlice parses the comma-separated repeat_days string into []int
func (t *Trip) GetRepeatDaysSlice() ([]int, error) {
	if t.RepeatDays == "" {
		return []int{}, nil
	}
	return StringToIntSlice(t.RepeatDays)
}

// SetRepeatDaysFromSlice converts []int to a comma-separated string
func (t *Trip) SetRepeatDaysFromSlice(days []int) {
	t.RepeatDays = IntSliceToString(days)
}

// ValidateClockTime checks a wall-clock time string in HH:MM format
func ValidateClockTime(value string) error {
	if _, err := time.Parse("15:04", value); err != nil {
		return errors.New("invalid time format. Use HH:MM")
	}
	return nil
}

// IntSliceToString converts []int to a comma-separated string (e.g. "1,2,3")
func IntSliceToString(slice []int) string {
	if len(slice) == 0 {
		return ""
	}
	strSlice := make([]string, len(slice))
	for i, v := range slice {
		strSlice[i] = strconv.Itoa(v)
	}
	return strings.Join(strSlice, ",")
}

// StringToIntSlice converts a comma-separated string to []int
func StringToIntSlice(str string) ([]int, error) {
	if str == "" {
		return []int{}, nil
	}
	parts := strings.Split(str, ",")
	result := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid integer in string: %s", part)
		}
		result = append(result, num)
	}
	return result, nil
}
