package models

import (
	"errors"
	"strings"
	"time"
)

// Route represents a service route. Codes are unique among existing routes;
// routes are never edited or deleted once created.
type Route struct {
	ID          string    `json:"id" db:"id"`
	Code        string    `json:"code" db:"code"`
	Name        string    `json:"name" db:"name"`
	DistanceKM  float64   `json:"distance_km" db:"distance_km"`
	DurationMin int       `json:"duration_min" db:"duration_min"`
	StopCount   int       `json:"stop_count" db:"stop_count"`
	Fare        float64   `json:"fare" db:"fare"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CreateRouteRequest represents the request to register a route
type CreateRouteRequest struct {
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	DistanceKM  float64 `json:"distance_km" binding:"required,gt=0"`
	DurationMin int     `json:"duration_min" binding:"required,gt=0"`
	StopCount   int     `json:"stop_count"`
	Fare        float64 `json:"fare" binding:"required,gt=0"`
}

// NormalizeRouteCode normalizes a route code for uniqueness comparison
func NormalizeRouteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ToRoute builds a Route from a validated create request
func (req *CreateRouteRequest) ToRoute(id string) *Route {
	return &Route{
		ID:          id,
		Code:        NormalizeRouteCode(req.Code),
		Name:        req.Name,
		DistanceKM:  req.DistanceKM,
		DurationMin: req.DurationMin,
		StopCount:   req.StopCount,
		Fare:        req.Fare,
	}
}

// Validate validates the CreateRouteRequest
func (req *CreateRouteRequest) Validate() error {
	if NormalizeRouteCode(req.Code) == "" {
		return errors.New("route code cannot be empty")
	}
	if req.DistanceKM <= 0 {
		return errors.New("distance_km must be greater than 0")
	}
	if req.DurationMin <= 0 {
		return errors.New("duration_min must be greater than 0")
	}
	if req.StopCount < 0 {
		return errors.New("stop_count cannot be negative")
	}
	if req.Fare <= 0 {
		return errors.New("fare must be greater than 0")
	}
	return nil
}
