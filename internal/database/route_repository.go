package database

import (
	"database/sql"
	"fmt"

	"github.com/zugo/transit-backend/internal/models"
	"github.com/zugo/transit-backend/internal/store"
)

// RouteRepository handles database operations for service routes
type RouteRepository struct {
	db DB
}

// NewRouteRepository creates a new RouteRepository
func NewRouteRepository(db DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// Add creates a new route. The code is normalized to uppercase and must
// not collide with an existing route's code.
func (r *RouteRepository) Add(route *models.Route) error {
	route.Code = models.NormalizeRouteCode(route.Code)

	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM routes WHERE code = $1)`
	if err := r.db.QueryRow(checkQuery, route.Code).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check route code: %w", err)
	}
	if exists {
		return store.ErrDuplicateRouteCode
	}

	query := `
		INSERT INTO routes (
			id, code, name, distance_km, duration_min, stop_count, fare
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.db.QueryRow(
		query,
		route.ID, route.Code, route.Name, route.DistanceKM,
		route.DurationMin, route.StopCount, route.Fare,
	).Scan(&route.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create route: %w", err)
	}

	return nil
}

// GetByID retrieves a route by ID
func (r *RouteRepository) GetByID(id string) (*models.Route, error) {
	query := `
		SELECT id, code, name, distance_km, duration_min, stop_count, fare, created_at
		FROM routes
		WHERE id = $1
	`

	route := &models.Route{}
	err := r.db.Get(route, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	return route, nil
}

// GetByCode retrieves a route by its normalized code
func (r *RouteRepository) GetByCode(code string) (*models.Route, error) {
	query := `
		SELECT id, code, name, distance_km, duration_min, stop_count, fare, created_at
		FROM routes
		WHERE code = $1
	`

	route := &models.Route{}
	err := r.db.Get(route, query, models.NormalizeRouteCode(code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	return route, nil
}

// List retrieves all routes
func (r *RouteRepository) List() ([]models.Route, error) {
	query := `
		SELECT id, code, name, distance_km, duration_min, stop_count, fare, created_at
		FROM routes
		ORDER BY code
	`

	routes := []models.Route{}
	if err := r.db.Select(&routes, query); err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	return routes, nil
}
