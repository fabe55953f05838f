package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/zugo/transit-backend/internal/models"
	"github.com/zugo/transit-backend/internal/store"
)

// TripRepository handles database operations for scheduled trips
type TripRepository struct {
	db DB
}

// NewTripRepository creates a new TripRepository
func NewTripRepository(db DB) *TripRepository {
	return &TripRepository{db: db}
}

// Add creates a new trip. No conflict check is made against other trips
// using the same bus or driver.
func (r *TripRepository) Add(trip *models.Trip) error {
	query := `
		INSERT INTO trips (
			id, transporter_id, route_code, bus_number, driver_name,
			departure_time, arrival_time, repeat_days, status,
			passenger_count, revenue
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		trip.ID, trip.TransporterID, trip.RouteCode, trip.BusNumber, trip.DriverName,
		trip.DepartureTime, trip.ArrivalTime, trip.RepeatDays, trip.Status,
		trip.PassengerCount, trip.Revenue,
	).Scan(&trip.CreatedAt, &trip.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}

	return nil
}

// GetByID retrieves a trip by ID
func (r *TripRepository) GetByID(id string) (*models.Trip, error) {
	query := `
		SELECT
			id, transporter_id, route_code, bus_number, driver_name,
			departure_time, arrival_time, repeat_days, status,
			passenger_count, revenue, created_at, updated_at
		FROM trips
		WHERE id = $1
	`

	trip := &models.Trip{}
	err := r.db.Get(trip, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return trip, nil
}

// List retrieves all trips for a transporter
func (r *TripRepository) List(transporterID string) ([]models.Trip, error) {
	query := `
		SELECT
			id, transporter_id, route_code, bus_number, driver_name,
			departure_time, arrival_time, repeat_days, status,
			passenger_count, revenue, created_at, updated_at
		FROM trips
		WHERE transporter_id = $1
		ORDER BY departure_time
	`

	trips := []models.Trip{}
	if err := r.db.Select(&trips, query, transporterID); err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	return trips, nil
}

// ListByStatus retrieves a transporter's trips with the given status
func (r *TripRepository) ListByStatus(transporterID string, status models.TripStatus) ([]models.Trip, error) {
	query := `
		SELECT
			id, transporter_id, route_code, bus_number, driver_name,
			departure_time, arrival_time, repeat_days, status,
			passenger_count, revenue, created_at, updated_at
		FROM trips
		WHERE transporter_id = $1 AND status = $2
		ORDER BY departure_time
	`

	trips := []models.Trip{}
	if err := r.db.Select(&trips, query, transporterID, status); err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	return trips, nil
}

// Update updates a trip with the non-nil fields of the request
func (r *TripRepository) Update(id string, req *models.UpdateTripRequest) (*models.Trip, error) {
	updates := []string{}
	args := []interface{}{}
	argCount := 1

	if req.DepartureTime != nil {
		updates = append(updates, fmt.Sprintf("departure_time = $%d", argCount))
		args = append(args, *req.DepartureTime)
		argCount++
	}

	if req.ArrivalTime != nil {
		updates = append(updates, fmt.Sprintf("arrival_time = $%d", argCount))
		args = append(args, *req.ArrivalTime)
		argCount++
	}

	if req.RepeatDays != nil {
		updates = append(updates, fmt.Sprintf("repeat_days = $%d", argCount))
		args = append(args, *req.RepeatDays)
		argCount++
	}

	if req.Status != nil {
		updates = append(updates, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *req.Status)
		argCount++
	}

	if req.PassengerCount != nil {
		updates = append(updates, fmt.Sprintf("passenger_count = $%d", argCount))
		args = append(args, *req.PassengerCount)
		argCount++
	}

	if req.Revenue != nil {
		updates = append(updates, fmt.Sprintf("revenue = $%d", argCount))
		args = append(args, *req.Revenue)
		argCount++
	}

	if len(updates) == 0 {
		return r.GetByID(id)
	}

	updates = append(updates, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE trips SET %s WHERE id = $%d",
		strings.Join(updates, ", "), argCount,
	)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update trip: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return r.GetByID(id)
}

// Remove deletes a trip owned by the transporter
func (r *TripRepository) Remove(id, transporterID string) error {
	query := `DELETE FROM trips WHERE id = $1 AND transporter_id = $2`

	result, err := r.db.Exec(query, id, transporterID)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Stats returns trip counts by status plus passenger and revenue totals
func (r *TripRepository) Stats(transporterID string) (models.TripStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'active') AS active,
			COUNT(*) FILTER (WHERE status = 'upcoming') AS upcoming,
			COUNT(*) FILTER (WHERE status = 'delayed') AS delayed,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed,
			COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled,
			COALESCE(SUM(passenger_count), 0) AS total_passengers,
			COALESCE(SUM(revenue), 0) AS total_revenue
		FROM trips
		WHERE transporter_id = $1
	`

	stats := models.TripStats{}
	err := r.db.QueryRow(query, transporterID).Scan(
		&stats.Total, &stats.Active, &stats.Upcoming, &stats.Delayed,
		&stats.Completed, &stats.Cancelled, &stats.TotalPassengers, &stats.TotalRevenue,
	)
	if err != nil {
		return stats, fmt.Errorf("failed to get trip stats: %w", err)
	}
	return stats, nil
}
