package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/zugo/transit-backend/internal/models"
	"github.com/zugo/transit-backend/internal/store"
)

// BusRepository handles database operations for buses
type BusRepository struct {
	db DB
}

// NewBusRepository creates a new BusRepository
func NewBusRepository(db DB) *BusRepository {
	return &BusRepository{db: db}
}

// Add creates a new bus
func (r *BusRepository) Add(bus *models.Bus) error {
	query := `
		INSERT INTO buses (
			id, transporter_id, number, registration, capacity,
			status, assigned_driver, last_maintenance, next_maintenance
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		bus.ID, bus.TransporterID, bus.Number, bus.Registration, bus.Capacity,
		bus.Status, bus.AssignedDriver, bus.LastMaintenance, bus.NextMaintenance,
	).Scan(&bus.CreatedAt, &bus.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bus: %w", err)
	}

	return nil
}

// GetByID retrieves a bus by ID
func (r *BusRepository) GetByID(id string) (*models.Bus, error) {
	query := `
		SELECT
			id, transporter_id, number, registration, capacity,
			status, assigned_driver, last_maintenance, next_maintenance,
			created_at, updated_at
		FROM buses
		WHERE id = $1
	`

	bus, err := scanBus(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bus: %w", err)
	}
	return bus, nil
}

// List retrieves all buses for a transporter
func (r *BusRepository) List(transporterID string) ([]models.Bus, error) {
	query := `
		SELECT
			id, transporter_id, number, registration, capacity,
			status, assigned_driver, last_maintenance, next_maintenance,
			created_at, updated_at
		FROM buses
		WHERE transporter_id = $1
		ORDER BY created_at DESC
	`
	return r.listBuses(query, transporterID)
}

// ListByStatus retrieves a transporter's buses with the given status
func (r *BusRepository) ListByStatus(transporterID string, status models.BusStatus) ([]models.Bus, error) {
	query := `
		SELECT
			id, transporter_id, number, registration, capacity,
			status, assigned_driver, last_maintenance, next_maintenance,
			created_at, updated_at
		FROM buses
		WHERE transporter_id = $1 AND status = $2
		ORDER BY created_at DESC
	`
	return r.listBuses(query, transporterID, status)
}

func (r *BusRepository) listBuses(query string, args ...interface{}) ([]models.Bus, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list buses: %w", err)
	}
	defer rows.Close()

	buses := []models.Bus{}
	for rows.Next() {
		bus, err := scanBus(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bus: %w", err)
		}
		buses = append(buses, *bus)
	}
	return buses, rows.Err()
}

// Update updates a bus with the non-nil fields of the request
func (r *BusRepository) Update(id string, req *models.UpdateBusRequest) (*models.Bus, error) {
	updates := []string{}
	args := []interface{}{}
	argCount := 1

	if req.Number != nil {
		updates = append(updates, fmt.Sprintf("number = $%d", argCount))
		args = append(args, *req.Number)
		argCount++
	}

	if req.Registration != nil {
		updates = append(updates, fmt.Sprintf("registration = $%d", argCount))
		args = append(args, *req.Registration)
		argCount++
	}

	if req.Capacity != nil {
		updates = append(updates, fmt.Sprintf("capacity = $%d", argCount))
		args = append(args, *req.Capacity)
		argCount++
	}

	if req.Status != nil {
		updates = append(updates, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *req.Status)
		argCount++
	}

	if req.AssignedDriver != nil {
		updates = append(updates, fmt.Sprintf("assigned_driver = $%d", argCount))
		if *req.AssignedDriver == "" {
			args = append(args, nil)
		} else {
			args = append(args, *req.AssignedDriver)
		}
		argCount++
	}

	if req.LastMaintenance != nil {
		date, err := time.Parse("2006-01-02", *req.LastMaintenance)
		if err != nil {
			return nil, fmt.Errorf("invalid last_maintenance format")
		}
		updates = append(updates, fmt.Sprintf("last_maintenance = $%d", argCount))
		args = append(args, date)
		argCount++
	}

	if req.NextMaintenance != nil {
		date, err := time.Parse("2006-01-02", *req.NextMaintenance)
		if err != nil {
			return nil, fmt.Errorf("invalid next_maintenance format")
		}
		updates = append(updates, fmt.Sprintf("next_maintenance = $%d", argCount))
		args = append(args, date)
		argCount++
	}

	if len(updates) == 0 {
		return r.GetByID(id)
	}

	updates = append(updates, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE buses SET %s WHERE id = $%d",
		strings.Join(updates, ", "), argCount,
	)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update bus: %w", err)
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

// Remove deletes a bus owned by the transporter
func (r *BusRepository) Remove(id, transporterID string) error {
	query := `DELETE FROM buses WHERE id = $1 AND transporter_id = $2`

	result, err := r.db.Exec(query, id, transporterID)
	if err != nil {
		return fmt.Errorf("failed to delete bus: %w", err)
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

// Stats returns fleet counts by status for a transporter
func (r *BusRepository) Stats(transporterID string) (models.FleetStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'active') AS active,
			COUNT(*) FILTER (WHERE status = 'maintenance') AS maintenance,
			COUNT(*) FILTER (WHERE status = 'inactive') AS inactive
		FROM buses
		WHERE transporter_id = $1
	`

	stats := models.FleetStats{}
	err := r.db.QueryRow(query, transporterID).Scan(
		&stats.Total, &stats.Active, &stats.Maintenance, &stats.Inactive,
	)
	if err != nil {
		return stats, fmt.Errorf("failed to get fleet stats: %w", err)
	}
	return stats, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan helpers
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBus(row scanner) (*models.Bus, error) {
	bus := &models.Bus{}
	var assignedDriver sql.NullString
	var lastMaintenance sql.NullTime
	var nextMaintenance sql.NullTime

	err := row.Scan(
		&bus.ID, &bus.TransporterID, &bus.Number, &bus.Registration, &bus.Capacity,
		&bus.Status, &assignedDriver, &lastMaintenance, &nextMaintenance,
		&bus.CreatedAt, &bus.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignedDriver.Valid {
		bus.AssignedDriver = &assignedDriver.String
	}
	if lastMaintenance.Valid {
		bus.LastMaintenance = &lastMaintenance.Time
	}
	if nextMaintenance.Valid {
		bus.NextMaintenance = &nextMaintenance.Time
	}
	return bus, nil
}
