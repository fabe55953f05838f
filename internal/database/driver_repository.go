package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/zugo/transit-backend/internal/models"
	"github.com/zugo/transit-backend/internal/store"
)

// DriverRepository handles database operations for drivers
type DriverRepository struct {
	db DB
}

// NewDriverRepository creates a new DriverRepository
func NewDriverRepository(db DB) *DriverRepository {
	return &DriverRepository{db: db}
}

// Add creates a new driver
func (r *DriverRepository) Add(driver *models.Driver) error {
	query := `
		INSERT INTO drivers (
			id, transporter_id, name, contact, license_number,
			license_expiry, status, assigned_bus, rating, trip_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		driver.ID, driver.TransporterID, driver.Name, driver.Contact, driver.LicenseNumber,
		driver.LicenseExpiry, driver.Status, driver.AssignedBus, driver.Rating, driver.TripCount,
	).Scan(&driver.CreatedAt, &driver.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}

	return nil
}

// GetByID retrieves a driver by ID
func (r *DriverRepository) GetByID(id string) (*models.Driver, error) {
	query := `
		SELECT
			id, transporter_id, name, contact, license_number,
			license_expiry, status, assigned_bus, rating, trip_count,
			created_at, updated_at
		FROM drivers
		WHERE id = $1
	`

	driver, err := scanDriver(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}
	return driver, nil
}

// List retrieves all drivers for a transporter
func (r *DriverRepository) List(transporterID string) ([]models.Driver, error) {
	query := `
		SELECT
			id, transporter_id, name, contact, license_number,
			license_expiry, status, assigned_bus, rating, trip_count,
			created_at, updated_at
		FROM drivers
		WHERE transporter_id = $1
		ORDER BY created_at DESC
	`
	return r.listDrivers(query, transporterID)
}

// ListByStatus retrieves a transporter's drivers with the given status
func (r *DriverRepository) ListByStatus(transporterID string, status models.DriverStatus) ([]models.Driver, error) {
	query := `
		SELECT
			id, transporter_id, name, contact, license_number,
			license_expiry, status, assigned_bus, rating, trip_count,
			created_at, updated_at
		FROM drivers
		WHERE transporter_id = $1 AND status = $2
		ORDER BY created_at DESC
	`
	return r.listDrivers(query, transporterID, status)
}

func (r *DriverRepository) listDrivers(query string, args ...interface{}) ([]models.Driver, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	defer rows.Close()

	drivers := []models.Driver{}
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan driver: %w", err)
		}
		drivers = append(drivers, *driver)
	}
	return drivers, rows.Err()
}

// Update updates a driver with the non-nil fields of the request
func (r *DriverRepository) Update(id string, req *models.UpdateDriverRequest) (*models.Driver, error) {
	updates := []string{}
	args := []interface{}{}
	argCount := 1

	if req.Name != nil {
		updates = append(updates, fmt.Sprintf("name = $%d", argCount))
		args = append(args, *req.Name)
		argCount++
	}

	if req.Contact != nil {
		updates = append(updates, fmt.Sprintf("contact = $%d", argCount))
		args = append(args, *req.Contact)
		argCount++
	}

	if req.LicenseNumber != nil {
		updates = append(updates, fmt.Sprintf("license_number = $%d", argCount))
		args = append(args, *req.LicenseNumber)
		argCount++
	}

	if req.LicenseExpiry != nil {
		date, err := time.Parse("2006-01-02", *req.LicenseExpiry)
		if err != nil {
			return nil, fmt.Errorf("invalid license_expiry format")
		}
		updates = append(updates, fmt.Sprintf("license_expiry = $%d", argCount))
		args = append(args, date)
		argCount++
	}

	if req.Status != nil {
		updates = append(updates, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *req.Status)
		argCount++
	}

	if req.AssignedBus != nil {
		updates = append(updates, fmt.Sprintf("assigned_bus = $%d", argCount))
		if *req.AssignedBus == "" {
			args = append(args, nil)
		} else {
			args = append(args, *req.AssignedBus)
		}
		argCount++
	}

	if req.Rating != nil {
		updates = append(updates, fmt.Sprintf("rating = $%d", argCount))
		args = append(args, *req.Rating)
		argCount++
	}

	if len(updates) == 0 {
		return r.GetByID(id)
	}

	updates = append(updates, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE drivers SET %s WHERE id = $%d",
		strings.Join(updates, ", "), argCount,
	)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update driver: %w", err)
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

// Remove deletes a driver owned by the transporter
func (r *DriverRepository) Remove(id, transporterID string) error {
	query := `DELETE FROM drivers WHERE id = $1 AND transporter_id = $2`

	result, err := r.db.Exec(query, id, transporterID)
	if err != nil {
		return fmt.Errorf("failed to delete driver: %w", err)
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

// Stats returns driver counts by status for a transporter
func (r *DriverRepository) Stats(transporterID string) (models.DriverStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'on-duty') AS on_duty,
			COUNT(*) FILTER (WHERE status = 'online') AS online,
			COUNT(*) FILTER (WHERE status = 'offline') AS offline
		FROM drivers
		WHERE transporter_id = $1
	`

	stats := models.DriverStats{}
	err := r.db.QueryRow(query, transporterID).Scan(
		&stats.Total, &stats.OnDuty, &stats.Online, &stats.Offline,
	)
	if err != nil {
		return stats, fmt.Errorf("failed to get driver stats: %w", err)
	}
	return stats, nil
}

func scanDriver(row scanner) (*models.Driver, error) {
	driver := &models.Driver{}
	var licenseExpiry sql.NullTime
	var assignedBus sql.NullString

	err := row.Scan(
		&driver.ID, &driver.TransporterID, &driver.Name, &driver.Contact, &driver.LicenseNumber,
		&licenseExpiry, &driver.Status, &assignedBus, &driver.Rating, &driver.TripCount,
		&driver.CreatedAt, &driver.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if licenseExpiry.Valid {
		driver.LicenseExpiry = &licenseExpiry.Time
	}
	if assignedBus.Valid {
		driver.AssignedBus = &assignedBus.String
	}
	return driver, nil
}
