package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zugo/transit-backend/internal/models"
	"github.com/zugo/transit-backend/internal/store"
)

func busRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "transporter_id", "number", "registration", "capacity",
		"status", "assigned_driver", "last_maintenance", "next_maintenance",
		"created_at", "updated_at",
	})
}

func TestBusRepositoryAdd(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBusRepository(newMockDatabase(db))

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`INSERT INTO buses`).
			WithArgs("b-1", "t-1", "BUS-101", "WP-NA-4521", 52,
				models.BusStatusActive, nil, nil, nil).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		bus := &models.Bus{
			ID: "b-1", TransporterID: "t-1", Number: "BUS-101",
			Registration: "WP-NA-4521", Capacity: 52, Status: models.BusStatusActive,
		}
		err := repo.Add(bus)
		require.NoError(t, err)
		assert.Equal(t, now, bus.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO buses`).
			WillReturnError(fmt.Errorf("database error"))

		err := repo.Add(&models.Bus{ID: "b-2", TransporterID: "t-1"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create bus")
	})
}

func TestBusRepositoryListByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBusRepository(newMockDatabase(db))

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM buses`).
		WithArgs("t-1", models.BusStatusMaintenance).
		WillReturnRows(busRows().
			AddRow("b-3", "t-1", "BUS-103", "WP-NB-1133", 48,
				"maintenance", nil, nil, nil, now, now).
			AddRow("b-6", "t-1", "BUS-106", "WP-NC-2211", 36,
				"maintenance", nil, nil, nil, now, now))

	buses, err := repo.ListByStatus("t-1", models.BusStatusMaintenance)
	require.NoError(t, err)
	assert.Len(t, buses, 2)
	assert.Equal(t, "BUS-103", buses[0].Number)
	assert.Nil(t, buses[0].AssignedDriver)
}

func TestBusRepositoryUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBusRepository(newMockDatabase(db))

	t.Run("Partial Update", func(t *testing.T) {
		now := time.Now()
		status := "maintenance"
		driver := "K. Bandara"

		// Only the provided fields appear in the SET clause
		mock.ExpectExec(`UPDATE buses SET status = \$1, assigned_driver = \$2, updated_at = NOW\(\) WHERE id = \$3`).
			WithArgs(status, driver, "b-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT (.+) FROM buses`).
			WithArgs("b-1").
			WillReturnRows(busRows().AddRow(
				"b-1", "t-1", "BUS-101", "WP-NA-4521", 52,
				status, driver, nil, nil, now, now))

		bus, err := repo.Update("b-1", &models.UpdateBusRequest{
			Status:         &status,
			AssignedDriver: &driver,
		})
		require.NoError(t, err)
		assert.Equal(t, models.BusStatusMaintenance, bus.Status)
		assert.Equal(t, "K. Bandara", *bus.AssignedDriver)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		status := "active"
		mock.ExpectExec(`UPDATE buses SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := repo.Update("missing", &models.UpdateBusRequest{Status: &status})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("Invalid Maintenance Date", func(t *testing.T) {
		bad := "03-2026-01"
		_, err := repo.Update("b-1", &models.UpdateBusRequest{LastMaintenance: &bad})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid last_maintenance format")
	})
}

func TestBusRepositoryRemove(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBusRepository(newMockDatabase(db))

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM buses`).
			WithArgs("b-1", "t-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Remove("b-1", "t-1"))
	})

	t.Run("Wrong Transporter", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM buses`).
			WithArgs("b-1", "t-2").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Remove("b-1", "t-2"), store.ErrNotFound)
	})
}

func TestBusRepositoryStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBusRepository(newMockDatabase(db))

	mock.ExpectQuery(`SELECT (.+) FROM buses`).
		WithArgs("t-1").
		WillReturnRows(sqlmock.NewRows([]string{"total", "active", "maintenance", "inactive"}).
			AddRow(8, 5, 2, 1))

	stats, err := repo.Stats("t-1")
	require.NoError(t, err)
	assert.Equal(t, models.FleetStats{Total: 8, Active: 5, Maintenance: 2, Inactive: 1}, stats)
}
