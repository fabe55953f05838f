package database

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zugo/transit-backend/internal/models"
	"github.com/zugo/transit-backend/internal/store"
)

func TestRouteRepositoryAdd(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRouteRepository(newMockDatabase(db))

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("R-138").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(`INSERT INTO routes`).
			WithArgs("r-1", "R-138", "Pettah - Homagama", 24.5, 75, 32, 120.0).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		route := &models.Route{
			ID: "r-1", Code: "r-138", Name: "Pettah - Homagama",
			DistanceKM: 24.5, DurationMin: 75, StopCount: 32, Fare: 120,
		}
		err := repo.Add(route)
		require.NoError(t, err)

		// The code is normalized before insertion
		assert.Equal(t, "R-138", route.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Code", func(t *testing.T) {
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("R-138").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := repo.Add(&models.Route{ID: "r-2", Code: "r-138", Name: "Duplicate"})
		assert.ErrorIs(t, err, store.ErrDuplicateRouteCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("R-999").
			WillReturnError(fmt.Errorf("database error"))

		err := repo.Add(&models.Route{ID: "r-3", Code: "R-999", Name: "Broken"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to check route code")
	})
}

func TestRouteRepositoryGetByCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRouteRepository(newMockDatabase(db))

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM routes`).
			WithArgs("R-120").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "code", "name", "distance_km", "duration_min", "stop_count", "fare", "created_at",
			}).AddRow("r-1", "R-120", "Colombo - Horana", 42.0, 110, 41, 180.0, time.Now()))

		// Lookup input is normalized the same way as stored codes
		route, err := repo.GetByCode("r-120")
		require.NoError(t, err)
		assert.Equal(t, "R-120", route.Code)
		assert.Equal(t, 41, route.StopCount)
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM routes`).
			WithArgs("R-999").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByCode("R-999")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

// Mock database implementation for testing. Wrapping the sqlmock
// connection in sqlx makes Get and Select work against the mock.
type mockDatabase struct {
	db *sqlx.DB
}

func newMockDatabase(db *sql.DB) *mockDatabase {
	return &mockDatabase{db: sqlx.NewDb(db, "sqlmock")}
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return m.db.Get(dest, query, args...)
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return m.db.Select(dest, query, args...)
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}
