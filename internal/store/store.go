// Package store defines the storage port for the transit domain and its
// in-memory implementation. Both the seeded in-memory store and the
// Postgres repositories in internal/database satisfy these interfaces;
// the implementation is chosen at application start.
package store

import (
	"errors"

	"github.com/google/uuid"

	"github.com/zugo/transit-backend/internal/models"
)

var (
	// ErrNotFound indicates a record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateRouteCode indicates a route with the same normalized code
	// already exists. Route codes are the only uniqueness the store enforces.
	ErrDuplicateRouteCode = errors.New("a route with this code already exists")
)

// BusStore handles fleet persistence for transporters
type BusStore interface {
	Add(bus *models.Bus) error
	GetByID(id string) (*models.Bus, error)
	List(transporterID string) ([]models.Bus, error)
	ListByStatus(transporterID string, status models.BusStatus) ([]models.Bus, error)
	Update(id string, req *models.UpdateBusRequest) (*models.Bus, error)
	Remove(id, transporterID string) error
	Stats(transporterID string) (models.FleetStats, error)
}

// DriverStore handles driver persistence for transporters
type DriverStore interface {
	Add(driver *models.Driver) error
	GetByID(id string) (*models.Driver, error)
	List(transporterID string) ([]models.Driver, error)
	ListByStatus(transporterID string, status models.DriverStatus) ([]models.Driver, error)
	Update(id string, req *models.UpdateDriverRequest) (*models.Driver, error)
	Remove(id, transporterID string) error
	Stats(transporterID string) (models.DriverStats, error)
}

// RouteStore handles service route persistence. Routes are shared across
// the network and are never edited or deleted after creation.
type RouteStore interface {
	Add(route *models.Route) error
	GetByID(id string) (*models.Route, error)
	GetByCode(code string) (*models.Route, error)
	List() ([]models.Route, error)
}

// TripStore handles scheduled trip persistence for transporters
type TripStore interface {
	Add(trip *models.Trip) error
	GetByID(id string) (*models.Trip, error)
	List(transporterID string) ([]models.Trip, error)
	ListByStatus(transporterID string, status models.TripStatus) ([]models.Trip, error)
	Update(id string, req *models.UpdateTripRequest) (*models.Trip, error)
	Remove(id, transporterID string) error
	Stats(transporterID string) (models.TripStats, error)
}

// UserStore handles account persistence
type UserStore interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	EmailExists(email string) (bool, error)
	UpdateProfile(id uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error)
	SetEmailVerified(email string) error
	UpdatePassword(id uuid.UUID, passwordHash string) error
	RecordLogin(id uuid.UUID) error
}

// SessionStore records logged-in devices per user
type SessionStore interface {
	Record(session *models.UserSession) error
	ListByUser(userID uuid.UUID) ([]models.UserSession, error)
	Deactivate(id, userID uuid.UUID) error
}

// NotificationStore handles per-user notifications
type NotificationStore interface {
	Add(notification *models.Notification) error
	List(userID string) ([]models.Notification, error)
	MarkRead(id, userID string) error
	MarkAllRead(userID string) error
	Dismiss(id, userID string) error
}

// Store aggregates the per-entity stores handed to the HTTP layer
type Store struct {
	Users         UserStore
	Sessions      SessionStore
	Buses         BusStore
	Drivers       DriverStore
	Routes        RouteStore
	Trips         TripStore
	Notifications NotificationStore
}

// ErrDuplicateEmail indicates an account with the same email already exists
var ErrDuplicateEmail = errors.New("an account with this email already exists")
