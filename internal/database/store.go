package database

import (
	"github.com/zugo/transit-backend/internal/store"
)

// NewStore assembles the Postgres-backed implementation of the storage
// port from the per-entity repositories.
func NewStore(db DB) *store.Store {
	return &store.Store{
		Users:         NewUserRepository(db),
		Sessions:      NewSessionRepository(db),
		Buses:         NewBusRepository(db),
		Drivers:       NewDriverRepository(db),
		Routes:        NewRouteRepository(db),
		Trips:         NewTripRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}
