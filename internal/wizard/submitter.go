package wizard

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/zugo/transit-backend/internal/models"
	"github.com/zugo/transit-backend/internal/store"
)

// StoreSubmitter persists completed drafts as upcoming trips. It trusts
// the denormalized route code, bus number, and driver name carried in
// the draft rather than re-reading the referenced records, so a trip
// can be scheduled against resources that were removed mid-flow.
type StoreSubmitter struct {
	trips store.TripStore
}

// NewStoreSubmitter creates a submitter backed by the trip store
func NewStoreSubmitter(trips store.TripStore) *StoreSubmitter {
	return &StoreSubmitter{trips: trips}
}

// Submit appends the draft as a new upcoming trip
func (s *StoreSubmitter) Submit(ownerID string, draft Draft) (*models.Trip, error) {
	trip := &models.Trip{
		ID:            uuid.New().String(),
		TransporterID: ownerID,
		RouteCode:     draft.RouteCode,
		BusNumber:     draft.BusNumber,
		DriverName:    draft.DriverName,
		DepartureTime: draft.DepartureTime,
		ArrivalTime:   draft.ArrivalTime,
		RepeatDays:    models.IntSliceToString(draft.RepeatDays),
		Status:        models.TripStatusUpcoming,
	}
	if err := s.trips.Add(trip); err != nil {
		return nil, fmt.Errorf("failed to store scheduled trip: %w", err)
	}
	return trip, nil
}
