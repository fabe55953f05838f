package store

import (
	"sync"
	"time"

	"github.com/zugo/transit-backend/internal/models"
)

// NewMemoryStore creates an empty in-memory store. Contents live for the
// process lifetime only; nothing is persisted. Mutations are
// copy-on-write: each one produces a new collection that replaces the
// previous one.
func NewMemoryStore() *Store {
	return &Store{
		Users:         &memoryUserStore{},
		Sessions:      &memorySessionStore{},
		Buses:         &memoryBusStore{},
		Drivers:       &memoryDriverStore{},
		Routes:        &memoryRouteStore{},
		Trips:         &memoryTripStore{},
		Notifications: &memoryNotificationStore{},
	}
}

// --- buses ---

type memoryBusStore struct {
	mu    sync.RWMutex
	buses []models.Bus
}

func (s *memoryBusStore) Add(bus *models.Bus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	bus.CreatedAt = now
	bus.UpdatedAt = now

	next := make([]models.Bus, 0, len(s.buses)+1)
	next = append(next, s.buses...)
	next = append(next, *bus)
	s.buses = next
	return nil
}

func (s *memoryBusStore) GetByID(id string) (*models.Bus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.buses {
		if s.buses[i].ID == id {
			bus := s.buses[i]
			return &bus, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryBusStore) List(transporterID string) ([]models.Bus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.Bus{}
	for _, bus := range s.buses {
		if bus.TransporterID == transporterID {
			result = append(result, bus)
		}
	}
	return result, nil
}

func (s *memoryBusStore) ListByStatus(transporterID string, status models.BusStatus) ([]models.Bus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.Bus{}
	for _, bus := range s.buses {
		if bus.TransporterID == transporterID && bus.Status == status {
			result = append(result, bus)
		}
	}
	return result, nil
}

func (s *memoryBusStore) Update(id string, req *models.UpdateBusRequest) (*models.Bus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Bus, len(s.buses))
	copy(next, s.buses)

	for i := range next {
		if next[i].ID != id {
			continue
		}
		applyBusPatch(&next[i], req)
		next[i].UpdatedAt = time.Now()
		s.buses = next
		updated := next[i]
		return &updated, nil
	}
	return nil, ErrNotFound
}

func (s *memoryBusStore) Remove(id, transporterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Bus, 0, len(s.buses))
	removed := false
	for _, bus := range s.buses {
		if bus.ID == id && bus.TransporterID == transporterID {
			removed = true
			continue
		}
		next = append(next, bus)
	}
	if !removed {
		return ErrNotFound
	}
	s.buses = next
	return nil
}

func (s *memoryBusStore) Stats(transporterID string) (models.FleetStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.FleetStats{}
	for _, bus := range s.buses {
		if bus.TransporterID != transporterID {
			continue
		}
		stats.Total++
		switch bus.Status {
		case models.BusStatusActive:
			stats.Active++
		case models.BusStatusMaintenance:
			stats.Maintenance++
		case models.BusStatusInactive:
			stats.Inactive++
		}
	}
	return stats, nil
}

func applyBusPatch(bus *models.Bus, req *models.UpdateBusRequest) {
	if req.Number != nil {
		bus.Number = *req.Number
	}
	if req.Registration != nil {
		bus.Registration = *req.Registration
	}
	if req.Capacity != nil {
		bus.Capacity = *req.Capacity
	}
	if req.Status != nil {
		bus.Status = models.BusStatus(*req.Status)
	}
	if req.AssignedDriver != nil {
		if *req.AssignedDriver == "" {
			bus.AssignedDriver = nil
		} else {
			driver := *req.AssignedDriver
			bus.AssignedDriver = &driver
		}
	}
	if req.LastMaintenance != nil {
		if parsed, err := time.Parse("2006-01-02", *req.LastMaintenance); err == nil {
			bus.LastMaintenance = &parsed
		}
	}
	if req.NextMaintenance != nil {
		if parsed, err := time.Parse("2006-01-02", *req.NextMaintenance); err == nil {
			bus.NextMaintenance = &parsed
		}
	}
}

// --- drivers ---

type memoryDriverStore struct {
	mu      sync.RWMutex
	drivers []models.Driver
}

func (s *memoryDriverStore) Add(driver *models.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	driver.CreatedAt = now
	driver.UpdatedAt = now

	next := make([]models.Driver, 0, len(s.drivers)+1)
	next = append(next, s.drivers...)
	next = append(next, *driver)
	s.drivers = next
	return nil
}

func (s *memoryDriverStore) GetByID(id string) (*models.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.drivers {
		if s.drivers[i].ID == id {
			driver := s.drivers[i]
			return &driver, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryDriverStore) List(transporterID string) ([]models.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.Driver{}
	for _, driver := range s.drivers {
		if driver.TransporterID == transporterID {
			result = append(result, driver)
		}
	}
	return result, nil
}

func (s *memoryDriverStore) ListByStatus(transporterID string, status models.DriverStatus) ([]models.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.Driver{}
	for _, driver := range s.drivers {
		if driver.TransporterID == transporterID && driver.Status == status {
			result = append(result, driver)
		}
	}
	return result, nil
}

func (s *memoryDriverStore) Update(id string, req *models.UpdateDriverRequest) (*models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Driver, len(s.drivers))
	copy(next, s.drivers)

	for i := range next {
		if next[i].ID != id {
			continue
		}
		applyDriverPatch(&next[i], req)
		next[i].UpdatedAt = time.Now()
		s.drivers = next
		updated := next[i]
		return &updated, nil
	}
	return nil, ErrNotFound
}

func (s *memoryDriverStore) Remove(id, transporterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Driver, 0, len(s.drivers))
	removed := false
	for _, driver := range s.drivers {
		if driver.ID == id && driver.TransporterID == transporterID {
			removed = true
			continue
		}
		next = append(next, driver)
	}
	if !removed {
		return ErrNotFound
	}
	s.drivers = next
	return nil
}

func (s *memoryDriverStore) Stats(transporterID string) (models.DriverStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.DriverStats{}
	for _, driver := range s.drivers {
		if driver.TransporterID != transporterID {
			continue
		}
		stats.Total++
		switch driver.Status {
		case models.DriverStatusOnDuty:
			stats.OnDuty++
		case models.DriverStatusOnline:
			stats.Online++
		case models.DriverStatusOffline:
			stats.Offline++
		}
	}
	return stats, nil
}

func applyDriverPatch(driver *models.Driver, req *models.UpdateDriverRequest) {
	if req.Name != nil {
		driver.Name = *req.Name
	}
	if req.Contact != nil {
		driver.Contact = *req.Contact
	}
	if req.LicenseNumber != nil {
		driver.LicenseNumber = *req.LicenseNumber
	}
	if req.LicenseExpiry != nil {
		if parsed, err := time.Parse("2006-01-02", *req.LicenseExpiry); err == nil {
			driver.LicenseExpiry = &parsed
		}
	}
	if req.Status != nil {
		driver.Status = models.DriverStatus(*req.Status)
	}
	if req.AssignedBus != nil {
		if *req.AssignedBus == "" {
			driver.AssignedBus = nil
		} else {
			bus := *req.AssignedBus
			driver.AssignedBus = &bus
		}
	}
	if req.Rating != nil {
		driver.Rating = *req.Rating
	}
}

// --- routes ---

type memoryRouteStore struct {
	mu     sync.RWMutex
	routes []models.Route
}

func (s *memoryRouteStore) Add(route *models.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := models.NormalizeRouteCode(route.Code)
	for _, existing := range s.routes {
		if models.NormalizeRouteCode(existing.Code) == code {
			return ErrDuplicateRouteCode
		}
	}

	route.Code = code
	route.CreatedAt = time.Now()

	next := make([]models.Route, 0, len(s.routes)+1)
	next = append(next, s.routes...)
	next = append(next, *route)
	s.routes = next
	return nil
}

func (s *memoryRouteStore) GetByID(id string) (*models.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.routes {
		if s.routes[i].ID == id {
			route := s.routes[i]
			return &route, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryRouteStore) GetByCode(code string) (*models.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	normalized := models.NormalizeRouteCode(code)
	for i := range s.routes {
		if models.NormalizeRouteCode(s.routes[i].Code) == normalized {
			route := s.routes[i]
			return &route, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryRouteStore) List() ([]models.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Route, len(s.routes))
	copy(result, s.routes)
	return result, nil
}

// --- trips ---

type memoryTripStore struct {
	mu    sync.RWMutex
	trips []models.Trip
}

func (s *memoryTripStore) Add(trip *models.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	trip.CreatedAt = now
	trip.UpdatedAt = now

	next := make([]models.Trip, 0, len(s.trips)+1)
	next = append(next, s.trips...)
	next = append(next, *trip)
	s.trips = next
	return nil
}

func (s *memoryTripStore) GetByID(id string) (*models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.trips {
		if s.trips[i].ID == id {
			trip := s.trips[i]
			return &trip, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryTripStore) List(transporterID string) ([]models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.Trip{}
	for _, trip := range s.trips {
		if trip.TransporterID == transporterID {
			result = append(result, trip)
		}
	}
	return result, nil
}

func (s *memoryTripStore) ListByStatus(transporterID string, status models.TripStatus) ([]models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.Trip{}
	for _, trip := range s.trips {
		if trip.TransporterID == transporterID && trip.Status == status {
			result = append(result, trip)
		}
	}
	return result, nil
}

func (s *memoryTripStore) Update(id string, req *models.UpdateTripRequest) (*models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Trip, len(s.trips))
	copy(next, s.trips)

	for i := range next {
		if next[i].ID != id {
			continue
		}
		applyTripPatch(&next[i], req)
		next[i].UpdatedAt = time.Now()
		s.trips = next
		updated := next[i]
		return &updated, nil
	}
	return nil, ErrNotFound
}

func (s *memoryTripStore) Remove(id, transporterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Trip, 0, len(s.trips))
	removed := false
	for _, trip := range s.trips {
		if trip.ID == id && trip.TransporterID == transporterID {
			removed = true
			continue
		}
		next = append(next, trip)
	}
	if !removed {
		return ErrNotFound
	}
	s.trips = next
	return nil
}

func (s *memoryTripStore) Stats(transporterID string) (models.TripStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.TripStats{}
	for _, trip := range s.trips {
		if trip.TransporterID != transporterID {
			continue
		}
		stats.Total++
		stats.TotalPassengers += trip.PassengerCount
		stats.TotalRevenue += trip.Revenue
		switch trip.Status {
		case models.TripStatusActive:
			stats.Active++
		case models.TripStatusUpcoming:
			stats.Upcoming++
		case models.TripStatusDelayed:
			stats.Delayed++
		case models.TripStatusCompleted:
			stats.Completed++
		case models.TripStatusCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

func applyTripPatch(trip *models.Trip, req *models.UpdateTripRequest) {
	if req.DepartureTime != nil {
		trip.DepartureTime = *req.DepartureTime
	}
	if req.ArrivalTime != nil {
		trip.ArrivalTime = *req.ArrivalTime
	}
	if req.RepeatDays != nil {
		trip.RepeatDays = *req.RepeatDays
	}
	if req.Status != nil {
		trip.Status = models.TripStatus(*req.Status)
	}
	if req.PassengerCount != nil {
		trip.PassengerCount = *req.PassengerCount
	}
	if req.Revenue != nil {
		trip.Revenue = *req.Revenue
	}
}

// --- notifications ---

type memoryNotificationStore struct {
	mu            sync.RWMutex
	notifications []models.Notification
}

func (s *memoryNotificationStore) Add(notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	next := make([]models.Notification, 0, len(s.notifications)+1)
	next = append(next, s.notifications...)
	next = append(next, *notification)
	s.notifications = next
	return nil
}

func (s *memoryNotificationStore) List(userID string) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.Notification{}
	for _, n := range s.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (s *memoryNotificationStore) MarkRead(id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Notification, len(s.notifications))
	copy(next, s.notifications)

	for i := range next {
		if next[i].ID == id && next[i].UserID == userID {
			next[i].Read = true
			s.notifications = next
			return nil
		}
	}
	return ErrNotFound
}

func (s *memoryNotificationStore) MarkAllRead(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Notification, len(s.notifications))
	copy(next, s.notifications)

	for i := range next {
		if next[i].UserID == userID {
			next[i].Read = true
		}
	}
	s.notifications = next
	return nil
}

func (s *memoryNotificationStore) Dismiss(id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Notification, 0, len(s.notifications))
	removed := false
	for _, n := range s.notifications {
		if n.ID == id && n.UserID == userID {
			removed = true
			continue
		}
		next = append(next, n)
	}
	if !removed {
		return ErrNotFound
	}
	s.notifications = next
	return nil
}
