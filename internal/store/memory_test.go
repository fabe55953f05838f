package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/zugo/transit-backend/internal/models"
)

const testTransporterID = "t-1"

func seedFleet(t *testing.T, st *Store) []models.Bus {
	t.Helper()

	fixtures := []models.Bus{
		{ID: "b-1", TransporterID: testTransporterID, Number: "BUS-101", Registration: "WP-NA-0001", Capacity: 52, Status: models.BusStatusActive},
		{ID: "b-2", TransporterID: testTransporterID, Number: "BUS-102", Registration: "WP-NA-0002", Capacity: 52, Status: models.BusStatusMaintenance},
		{ID: "b-3", TransporterID: testTransporterID, Number: "BUS-103", Registration: "WP-NA-0003", Capacity: 48, Status: models.BusStatusActive},
		{ID: "b-4", TransporterID: testTransporterID, Number: "BUS-104", Registration: "WP-NA-0004", Capacity: 36, Status: models.BusStatusInactive},
	}
	for i := range fixtures {
		err := st.Buses.Add(&fixtures[i])
		assert.NoError(t, err)
	}
	return fixtures
}

func TestMemoryBusStore_Stats(t *testing.T) {
	st := NewMemoryStore()
	seedFleet(t, st)

	stats, err := st.Buses.Stats(testTransporterID)

	assert.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 1, stats.Maintenance)
	assert.Equal(t, 1, stats.Inactive)

	// Stats are computed on read, so asking twice changes nothing
	again, err := st.Buses.Stats(testTransporterID)
	assert.NoError(t, err)
	assert.Equal(t, stats, again)
}

func TestMemoryBusStore_ListByStatus(t *testing.T) {
	st := NewMemoryStore()
	seedFleet(t, st)

	maintenance, err := st.Buses.ListByStatus(testTransporterID, models.BusStatusMaintenance)
	assert.NoError(t, err)
	assert.Len(t, maintenance, 1)
	assert.Equal(t, "BUS-102", maintenance[0].Number)

	active, err := st.Buses.ListByStatus(testTransporterID, models.BusStatusActive)
	assert.NoError(t, err)
	assert.Len(t, active, 2)

	// Another transporter sees nothing
	other, err := st.Buses.ListByStatus("t-2", models.BusStatusActive)
	assert.NoError(t, err)
	assert.Empty(t, other)
}

func TestMemoryBusStore_Update(t *testing.T) {
	st := NewMemoryStore()
	seedFleet(t, st)

	status := string(models.BusStatusMaintenance)
	driver := "K. Bandara"
	updated, err := st.Buses.Update("b-1", &models.UpdateBusRequest{
		Status:         &status,
		AssignedDriver: &driver,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.BusStatusMaintenance, updated.Status)
	assert.NotNil(t, updated.AssignedDriver)
	assert.Equal(t, "K. Bandara", *updated.AssignedDriver)

	// Untouched fields survive the patch
	assert.Equal(t, "BUS-101", updated.Number)
	assert.Equal(t, 52, updated.Capacity)

	_, err = st.Buses.Update("missing", &models.UpdateBusRequest{Status: &status})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryBusStore_Remove(t *testing.T) {
	st := NewMemoryStore()
	seedFleet(t, st)

	err := st.Buses.Remove("b-2", testTransporterID)
	assert.NoError(t, err)

	_, err = st.Buses.GetByID("b-2")
	assert.ErrorIs(t, err, ErrNotFound)

	buses, err := st.Buses.List(testTransporterID)
	assert.NoError(t, err)
	assert.Len(t, buses, 3)

	// Wrong transporter cannot remove another fleet's bus
	err = st.Buses.Remove("b-1", "t-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryBusStore_GetByID_ReturnsCopy(t *testing.T) {
	st := NewMemoryStore()
	seedFleet(t, st)

	first, err := st.Buses.GetByID("b-1")
	assert.NoError(t, err)

	first.Number = "MUTATED"

	second, err := st.Buses.GetByID("b-1")
	assert.NoError(t, err)
	assert.Equal(t, "BUS-101", second.Number)
}

func TestMemoryRouteStore_DuplicateCode(t *testing.T) {
	st := NewMemoryStore()

	err := st.Routes.Add(&models.Route{ID: "r-1", Code: "R-138", Name: "Pettah - Homagama"})
	assert.NoError(t, err)

	// Same code differing only in case is still a duplicate
	err = st.Routes.Add(&models.Route{ID: "r-2", Code: "r-138", Name: "Duplicate"})
	assert.ErrorIs(t, err, ErrDuplicateRouteCode)

	// The rejected route was not added
	routes, err := st.Routes.List()
	assert.NoError(t, err)
	assert.Len(t, routes, 1)
	assert.Equal(t, "R-138", routes[0].Code)
}

func TestMemoryRouteStore_GetByCode(t *testing.T) {
	st := NewMemoryStore()

	err := st.Routes.Add(&models.Route{ID: "r-1", Code: "R-120", Name: "Colombo - Horana"})
	assert.NoError(t, err)

	route, err := st.Routes.GetByCode("r-120")
	assert.NoError(t, err)
	assert.Equal(t, "R-120", route.Code)

	_, err = st.Routes.GetByCode("R-999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDriverStore_Stats(t *testing.T) {
	st := NewMemoryStore()

	fixtures := []models.Driver{
		{ID: "d-1", TransporterID: testTransporterID, Name: "K. Bandara", Status: models.DriverStatusOnDuty},
		{ID: "d-2", TransporterID: testTransporterID, Name: "S. Fernando", Status: models.DriverStatusOnline},
		{ID: "d-3", TransporterID: testTransporterID, Name: "M. Dias", Status: models.DriverStatusOffline},
	}
	for i := range fixtures {
		assert.NoError(t, st.Drivers.Add(&fixtures[i]))
	}

	stats, err := st.Drivers.Stats(testTransporterID)
	assert.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.OnDuty)
	assert.Equal(t, 1, stats.Online)
	assert.Equal(t, 1, stats.Offline)
}

func TestMemoryTripStore_Stats(t *testing.T) {
	st := NewMemoryStore()

	fixtures := []models.Trip{
		{ID: "tr-1", TransporterID: testTransporterID, RouteCode: "R-138", Status: models.TripStatusActive, PassengerCount: 40, Revenue: 4800},
		{ID: "tr-2", TransporterID: testTransporterID, RouteCode: "R-120", Status: models.TripStatusCompleted, PassengerCount: 31, Revenue: 2945},
		{ID: "tr-3", TransporterID: testTransporterID, RouteCode: "R-177", Status: models.TripStatusUpcoming},
	}
	for i := range fixtures {
		assert.NoError(t, st.Trips.Add(&fixtures[i]))
	}

	stats, err := st.Trips.Stats(testTransporterID)
	assert.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Upcoming)
	assert.Equal(t, 71, stats.TotalPassengers)
	assert.Equal(t, 7745.0, stats.TotalRevenue)
}

func TestMemoryNotificationStore_ReadFlow(t *testing.T) {
	st := NewMemoryStore()

	fixtures := []models.Notification{
		{ID: "n-1", UserID: "u-1", Type: models.NotificationTypeTrip, Title: "Trip delayed"},
		{ID: "n-2", UserID: "u-1", Type: models.NotificationTypeMaintenance, Title: "Maintenance due"},
		{ID: "n-3", UserID: "u-2", Type: models.NotificationTypeSystem, Title: "Other user"},
	}
	for i := range fixtures {
		assert.NoError(t, st.Notifications.Add(&fixtures[i]))
	}

	assert.NoError(t, st.Notifications.MarkRead("n-1", "u-1"))

	list, err := st.Notifications.List("u-1")
	assert.NoError(t, err)
	assert.Len(t, list, 2)
	for _, n := range list {
		if n.ID == "n-1" {
			assert.True(t, n.Read)
		} else {
			assert.False(t, n.Read)
		}
	}

	// A user cannot mark another user's notification
	err = st.Notifications.MarkRead("n-3", "u-1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, st.Notifications.MarkAllRead("u-1"))
	list, err = st.Notifications.List("u-1")
	assert.NoError(t, err)
	for _, n := range list {
		assert.True(t, n.Read)
	}

	assert.NoError(t, st.Notifications.Dismiss("n-2", "u-1"))
	list, err = st.Notifications.List("u-1")
	assert.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMemoryUserStore_DuplicateEmail(t *testing.T) {
	st := NewMemoryStore()

	err := st.Users.Create(&models.User{
		ID:    uuid.New(),
		Role:  models.RolePassenger,
		Email: "amara@example.com",
	})
	assert.NoError(t, err)

	err = st.Users.Create(&models.User{
		ID:    uuid.New(),
		Role:  models.RolePassenger,
		Email: "AMARA@example.com",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	exists, err := st.Users.EmailExists("Amara@Example.com")
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestSeed(t *testing.T) {
	st := NewMemoryStore()

	transporterID, err := Seed(st)
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, transporterID)

	transporter, err := st.Users.GetByEmail(DevTransporterEmail)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleTransporter, transporter.Role)
	assert.True(t, transporter.EmailVerified)

	buses, err := st.Buses.List(transporterID.String())
	assert.NoError(t, err)
	assert.Len(t, buses, 8)

	maintenance, err := st.Buses.ListByStatus(transporterID.String(), models.BusStatusMaintenance)
	assert.NoError(t, err)
	assert.Len(t, maintenance, 2)

	routes, err := st.Routes.List()
	assert.NoError(t, err)
	assert.Len(t, routes, 4)

	trips, err := st.Trips.List(transporterID.String())
	assert.NoError(t, err)
	assert.Len(t, trips, 3)
}
