package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/zugo/transit-backend/internal/models"
)

// DevTransporterEmail is the demo transporter account created by Seed
const DevTransporterEmail = "transporter@zugo.dev"

// DevPassengerEmail is the demo passenger account created by Seed
const DevPassengerEmail = "passenger@zugo.dev"

// DevPassword is the password for all seeded demo accounts
const DevPassword = "password123"

// Seed fills an empty store with the development sample data: a demo
// transporter and passenger account, an 8-bus fleet (2 in maintenance),
// drivers, routes, trips, and notifications. Returns the demo
// transporter's id. Contents are lost on restart.
func Seed(st *Store) (uuid.UUID, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DevPassword), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash seed password: %w", err)
	}

	transporter := &models.User{
		ID:            uuid.New(),
		Role:          models.RoleTransporter,
		Name:          "Dinesh Perera",
		Email:         DevTransporterEmail,
		Phone:         "0771234567",
		PasswordHash:  string(hash),
		Status:        "active",
		EmailVerified: true,
	}
	transporter.CompanyName.Valid = true
	transporter.CompanyName.String = "Metro Line Transit"
	if err := st.Users.Create(transporter); err != nil {
		return uuid.Nil, err
	}

	passenger := &models.User{
		ID:            uuid.New(),
		Role:          models.RolePassenger,
		Name:          "Amara Silva",
		Email:         DevPassengerEmail,
		Phone:         "0719876543",
		PasswordHash:  string(hash),
		Status:        "active",
		EmailVerified: true,
	}
	if err := st.Users.Create(passenger); err != nil {
		return uuid.Nil, err
	}

	tid := transporter.ID.String()

	seedBuses(st, tid)
	seedDrivers(st, tid)
	seedRoutes(st)
	seedTrips(st, tid)
	seedNotifications(st, tid)

	return transporter.ID, nil
}

func seedBuses(st *Store, transporterID string) {
	type fixture struct {
		number       string
		registration string
		capacity     int
		status       models.BusStatus
		driver       string
	}
	fixtures := []fixture{
		{"BUS-101", "WP-NA-4521", 52, models.BusStatusActive, "K. Bandara"},
		{"BUS-102", "WP-NA-4522", 52, models.BusStatusActive, "S. Fernando"},
		{"BUS-103", "WP-NB-1133", 48, models.BusStatusMaintenance, ""},
		{"BUS-104", "WP-NB-1134", 48, models.BusStatusActive, "R. Jayasuriya"},
		{"BUS-105", "WP-NC-2210", 36, models.BusStatusActive, "M. Dias"},
		{"BUS-106", "WP-NC-2211", 36, models.BusStatusMaintenance, ""},
		{"BUS-107", "WP-ND-3345", 52, models.BusStatusActive, ""},
		{"BUS-108", "WP-ND-3346", 52, models.BusStatusInactive, ""},
	}

	lastMaint := time.Now().AddDate(0, -2, 0)
	nextMaint := time.Now().AddDate(0, 1, 0)

	for _, f := range fixtures {
		bus := &models.Bus{
			ID:              uuid.New().String(),
			TransporterID:   transporterID,
			Number:          f.number,
			Registration:    f.registration,
			Capacity:        f.capacity,
			Status:          f.status,
			LastMaintenance: &lastMaint,
			NextMaintenance: &nextMaint,
		}
		if f.driver != "" {
			driver := f.driver
			bus.AssignedDriver = &driver
		}
		st.Buses.Add(bus)
	}
}

func seedDrivers(st *Store, transporterID string) {
	type fixture struct {
		name    string
		contact string
		license string
		status  models.DriverStatus
		bus     string
		rating  float64
		trips   int
	}
	fixtures := []fixture{
		{"K. Bandara", "0712223344", "B1204567", models.DriverStatusOnDuty, "BUS-101", 4.8, 412},
		{"S. Fernando", "0715556677", "B1198234", models.DriverStatusOnDuty, "BUS-102", 4.6, 388},
		{"R. Jayasuriya", "0778889900", "B1312876", models.DriverStatusOnline, "BUS-104", 4.9, 520},
		{"M. Dias", "0761112233", "B1287345", models.DriverStatusOffline, "BUS-105", 4.2, 145},
	}

	expiry := time.Now().AddDate(2, 0, 0)

	for _, f := range fixtures {
		driver := &models.Driver{
			ID:            uuid.New().String(),
			TransporterID: transporterID,
			Name:          f.name,
			Contact:       f.contact,
			LicenseNumber: f.license,
			LicenseExpiry: &expiry,
			Status:        f.status,
			Rating:        f.rating,
			TripCount:     f.trips,
		}
		if f.bus != "" {
			bus := f.bus
			driver.AssignedBus = &bus
		}
		st.Drivers.Add(driver)
	}
}

func seedRoutes(st *Store) {
	fixtures := []models.Route{
		{Code: "R-138", Name: "Pettah - Homagama", DistanceKM: 24.5, DurationMin: 75, StopCount: 32, Fare: 120},
		{Code: "R-120", Name: "Colombo - Horana", DistanceKM: 42.0, DurationMin: 110, StopCount: 41, Fare: 180},
		{Code: "R-177", Name: "Kaduwela - Kollupitiya", DistanceKM: 18.2, DurationMin: 60, StopCount: 26, Fare: 95},
		{Code: "R-255", Name: "Mount Lavinia - Kottawa", DistanceKM: 15.8, DurationMin: 55, StopCount: 22, Fare: 80},
	}

	for i := range fixtures {
		route := fixtures[i]
		route.ID = uuid.New().String()
		st.Routes.Add(&route)
	}
}

func seedTrips(st *Store, transporterID string) {
	fixtures := []models.Trip{
		{
			RouteCode: "R-138", BusNumber: "BUS-101", DriverName: "K. Bandara",
			DepartureTime: "06:30", ArrivalTime: "07:45", RepeatDays: "1,2,3,4,5",
			Status: models.TripStatusActive, PassengerCount: 48, Revenue: 5760,
		},
		{
			RouteCode: "R-120", BusNumber: "BUS-102", DriverName: "S. Fernando",
			DepartureTime: "07:00", ArrivalTime: "08:50", RepeatDays: "1,2,3,4,5,6",
			Status: models.TripStatusUpcoming, PassengerCount: 0, Revenue: 0,
		},
		{
			RouteCode: "R-177", BusNumber: "BUS-104", DriverName: "R. Jayasuriya",
			DepartureTime: "17:15", ArrivalTime: "18:15", RepeatDays: "0,6",
			Status: models.TripStatusCompleted, PassengerCount: 31, Revenue: 2945,
		},
	}

	for i := range fixtures {
		trip := fixtures[i]
		trip.ID = uuid.New().String()
		trip.TransporterID = transporterID
		st.Trips.Add(&trip)
	}
}

func seedNotifications(st *Store, userID string) {
	fixtures := []models.Notification{
		{Type: models.NotificationTypeMaintenance, Title: "Maintenance due", Message: "BUS-103 is due for scheduled maintenance this week."},
		{Type: models.NotificationTypeTrip, Title: "Trip delayed", Message: "Trip R-138 06:30 departed 20 minutes late."},
		{Type: models.NotificationTypeAccount, Title: "Welcome to ZuGo", Message: "Your transporter account is ready."},
	}

	for i := range fixtures {
		n := fixtures[i]
		n.ID = uuid.New().String()
		n.UserID = userID
		n.CreatedAt = time.Now().Add(-time.Duration(i) * time.Hour)
		st.Notifications.Add(&n)
	}
}
