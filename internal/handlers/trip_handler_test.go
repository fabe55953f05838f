package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zugo/transit-backend/internal/models"
	"github.com/zugo/transit-backend/internal/wizard"
)

func startWizardSession(t *testing.T, env *transporterTestEnv) string {
	t.Helper()
	w := env.do(http.MethodPost, "/api/v1/transporter/trips/wizard", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var session wizard.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	require.NotEmpty(t, session.ID)
	return session.ID
}

func TestWizardFlow(t *testing.T) {
	t.Run("Schedules A Trip", func(t *testing.T) {
		env := setupTransporterTest(t)
		sessionID := startWizardSession(t, env)
		base := "/api/v1/transporter/trips/wizard/" + sessionID

		route, err := env.store.Routes.GetByCode("R-138")
		require.NoError(t, err)

		// step 1: route selection
		w := env.do(http.MethodPost, base+"/next", map[string]interface{}{
			"route_id":   route.ID,
			"route_code": route.Code,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var session wizard.Session
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
		assert.Equal(t, `"schedule_details"`, mustMarshal(t, session.Step))

		// step 2: schedule details
		w = env.do(http.MethodPost, base+"/next", map[string]interface{}{
			"departure_time": "06:30",
			"arrival_time":   "07:45",
			"repeat_days":    []int{1, 2, 3, 4, 5},
		})
		require.Equal(t, http.StatusOK, w.Code)

		// step 3: resource assignment
		w = env.do(http.MethodPost, base+"/next", map[string]interface{}{
			"bus_id":      "bus-1",
			"bus_number":  "BUS-101",
			"driver_id":   "driver-1",
			"driver_name": "K. Bandara",
		})
		require.Equal(t, http.StatusOK, w.Code)

		// step 4: confirmation submits the trip
		w = env.do(http.MethodPost, base+"/next", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Trip scheduled")

		var final struct {
			Result wizard.Result `json:"result"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &final))
		assert.True(t, final.Result.Persisted)
		require.NotNil(t, final.Result.Trip)
		assert.Equal(t, "R-138", final.Result.Trip.RouteCode)
		assert.Equal(t, "06:30", final.Result.Trip.DepartureTime)

		// seed has 3 trips, the wizard added a fourth
		trips, err := env.store.Trips.List(env.transporterID.String())
		require.NoError(t, err)
		assert.Len(t, trips, 4)

		// the session is closed after submission
		w = env.do(http.MethodGet, base, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Refuses Incomplete Step", func(t *testing.T) {
		env := setupTransporterTest(t)
		sessionID := startWizardSession(t, env)
		base := "/api/v1/transporter/trips/wizard/" + sessionID

		// route selection without a route
		w := env.do(http.MethodPost, base+"/next", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "STEP_INCOMPLETE")

		// the session did not advance
		w = env.do(http.MethodGet, base, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "route_selection")
	})

	t.Run("Prev Exits From First Step", func(t *testing.T) {
		env := setupTransporterTest(t)
		sessionID := startWizardSession(t, env)
		base := "/api/v1/transporter/trips/wizard/" + sessionID

		w := env.do(http.MethodPost, base+"/prev", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Wizard exited")

		w = env.do(http.MethodGet, base, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Rejects Invalid Departure Time", func(t *testing.T) {
		env := setupTransporterTest(t)
		sessionID := startWizardSession(t, env)
		base := "/api/v1/transporter/trips/wizard/" + sessionID

		route, err := env.store.Routes.GetByCode("R-120")
		require.NoError(t, err)

		w := env.do(http.MethodPost, base+"/next", map[string]interface{}{
			"route_id":   route.ID,
			"route_code": route.Code,
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(http.MethodPost, base+"/next", map[string]interface{}{
			"departure_time": "6:30pm",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Cancel Discards Session", func(t *testing.T) {
		env := setupTransporterTest(t)
		sessionID := startWizardSession(t, env)
		base := "/api/v1/transporter/trips/wizard/" + sessionID

		w := env.do(http.MethodDelete, base, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = env.do(http.MethodGet, base, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func mustMarshal(t *testing.T, v interface{}) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}

func TestListTrips_StatusFilter(t *testing.T) {
	env := setupTransporterTest(t)

	w := env.do(http.MethodGet, "/api/v1/transporter/trips?status=upcoming", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var trips []models.Trip
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trips))
	for _, trip := range trips {
		assert.Equal(t, models.TripStatusUpcoming, trip.Status)
	}
}
