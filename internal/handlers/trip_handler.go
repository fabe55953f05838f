package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zugo/transit-backend/internal/middleware"
	"github.com/zugo/transit-backend/internal/models"
	"github.com/zugo/transit-backend/internal/store"
	"github.com/zugo/transit-backend/internal/wizard"
)

// TripHandler serves the transporter trip schedule, including the
// four-step scheduling wizard
type TripHandler struct {
	trips  store.TripStore
	wizard *wizard.Manager
}

// NewTripHandler creates a new trip handler
func NewTripHandler(trips store.TripStore, wizardManager *wizard.Manager) *TripHandler {
	return &TripHandler{trips: trips, wizard: wizardManager}
}

// ListTrips retrieves the transporter's trips, optionally filtered by
// status
// GET /api/v1/transporter/trips?status=upcoming
func (h *TripHandler) ListTrips(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	status := c.Query("status")
	if status != "" && !models.ValidTripStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid status filter: must be active, upcoming, delayed, completed, or cancelled",
		})
		return
	}

	var trips []models.Trip
	var err error
	if status != "" {
		trips, err = h.trips.ListByStatus(userCtx.UserID.String(), models.TripStatus(status))
	} else {
		trips, err = h.trips.List(userCtx.UserID.String())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trips"})
		return
	}

	c.JSON(http.StatusOK, trips)
}

// GetTrip retrieves a specific trip
// GET /api/v1/transporter/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	trip, err := h.trips.GetByID(c.Param("id"))
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trip"})
		return
	}

	if trip.TransporterID != userCtx.UserID.String() {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to access this trip"})
		return
	}

	c.JSON(http.StatusOK, trip)
}

// UpdateTrip updates a trip with the provided fields
// PATCH /api/v1/transporter/trips/:id
func (h *TripHandler) UpdateTrip(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tripID := c.Param("id")

	existing, err := h.trips.GetByID(tripID)
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trip"})
		return
	}
	if existing.TransporterID != userCtx.UserID.String() {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to modify this trip"})
		return
	}

	trip, err := h.trips.Update(tripID, &req)
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update trip"})
		return
	}

	c.JSON(http.StatusOK, trip)
}

// DeleteTrip removes a trip from the schedule
// DELETE /api/v1/transporter/trips/:id
func (h *TripHandler) DeleteTrip(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.trips.Remove(c.Param("id"), userCtx.UserID.String())
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete trip"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Trip deleted"})
}

// GetTripStats returns trip counts plus passenger and revenue totals
// GET /api/v1/transporter/trips/stats
func (h *TripHandler) GetTripStats(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	stats, err := h.trips.Stats(userCtx.UserID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trip stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// StartWizard opens a new scheduling wizard session
// POST /api/v1/transporter/trips/wizard
func (h *TripHandler) StartWizard(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	session := h.wizard.Start(userCtx.UserID.String())
	c.JSON(http.StatusCreated, session)
}

// GetWizard retrieves the current wizard state
// GET /api/v1/transporter/trips/wizard/:id
func (h *TripHandler) GetWizard(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	session, err := h.wizard.Get(c.Param("id"), userCtx.UserID.String())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Wizard session not found"})
		return
	}

	c.JSON(http.StatusOK, session)
}

// WizardNext merges the submitted fields into the draft and advances
// one step. From the confirmation step it submits the draft instead.
// POST /api/v1/transporter/trips/wizard/:id/next
func (h *TripHandler) WizardNext(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var patch wizard.DraftPatch
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
	}

	session, result, err := h.wizard.Next(c.Param("id"), userCtx.UserID.String(), &patch)
	if err != nil {
		switch err {
		case wizard.ErrSessionNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Wizard session not found"})
		case wizard.ErrRouteRequired, wizard.ErrDepartureRequired, wizard.ErrResourcesRequired:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "STEP_INCOMPLETE"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	if result != nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "Trip scheduled",
			"result":  result,
		})
		return
	}

	c.JSON(http.StatusOK, session)
}

// WizardPrev retreats one step, or exits the wizard from the first step
// POST /api/v1/transporter/trips/wizard/:id/prev
func (h *TripHandler) WizardPrev(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	session, exited, err := h.wizard.Prev(c.Param("id"), userCtx.UserID.String())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Wizard session not found"})
		return
	}

	if exited {
		c.JSON(http.StatusOK, gin.H{"message": "Wizard exited", "exited": true})
		return
	}

	c.JSON(http.StatusOK, session)
}

// CancelWizard discards the wizard session
// DELETE /api/v1/transporter/trips/wizard/:id
func (h *TripHandler) CancelWizard(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.wizard.Cancel(c.Param("id"), userCtx.UserID.String()); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Wizard session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Wizard cancelled"})
}
