package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zugo/transit-backend/internal/middleware"
	"github.com/zugo/transit-backend/internal/models"
	"github.com/zugo/transit-backend/internal/store"
)

// BusHandler serves the transporter fleet endpoints
type BusHandler struct {
	buses store.BusStore
}

// NewBusHandler creates a new bus handler
func NewBusHandler(buses store.BusStore) *BusHandler {
	return &BusHandler{buses: buses}
}

// ListBuses retrieves the authenticated transporter's fleet, optionally
// filtered by status
// GET /api/v1/transporter/buses?status=maintenance
func (h *BusHandler) ListBuses(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	status := c.Query("status")
	if status != "" && !models.ValidBusStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid status filter: must be active, maintenance, or inactive",
		})
		return
	}

	var buses []models.Bus
	var err error
	if status != "" {
		buses, err = h.buses.ListByStatus(userCtx.UserID.String(), models.BusStatus(status))
	} else {
		buses, err = h.buses.List(userCtx.UserID.String())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch buses"})
		return
	}

	c.JSON(http.StatusOK, buses)
}

// GetBus retrieves a specific bus
// GET /api/v1/transporter/buses/:id
func (h *BusHandler) GetBus(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bus, err := h.buses.GetByID(c.Param("id"))
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bus"})
		return
	}

	if bus.TransporterID != userCtx.UserID.String() {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to access this bus"})
		return
	}

	c.JSON(http.StatusOK, bus)
}

// CreateBus adds a bus to the fleet
// POST /api/v1/transporter/buses
func (h *BusHandler) CreateBus(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateBusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bus := req.ToBus(uuid.New().String(), userCtx.UserID.String())
	if err := h.buses.Add(bus); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create bus"})
		return
	}

	c.JSON(http.StatusCreated, bus)
}

// UpdateBus updates a bus with the provided fields
// PATCH /api/v1/transporter/buses/:id
func (h *BusHandler) UpdateBus(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateBusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	busID := c.Param("id")

	existing, err := h.buses.GetByID(busID)
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bus"})
		return
	}
	if existing.TransporterID != userCtx.UserID.String() {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to modify this bus"})
		return
	}

	bus, err := h.buses.Update(busID, &req)
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update bus"})
		return
	}

	c.JSON(http.StatusOK, bus)
}

// DeleteBus removes a bus from the fleet
// DELETE /api/v1/transporter/buses/:id
func (h *BusHandler) DeleteBus(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.buses.Remove(c.Param("id"), userCtx.UserID.String())
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete bus"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Bus deleted"})
}

// GetFleetStats returns fleet counts by status
// GET /api/v1/transporter/buses/stats
func (h *BusHandler) GetFleetStats(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	stats, err := h.buses.Stats(userCtx.UserID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch fleet stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
