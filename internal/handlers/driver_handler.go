package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zugo/transit-backend/internal/middleware"
	"github.com/zugo/transit-backend/internal/models"
	"github.com/zugo/transit-backend/internal/store"
)

// DriverHandler serves the transporter driver-roster endpoints
type DriverHandler struct {
	drivers store.DriverStore
}

// NewDriverHandler creates a new driver handler
func NewDriverHandler(drivers store.DriverStore) *DriverHandler {
	return &DriverHandler{drivers: drivers}
}

// ListDrivers retrieves the transporter's drivers, optionally filtered
// by status
// GET /api/v1/transporter/drivers?status=on-duty
func (h *DriverHandler) ListDrivers(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	status := c.Query("status")
	if status != "" && !models.ValidDriverStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid status filter: must be on-duty, online, or offline",
		})
		return
	}

	var drivers []models.Driver
	var err error
	if status != "" {
		drivers, err = h.drivers.ListByStatus(userCtx.UserID.String(), models.DriverStatus(status))
	} else {
		drivers, err = h.drivers.List(userCtx.UserID.String())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch drivers"})
		return
	}

	c.JSON(http.StatusOK, drivers)
}

// GetDriver retrieves a specific driver
// GET /api/v1/transporter/drivers/:id
func (h *DriverHandler) GetDriver(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	driver, err := h.drivers.GetByID(c.Param("id"))
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch driver"})
		return
	}

	if driver.TransporterID != userCtx.UserID.String() {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to access this driver"})
		return
	}

	c.JSON(http.StatusOK, driver)
}

// CreateDriver adds a driver to the roster
// POST /api/v1/transporter/drivers
func (h *DriverHandler) CreateDriver(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	driver := req.ToDriver(uuid.New().String(), userCtx.UserID.String())
	if err := h.drivers.Add(driver); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create driver"})
		return
	}

	c.JSON(http.StatusCreated, driver)
}

// UpdateDriver updates a driver with the provided fields
// PATCH /api/v1/transporter/drivers/:id
func (h *DriverHandler) UpdateDriver(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	driverID := c.Param("id")

	existing, err := h.drivers.GetByID(driverID)
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch driver"})
		return
	}
	if existing.TransporterID != userCtx.UserID.String() {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to modify this driver"})
		return
	}

	driver, err := h.drivers.Update(driverID, &req)
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update driver"})
		return
	}

	c.JSON(http.StatusOK, driver)
}

// DeleteDriver removes a driver from the roster
// DELETE /api/v1/transporter/drivers/:id
func (h *DriverHandler) DeleteDriver(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.drivers.Remove(c.Param("id"), userCtx.UserID.String())
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete driver"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Driver deleted"})
}

// GetDriverStats returns driver counts by status
// GET /api/v1/transporter/drivers/stats
func (h *DriverHandler) GetDriverStats(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	stats, err := h.drivers.Stats(userCtx.UserID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch driver stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
