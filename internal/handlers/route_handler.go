package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zugo/transit-backend/internal/models"
	"github.com/zugo/transit-backend/internal/store"
)

// RouteHandler serves the shared route catalog. Routes are visible to
// every authenticated user; only transporters register new ones.
type RouteHandler struct {
	routes store.RouteStore
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(routes store.RouteStore) *RouteHandler {
	return &RouteHandler{routes: routes}
}

// ListRoutes retrieves the route catalog
// GET /api/v1/routes
func (h *RouteHandler) ListRoutes(c *gin.Context) {
	routes, err := h.routes.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch routes"})
		return
	}

	c.JSON(http.StatusOK, routes)
}

// GetRoute retrieves a route by ID
// GET /api/v1/routes/:id
func (h *RouteHandler) GetRoute(c *gin.Context) {
	route, err := h.routes.GetByID(c.Param("id"))
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch route"})
		return
	}

	c.JSON(http.StatusOK, route)
}

// CreateRoute registers a new route. The code is normalized to
// uppercase and must be unique in the catalog.
// POST /api/v1/transporter/routes
func (h *RouteHandler) CreateRoute(c *gin.Context) {
	var req models.CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	route := req.ToRoute(uuid.New().String())
	if err := h.routes.Add(route); err != nil {
		if err == store.ErrDuplicateRouteCode {
			c.JSON(http.StatusConflict, gin.H{
				"error": "A route with this code already exists",
				"code":  "DUPLICATE_ROUTE_CODE",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create route"})
		return
	}

	c.JSON(http.StatusCreated, route)
}
