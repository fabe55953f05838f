package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zugo/transit-backend/internal/middleware"
	"github.com/zugo/transit-backend/internal/services"
	"github.com/zugo/transit-backend/internal/store"
)

// ReportHandler serves the transporter operations reports
type ReportHandler struct {
	reports *services.ReportService
	users   store.UserStore
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *services.ReportService, users store.UserStore) *ReportHandler {
	return &ReportHandler{reports: reports, users: users}
}

// GetReport returns the aggregated operations report as JSON
// GET /api/v1/transporter/reports
func (h *ReportHandler) GetReport(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	report, err := h.reports.Build(userCtx.UserID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// DownloadReportPDF renders the operations report as a PDF attachment
// GET /api/v1/transporter/reports/pdf
func (h *ReportHandler) DownloadReportPDF(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	companyName := ""
	if user, err := h.users.GetByID(userCtx.UserID); err == nil && user.CompanyName.Valid {
		companyName = user.CompanyName.String
	}

	data, filename, err := h.reports.GeneratePDF(userCtx.UserID.String(), companyName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
