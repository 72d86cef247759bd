package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type dashboardService interface {
	Stats(ctx context.Context, actor *models.JWTClaims) (*models.DashboardStats, error)
}

type exportService interface {
	Export(ctx context.Context, format string, actor *models.JWTClaims) (*service.ExportFile, error)
}

// DashboardHandler serves the landing dashboard and timetable downloads.
type DashboardHandler struct {
	dashboard dashboardService
	export    exportService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboard dashboardService, export exportService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, export: export}
}

// Stats godoc
// @Summary Role specific dashboard counters
// @Tags Dashboard
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// ExportTimetable godoc
// @Summary Download the caller's weekly timetable
// @Tags Dashboard
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /timetable/export [get]
func (h *DashboardHandler) ExportTimetable(c *gin.Context) {
	file, err := h.export.Export(c.Request.Context(), c.Query("format"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
