package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pupil-dashboard/internal/dto"
	"github.com/noah-isme/pupil-dashboard/internal/service"
	appErrors "github.com/noah-isme/pupil-dashboard/pkg/errors"
	"github.com/noah-isme/pupil-dashboard/pkg/response"
)

type dashboardViewer interface {
	View(ctx context.Context, client service.RecordsClient, scope string, q dto.ViewQuery) (dto.DashboardView, error)
	Announcements(ctx context.Context, client service.RecordsClient, scope string, q dto.AnnouncementsQuery) (dto.AnnouncementsView, error)
}

type attendanceExporter interface {
	Attendance(ctx context.Context, client service.RecordsClient, q dto.ExportQuery) (*service.ExportFile, error)
	Chart(ctx context.Context, client service.RecordsClient, q dto.ViewQuery) (*service.ExportFile, error)
}

// DashboardHandler serves the composed dashboard view and its downloads.
type DashboardHandler struct {
	dashboard dashboardViewer
	exports   attendanceExporter
}

// NewDashboardHandler constructs the handler. exports may be nil when downloads are disabled.
func NewDashboardHandler(dashboard dashboardViewer, exports attendanceExporter) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, exports: exports}
}

// View godoc
// @Summary Dashboard view
// @Description Attendance stats, chart datasets and behaviour breakdown for a range
// @Tags Dashboard
// @Produce json
// @Param period query string false "since-august, this-month, last-month, this-week or custom"
// @Param from query string false "Custom start date (YYYY-MM-DD)"
// @Param to query string false "Custom end date (YYYY-MM-DD)"
// @Param theme query string false "light or dark"
// @Param context query string false "compact or full"
// @Param page query string false "Page id shared with the announcements request"
// @Param token query int false "Request token echoed back"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /api/dashboard/view [get]
func (h *DashboardHandler) View(c *gin.Context) {
	client, ok := requireClient(c)
	if !ok {
		return
	}
	var q dto.ViewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid view query"))
		return
	}
	view, err := h.dashboard.View(c.Request.Context(), client, scopeFromContext(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"data": view})
}

// Announcements godoc
// @Summary Dashboard announcements
// @Description Announcements panel for a page, loaded apart from the range view
// @Tags Dashboard
// @Produce json
// @Param page query string false "Page id shared with the view request"
// @Param index query int false "Cursor position to keep"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/dashboard/announcements [get]
func (h *DashboardHandler) Announcements(c *gin.Context) {
	client, ok := requireClient(c)
	if !ok {
		return
	}
	var q dto.AnnouncementsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid announcements query"))
		return
	}
	panel, err := h.dashboard.Announcements(c.Request.Context(), client, scopeFromContext(c), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"data": panel})
}

// Export godoc
// @Summary Attendance export
// @Description Attendance report for a range as CSV or PDF
// @Tags Dashboard
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param period query string false "Period token"
// @Param from query string false "Custom start date (YYYY-MM-DD)"
// @Param to query string false "Custom end date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /api/attendance/export [get]
func (h *DashboardHandler) Export(c *gin.Context) {
	client, ok := h.exportClient(c)
	if !ok {
		return
	}
	var q dto.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.exports.Attendance(c.Request.Context(), client, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeFile(c, file, "attachment")
}

// Chart godoc
// @Summary Attendance chart
// @Description Stacked present/absent/late bar chart as PNG
// @Tags Dashboard
// @Produce image/png
// @Param period query string false "Period token"
// @Param from query string false "Custom start date (YYYY-MM-DD)"
// @Param to query string false "Custom end date (YYYY-MM-DD)"
// @Param theme query string false "light or dark"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /api/attendance/chart.png [get]
func (h *DashboardHandler) Chart(c *gin.Context) {
	client, ok := h.exportClient(c)
	if !ok {
		return
	}
	var q dto.ViewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid chart query"))
		return
	}
	file, err := h.exports.Chart(c.Request.Context(), client, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	writeFile(c, file, "inline")
}

func (h *DashboardHandler) exportClient(c *gin.Context) (service.RecordsClient, bool) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return nil, false
	}
	return requireClient(c)
}

func writeFile(c *gin.Context, file *service.ExportFile, disposition string) {
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
