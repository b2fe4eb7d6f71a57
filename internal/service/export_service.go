package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/pupil-dashboard/internal/dto"
	"github.com/noah-isme/pupil-dashboard/internal/models"
	appErrors "github.com/noah-isme/pupil-dashboard/pkg/errors"
	"github.com/noah-isme/pupil-dashboard/pkg/export"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
	FormatPNG = "png"
)

type tableRenderer interface {
	Render(table export.Table) ([]byte, error)
}

type chartRenderer interface {
	Render(bars export.AttendanceBars) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportParams wires ExportService.
type ExportParams struct {
	Dashboard *DashboardService
	CSV       tableRenderer
	PDF       tableRenderer
	Chart     chartRenderer
	Metrics   *MetricsService
	Logger    *zap.Logger
}

// ExportService renders attendance for a range as CSV, PDF or a PNG chart.
type ExportService struct {
	dashboard *DashboardService
	csv       tableRenderer
	pdf       tableRenderer
	chart     chartRenderer
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(params ExportParams) *ExportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	csv := params.CSV
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	pdf := params.PDF
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	chart := params.Chart
	if chart == nil {
		chart = export.NewChartExporter(0, 0)
	}
	dashboard := params.Dashboard
	if dashboard == nil {
		dashboard = NewDashboardService(DashboardParams{Logger: logger})
	}
	return &ExportService{
		dashboard: dashboard,
		csv:       csv,
		pdf:       pdf,
		chart:     chart,
		metrics:   params.Metrics,
		logger:    logger,
	}
}

// Attendance renders the attendance report for the query's range.
func (s *ExportService) Attendance(ctx context.Context, client RecordsClient, q dto.ExportQuery) (*ExportFile, error) {
	format := strings.ToLower(q.Format)
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	r, err := s.dashboard.ResolveRange(q.ViewQuery)
	if err != nil {
		return nil, err
	}
	sheet, err := s.dashboard.records.Attendance(ctx, client, r)
	if err != nil {
		return nil, err
	}

	table := attendanceTable(sheet, r)
	var body []byte
	contentType := "text/csv; charset=utf-8"
	if format == FormatPDF {
		body, err = s.pdf.Render(table)
		contentType = "application/pdf"
	} else {
		body, err = s.csv.Render(table)
	}
	if err != nil {
		s.logger.Error("render attendance export", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}

	s.metrics.RecordExport(format)
	return &ExportFile{
		Filename:    fmt.Sprintf("attendance_%s_%s.%s", r.StartDate(), r.EndDate(), format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

// Chart renders the stacked attendance chart as a PNG in the query's theme.
func (s *ExportService) Chart(ctx context.Context, client RecordsClient, q dto.ViewQuery) (*ExportFile, error) {
	r, err := s.dashboard.ResolveRange(q)
	if err != nil {
		return nil, err
	}
	sheet, err := s.dashboard.records.Attendance(ctx, client, r)
	if err != nil {
		return nil, err
	}

	view := s.dashboard.Binder().Bind(ViewInput{Context: q.Context, Theme: q.Theme, Range: r, Sheet: sheet})
	palette := PaletteFor(view.Theme)
	bars := export.AttendanceBars{
		Title:  view.Range.Label,
		Labels: view.Chart.Labels,
		Max:    float64(view.Chart.YMax),
		Ticks:  view.Chart.YTicks,
		Palette: export.ChartPalette{
			Present:    palette.Present.Stroke,
			Absent:     palette.Absent.Stroke,
			Late:       palette.Late.Stroke,
			Text:       palette.Text,
			Grid:       palette.GridHex,
			Background: palette.Background,
		},
	}
	for _, ds := range view.Chart.Datasets {
		values := toFloats(ds.Data)
		switch models.AttendanceStatus(ds.Key) {
		case models.AttendanceStatusPresent:
			bars.Present = values
		case models.AttendanceStatusAbsent:
			bars.Absent = values
		case models.AttendanceStatusLate:
			bars.Late = values
		}
	}

	body, err := s.chart.Render(bars)
	if err != nil {
		if errors.Is(err, export.ErrEmptyChart) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, emptyRangeNotice)
		}
		s.logger.Error("render attendance chart", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}

	s.metrics.RecordExport(FormatPNG)
	return &ExportFile{
		Filename:    fmt.Sprintf("attendance_%s_%s.png", r.StartDate(), r.EndDate()),
		ContentType: "image/png",
		Body:        body,
	}, nil
}

func attendanceTable(sheet models.AttendanceSheet, r models.DateRange) export.Table {
	summary := SummariseAttendance(sheet, r)
	table := export.Table{
		Title: fmt.Sprintf("Attendance report %s - %s", r.Start.Format(rangeLabelLayout), r.End.Format(rangeLabelLayout)),
		Notes: []string{
			"Present: " + daysText(summary.PresentDays),
			"Absent: " + daysText(summary.AbsentDays),
			"Late: " + daysText(summary.LateDays),
			fmt.Sprintf("Attendance: %d%%", summary.Percentage),
		},
		Headers: []string{"Date", "AM", "PM", "Present", "Absent", "Late"},
		Rows:    make([][]string, 0, len(summary.Days)),
	}
	if summary.Empty() {
		table.Notes = append(table.Notes, emptyRangeNotice)
	}
	for _, day := range summary.Days {
		entry := sheet.Days[day.Date]
		table.Rows = append(table.Rows, []string{
			day.Date,
			sessionStatus(entry.AM),
			sessionStatus(entry.PM),
			fmt.Sprintf("%d", day.Present),
			fmt.Sprintf("%d", day.Absent),
			fmt.Sprintf("%d", day.Late),
		})
	}
	return table
}

func sessionStatus(s *models.AttendanceSession) string {
	if s == nil {
		return ""
	}
	return string(s.Status)
}

func toFloats(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
