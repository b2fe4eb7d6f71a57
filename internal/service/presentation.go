package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/pupil-dashboard/internal/dto"
	"github.com/noah-isme/pupil-dashboard/internal/models"
)

const (
	// ChartMaxHalves caps each bar at a full day (two sessions).
	ChartMaxHalves = 2

	emptyRangeNotice      = "No attendance data available for the selected date range"
	noPositiveText        = "No positive points during this period"
	noNegativeText        = "No negative points during this period"
	noAnnouncementsText   = "No announcements available"
	chartLabelLayout      = "January 2, 2006"
	rangeLabelLayout      = "Jan 2, 2006"
	announcementDayLayout = "2 Jan 2006"
)

var chartTicks = []string{"0", "Half Day", "Full Day"}

// Swatch pairs a translucent fill with its solid border colour.
type Swatch struct {
	Fill   string
	Stroke string
}

// Palette is the colour set for one theme.
type Palette struct {
	Present    Swatch
	Absent     Swatch
	Late       Swatch
	Text       string
	Grid       string
	GridHex    string
	Background string
}

var palettes = map[string]Palette{
	dto.ThemeLight: {
		Present:    Swatch{Fill: "rgba(40, 167, 69, 0.7)", Stroke: "#28a745"},
		Absent:     Swatch{Fill: "rgba(220, 53, 69, 0.7)", Stroke: "#dc3545"},
		Late:       Swatch{Fill: "rgba(255, 193, 7, 0.7)", Stroke: "#ffc107"},
		Text:       "#212529",
		Grid:       "rgba(0, 0, 0, 0.1)",
		GridHex:    "#000000",
		Background: "#ffffff",
	},
	dto.ThemeDark: {
		Present:    Swatch{Fill: "rgba(46, 204, 113, 0.7)", Stroke: "#2ecc71"},
		Absent:     Swatch{Fill: "rgba(231, 76, 60, 0.7)", Stroke: "#e74c3c"},
		Late:       Swatch{Fill: "rgba(241, 196, 15, 0.7)", Stroke: "#f1c40f"},
		Text:       "#f8f9fa",
		Grid:       "rgba(255, 255, 255, 0.1)",
		GridHex:    "#ffffff",
		Background: "#212529",
	},
}

// NormaliseTheme accepts "dark", "dark-theme" and friends; everything else is light.
func NormaliseTheme(raw string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), dto.ThemeDark) {
		return dto.ThemeDark
	}
	return dto.ThemeLight
}

// PaletteFor returns the palette for a theme.
func PaletteFor(theme string) Palette {
	return palettes[NormaliseTheme(theme)]
}

// ViewInput is the raw material for one dashboard render.
type ViewInput struct {
	Token               uint64
	Context             string
	Theme               string
	Range               models.DateRange
	Sheet               models.AttendanceSheet
	Behaviour           models.BehaviourTally
	Announcements       []models.Announcement
	AnnouncementsFailed bool
	// AnnouncementsPending marks a view rendered before its announcements arrived.
	AnnouncementsPending bool
	AnnouncementIndex    int
}

// Binder turns aggregator output into display-ready views.
type Binder struct {
	chartLimit   int
	positiveTopN int
}

// NewBinder constructs a Binder. Non-positive values fall back to 10 chart dates and top 5 reasons.
func NewBinder(chartLimit, positiveTopN int) *Binder {
	if chartLimit <= 0 {
		chartLimit = 10
	}
	if positiveTopN <= 0 {
		positiveTopN = DefaultPositiveTopN
	}
	return &Binder{chartLimit: chartLimit, positiveTopN: positiveTopN}
}

// Bind builds the full view for the input.
func (b *Binder) Bind(in ViewInput) dto.DashboardView {
	viewContext := in.Context
	if viewContext != dto.ContextFull {
		viewContext = dto.ContextCompact
	}
	theme := NormaliseTheme(in.Theme)

	attendance := SummariseAttendance(in.Sheet, in.Range)
	behaviour := SummariseBehaviour(in.Behaviour, b.positiveTopN)

	view := dto.DashboardView{
		Token:         in.Token,
		Context:       viewContext,
		Theme:         theme,
		Range:         bindRange(in.Range),
		Attendance:    bindAttendance(attendance, in.Sheet, viewContext),
		Behaviour:     bindBehaviour(behaviour),
		Chart:         b.bindChart(attendance, viewContext),
		Announcements: BindAnnouncements(in.Announcements, in.AnnouncementIndex, in.AnnouncementsFailed),
	}
	if in.AnnouncementsPending {
		view.Announcements = dto.AnnouncementsView{Items: []dto.AnnouncementView{}, Pending: true}
	}
	if attendance.Empty() {
		view.Notice = emptyRangeNotice
	}
	return Recolor(view, theme)
}

// Recolor swaps the chart palette for a theme without touching the data.
func Recolor(view dto.DashboardView, theme string) dto.DashboardView {
	theme = NormaliseTheme(theme)
	palette := PaletteFor(theme)

	datasets := make([]dto.ChartDataset, len(view.Chart.Datasets))
	for i, ds := range view.Chart.Datasets {
		swatch := palette.swatch(ds.Key)
		ds.BackgroundColor = swatch.Fill
		ds.BorderColor = swatch.Stroke
		datasets[i] = ds
	}
	view.Chart.Datasets = datasets
	view.Chart.TextColor = palette.Text
	view.Chart.GridColor = palette.Grid
	view.Theme = theme
	return view
}

// ChartPalettes lists the chart colouring of every theme.
func ChartPalettes() map[string]dto.ChartPalette {
	out := make(map[string]dto.ChartPalette, len(palettes))
	for theme, p := range palettes {
		series := make(map[string]dto.SeriesColors, 3)
		for _, status := range []models.AttendanceStatus{models.AttendanceStatusPresent, models.AttendanceStatusAbsent, models.AttendanceStatusLate} {
			swatch := p.swatch(string(status))
			series[string(status)] = dto.SeriesColors{BackgroundColor: swatch.Fill, BorderColor: swatch.Stroke}
		}
		out[theme] = dto.ChartPalette{TextColor: p.Text, GridColor: p.Grid, Series: series}
	}
	return out
}

func (p Palette) swatch(key string) Swatch {
	switch models.AttendanceStatus(key) {
	case models.AttendanceStatusAbsent:
		return p.Absent
	case models.AttendanceStatusLate:
		return p.Late
	default:
		return p.Present
	}
}

func bindRange(r models.DateRange) dto.RangeView {
	return dto.RangeView{
		Period: string(r.Period),
		From:   r.StartDate(),
		To:     r.EndDate(),
		Label:  fmt.Sprintf("%s - %s", r.Start.Format(rangeLabelLayout), r.End.Format(rangeLabelLayout)),
	}
}

func bindAttendance(summary models.AttendanceSummary, sheet models.AttendanceSheet, context string) dto.AttendanceStatsView {
	view := dto.AttendanceStatsView{
		PresentDays:    summary.PresentDays,
		AbsentDays:     summary.AbsentDays,
		LateDays:       summary.LateDays,
		Percentage:     summary.Percentage,
		PresentText:    daysText(summary.PresentDays),
		AbsentText:     daysText(summary.AbsentDays),
		LateText:       daysText(summary.LateDays),
		PercentageText: fmt.Sprintf("%d%%", summary.Percentage),
	}
	if context == dto.ContextFull {
		view.OverallPercentage = percentText(sheet.Percentage)
		view.SinceAugustPercentage = percentText(sheet.PercentageSinceAugust)
	}
	return view
}

func daysText(days int) string {
	return fmt.Sprintf("%d days", days)
}

func percentText(raw string) string {
	if raw == "" {
		return ""
	}
	return raw + "%"
}

func bindBehaviour(summary models.BehaviourSummary) dto.BehaviourView {
	view := dto.BehaviourView{
		PositiveTotal: summary.PositiveTotal,
		NegativeTotal: summary.NegativeTotal,
		Positive:      make([]dto.BehaviourRowView, 0, len(summary.Positive)),
		Negative:      make([]dto.BehaviourRowView, 0, len(summary.Negative)),
	}
	for _, row := range summary.Positive {
		view.Positive = append(view.Positive, dto.BehaviourRowView{
			Label: row.Label, Points: row.Points, Display: fmt.Sprintf("+%d", row.Points), Other: row.Other,
		})
	}
	for _, row := range summary.Negative {
		view.Negative = append(view.Negative, dto.BehaviourRowView{
			Label: row.Label, Points: row.Points, Display: fmt.Sprintf("-%d", row.Points),
		})
	}
	if len(view.Positive) == 0 {
		view.PositiveEmpty = noPositiveText
	}
	if len(view.Negative) == 0 {
		view.NegativeEmpty = noNegativeText
	}
	return view
}

func (b *Binder) bindChart(summary models.AttendanceSummary, context string) dto.ChartView {
	days := summary.Days
	if context == dto.ContextCompact && len(days) > b.chartLimit {
		days = days[len(days)-b.chartLimit:]
	}

	chart := dto.ChartView{
		Labels:   make([]string, 0, len(days)),
		Dates:    make([]string, 0, len(days)),
		YMax:     ChartMaxHalves,
		YTicks:   append([]string(nil), chartTicks...),
		Palettes: ChartPalettes(),
	}
	present := make([]int, 0, len(days))
	absent := make([]int, 0, len(days))
	late := make([]int, 0, len(days))
	for _, day := range days {
		chart.Dates = append(chart.Dates, day.Date)
		chart.Labels = append(chart.Labels, formatDate(day.Date, chartLabelLayout))
		present = append(present, day.Present)
		absent = append(absent, day.Absent)
		late = append(late, day.Late)
	}
	chart.Datasets = []dto.ChartDataset{
		{Key: string(models.AttendanceStatusPresent), Label: "Present", Data: present},
		{Key: string(models.AttendanceStatusAbsent), Label: "Absent", Data: absent},
		{Key: string(models.AttendanceStatusLate), Label: "Late", Data: late},
	}
	return chart
}

// BindAnnouncements builds the one-at-a-time announcement view with the cursor at index.
func BindAnnouncements(items []models.Announcement, index int, failed bool) dto.AnnouncementsView {
	cursor := NewAnnouncementCursor(len(items))
	cursor.Seek(index)

	view := dto.AnnouncementsView{
		Items:   make([]dto.AnnouncementView, 0, len(items)),
		Index:   cursor.Index(),
		CanPrev: cursor.CanPrev(),
		CanNext: cursor.CanNext(),
		Failed:  failed,
	}
	for _, item := range items {
		view.Items = append(view.Items, dto.AnnouncementView{
			Announcement: item,
			DisplayDate:  formatTimestamp(item.Timestamp),
			Text:         PlainText(item.Description),
		})
	}
	if len(items) == 0 {
		view.Empty = noAnnouncementsText
	}
	return view
}

func formatDate(date, layout string) string {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(layout)
}

var timestampLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", models.DateLayout}

func formatTimestamp(raw string) string {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(announcementDayLayout)
		}
	}
	return raw
}

// AnnouncementCursor is a position in an announcement list shown one item at a time.
type AnnouncementCursor struct {
	index  int
	length int
}

// NewAnnouncementCursor starts at the first item.
func NewAnnouncementCursor(length int) *AnnouncementCursor {
	if length < 0 {
		length = 0
	}
	return &AnnouncementCursor{length: length}
}

// Index is the current position, always within [0, length-1] for a non-empty list.
func (c *AnnouncementCursor) Index() int { return c.index }

// CanPrev is false exactly at the first item.
func (c *AnnouncementCursor) CanPrev() bool { return c.index > 0 }

// CanNext is false exactly at the last item.
func (c *AnnouncementCursor) CanNext() bool { return c.index < c.length-1 }

// Seek moves to index, clamped into range.
func (c *AnnouncementCursor) Seek(index int) {
	switch {
	case c.length == 0 || index < 0:
		c.index = 0
	case index >= c.length:
		c.index = c.length - 1
	default:
		c.index = index
	}
}
