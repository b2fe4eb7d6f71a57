package dto

import "github.com/noah-isme/pupil-dashboard/internal/models"

// View contexts.
const (
	ContextCompact = "compact"
	ContextFull    = "full"
)

// Themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// ViewQuery is the query string accepted by the dashboard view and export endpoints.
type ViewQuery struct {
	Period  string `form:"period"`
	From    string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To      string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	Theme   string `form:"theme" validate:"omitempty,oneof=light dark"`
	Context string `form:"context" validate:"omitempty,oneof=compact full"`
	Page    string `form:"page" validate:"omitempty,alphanum,max=64"`
	Token   uint64 `form:"token"`
}

// AnnouncementsQuery loads the announcements panel for a page.
type AnnouncementsQuery struct {
	Page  string `form:"page" validate:"omitempty,alphanum,max=64"`
	Index int    `form:"index" validate:"gte=0"`
}

// DashboardView is everything a page needs to render the stats, chart and announcements.
type DashboardView struct {
	Token         uint64              `json:"token"`
	Context       string              `json:"context"`
	Theme         string              `json:"theme"`
	Range         RangeView           `json:"range"`
	Attendance    AttendanceStatsView `json:"attendance"`
	Behaviour     BehaviourView       `json:"behaviour"`
	Chart         ChartView           `json:"chart"`
	Announcements AnnouncementsView   `json:"announcements"`
	Notice        string              `json:"notice,omitempty"`
}

// RangeView describes the resolved date range.
type RangeView struct {
	Period string `json:"period"`
	From   string `json:"from"`
	To     string `json:"to"`
	Label  string `json:"label"`
}

// AttendanceStatsView carries the attendance figures and their display text.
type AttendanceStatsView struct {
	PresentDays           int    `json:"presentDays"`
	AbsentDays            int    `json:"absentDays"`
	LateDays              int    `json:"lateDays"`
	Percentage            int    `json:"percentage"`
	PresentText           string `json:"presentText"`
	AbsentText            string `json:"absentText"`
	LateText              string `json:"lateText"`
	PercentageText        string `json:"percentageText"`
	OverallPercentage     string `json:"overallPercentage,omitempty"`
	SinceAugustPercentage string `json:"sinceAugustPercentage,omitempty"`
}

// BehaviourView carries behaviour totals and breakdown rows.
type BehaviourView struct {
	PositiveTotal int                `json:"positiveTotal"`
	NegativeTotal int                `json:"negativeTotal"`
	Positive      []BehaviourRowView `json:"positive"`
	Negative      []BehaviourRowView `json:"negative"`
	PositiveEmpty string             `json:"positiveEmpty,omitempty"`
	NegativeEmpty string             `json:"negativeEmpty,omitempty"`
}

// BehaviourRowView is one breakdown line with signed display text.
type BehaviourRowView struct {
	Label   string `json:"label"`
	Points  int    `json:"points"`
	Display string `json:"display"`
	Other   bool   `json:"other,omitempty"`
}

// ChartView is a stacked bar dataset counted in half-day sessions.
type ChartView struct {
	Labels    []string       `json:"labels"`
	Dates     []string       `json:"dates"`
	Datasets  []ChartDataset `json:"datasets"`
	YMax      int            `json:"yMax"`
	YTicks    []string       `json:"yTicks"`
	TextColor string         `json:"textColor"`
	GridColor string         `json:"gridColor"`
	// Palettes holds every theme so a page can switch colours without a refetch.
	Palettes map[string]ChartPalette `json:"palettes"`
}

// ChartPalette is the chart colouring for one theme.
type ChartPalette struct {
	TextColor string                  `json:"textColor"`
	GridColor string                  `json:"gridColor"`
	Series    map[string]SeriesColors `json:"series"`
}

// SeriesColors colours one dataset, keyed by ChartDataset.Key.
type SeriesColors struct {
	BackgroundColor string `json:"backgroundColor"`
	BorderColor     string `json:"borderColor"`
}

// ChartDataset is one stacked series.
type ChartDataset struct {
	Key             string `json:"key"`
	Label           string `json:"label"`
	Data            []int  `json:"data"`
	BackgroundColor string `json:"backgroundColor"`
	BorderColor     string `json:"borderColor"`
}

// AnnouncementsView shows one announcement at a time.
type AnnouncementsView struct {
	Items   []AnnouncementView `json:"items"`
	Index   int                `json:"index"`
	CanPrev bool               `json:"canPrev"`
	CanNext bool               `json:"canNext"`
	Empty   string             `json:"empty,omitempty"`
	Failed  bool               `json:"failed,omitempty"`
	Pending bool               `json:"pending,omitempty"`
}

// AnnouncementView is an announcement with its display date and a plain-text body.
type AnnouncementView struct {
	models.Announcement
	DisplayDate string `json:"displayDate"`
	Text        string `json:"text"`
}
