package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pupil-dashboard/internal/dto"
	"github.com/noah-isme/pupil-dashboard/internal/models"
	"github.com/noah-isme/pupil-dashboard/internal/service"
	appErrors "github.com/noah-isme/pupil-dashboard/pkg/errors"
	"github.com/noah-isme/pupil-dashboard/pkg/response"
)

const defaultStudentName = "Student"

type recordsRelay interface {
	Attendance(ctx context.Context, client service.RecordsClient, r models.DateRange) (models.AttendanceSheet, error)
	Behaviour(ctx context.Context, client service.RecordsClient, r models.DateRange) (models.BehaviourTally, error)
	Announcements(ctx context.Context, client service.RecordsClient) ([]models.Announcement, error)
	Student(ctx context.Context, client service.RecordsClient) (models.Student, error)
	SinceAugust() models.DateRange
	RangeFor(q dto.RangeQuery) (models.DateRange, error)
}

// RecordsHandler relays raw records API data in the upstream's shape.
type RecordsHandler struct {
	records recordsRelay
}

// NewRecordsHandler constructs the handler.
func NewRecordsHandler(records recordsRelay) *RecordsHandler {
	return &RecordsHandler{records: records}
}

// Attendance godoc
// @Summary Attendance since August
// @Description Raw AM/PM attendance marks from last August 1 through today
// @Tags Records
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /api/getAttendance [get]
func (h *RecordsHandler) Attendance(c *gin.Context) {
	client, ok := requireClient(c)
	if !ok {
		return
	}
	r := h.records.SinceAugust()
	sheet, err := h.records.Attendance(c.Request.Context(), client, r)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{
		"data": sheet.Days,
		"meta": gin.H{
			"dates":                   sheet.OrderedDates(),
			"start_date":              r.StartDate(),
			"end_date":                r.EndDate(),
			"percentage":              sheet.Percentage,
			"percentage_singe_august": sheet.PercentageSinceAugust,
		},
	})
}

// Behaviour godoc
// @Summary Behaviour points
// @Description Positive and negative point totals per reason
// @Tags Records
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD), defaults to last August 1"
// @Param to query string false "End date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /api/getBehaviour [get]
func (h *RecordsHandler) Behaviour(c *gin.Context) {
	client, ok := requireClient(c)
	if !ok {
		return
	}
	r, err := h.records.RangeFor(dto.RangeQuery{From: c.Query("from"), To: c.Query("to")})
	if err != nil {
		response.Error(c, err)
		return
	}
	tally, err := h.records.Behaviour(c.Request.Context(), client, r)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{
		"data": gin.H{
			"positive_reasons": nonNil(tally.Positive),
			"negative_reasons": nonNil(tally.Negative),
			"start_date":       r.StartDate(),
			"end_date":         r.EndDate(),
		},
	})
}

// Announcements godoc
// @Summary Announcements
// @Tags Records
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /api/getAnnouncements [get]
func (h *RecordsHandler) Announcements(c *gin.Context) {
	client, ok := requireClient(c)
	if !ok {
		return
	}
	items, err := h.records.Announcements(c.Request.Context(), client)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"data": items})
}

// User godoc
// @Summary Signed-in pupil
// @Tags Records
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /api/user [get]
func (h *RecordsHandler) User(c *gin.Context) {
	client, ok := requireClient(c)
	if !ok {
		return
	}
	student, err := h.records.Student(c.Request.Context(), client)
	if err != nil {
		response.Error(c, appErrors.FromError(err))
		return
	}

	view := dto.UserView{Name: student.Name, DisplayName: student.FirstName}
	if view.Name == "" {
		view.Name = defaultStudentName
	}
	if view.DisplayName == "" {
		view.DisplayName = defaultStudentName
	}
	if student.AvatarURL != "" {
		avatar := student.AvatarURL
		view.Avatar = &avatar
	}
	response.OK(c, gin.H{"user": view})
}

func nonNil(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}
