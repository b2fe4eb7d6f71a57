package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/pupil-dashboard/internal/dto"
	"github.com/noah-isme/pupil-dashboard/internal/models"
	appErrors "github.com/noah-isme/pupil-dashboard/pkg/errors"
)

// RecordsClient is the narrow view of the external records API used by the services.
type RecordsClient interface {
	Login(ctx context.Context) error
	Attendance(ctx context.Context, from, to time.Time) (models.AttendanceSheet, error)
	Behaviour(ctx context.Context, from, to time.Time) (models.BehaviourTally, error)
	Announcements(ctx context.Context) ([]models.Announcement, error)
	StudentInfo(ctx context.Context) (models.Student, error)
}

// ClientFactory builds a client for one credential pair.
type ClientFactory func(pupilCode, dateOfBirth string) RecordsClient

// Operation names used in logs and metrics.
const (
	OpLogin         = "login"
	OpAttendance    = "attendance"
	OpBehaviour     = "behaviour"
	OpAnnouncements = "announcements"
	OpStudentInfo   = "student_info"
)

var upstreamMessages = map[string]string{
	OpAttendance:    "Failed to fetch attendance data",
	OpBehaviour:     "Failed to fetch behaviour data",
	OpAnnouncements: "Failed to fetch announcements data",
	OpStudentInfo:   "Failed to fetch user data",
}

// RecordsService relays single calls to the records API, timing and logging each.
// There is no retry and nothing is cached.
type RecordsService struct {
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewRecordsService constructs a RecordsService.
func NewRecordsService(metrics *MetricsService, logger *zap.Logger) *RecordsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordsService{metrics: metrics, validator: validator.New(), logger: logger, now: time.Now}
}

// Login opens the upstream session. Refusals map to ErrInvalidCredentials, anything else to ErrUpstream.
func (s *RecordsService) Login(ctx context.Context, client RecordsClient) error {
	err := s.observe(OpLogin, func() error { return client.Login(ctx) })
	if err == nil {
		return nil
	}
	if errors.Is(err, appErrors.ErrInvalidCredentials) {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
}

// Attendance fetches the attendance sheet for the range.
func (s *RecordsService) Attendance(ctx context.Context, client RecordsClient, r models.DateRange) (models.AttendanceSheet, error) {
	var sheet models.AttendanceSheet
	err := s.observe(OpAttendance, func() error {
		var err error
		sheet, err = client.Attendance(ctx, r.Start, r.End)
		return err
	})
	if err != nil {
		return models.AttendanceSheet{}, upstreamError(OpAttendance, err)
	}
	if sheet.Days == nil {
		sheet.Days = map[string]models.AttendanceDay{}
	}
	return sheet, nil
}

// Behaviour fetches the behaviour tallies for the range.
func (s *RecordsService) Behaviour(ctx context.Context, client RecordsClient, r models.DateRange) (models.BehaviourTally, error) {
	var tally models.BehaviourTally
	err := s.observe(OpBehaviour, func() error {
		var err error
		tally, err = client.Behaviour(ctx, r.Start, r.End)
		return err
	})
	if err != nil {
		return models.BehaviourTally{}, upstreamError(OpBehaviour, err)
	}
	return tally, nil
}

// Announcements fetches the announcement list.
func (s *RecordsService) Announcements(ctx context.Context, client RecordsClient) ([]models.Announcement, error) {
	var items []models.Announcement
	err := s.observe(OpAnnouncements, func() error {
		var err error
		items, err = client.Announcements(ctx)
		return err
	})
	if err != nil {
		return nil, upstreamError(OpAnnouncements, err)
	}
	if items == nil {
		items = []models.Announcement{}
	}
	return items, nil
}

// Student fetches the pupil profile.
func (s *RecordsService) Student(ctx context.Context, client RecordsClient) (models.Student, error) {
	var student models.Student
	err := s.observe(OpStudentInfo, func() error {
		var err error
		student, err = client.StudentInfo(ctx)
		return err
	})
	if err != nil {
		return models.Student{}, upstreamError(OpStudentInfo, err)
	}
	return student, nil
}

// SinceAugust is the default relay window: last August 1 through today.
func (s *RecordsService) SinceAugust() models.DateRange {
	r, _ := ResolveDateRange(models.PeriodSinceAugust, s.now(), "", "")
	return r
}

// RangeFor resolves an optional from/to pair. Either bound may be omitted and
// defaults to the SinceAugust window.
func (s *RecordsService) RangeFor(q dto.RangeQuery) (models.DateRange, error) {
	q.From, q.To = strings.TrimSpace(q.From), strings.TrimSpace(q.To)
	if err := s.validator.Struct(q); err != nil {
		return models.DateRange{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "from and to must be YYYY-MM-DD dates")
	}
	window := s.SinceAugust()
	from, to := q.From, q.To
	if from == "" {
		from = window.StartDate()
	}
	if to == "" {
		to = window.EndDate()
	}
	return ResolveDateRange(models.PeriodCustom, s.now(), from, to)
}

func (s *RecordsService) observe(op string, call func() error) error {
	start := time.Now()
	err := call()
	outcome := OutcomeSuccess
	switch {
	case err == nil:
	case errors.Is(err, appErrors.ErrInvalidCredentials):
		outcome = OutcomeRejected
	default:
		outcome = OutcomeError
	}
	if s.metrics != nil {
		s.metrics.ObserveUpstream(op, outcome, time.Since(start))
	}
	if err != nil {
		s.logger.Warn("records call failed", zap.String("operation", op), zap.String("outcome", outcome), zap.Error(err))
	}
	return err
}

func upstreamError(op string, err error) error {
	message := upstreamMessages[op]
	if message == "" {
		message = appErrors.ErrUpstream.Message
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, message)
}
