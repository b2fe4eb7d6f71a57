package repository

import (
	"context"
	"errors"
	"time"

	"github.com/noah-isme/pupil-dashboard/internal/models"
	"github.com/noah-isme/pupil-dashboard/pkg/classcharts"
	"github.com/noah-isme/pupil-dashboard/pkg/config"
	appErrors "github.com/noah-isme/pupil-dashboard/pkg/errors"
)

// RecordsRepository adapts the records API client to domain models.
type RecordsRepository struct {
	client *classcharts.Client
}

// NewRecordsRepository wraps an existing client.
func NewRecordsRepository(client *classcharts.Client) *RecordsRepository {
	return &RecordsRepository{client: client}
}

// NewRecordsRepositoryFactory returns a constructor producing one repository per credential pair.
func NewRecordsRepositoryFactory(cfg config.RecordsConfig) func(pupilCode, dateOfBirth string) *RecordsRepository {
	return func(pupilCode, dateOfBirth string) *RecordsRepository {
		return NewRecordsRepository(classcharts.New(pupilCode, dateOfBirth,
			classcharts.WithBaseURL(cfg.BaseURL),
			classcharts.WithTimeout(cfg.Timeout),
		))
	}
}

// Login opens an upstream session. Refused credentials surface as ErrInvalidCredentials.
func (r *RecordsRepository) Login(ctx context.Context) error {
	err := r.client.Login(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, classcharts.ErrMissingCredentials),
		errors.Is(err, classcharts.ErrInvalidDateOfBirth),
		classcharts.IsRejected(err):
		return appErrors.Wrap(err, appErrors.ErrInvalidCredentials.Code, appErrors.ErrInvalidCredentials.Status, appErrors.ErrInvalidCredentials.Message)
	default:
		return err
	}
}

// Attendance returns the attendance sheet between from and to.
func (r *RecordsRepository) Attendance(ctx context.Context, from, to time.Time) (models.AttendanceSheet, error) {
	raw, err := r.client.Attendance(ctx, from, to)
	if err != nil {
		return models.AttendanceSheet{}, err
	}

	sheet := models.AttendanceSheet{
		Days:                  make(map[string]models.AttendanceDay, len(raw.Data)),
		Dates:                 raw.Meta.Dates,
		Percentage:            string(raw.Meta.Percentage),
		PercentageSinceAugust: string(raw.Meta.PercentageSinceAugust),
	}
	for date, day := range raw.Data {
		sheet.Days[date] = models.AttendanceDay{AM: toSession(day.AM), PM: toSession(day.PM)}
	}
	return sheet, nil
}

func toSession(s *classcharts.AttendanceSession) *models.AttendanceSession {
	if s == nil {
		return nil
	}
	return &models.AttendanceSession{Status: models.AttendanceStatus(s.Status), Code: s.Code}
}

// Behaviour returns the positive and negative tallies between from and to.
func (r *RecordsRepository) Behaviour(ctx context.Context, from, to time.Time) (models.BehaviourTally, error) {
	raw, err := r.client.Behaviour(ctx, from, to)
	if err != nil {
		return models.BehaviourTally{}, err
	}
	return models.BehaviourTally{
		Positive: map[string]int(raw.PositiveReasons),
		Negative: map[string]int(raw.NegativeReasons),
	}, nil
}

// Announcements returns the pupil's announcements in upstream order.
func (r *RecordsRepository) Announcements(ctx context.Context) ([]models.Announcement, error) {
	raw, err := r.client.Announcements(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]models.Announcement, 0, len(raw))
	for _, a := range raw {
		items = append(items, models.Announcement{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			SchoolName:  a.SchoolName,
			TeacherName: a.TeacherName,
			SchoolLogo:  a.SchoolLogo,
			Timestamp:   a.Timestamp,
		})
	}
	return items, nil
}

// StudentInfo returns the pupil profile.
func (r *RecordsRepository) StudentInfo(ctx context.Context) (models.Student, error) {
	p, err := r.client.StudentInfo(ctx)
	if err != nil {
		return models.Student{}, err
	}
	return models.Student{
		ID:        p.ID,
		Name:      p.Name,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		AvatarURL: p.AvatarURL,
	}, nil
}
