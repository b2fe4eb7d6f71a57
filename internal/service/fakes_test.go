package service

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/pupil-dashboard/internal/models"
)

type fakeRecordsClient struct {
	mu sync.Mutex

	loginErr           error
	sheet              models.AttendanceSheet
	attendanceErr      error
	attendanceDelay    time.Duration
	tally              models.BehaviourTally
	behaviourErr       error
	announcements      []models.Announcement
	announcementsErr   error
	announcementsDelay time.Duration
	student            models.Student
	studentErr         error

	loginCalls int
	ranges     []models.DateRange
}

func (f *fakeRecordsClient) Login(ctx context.Context) error {
	f.mu.Lock()
	f.loginCalls++
	f.mu.Unlock()
	return f.loginErr
}

func (f *fakeRecordsClient) Attendance(ctx context.Context, from, to time.Time) (models.AttendanceSheet, error) {
	f.mu.Lock()
	f.ranges = append(f.ranges, models.DateRange{Start: from, End: to})
	f.mu.Unlock()
	if f.attendanceDelay > 0 {
		select {
		case <-time.After(f.attendanceDelay):
		case <-ctx.Done():
			return models.AttendanceSheet{}, ctx.Err()
		}
	}
	return f.sheet, f.attendanceErr
}

func (f *fakeRecordsClient) Behaviour(ctx context.Context, from, to time.Time) (models.BehaviourTally, error) {
	return f.tally, f.behaviourErr
}

func (f *fakeRecordsClient) Announcements(ctx context.Context) ([]models.Announcement, error) {
	if f.announcementsDelay > 0 {
		select {
		case <-time.After(f.announcementsDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.announcements, f.announcementsErr
}

func (f *fakeRecordsClient) StudentInfo(ctx context.Context) (models.Student, error) {
	return f.student, f.studentErr
}

func mark(status models.AttendanceStatus) *models.AttendanceSession {
	return &models.AttendanceSession{Status: status}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func mustDate(date string) time.Time {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return t
}
