package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pupil-dashboard/internal/dto"
	"github.com/noah-isme/pupil-dashboard/internal/models"
	appErrors "github.com/noah-isme/pupil-dashboard/pkg/errors"
)

func newTestDashboard(now string) *DashboardService {
	svc := NewDashboardService(DashboardParams{
		Records:              NewRecordsService(NewMetricsService(), nil),
		Binder:               NewBinder(10, 5),
		AnnouncementsTimeout: 50 * time.Millisecond,
	})
	svc.now = fixedClock(mustDate(now))
	return svc
}

func TestDashboardViewComposesPanels(t *testing.T) {
	client := &fakeRecordsClient{
		sheet: models.AttendanceSheet{Days: map[string]models.AttendanceDay{
			"2024-03-11": {AM: mark(models.AttendanceStatusPresent), PM: mark(models.AttendanceStatusPresent)},
		}},
		tally:         models.BehaviourTally{Positive: map[string]int{"Effort": 2}},
		announcements: []models.Announcement{{ID: 1, Title: "Trip"}, {ID: 2, Title: "Fair"}},
	}

	view, err := newTestDashboard("2024-03-15").View(context.Background(), client, "scope", dto.ViewQuery{Period: "this-month", Token: 7})
	require.NoError(t, err)

	assert.Equal(t, uint64(7), view.Token)
	assert.Equal(t, "this-month", view.Range.Period)
	assert.Equal(t, "2024-03-01", view.Range.From)
	assert.Equal(t, 100, view.Attendance.Percentage)
	assert.Equal(t, 2, view.Behaviour.PositiveTotal)
	assert.True(t, view.Announcements.Pending)
	assert.Empty(t, view.Announcements.Items)

	require.Len(t, client.ranges, 1)
	assert.Equal(t, "2024-03-15", client.ranges[0].End.Format(models.DateLayout))
}

func TestDashboardViewDoesNotWaitForAnnouncements(t *testing.T) {
	svc := NewDashboardService(DashboardParams{Records: NewRecordsService(nil, nil)})
	svc.now = fixedClock(mustDate("2024-03-15"))
	client := &fakeRecordsClient{
		announcementsDelay: time.Second,
		sheet: models.AttendanceSheet{Days: map[string]models.AttendanceDay{
			"2024-03-11": {AM: mark(models.AttendanceStatusPresent)},
		}},
	}

	start := time.Now()
	view, err := svc.View(context.Background(), client, "scope", dto.ViewQuery{Period: "this-month"})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 250*time.Millisecond)
	assert.Equal(t, 100, view.Attendance.Percentage)
	assert.Equal(t, 1, view.Attendance.PresentDays)
	assert.True(t, view.Announcements.Pending)
}

func TestDashboardAnnouncementsShareThePageState(t *testing.T) {
	svc := NewDashboardService(DashboardParams{
		Records:              NewRecordsService(nil, nil),
		Binder:               NewBinder(10, 5),
		AnnouncementsTimeout: 50 * time.Millisecond,
		Views:                NewViewStore(time.Minute, 10),
	})
	svc.now = fixedClock(mustDate("2024-03-15"))
	client := &fakeRecordsClient{announcements: []models.Announcement{
		{ID: 1, Title: "Trip", Description: "<p>Bring <b>lunch</b></p>"},
		{ID: 2, Title: "Fair"},
	}}

	panel, err := svc.Announcements(context.Background(), client, "scope", dto.AnnouncementsQuery{Page: "p1", Index: 1})
	require.NoError(t, err)
	require.Len(t, panel.Items, 2)
	assert.False(t, panel.Pending)
	assert.Equal(t, 1, panel.Index)
	assert.True(t, panel.CanPrev)
	assert.False(t, panel.CanNext)
	assert.Equal(t, "Bring lunch", panel.Items[0].Text)

	view, err := svc.View(context.Background(), client, "scope", dto.ViewQuery{Page: "p1", Context: dto.ContextFull})
	require.NoError(t, err)
	assert.False(t, view.Announcements.Pending)
	assert.Len(t, view.Announcements.Items, 2)
	assert.Equal(t, dto.ContextFull, view.Context)

	other, err := svc.View(context.Background(), client, "other-scope", dto.ViewQuery{Page: "p1"})
	require.NoError(t, err)
	assert.True(t, other.Announcements.Pending, "pages are isolated per scope")
}

func TestDashboardAnnouncementsReportFailures(t *testing.T) {
	svc := newTestDashboard("2024-03-15")

	failing := &fakeRecordsClient{announcementsErr: errors.New("boom")}
	panel, err := svc.Announcements(context.Background(), failing, "scope", dto.AnnouncementsQuery{})
	require.NoError(t, err)
	assert.True(t, panel.Failed)
	assert.Empty(t, panel.Items)

	slow := &fakeRecordsClient{announcementsDelay: time.Second}
	start := time.Now()
	panel, err = svc.Announcements(context.Background(), slow, "scope", dto.AnnouncementsQuery{})
	require.NoError(t, err)
	assert.True(t, panel.Failed)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	_, err = svc.Announcements(context.Background(), slow, "scope", dto.AnnouncementsQuery{Index: -1})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestLoadAnnouncementsDropsOvertakenLoad(t *testing.T) {
	svc := newTestDashboard("2024-03-15")
	state := NewViewState(dto.ContextCompact, dto.ThemeLight)

	slow := &fakeRecordsClient{announcementsDelay: 30 * time.Millisecond, announcements: []models.Announcement{{ID: 1}}}
	fast := &fakeRecordsClient{announcements: []models.Announcement{{ID: 2}, {ID: 3}}}

	done := make(chan bool, 1)
	go func() { done <- svc.LoadAnnouncements(context.Background(), slow, state) }()
	time.Sleep(10 * time.Millisecond)
	assert.True(t, svc.LoadAnnouncements(context.Background(), fast, state))
	assert.False(t, <-done)

	panel := state.RenderAnnouncements(0)
	require.Len(t, panel.Items, 2)
	assert.Equal(t, 2, panel.Items[0].ID)
}

func TestDashboardViewFailsOnAttendanceOrBehaviour(t *testing.T) {
	svc := newTestDashboard("2024-03-15")

	_, err := svc.View(context.Background(), &fakeRecordsClient{attendanceErr: errors.New("down")}, "", dto.ViewQuery{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrUpstream)
	assert.Equal(t, "Failed to fetch attendance data", appErrors.FromError(err).Message)

	_, err = svc.View(context.Background(), &fakeRecordsClient{behaviourErr: errors.New("down")}, "", dto.ViewQuery{})
	assert.Equal(t, "Failed to fetch behaviour data", appErrors.FromError(err).Message)
}

func TestDashboardViewRejectsInvertedCustomRange(t *testing.T) {
	client := &fakeRecordsClient{}
	_, err := newTestDashboard("2024-03-15").View(context.Background(), client, "", dto.ViewQuery{Period: "custom", From: "2024-03-10", To: "2024-03-01"})

	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, client.ranges, "no upstream call for an invalid range")
}

func TestDashboardRefreshKeepsNewestData(t *testing.T) {
	svc := newTestDashboard("2024-03-15")
	state := NewViewState(dto.ContextCompact, dto.ThemeLight)

	slow := &fakeRecordsClient{
		attendanceDelay: 100 * time.Millisecond,
		sheet: models.AttendanceSheet{Days: map[string]models.AttendanceDay{
			"2024-03-11": {AM: mark(models.AttendanceStatusAbsent)},
		}},
	}
	fast := &fakeRecordsClient{
		sheet: models.AttendanceSheet{Days: map[string]models.AttendanceDay{
			"2024-03-11": {AM: mark(models.AttendanceStatusPresent)},
		}},
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Refresh(context.Background(), slow, state, dto.ViewQuery{Period: "since-august"})
	}()
	time.Sleep(20 * time.Millisecond)
	fresh, err := svc.Refresh(context.Background(), fast, state, dto.ViewQuery{Period: "this-month"})
	require.NoError(t, err)
	<-done

	assert.Equal(t, 100, fresh.Attendance.Percentage)
	final := state.Render(svc.Binder())
	assert.Equal(t, "this-month", final.Range.Period)
	assert.Equal(t, 100, final.Attendance.Percentage)
}
