package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pupil-dashboard/internal/dto"
	"github.com/noah-isme/pupil-dashboard/internal/models"
	appErrors "github.com/noah-isme/pupil-dashboard/pkg/errors"
)

func TestRecordsServiceMapsUpstreamFailures(t *testing.T) {
	svc := NewRecordsService(NewMetricsService(), nil)
	client := &fakeRecordsClient{
		announcementsErr: errors.New("boom"),
		studentErr:       errors.New("boom"),
	}

	_, err := svc.Announcements(context.Background(), client)
	assert.Equal(t, "Failed to fetch announcements data", appErrors.FromError(err).Message)
	assert.Equal(t, 500, appErrors.FromError(err).Status)

	_, err = svc.Student(context.Background(), client)
	assert.Equal(t, "Failed to fetch user data", appErrors.FromError(err).Message)

	snap := svc.metrics.Snapshot()
	assert.Equal(t, uint64(2), snap.UpstreamCalls)
	assert.Equal(t, uint64(2), snap.UpstreamFailures)
}

func TestRecordsServiceNormalisesEmptyResults(t *testing.T) {
	svc := NewRecordsService(nil, nil)
	client := &fakeRecordsClient{student: models.Student{FirstName: "Ada"}}

	items, err := svc.Announcements(context.Background(), client)
	require.NoError(t, err)
	assert.NotNil(t, items)

	sheet, err := svc.Attendance(context.Background(), client, rangeOf("2024-03-01", "2024-03-31"))
	require.NoError(t, err)
	assert.NotNil(t, sheet.Days)

	student, err := svc.Student(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, "Ada", student.DisplayName())
}

func TestRecordsServiceSinceAugust(t *testing.T) {
	svc := NewRecordsService(nil, nil)
	svc.now = fixedClock(mustDate("2024-03-15"))

	r := svc.SinceAugust()
	assert.Equal(t, "2023-08-01", r.StartDate())
	assert.Equal(t, "2024-03-15", r.EndDate())
}

func TestRecordsServiceRangeFor(t *testing.T) {
	svc := NewRecordsService(nil, nil)
	svc.now = fixedClock(mustDate("2024-03-15"))

	r, err := svc.RangeFor(dto.RangeQuery{})
	require.NoError(t, err)
	assert.Equal(t, "2023-08-01", r.StartDate())
	assert.Equal(t, "2024-03-15", r.EndDate())

	r, err = svc.RangeFor(dto.RangeQuery{From: "2024-01-10"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", r.StartDate())
	assert.Equal(t, "2024-03-15", r.EndDate())

	_, err = svc.RangeFor(dto.RangeQuery{From: "10/01/2024"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.RangeFor(dto.RangeQuery{From: "2024-03-10", To: "2024-03-01"})
	assert.Equal(t, "Start date must be before end date", appErrors.FromError(err).Message)
}
