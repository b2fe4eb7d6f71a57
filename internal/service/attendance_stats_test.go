package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/pupil-dashboard/internal/models"
)

func rangeOf(start, end string) models.DateRange {
	return models.DateRange{Start: mustDate(start), End: mustDate(end)}
}

func TestSummariseAttendanceHalfDayConvention(t *testing.T) {
	sheet := models.AttendanceSheet{
		Days: map[string]models.AttendanceDay{
			"2024-01-01": {AM: mark(models.AttendanceStatusPresent), PM: mark(models.AttendanceStatusAbsent)},
		},
	}

	summary := SummariseAttendance(sheet, rangeOf("2024-01-01", "2024-01-01"))

	// A lone half-day rounds up to a whole day in each bucket.
	assert.Equal(t, 1, summary.PresentDays)
	assert.Equal(t, 1, summary.AbsentDays)
	assert.Equal(t, 0, summary.LateDays)
	assert.Equal(t, 50, summary.Percentage)
	assert.Equal(t, 2, summary.TotalHalves())
}

func TestSummariseAttendanceBuckets(t *testing.T) {
	sheet := models.AttendanceSheet{
		Dates: []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-02-01"},
		Days: map[string]models.AttendanceDay{
			"2024-01-01": {AM: mark(models.AttendanceStatusPresent), PM: mark(models.AttendanceStatusPresent)},
			"2024-01-02": {AM: mark(models.AttendanceStatusExcused), PM: mark(models.AttendanceStatusLate)},
			"2024-01-03": {AM: mark(models.AttendanceStatusPresent)},
			"2024-01-04": {AM: mark("holiday"), PM: mark(models.AttendanceStatusUnknown)},
			"2024-02-01": {AM: mark(models.AttendanceStatusAbsent), PM: mark(models.AttendanceStatusAbsent)},
		},
	}

	summary := SummariseAttendance(sheet, rangeOf("2024-01-01", "2024-01-31"))

	assert.Equal(t, 3, summary.PresentHalves)
	assert.Equal(t, 1, summary.AbsentHalves)
	assert.Equal(t, 1, summary.LateHalves)
	assert.Equal(t, 2, summary.PresentDays)
	assert.Equal(t, 1, summary.AbsentDays)
	assert.Equal(t, 1, summary.LateDays)
	assert.Equal(t, 60, summary.Percentage)
	assert.Len(t, summary.Days, 3, "dates without countable sessions are skipped")
	assert.Equal(t, "2024-01-03", summary.Days[2].Date)
}

func TestSummariseAttendanceEmptyRange(t *testing.T) {
	sheet := models.AttendanceSheet{
		Days: map[string]models.AttendanceDay{
			"2024-01-01": {AM: mark(models.AttendanceStatusPresent)},
		},
	}

	summary := SummariseAttendance(sheet, rangeOf("2024-03-01", "2024-03-31"))

	assert.True(t, summary.Empty())
	assert.Equal(t, 0, summary.Percentage)
	assert.Equal(t, 0, summary.PresentDays)
}

func TestSummariseAttendanceRoundsPercentageHalfUp(t *testing.T) {
	sheet := models.AttendanceSheet{
		Days: map[string]models.AttendanceDay{
			"2024-01-01": {AM: mark(models.AttendanceStatusPresent), PM: mark(models.AttendanceStatusAbsent)},
			"2024-01-02": {AM: mark(models.AttendanceStatusPresent)},
		},
	}
	assert.Equal(t, 67, SummariseAttendance(sheet, rangeOf("2024-01-01", "2024-01-02")).Percentage)

	sheet.Days["2024-01-02"] = models.AttendanceDay{AM: mark(models.AttendanceStatusLate)}
	assert.Equal(t, 33, SummariseAttendance(sheet, rangeOf("2024-01-01", "2024-01-02")).Percentage)

	// 1 of 8 is 12.5%, which rounds up.
	sheet = models.AttendanceSheet{Days: map[string]models.AttendanceDay{}}
	sheet.Days["2024-01-01"] = models.AttendanceDay{AM: mark(models.AttendanceStatusPresent), PM: mark(models.AttendanceStatusAbsent)}
	for i := 2; i <= 4; i++ {
		sheet.Days[fmt.Sprintf("2024-01-0%d", i)] = models.AttendanceDay{AM: mark(models.AttendanceStatusAbsent), PM: mark(models.AttendanceStatusAbsent)}
	}
	assert.Equal(t, 13, SummariseAttendance(sheet, rangeOf("2024-01-01", "2024-01-31")).Percentage)
}

func TestSummariseAttendanceHalvesMatchSessionCount(t *testing.T) {
	statuses := []models.AttendanceStatus{
		models.AttendanceStatusPresent,
		models.AttendanceStatusAbsent,
		models.AttendanceStatusLate,
		models.AttendanceStatusExcused,
	}
	sheet := models.AttendanceSheet{Days: map[string]models.AttendanceDay{}}
	sessions := 0
	for i := 1; i <= 28; i++ {
		d := models.AttendanceDay{AM: mark(statuses[i%4])}
		sessions++
		if i%3 != 0 {
			d.PM = mark(statuses[(i+1)%4])
			sessions++
		}
		sheet.Days[fmt.Sprintf("2024-02-%02d", i)] = d
	}

	summary := SummariseAttendance(sheet, rangeOf("2024-02-01", "2024-02-29"))

	assert.Equal(t, sessions, summary.TotalHalves())
	assert.GreaterOrEqual(t, summary.Percentage, 0)
	assert.LessOrEqual(t, summary.Percentage, 100)
	assert.Equal(t, summary, SummariseAttendance(sheet, rangeOf("2024-02-01", "2024-02-29")))
}
