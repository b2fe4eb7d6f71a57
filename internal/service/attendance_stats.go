package service

import "github.com/noah-isme/pupil-dashboard/internal/models"

// SummariseAttendance reduces the in-range part of a sheet to day counts.
//
// Tallies are kept in whole sessions (halves) so no fractional rounding
// happens until the end: days = ceil(halves/2), and the percentage is
// present/total*100 rounded half up. A date with one present and one absent
// session therefore counts as one present day and one absent day.
func SummariseAttendance(sheet models.AttendanceSheet, r models.DateRange) models.AttendanceSummary {
	summary := models.AttendanceSummary{Days: []models.DayCount{}}
	seen := make(map[string]struct{})

	for _, date := range sheet.OrderedDates() {
		if !r.Contains(date) {
			continue
		}
		if _, dup := seen[date]; dup {
			continue
		}
		seen[date] = struct{}{}

		day, ok := sheet.Days[date]
		if !ok {
			continue
		}
		count := models.DayCount{Date: date}
		for _, session := range day.Sessions() {
			bucket, counted := session.Status.Bucket()
			if !counted {
				continue
			}
			switch bucket {
			case models.AttendanceStatusPresent:
				count.Present++
			case models.AttendanceStatusAbsent:
				count.Absent++
			case models.AttendanceStatusLate:
				count.Late++
			}
		}
		if count.Total() == 0 {
			continue
		}
		summary.PresentHalves += count.Present
		summary.AbsentHalves += count.Absent
		summary.LateHalves += count.Late
		summary.Days = append(summary.Days, count)
	}

	summary.PresentDays = halvesToDays(summary.PresentHalves)
	summary.AbsentDays = halvesToDays(summary.AbsentHalves)
	summary.LateDays = halvesToDays(summary.LateHalves)
	summary.Percentage = percentHalfUp(summary.PresentHalves, summary.TotalHalves())
	return summary
}

func halvesToDays(halves int) int {
	return (halves + 1) / 2
}

func percentHalfUp(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (part*200 + total) / (2 * total)
}
