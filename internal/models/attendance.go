package models

import "sort"

// AttendanceStatus is the status recorded for one AM or PM session.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusExcused AttendanceStatus = "excused"
	AttendanceStatusUnknown AttendanceStatus = "unknown"
)

// Bucket folds a status into the present, absent or late bucket. ok is false for
// statuses that do not count towards the summary.
func (s AttendanceStatus) Bucket() (AttendanceStatus, bool) {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate:
		return s, true
	case AttendanceStatusExcused:
		return AttendanceStatusAbsent, true
	default:
		return AttendanceStatusUnknown, false
	}
}

// AttendanceSession is a single half-day mark.
type AttendanceSession struct {
	Status AttendanceStatus `json:"status"`
	Code   string           `json:"code,omitempty"`
}

// AttendanceDay holds the sessions for one date. Either session may be absent.
type AttendanceDay struct {
	AM *AttendanceSession `json:"AM,omitempty"`
	PM *AttendanceSession `json:"PM,omitempty"`
}

// Sessions returns the recorded sessions in AM, PM order.
func (d AttendanceDay) Sessions() []AttendanceSession {
	out := make([]AttendanceSession, 0, 2)
	if d.AM != nil {
		out = append(out, *d.AM)
	}
	if d.PM != nil {
		out = append(out, *d.PM)
	}
	return out
}

// AttendanceSheet is the raw attendance record keyed by YYYY-MM-DD.
type AttendanceSheet struct {
	Days                  map[string]AttendanceDay `json:"data"`
	Dates                 []string                 `json:"dates"`
	Percentage            string                   `json:"percentage,omitempty"`
	PercentageSinceAugust string                   `json:"percentageSinceAugust,omitempty"`
}

// OrderedDates returns the sheet's dates in ascending order. The upstream list
// is preferred when present but is sorted on a copy, never in place.
func (s AttendanceSheet) OrderedDates() []string {
	var dates []string
	if len(s.Dates) > 0 {
		dates = append(make([]string, 0, len(s.Dates)), s.Dates...)
	} else {
		dates = make([]string, 0, len(s.Days))
		for date := range s.Days {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)
	return dates
}

// DayCount tallies one date in half-day sessions.
type DayCount struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Late    int    `json:"late"`
}

// Total returns the number of counted sessions for the date.
func (c DayCount) Total() int {
	return c.Present + c.Absent + c.Late
}

// AttendanceSummary is derived from a sheet and a range; it is never stored.
type AttendanceSummary struct {
	PresentDays   int        `json:"presentDays"`
	AbsentDays    int        `json:"absentDays"`
	LateDays      int        `json:"lateDays"`
	Percentage    int        `json:"percentage"`
	PresentHalves int        `json:"presentHalves"`
	AbsentHalves  int        `json:"absentHalves"`
	LateHalves    int        `json:"lateHalves"`
	Days          []DayCount `json:"days"`
}

// TotalHalves is the number of counted sessions in the summary.
func (s AttendanceSummary) TotalHalves() int {
	return s.PresentHalves + s.AbsentHalves + s.LateHalves
}

// Empty reports whether no in-range date carried data.
func (s AttendanceSummary) Empty() bool {
	return len(s.Days) == 0
}
