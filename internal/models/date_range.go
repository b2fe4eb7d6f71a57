package models

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Period is a named date-range selection.
type Period string

const (
	PeriodSinceAugust Period = "since-august"
	PeriodThisMonth   Period = "this-month"
	PeriodLastMonth   Period = "last-month"
	PeriodThisWeek    Period = "this-week"
	PeriodCustom      Period = "custom"
)

// DateRange is an inclusive pair of calendar dates.
type DateRange struct {
	Period Period    `json:"period"`
	Start  time.Time `json:"-"`
	End    time.Time `json:"-"`
}

// StartDate formats the start as YYYY-MM-DD.
func (r DateRange) StartDate() string {
	return r.Start.Format(DateLayout)
}

// EndDate formats the end as YYYY-MM-DD.
func (r DateRange) EndDate() string {
	return r.End.Format(DateLayout)
}

// Contains compares YYYY-MM-DD strings, which sort in date order.
func (r DateRange) Contains(date string) bool {
	return date >= r.StartDate() && date <= r.EndDate()
}
