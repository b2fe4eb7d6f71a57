package service

import (
	"strings"
	"time"

	"github.com/noah-isme/pupil-dashboard/internal/models"
	appErrors "github.com/noah-isme/pupil-dashboard/pkg/errors"
)

// ParsePeriod maps a raw token onto a known period. Unknown tokens become this-month.
func ParsePeriod(raw string) models.Period {
	switch p := models.Period(strings.ToLower(strings.TrimSpace(raw))); p {
	case models.PeriodSinceAugust, models.PeriodThisMonth, models.PeriodLastMonth, models.PeriodThisWeek, models.PeriodCustom:
		return p
	default:
		return models.PeriodThisMonth
	}
}

// LastAugust returns August 1 of the academic year containing now.
func LastAugust(now time.Time) time.Time {
	year := now.Year()
	if now.Month() < time.August {
		year--
	}
	return time.Date(year, time.August, 1, 0, 0, 0, 0, now.Location())
}

// ResolveDateRange turns a period token into an inclusive range ending today.
// A custom period with either bound missing falls back to this-month; a custom
// period with unparsable bounds or start after end is a validation error.
func ResolveDateRange(period models.Period, now time.Time, from, to string) (models.DateRange, error) {
	today := midnight(now)

	switch period {
	case models.PeriodSinceAugust:
		return models.DateRange{Period: period, Start: LastAugust(today), End: today}, nil
	case models.PeriodLastMonth:
		start := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, today.Location())
		end := time.Date(today.Year(), today.Month(), 0, 0, 0, 0, 0, today.Location())
		return models.DateRange{Period: period, Start: start, End: end}, nil
	case models.PeriodThisWeek:
		weekday := int(today.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		return models.DateRange{Period: period, Start: today.AddDate(0, 0, 1-weekday), End: today}, nil
	case models.PeriodCustom:
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)
		if from == "" || to == "" {
			break
		}
		start, err := time.ParseInLocation(models.DateLayout, from, today.Location())
		if err != nil {
			return models.DateRange{}, appErrors.Clone(appErrors.ErrValidation, "from must be a YYYY-MM-DD date")
		}
		end, err := time.ParseInLocation(models.DateLayout, to, today.Location())
		if err != nil {
			return models.DateRange{}, appErrors.Clone(appErrors.ErrValidation, "to must be a YYYY-MM-DD date")
		}
		if start.After(end) {
			return models.DateRange{}, appErrors.Clone(appErrors.ErrValidation, "Start date must be before end date")
		}
		return models.DateRange{Period: period, Start: start, End: end}, nil
	}

	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	return models.DateRange{Period: models.PeriodThisMonth, Start: start, End: today}, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
