package api

import (
	"time"

	"glucosedash/internal/domain"

	"github.com/pkg/errors"
)

// dateRange holds inclusive calendar-day bounds. A zero bound is open.
type dateRange struct {
	start, end time.Time
}

func (d dateRange) bounded() bool {
	return !d.start.IsZero() && !d.end.IsZero()
}

// endOfDay is the last instant of the end day, 23:59:59.999999999.
func (d dateRange) endOfDay() time.Time {
	return d.end.Add(24*time.Hour - time.Nanosecond)
}

// parseDates parses the start and end query values. Either may be empty.
func parseDates(startStr, endStr string) (rng dateRange, err error) {
	if startStr != "" {
		rng.start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return
		}
	}

	if endStr != "" {
		rng.end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return
		}
	}

	if rng.bounded() && rng.end.Before(rng.start) {
		err = errors.Wrapf(domain.ErrInvalidDateRange, "start %s is after end %s", startStr, endStr)
	}
	return
}

// filterByDate keeps readings whose calendar day falls inside rng.
func filterByDate(readings []domain.Reading, rng dateRange) []domain.Reading {
	if rng.start.IsZero() && rng.end.IsZero() {
		return readings
	}

	filtered := []domain.Reading{}
	for _, reading := range readings {
		day := calendarDay(reading.Date)
		if !rng.start.IsZero() && day.Before(rng.start) {
			continue
		}
		if !rng.end.IsZero() && day.After(rng.end) {
			continue
		}
		filtered = append(filtered, reading)
	}
	return filtered
}

// calendarDay maps t to midnight UTC of the same calendar date in t's own zone.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
