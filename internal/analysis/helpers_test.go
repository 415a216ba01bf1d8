package analysis

import (
	"time"

	"glucosedash/internal/domain"
)

// reading builds a date-only reading with an explicit clock time.
func reading(day string, clock string, glucose float64) domain.Reading {
	date, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return domain.Reading{Date: date, Time: clock, Period: "", Glucose: glucose}
}

func values(glucose ...float64) []domain.Reading {
	readings := make([]domain.Reading, len(glucose))
	for i, g := range glucose {
		readings[i] = reading("2024-03-01", "08:00", g)
	}
	return readings
}
