package domain

import "github.com/pkg/errors"

var (
	// ErrNoReadings is returned when an operation needs at least one reading.
	ErrNoReadings = errors.New("no readings available")

	// ErrSourceUnavailable is returned when the reading source cannot be loaded.
	ErrSourceUnavailable = errors.New("reading source unavailable")

	// ErrInvalidDateRange is returned when a start date falls after the end date.
	ErrInvalidDateRange = errors.New("invalid date range")
)
