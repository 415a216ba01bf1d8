package ports

import (
	"context"
	"glucosedash/internal/domain"
	"time"
)

// ReadingSource supplies the full, already parsed set of readings.
type ReadingSource interface {
	FetchReadings(ctx context.Context) ([]domain.Reading, error)
}

// ReadingRepository persists readings and serves them back by date.
type ReadingRepository interface {
	ReadingSource
	SaveReadings(ctx context.Context, readings []domain.Reading) (int, error)
	FetchReadingsBetween(ctx context.Context, start, end time.Time) ([]domain.Reading, error)
}
