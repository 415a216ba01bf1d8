package mocks

import (
	"context"
	"time"

	"glucosedash/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockReadingSource struct {
	mock.Mock
}

func (m *MockReadingSource) FetchReadings(ctx context.Context) ([]domain.Reading, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reading), args.Error(1)
}

type MockReadingRepository struct {
	MockReadingSource
}

func (m *MockReadingRepository) SaveReadings(ctx context.Context, readings []domain.Reading) (int, error) {
	args := m.Called(ctx, readings)
	return args.Int(0), args.Error(1)
}

func (m *MockReadingRepository) FetchReadingsBetween(ctx context.Context, start, end time.Time) ([]domain.Reading, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reading), args.Error(1)
}
