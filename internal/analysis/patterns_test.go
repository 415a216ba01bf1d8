package analysis

import (
	"fmt"
	"testing"
	"time"

	"glucosedash/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func hourly(glucoseByHour map[int][]float64) []domain.Reading {
	var readings []domain.Reading
	for h := 0; h < 24; h++ {
		for _, g := range glucoseByHour[h] {
			readings = append(readings, reading("2024-03-01", fmt.Sprintf("%02d:15", h), g))
		}
	}
	return readings
}

func TestHourOf(t *testing.T) {
	midnight := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	afternoon := time.Date(2024, 3, 1, 15, 40, 0, 0, time.UTC)

	testCases := []struct {
		name    string
		reading domain.Reading
		expect  int
	}{
		{name: "time field wins over date-only", reading: domain.Reading{Date: midnight, Time: "07:30"}, expect: 7},
		{name: "single digit hour", reading: domain.Reading{Date: midnight, Time: "7:05"}, expect: 7},
		{name: "time field wins over date clock", reading: domain.Reading{Date: afternoon, Time: "22:10"}, expect: 22},
		{name: "empty time falls back to date", reading: domain.Reading{Date: afternoon}, expect: 15},
		{name: "garbage falls back to date", reading: domain.Reading{Date: afternoon, Time: "noon"}, expect: 15},
		{name: "out of range falls back to date", reading: domain.Reading{Date: afternoon, Time: "25:00"}, expect: 15},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, HourOf(tc.reading))
		})
	}
}

func TestAnalyzePatterns_Empty(t *testing.T) {
	patterns := AnalyzePatterns(nil, DefaultConfig(), fixedNow)

	assert.Empty(t, patterns.PeakHours)
	assert.Empty(t, patterns.LowHours)
	assert.Equal(t, domain.TrendStable, patterns.Trends.Overall)
	assert.Equal(t, domain.WeekStable, patterns.Trends.RecentWeek)
	for _, b := range patterns.HourlyPattern {
		assert.False(t, b.HasData())
	}
}

func TestAnalyzePatterns_HourlyAndWeekdayBuckets(t *testing.T) {
	readings := []domain.Reading{
		reading("2024-01-07", "07:00", 100), // Sunday
		reading("2024-01-07", "07:45", 140),
		reading("2024-01-08", "13:00", 90), // Monday
	}

	patterns := AnalyzePatterns(readings, DefaultConfig(), fixedNow)

	assert.Equal(t, domain.Bucket{Mean: 120, Count: 2}, patterns.HourlyPattern[7])
	assert.Equal(t, domain.Bucket{Mean: 90, Count: 1}, patterns.HourlyPattern[13])
	assert.False(t, patterns.HourlyPattern[0].HasData())
	assert.Equal(t, domain.Bucket{Mean: 120, Count: 2}, patterns.WeekdayPattern[0])
	assert.Equal(t, domain.Bucket{Mean: 90, Count: 1}, patterns.WeekdayPattern[1])
	assert.False(t, patterns.WeekdayPattern[6].HasData())
}

func TestAnalyzePatterns_PeakHour(t *testing.T) {
	readings := hourly(map[int][]float64{
		7:  {210, 220, 230},
		8:  {140},
		9:  {135, 145},
		10: {140},
		12: {140},
		18: {140},
	})

	patterns := AnalyzePatterns(readings, DefaultConfig(), fixedNow)

	require.Contains(t, patterns.PeakHours, 7)
	assert.Equal(t, []int{7}, patterns.PeakHours)
	assert.Empty(t, patterns.LowHours)
}

func TestAnalyzePatterns_LowHour(t *testing.T) {
	readings := hourly(map[int][]float64{
		3:  {60},
		8:  {140},
		10: {140},
		12: {135, 145},
		14: {140},
		18: {140},
		20: {140},
	})

	patterns := AnalyzePatterns(readings, DefaultConfig(), fixedNow)

	assert.Equal(t, []int{3}, patterns.LowHours)
	assert.Empty(t, patterns.PeakHours)
}

func TestAnalyzePatterns_RankedByDeviation(t *testing.T) {
	readings := hourly(map[int][]float64{
		1:  {180},
		2:  {250},
		3:  {200},
		4:  {300},
		10: {100},
		11: {100},
		12: {100},
		13: {100},
		14: {100},
		15: {100},
	})

	patterns := AnalyzePatterns(readings, DefaultConfig(), fixedNow)

	assert.Equal(t, []int{4, 2, 3}, patterns.PeakHours)
}

func TestAnalyzePatterns_TieBreakKeepsAscendingHour(t *testing.T) {
	readings := hourly(map[int][]float64{
		1:  {200},
		2:  {200},
		3:  {200},
		4:  {200},
		10: {100},
		11: {100},
		12: {100},
		13: {100},
		14: {100},
		15: {100},
	})

	patterns := AnalyzePatterns(readings, DefaultConfig(), fixedNow)

	assert.Equal(t, []int{1, 2, 3}, patterns.PeakHours)
	assert.Equal(t, []int{10, 11, 12}, patterns.LowHours)
}

func TestAnalyzePatterns_OverallTrend(t *testing.T) {
	series := func(first, middle, last float64) []domain.Reading {
		var readings []domain.Reading
		for i := 0; i < 12; i++ {
			g := middle
			switch {
			case i < 3:
				g = first
			case i >= 9:
				g = last
			}
			readings = append(readings, reading(fmt.Sprintf("2024-02-%02d", i+1), "08:00", g))
		}
		return readings
	}

	testCases := []struct {
		name     string
		readings []domain.Reading
		expect   domain.OverallTrend
	}{
		{name: "increasing", readings: series(100, 120, 140), expect: domain.TrendIncreasing},
		{name: "decreasing", readings: series(160, 130, 110), expect: domain.TrendDecreasing},
		{name: "small difference is stable", readings: series(120, 200, 130), expect: domain.TrendStable},
		{name: "exact threshold is stable", readings: series(100, 120, 115), expect: domain.TrendStable},
		{name: "too few readings", readings: series(100, 120, 200)[:8], expect: domain.TrendStable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			patterns := AnalyzePatterns(tc.readings, DefaultConfig(), fixedNow)
			assert.Equal(t, tc.expect, patterns.Trends.Overall)
		})
	}
}

func TestAnalyzePatterns_OverallTrendUsesChronologicalOrder(t *testing.T) {
	var readings []domain.Reading
	for i := 11; i >= 0; i-- {
		readings = append(readings, reading(fmt.Sprintf("2024-02-%02d", i+1), "08:00", 100+float64(i)*10))
	}

	patterns := AnalyzePatterns(readings, DefaultConfig(), fixedNow)

	assert.Equal(t, domain.TrendIncreasing, patterns.Trends.Overall)
	assert.Equal(t, 210.0, readings[0].Glucose)
}

// withFuture appends low readings dated after fixedNow.
func withFuture(readings []domain.Reading) []domain.Reading {
	for i := 0; i < 6; i++ {
		readings = append(readings, reading(fmt.Sprintf("2024-04-%02d", 1+i), "09:00", 60))
	}
	return readings
}

func TestAnalyzePatterns_RecentWeekTrend(t *testing.T) {
	recent := func(values ...float64) []domain.Reading {
		readings := []domain.Reading{
			reading("2024-02-01", "08:00", 300), // outside the window
		}
		for i, g := range values {
			readings = append(readings, reading(fmt.Sprintf("2024-03-%02d", 9+i), "09:00", g))
		}
		return readings
	}

	testCases := []struct {
		name     string
		readings []domain.Reading
		now      time.Time
		expect   domain.WeekTrend
	}{
		{name: "improving", readings: recent(180, 175, 170, 120, 125, 115), now: fixedNow, expect: domain.WeekImproving},
		{name: "worsening", readings: recent(110, 115, 120, 160, 170, 165), now: fixedNow, expect: domain.WeekWorsening},
		{name: "stable", readings: recent(120, 125, 118, 122, 126, 121), now: fixedNow, expect: domain.WeekStable},
		{name: "too few recent readings", readings: recent(180, 170, 120, 110), now: fixedNow, expect: domain.WeekStable},
		{name: "window anchored at now", readings: recent(180, 175, 170, 120, 125, 115), now: fixedNow.AddDate(0, 1, 0), expect: domain.WeekStable},
		{name: "readings after now ignored", readings: withFuture(recent(120, 125, 118, 122, 126, 121)), now: fixedNow, expect: domain.WeekStable},
		{name: "short history", readings: recent(180, 175, 170, 120, 125, 115)[1:], now: fixedNow, expect: domain.WeekStable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			patterns := AnalyzePatterns(tc.readings, DefaultConfig(), tc.now)
			assert.Equal(t, tc.expect, patterns.Trends.RecentWeek)
		})
	}
}
