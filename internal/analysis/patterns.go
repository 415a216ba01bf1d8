package analysis

import (
	"math"
	"sort"
	"time"

	"glucosedash/internal/domain"
)

// AnalyzePatterns aggregates readings by hour of day and weekday, selects
// peak and low hours, and classifies the overall and recent-week trends.
// now anchors the recent-week window.
func AnalyzePatterns(readings []domain.Reading, cfg Config, now time.Time) domain.PatternAnalysis {
	hourly, weekday := buckets(readings)

	peaks, lows := extremeHours(hourly, cfg)

	sorted := sortedChronologically(readings)
	return domain.PatternAnalysis{
		HourlyPattern:  hourly,
		WeekdayPattern: weekday,
		PeakHours:      peaks,
		LowHours:       lows,
		Trends: domain.Trends{
			Overall:    overallTrend(sorted, cfg),
			RecentWeek: recentWeekTrend(sorted, cfg, now),
		},
	}
}

func buckets(readings []domain.Reading) (domain.HourlyPattern, domain.WeekdayPattern) {
	var hourlySum [24]float64
	var weekdaySum [7]float64
	var hourly domain.HourlyPattern
	var weekday domain.WeekdayPattern

	for _, r := range readings {
		h := HourOf(r)
		d := WeekdayOf(r)
		hourlySum[h] += r.Glucose
		hourly[h].Count++
		weekdaySum[d] += r.Glucose
		weekday[d].Count++
	}

	for h := range hourly {
		if hourly[h].Count > 0 {
			hourly[h].Mean = hourlySum[h] / float64(hourly[h].Count)
		}
	}
	for d := range weekday {
		if weekday[d].Count > 0 {
			weekday[d].Mean = weekdaySum[d] / float64(weekday[d].Count)
		}
	}
	return hourly, weekday
}

type hourDeviation struct {
	hour      int
	deviation float64
}

// extremeHours ranks hours whose mean deviates from the mean of hourly means
// by more than the relative threshold. Ties keep ascending hour order.
func extremeHours(hourly domain.HourlyPattern, cfg Config) (peaks, lows []int) {
	var means []float64
	for _, b := range hourly {
		if b.HasData() {
			means = append(means, b.Mean)
		}
	}
	if len(means) == 0 {
		return []int{}, []int{}
	}

	overall := mean(means)
	threshold := overall * cfg.PeakRelativeThreshold

	var above, below []hourDeviation
	for h, b := range hourly {
		if !b.HasData() {
			continue
		}
		switch {
		case b.Mean > overall+threshold:
			above = append(above, hourDeviation{hour: h, deviation: b.Mean - overall})
		case b.Mean < overall-threshold:
			below = append(below, hourDeviation{hour: h, deviation: overall - b.Mean})
		}
	}

	return topHours(above, cfg.MaxPatternHours), topHours(below, cfg.MaxPatternHours)
}

func topHours(candidates []hourDeviation, limit int) []int {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].deviation > candidates[j].deviation
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	hours := make([]int, len(candidates))
	for i, c := range candidates {
		hours[i] = c.hour
	}
	return hours
}

// overallTrend compares the first and last quarter of chronologically sorted readings.
func overallTrend(sorted []domain.Reading, cfg Config) domain.OverallTrend {
	if len(sorted) < cfg.overallTrendMinimum() {
		return domain.TrendStable
	}

	quarter := len(sorted) / 4
	first := meanGlucose(sorted[:quarter])
	last := meanGlucose(sorted[len(sorted)-quarter:])

	diff := last - first
	if math.Abs(diff) <= cfg.OverallTrendThreshold {
		return domain.TrendStable
	}
	if diff > 0 {
		return domain.TrendIncreasing
	}
	return domain.TrendDecreasing
}

// recentWeekTrend compares the two halves of the readings taken within
// [now-RecentWindow, now]. A falling mean is an improvement. Sets shorter than
// MinRecentWeekHistory overall are always stable.
func recentWeekTrend(sorted []domain.Reading, cfg Config, now time.Time) domain.WeekTrend {
	if len(sorted) < cfg.MinRecentWeekHistory {
		return domain.WeekStable
	}

	cutoff := now.Add(-cfg.RecentWindow)

	var recent []domain.Reading
	for _, r := range sorted {
		ts := TimestampOf(r)
		if !ts.Before(cutoff) && !ts.After(now) {
			recent = append(recent, r)
		}
	}
	if len(recent) < cfg.recentWeekMinimum() {
		return domain.WeekStable
	}

	half := len(recent) / 2
	first := meanGlucose(recent[:half])
	second := meanGlucose(recent[len(recent)-half:])

	diff := second - first
	if math.Abs(diff) <= cfg.RecentWeekThreshold {
		return domain.WeekStable
	}
	if diff < 0 {
		return domain.WeekImproving
	}
	return domain.WeekWorsening
}
