package analysis

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"glucosedash/internal/domain"
)

var hourPattern = regexp.MustCompile(`^\s*(\d{1,2})(?::(\d{1,2}))?(?:\D|$)`)

// parseClock extracts hour and minute from an "HH:MM" string. Minute is
// optional and defaults to 0.
func parseClock(s string) (hour, minute int, ok bool) {
	m := hourPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour > 23 {
		return 0, 0, false
	}
	if m[2] != "" {
		minute, err = strconv.Atoi(m[2])
		if err != nil || minute > 59 {
			return 0, 0, false
		}
	}
	return hour, minute, true
}

// HourOf returns the hour of day for a reading, preferring the Time field
// over the Date's own clock.
func HourOf(r domain.Reading) int {
	if h, _, ok := parseClock(r.Time); ok {
		return h
	}
	return r.Date.Hour()
}

// WeekdayOf returns 0=Sunday..6=Saturday.
func WeekdayOf(r domain.Reading) int {
	return int(r.Date.Weekday())
}

// TimestampOf combines the calendar date with the Time field when it parses.
func TimestampOf(r domain.Reading) time.Time {
	h, m, ok := parseClock(r.Time)
	if !ok {
		return r.Date
	}
	y, mo, d := r.Date.Date()
	return time.Date(y, mo, d, h, m, 0, 0, r.Date.Location())
}

// sortedChronologically returns a copy of readings ordered by timestamp.
func sortedChronologically(readings []domain.Reading) []domain.Reading {
	sorted := make([]domain.Reading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return TimestampOf(sorted[i]).Before(TimestampOf(sorted[j]))
	})
	return sorted
}

// Classify maps a glucose value to its display status.
func Classify(glucose float64, cfg Config) domain.GlucoseStatus {
	switch {
	case glucose < cfg.LowThreshold:
		return domain.StatusLow
	case glucose <= cfg.NormalMax:
		return domain.StatusNormal
	case glucose <= cfg.TargetMax:
		return domain.StatusElevated
	default:
		return domain.StatusHigh
	}
}

// Distribution counts readings per status, in Low, Normal, Elevated, High order.
func Distribution(readings []domain.Reading, cfg Config) []domain.StatusCount {
	order := []domain.GlucoseStatus{domain.StatusLow, domain.StatusNormal, domain.StatusElevated, domain.StatusHigh}
	counts := make(map[domain.GlucoseStatus]int, len(order))
	for _, r := range readings {
		counts[Classify(r.Glucose, cfg)]++
	}

	result := make([]domain.StatusCount, len(order))
	for i, status := range order {
		result[i] = domain.StatusCount{
			Status:  status,
			Count:   counts[status],
			Percent: percent(counts[status], len(readings)),
		}
	}
	return result
}

var (
	beforeMealWords = []string{"jejum", "antes", "before", "fasting"}
	afterMealWords  = []string{"após", "apos", "depois", "pós", "after"}
)

// ClassifyMealPeriod infers the meal context of a reading. An explicit period
// label wins; otherwise the hour decides, first matching range first.
func ClassifyMealPeriod(r domain.Reading) domain.MealPeriod {
	period := strings.ToLower(r.Period)
	if containsAny(period, beforeMealWords) {
		return domain.MealBeforeMeals
	}
	if containsAny(period, afterMealWords) {
		return domain.MealAfterMeals
	}

	hour := HourOf(r)
	switch {
	case hour >= 6 && hour <= 8:
		return domain.MealMorningFasting
	case hour >= 8 && hour <= 10:
		return domain.MealAfterBreakfast
	case hour >= 11 && hour <= 12:
		return domain.MealBeforeLunch
	case hour >= 13 && hour <= 15:
		return domain.MealAfterLunch
	case hour >= 17 && hour <= 19:
		return domain.MealBeforeDinner
	case hour >= 19 && hour <= 21:
		return domain.MealAfterDinner
	case hour >= 22 || hour <= 5:
		return domain.MealNightTime
	}
	return domain.MealOther
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func meanGlucose(readings []domain.Reading) float64 {
	if len(readings) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range readings {
		sum += r.Glucose
	}
	return sum / float64(len(readings))
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
