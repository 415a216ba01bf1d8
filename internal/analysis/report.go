package analysis

import (
	"sort"
	"time"

	"glucosedash/internal/domain"
)

const (
	reportHourLimit    = 8
	reportReadingLimit = 10
	reportWeeks        = 4
)

var weekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// WeekdayName returns the English name for 0=Sunday..6=Saturday.
func WeekdayName(day int) string {
	if day < 0 || day >= len(weekdayNames) {
		return ""
	}
	return weekdayNames[day]
}

// BuildReport summarises readings for printing or spreadsheet export.
func BuildReport(readings []domain.Reading, cfg Config, now time.Time) domain.PatternReport {
	report := domain.PatternReport{
		GeneratedAt:     now,
		TotalReadings:   len(readings),
		Distribution:    Distribution(readings, cfg),
		PeakHours:       []domain.HourStat{},
		PeakDays:        []domain.DayStat{},
		HighestReadings: []domain.Reading{},
		LowestReadings:  []domain.Reading{},
		WeeklyTrends:    []domain.WeekSummary{},
	}
	if len(readings) == 0 {
		return report
	}

	hourly, weekday := buckets(readings)

	for h, b := range hourly {
		if b.HasData() {
			report.PeakHours = append(report.PeakHours, domain.HourStat{Hour: h, Average: b.Mean, Count: b.Count})
		}
	}
	// Most sampled hours first, then highest mean.
	sort.SliceStable(report.PeakHours, func(i, j int) bool {
		a, b := report.PeakHours[i], report.PeakHours[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Average > b.Average
	})
	if len(report.PeakHours) > reportHourLimit {
		report.PeakHours = report.PeakHours[:reportHourLimit]
	}

	for d, b := range weekday {
		if b.HasData() {
			report.PeakDays = append(report.PeakDays, domain.DayStat{Day: d, DayName: WeekdayName(d), Average: b.Mean, Count: b.Count})
		}
	}
	sort.SliceStable(report.PeakDays, func(i, j int) bool {
		return report.PeakDays[i].Average > report.PeakDays[j].Average
	})

	report.MealPatterns = mealPatterns(readings)
	report.HighestReadings, report.LowestReadings = extremeReadings(readings, reportReadingLimit)
	report.WeeklyTrends = weeklyTrends(readings, now, reportWeeks)

	return report
}

func mealPatterns(readings []domain.Reading) domain.MealPatterns {
	groups := make(map[domain.MealPeriod][]float64)
	for _, r := range readings {
		period := ClassifyMealPeriod(r)
		groups[period] = append(groups[period], r.Glucose)
	}

	before := groups[domain.MealBeforeMeals]
	if len(before) == 0 {
		before = groups[domain.MealMorningFasting]
	}

	after := groups[domain.MealAfterMeals]
	if len(after) == 0 {
		after = append(after, groups[domain.MealAfterBreakfast]...)
		after = append(after, groups[domain.MealAfterLunch]...)
		after = append(after, groups[domain.MealAfterDinner]...)
	}

	return domain.MealPatterns{
		BeforeMeals: domain.Summary{Average: mean(before), Count: len(before)},
		AfterMeals:  domain.Summary{Average: mean(after), Count: len(after)},
	}
}

// extremeReadings returns up to limit readings with the highest values,
// highest first, and up to limit with the lowest values, lowest first.
func extremeReadings(readings []domain.Reading, limit int) (highest, lowest []domain.Reading) {
	sorted := make([]domain.Reading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Glucose > sorted[j].Glucose
	})

	n := limit
	if len(sorted) < n {
		n = len(sorted)
	}

	highest = make([]domain.Reading, n)
	copy(highest, sorted[:n])

	lowest = make([]domain.Reading, n)
	for i := 0; i < n; i++ {
		lowest[i] = sorted[len(sorted)-1-i]
	}
	return highest, lowest
}

// weeklyTrends averages consecutive 7-day windows ending at now, most recent first.
func weeklyTrends(readings []domain.Reading, now time.Time, weeks int) []domain.WeekSummary {
	trends := []domain.WeekSummary{}
	for i := 0; i < weeks; i++ {
		end := now.AddDate(0, 0, -7*i)
		start := end.AddDate(0, 0, -7)

		var values []float64
		for _, r := range readings {
			ts := TimestampOf(r)
			if !ts.Before(start) && ts.Before(end) {
				values = append(values, r.Glucose)
			}
		}
		if len(values) == 0 {
			continue
		}
		trends = append(trends, domain.WeekSummary{
			Start:   start,
			End:     end,
			Average: mean(values),
			Count:   len(values),
		})
	}
	return trends
}
