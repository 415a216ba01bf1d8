package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"glucosedash/internal/domain"
)

type dayPart struct {
	name  string
	words []string
}

var dayParts = []dayPart{
	{name: "Morning", words: []string{"manhã", "manha", "morning"}},
	{name: "Afternoon", words: []string{"tarde", "afternoon"}},
	{name: "Night", words: []string{"noite", "night", "evening"}},
}

// RecentInsights describes the readings taken within the recent window before now.
func RecentInsights(readings []domain.Reading, cfg Config, now time.Time) []domain.Insight {
	insights := []domain.Insight{}

	start := now.Add(-cfg.RecentWindow)
	var recent []domain.Reading
	for _, r := range sortedChronologically(readings) {
		ts := TimestampOf(r)
		if !ts.Before(start) && !ts.After(now) {
			recent = append(recent, r)
		}
	}

	var hypo, high int
	for _, r := range recent {
		if r.Glucose < cfg.LowThreshold {
			hypo++
		}
		if r.Glucose > cfg.TargetMax {
			high++
		}
	}

	if hypo > 0 {
		insights = append(insights, domain.Insight{
			Type:        domain.InsightWarning,
			Title:       fmt.Sprintf("%d hypoglycemia episode%s", hypo, plural(hypo)),
			Description: fmt.Sprintf("Detected in the last %s. Consider adjusting medication or meals.", windowLabel(cfg.RecentWindow)),
		})
	}

	if high > 0 {
		insights = append(insights, domain.Insight{
			Type:        domain.InsightWarning,
			Title:       fmt.Sprintf("%d reading%s above %.0f mg/dL", high, plural(high), cfg.TargetMax),
			Description: "Watch your meals and consider medication adjustments.",
		})
	}

	if len(recent) > 0 {
		highest := recent[0]
		for _, r := range recent[1:] {
			if r.Glucose > highest.Glucose {
				highest = r
			}
		}
		insights = append(insights, domain.Insight{
			Type:        domain.InsightInfo,
			Title:       fmt.Sprintf("Highest value: %.0f mg/dL", highest.Glucose),
			Description: fmt.Sprintf("Recorded on %s at %s", highest.Date.Format("02/01/2006"), highest.Time),
		})
	}

	if insight, ok := dayPartInsight(recent); ok {
		insights = append(insights, insight)
	}
	if insight, ok := halfTrendInsight(recent, cfg); ok {
		insights = append(insights, insight)
	}

	return insights
}

func dayPartInsight(recent []domain.Reading) (domain.Insight, bool) {
	type partMean struct {
		name  string
		mean  float64
		count int
	}

	var parts []partMean
	for _, part := range dayParts {
		var values []float64
		for _, r := range recent {
			if containsAny(strings.ToLower(r.Period), part.words) {
				values = append(values, r.Glucose)
			}
		}
		if len(values) > 0 {
			parts = append(parts, partMean{name: part.name, mean: mean(values), count: len(values)})
		}
	}
	if len(parts) == 0 {
		return domain.Insight{}, false
	}

	sort.SliceStable(parts, func(i, j int) bool {
		return parts[i].mean > parts[j].mean
	})
	top := parts[0]
	return domain.Insight{
		Type:        domain.InsightInfo,
		Title:       fmt.Sprintf("Period with the highest average: %s", top.name),
		Description: fmt.Sprintf("Average of %.0f mg/dL (%d readings)", top.mean, top.count),
	}, true
}

func halfTrendInsight(recent []domain.Reading, cfg Config) (domain.Insight, bool) {
	if len(recent) < 3 {
		return domain.Insight{}, false
	}

	half := len(recent) / 2
	first := meanGlucose(recent[:half])
	second := meanGlucose(recent[half:])
	diff := second - first
	if math.Abs(diff) <= cfg.RecentWeekThreshold {
		return domain.Insight{}, false
	}

	if diff > 0 {
		return domain.Insight{
			Type:        domain.InsightWarning,
			Title:       "Rising trend",
			Description: fmt.Sprintf("Average rose by %.0f mg/dL over the period.", diff),
		}, true
	}
	return domain.Insight{
		Type:        domain.InsightInfo,
		Title:       "Falling trend",
		Description: fmt.Sprintf("Average fell by %.0f mg/dL over the period.", -diff),
	}, true
}

// windowLabel renders a window as "7 days" when it is a whole number of days.
func windowLabel(d time.Duration) string {
	const day = 24 * time.Hour
	if d%day == 0 {
		days := int(d / day)
		return fmt.Sprintf("%d day%s", days, plural(days))
	}
	return d.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
