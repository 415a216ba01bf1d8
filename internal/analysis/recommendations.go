package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"glucosedash/internal/domain"
)

// GenerateRecommendations applies the recommendation rules in order and returns
// the findings sorted by priority, high first. Rule order is kept within a tier.
func GenerateRecommendations(readings []domain.Reading, stats domain.GlucoseStats, patterns domain.PatternAnalysis, cfg Config) []domain.SmartRecommendation {
	recommendations := []domain.SmartRecommendation{}
	if len(readings) == 0 {
		return recommendations
	}

	tir := stats.TimeInRange

	if tir.Low > cfg.HypoglycemiaPercentMax {
		recommendations = append(recommendations, domain.SmartRecommendation{
			Type:        domain.RecommendationWarning,
			Title:       "High risk of hypoglycemia",
			Description: fmt.Sprintf("%.1f%% of readings below %.0f mg/dL. Consider adjusting medication or meal times.", tir.Low, cfg.LowThreshold),
			Priority:    domain.PriorityHigh,
			Actionable:  true,
		})
	}

	if tir.Target < cfg.TargetPercentMin {
		recommendations = append(recommendations, domain.SmartRecommendation{
			Type:        domain.RecommendationSuggestion,
			Title:       "Improve time in range",
			Description: fmt.Sprintf("Only %.1f%% of readings in the target range. Goal: >%.0f%%.", tir.Target, cfg.TargetPercentMin),
			Priority:    domain.PriorityMedium,
			Actionable:  true,
		})
	}

	if stats.CoefficientOfVariation > cfg.VariabilityCVMax {
		recommendations = append(recommendations, domain.SmartRecommendation{
			Type:        domain.RecommendationWarning,
			Title:       "High glycemic variability",
			Description: fmt.Sprintf("CV of %.1f%%. Aim for a more consistent routine.", stats.CoefficientOfVariation),
			Priority:    domain.PriorityHigh,
			Actionable:  true,
		})
	}

	if len(patterns.PeakHours) > 0 {
		recommendations = append(recommendations, domain.SmartRecommendation{
			Type:        domain.RecommendationSuggestion,
			Title:       "Peak hours identified",
			Description: fmt.Sprintf("Higher values at %s. Watch activities around these times.", formatHours(patterns.PeakHours)),
			Priority:    domain.PriorityMedium,
			Actionable:  true,
		})
	}

	if stats.ControlScore > cfg.GoodControlScore {
		recommendations = append(recommendations, domain.SmartRecommendation{
			Type:        domain.RecommendationPositive,
			Title:       "Excellent glycemic control",
			Description: fmt.Sprintf("Score of %.0f/100. Keep up the current routine.", stats.ControlScore),
			Priority:    domain.PriorityLow,
			Actionable:  false,
		})
	}

	if patterns.Trends.RecentWeek == domain.WeekImproving {
		recommendations = append(recommendations, domain.SmartRecommendation{
			Type:        domain.RecommendationPositive,
			Title:       "Improving trend",
			Description: "Your values have been improving over the last week. Well done!",
			Priority:    domain.PriorityLow,
			Actionable:  false,
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Priority.Rank() > recommendations[j].Priority.Rank()
	})
	return recommendations
}

// Analyze runs the three stages in sequence.
func Analyze(readings []domain.Reading, cfg Config, now time.Time) domain.Analysis {
	stats := ComputeStats(readings, cfg)
	patterns := AnalyzePatterns(readings, cfg, now)
	return domain.Analysis{
		Stats:           stats,
		Patterns:        patterns,
		Recommendations: GenerateRecommendations(readings, stats, patterns, cfg),
	}
}

func formatHours(hours []int) string {
	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = fmt.Sprintf("%dh", h)
	}
	return strings.Join(parts, ", ")
}
