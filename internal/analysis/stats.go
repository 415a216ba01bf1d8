package analysis

import (
	"math"
	"sort"

	"glucosedash/internal/domain"
)

// ComputeStats returns descriptive and clinical statistics for readings.
// An empty set yields the zero value.
func ComputeStats(readings []domain.Reading, cfg Config) domain.GlucoseStats {
	if len(readings) == 0 {
		return domain.GlucoseStats{}
	}

	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = r.Glucose
	}
	sort.Float64s(values)

	n := float64(len(values))
	average := mean(values)

	var sumSq float64
	for _, v := range values {
		diff := v - average
		sumSq += diff * diff
	}
	stdDev := math.Sqrt(sumSq / n)

	var cv float64
	if average > 0 {
		cv = stdDev / average * 100
	}

	tir := timeInRange(values, cfg)
	variability := math.Max(0, 100-cv)

	return domain.GlucoseStats{
		Average:                average,
		Median:                 median(values),
		StandardDeviation:      stdDev,
		CoefficientOfVariation: cv,
		TimeInRange:            tir,
		VariabilityScore:       variability,
		ControlScore:           cfg.ControlTargetWeight*tir.Target + cfg.ControlVariabilityWeight*variability,
	}
}

// median expects values sorted ascending.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

func timeInRange(values []float64, cfg Config) domain.TimeInRange {
	var low, target, high, veryHigh int
	for _, v := range values {
		switch {
		case v < cfg.LowThreshold:
			low++
		case v <= cfg.TargetMax:
			target++
		case v <= cfg.VeryHighThreshold:
			high++
		default:
			veryHigh++
		}
	}

	total := len(values)
	return domain.TimeInRange{
		Low:      percent(low, total),
		Target:   percent(target, total),
		High:     percent(high, total),
		VeryHigh: percent(veryHigh, total),
	}
}

// EvaluateGoals compares each time-in-range band with its consensus goal.
func EvaluateGoals(stats domain.GlucoseStats) []domain.RangeGoal {
	tir := stats.TimeInRange
	return []domain.RangeGoal{
		{Band: "low", Value: tir.Low, Goal: "<4%", Reached: tir.Low < 4},
		{Band: "target", Value: tir.Target, Goal: ">70%", Reached: tir.Target > 70},
		{Band: "high", Value: tir.High, Goal: "<25%", Reached: tir.High < 25},
		{Band: "veryHigh", Value: tir.VeryHigh, Goal: "<5%", Reached: tir.VeryHigh < 5},
	}
}
