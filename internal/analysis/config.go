// Package analysis computes glucose statistics, temporal patterns and
// rule-based recommendations over an in-memory set of readings.
//
// Every function is pure: readings are never mutated, nothing is cached and
// the reference time is always passed in explicitly.
package analysis

import (
	"time"

	"github.com/pkg/errors"
)

// Config holds every threshold used by the analysis stages.
type Config struct {
	// Glucose bands, mg/dL.
	LowThreshold      float64 `mapstructure:"low_threshold"`
	NormalMax         float64 `mapstructure:"normal_max"`
	TargetMax         float64 `mapstructure:"target_max"`
	VeryHighThreshold float64 `mapstructure:"very_high_threshold"`

	ControlTargetWeight      float64 `mapstructure:"control_target_weight"`
	ControlVariabilityWeight float64 `mapstructure:"control_variability_weight"`

	// Relative deviation from the mean of hourly means, 0.1 = 10%.
	PeakRelativeThreshold float64 `mapstructure:"peak_relative_threshold"`
	MaxPatternHours       int     `mapstructure:"max_pattern_hours"`

	OverallTrendThreshold   float64       `mapstructure:"overall_trend_threshold"`
	MinOverallTrendReadings int           `mapstructure:"min_overall_trend_readings"`
	RecentWeekThreshold     float64       `mapstructure:"recent_week_threshold"`
	MinRecentWeekReadings   int           `mapstructure:"min_recent_week_readings"`
	MinRecentWeekHistory    int           `mapstructure:"min_recent_week_history"`
	RecentWindow            time.Duration `mapstructure:"recent_window"`

	// Recommendation triggers, percent or score.
	HypoglycemiaPercentMax float64 `mapstructure:"hypoglycemia_percent_max"`
	TargetPercentMin       float64 `mapstructure:"target_percent_min"`
	VariabilityCVMax       float64 `mapstructure:"variability_cv_max"`
	GoodControlScore       float64 `mapstructure:"good_control_score"`
}

// DefaultConfig returns the clinical defaults.
func DefaultConfig() Config {
	return Config{
		LowThreshold:      70,
		NormalMax:         130,
		TargetMax:         180,
		VeryHighThreshold: 250,

		ControlTargetWeight:      0.7,
		ControlVariabilityWeight: 0.3,

		PeakRelativeThreshold: 0.1,
		MaxPatternHours:       3,

		OverallTrendThreshold:   15,
		MinOverallTrendReadings: 10,
		RecentWeekThreshold:     10,
		MinRecentWeekReadings:   5,
		MinRecentWeekHistory:    7,
		RecentWindow:            7 * 24 * time.Hour,

		HypoglycemiaPercentMax: 10,
		TargetPercentMin:       70,
		VariabilityCVMax:       36,
		GoodControlScore:       80,
	}
}

// Validate checks that the bands are ordered and the counts usable.
func (c Config) Validate() error {
	if c.LowThreshold <= 0 {
		return errors.Errorf("low threshold must be positive, got %v", c.LowThreshold)
	}
	if !(c.LowThreshold <= c.NormalMax && c.NormalMax <= c.TargetMax && c.TargetMax <= c.VeryHighThreshold) {
		return errors.Errorf("glucose bands must be ordered: low %v, normal %v, target %v, very high %v",
			c.LowThreshold, c.NormalMax, c.TargetMax, c.VeryHighThreshold)
	}
	if c.PeakRelativeThreshold < 0 {
		return errors.Errorf("peak relative threshold must not be negative, got %v", c.PeakRelativeThreshold)
	}
	if c.MaxPatternHours < 0 {
		return errors.Errorf("max pattern hours must not be negative, got %d", c.MaxPatternHours)
	}
	if c.MinRecentWeekHistory < 0 {
		return errors.Errorf("min recent week history must not be negative, got %d", c.MinRecentWeekHistory)
	}
	if c.RecentWindow <= 0 {
		return errors.Errorf("recent window must be positive, got %s", c.RecentWindow)
	}
	return nil
}

// overallTrendMinimum never lets the quarters overlap or be empty.
func (c Config) overallTrendMinimum() int {
	if c.MinOverallTrendReadings < 4 {
		return 4
	}
	return c.MinOverallTrendReadings
}

func (c Config) recentWeekMinimum() int {
	if c.MinRecentWeekReadings < 2 {
		return 2
	}
	return c.MinRecentWeekReadings
}
