package domain

import "time"

// Reading represents a single self-monitored glucose measurement.
type Reading struct {
	Date    time.Time `json:"date" bson:"date"`
	Time    string    `json:"time" bson:"time"` // "HH:MM", authoritative for hour-of-day.
	Period  string    `json:"period" bson:"period"`
	Glucose float64   `json:"glucose" bson:"glucose"` // mg/dL
	Notes   string    `json:"notes,omitempty" bson:"notes,omitempty"`
}

// TimeInRange holds the share of readings, in percent, falling in each band.
type TimeInRange struct {
	Low      float64 `json:"low"`
	Target   float64 `json:"target"`
	High     float64 `json:"high"`
	VeryHigh float64 `json:"veryHigh"`
}

// GlucoseStats aggregates descriptive and clinical statistics over a reading set.
type GlucoseStats struct {
	Average                float64     `json:"average"`
	Median                 float64     `json:"median"`
	StandardDeviation      float64     `json:"standardDeviation"`
	CoefficientOfVariation float64     `json:"coefficientOfVariation"`
	TimeInRange            TimeInRange `json:"timeInRange"`
	VariabilityScore       float64     `json:"variabilityScore"`
	ControlScore           float64     `json:"controlScore"`
}

// Bucket is the mean of the readings that fell into one hour or weekday slot.
// A zero Count means the slot has no data, which is not the same as a zero mean.
type Bucket struct {
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// HasData reports whether any reading fell into the slot.
func (b Bucket) HasData() bool {
	return b.Count > 0
}

// HourlyPattern is indexed by hour of day, 0-23.
type HourlyPattern [24]Bucket

// WeekdayPattern is indexed by weekday, 0=Sunday..6=Saturday.
type WeekdayPattern [7]Bucket

type OverallTrend string

const (
	TrendIncreasing OverallTrend = "increasing"
	TrendDecreasing OverallTrend = "decreasing"
	TrendStable     OverallTrend = "stable"
)

type WeekTrend string

const (
	WeekImproving WeekTrend = "improving"
	WeekWorsening WeekTrend = "worsening"
	WeekStable    WeekTrend = "stable"
)

type Trends struct {
	Overall    OverallTrend `json:"overall"`
	RecentWeek WeekTrend    `json:"recentWeek"`
}

// PatternAnalysis holds temporal aggregates over a reading set.
type PatternAnalysis struct {
	HourlyPattern  HourlyPattern  `json:"hourlyPattern"`
	WeekdayPattern WeekdayPattern `json:"weekdayPattern"`
	PeakHours      []int          `json:"peakHours"`
	LowHours       []int          `json:"lowHours"`
	Trends         Trends         `json:"trends"`
}

type RecommendationType string

const (
	RecommendationWarning    RecommendationType = "warning"
	RecommendationSuggestion RecommendationType = "suggestion"
	RecommendationPositive   RecommendationType = "positive"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities so that high sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// SmartRecommendation is one rule-based finding.
type SmartRecommendation struct {
	Type        RecommendationType `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Priority    Priority           `json:"priority"`
	Actionable  bool               `json:"actionable"`
}

// Analysis bundles the output of the three analysis stages.
type Analysis struct {
	Stats           GlucoseStats          `json:"stats"`
	Patterns        PatternAnalysis       `json:"patterns"`
	Recommendations []SmartRecommendation `json:"recommendations"`
}
