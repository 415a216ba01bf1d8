package domain

import "time"

// GlucoseStatus is the per-reading category shown next to each value.
type GlucoseStatus string

const (
	StatusLow      GlucoseStatus = "Low"
	StatusNormal   GlucoseStatus = "Normal"
	StatusElevated GlucoseStatus = "Elevated"
	StatusHigh     GlucoseStatus = "High"
)

// MealPeriod is the meal context inferred from a reading's period label or hour.
type MealPeriod string

const (
	MealBeforeMeals    MealPeriod = "beforeMeals"
	MealAfterMeals     MealPeriod = "afterMeals"
	MealMorningFasting MealPeriod = "morningFasting"
	MealAfterBreakfast MealPeriod = "afterBreakfast"
	MealBeforeLunch    MealPeriod = "beforeLunch"
	MealAfterLunch     MealPeriod = "afterLunch"
	MealBeforeDinner   MealPeriod = "beforeDinner"
	MealAfterDinner    MealPeriod = "afterDinner"
	MealNightTime      MealPeriod = "nightTime"
	MealOther          MealPeriod = "other"
)

type HourStat struct {
	Hour    int     `json:"hour"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type DayStat struct {
	Day     int     `json:"day"`
	DayName string  `json:"dayName"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type Summary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type MealPatterns struct {
	BeforeMeals Summary `json:"beforeMeals"`
	AfterMeals  Summary `json:"afterMeals"`
}

// WeekSummary covers the half-open window [Start, End).
type WeekSummary struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Average float64   `json:"average"`
	Count   int       `json:"count"`
}

// PatternReport is the printable/exportable summary of a reading set.
type PatternReport struct {
	GeneratedAt     time.Time     `json:"generatedAt"`
	TotalReadings   int           `json:"totalReadings"`
	Distribution    []StatusCount `json:"distribution"`
	PeakHours       []HourStat    `json:"peakHours"`
	PeakDays        []DayStat     `json:"peakDays"`
	MealPatterns    MealPatterns  `json:"mealPatterns"`
	HighestReadings []Reading     `json:"highestReadings"`
	LowestReadings  []Reading     `json:"lowestReadings"`
	WeeklyTrends    []WeekSummary `json:"weeklyTrends"`
}

type InsightType string

const (
	InsightWarning InsightType = "warning"
	InsightInfo    InsightType = "info"
)

// Insight is a short observation about the most recent readings.
type Insight struct {
	Type        InsightType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
}

// StatusCount is the number of readings in one GlucoseStatus category.
type StatusCount struct {
	Status  GlucoseStatus `json:"status"`
	Count   int           `json:"count"`
	Percent float64       `json:"percent"`
}

// RangeGoal states whether one time-in-range band meets its clinical goal.
type RangeGoal struct {
	Band    string  `json:"band"`
	Value   float64 `json:"value"`
	Goal    string  `json:"goal"`
	Reached bool    `json:"reached"`
}
