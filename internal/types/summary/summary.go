package summary

import (
	"time"

	"habitLogAPI/internal/caldate"
)

// WeekSummary aggregates the records from the most recent Monday onward.
type WeekSummary struct {
	WeekStart    caldate.Date `json:"week_start"`
	ExerciseDays int          `json:"exercise_days"`
	TotalMinutes int          `json:"total_minutes"`
	TotalBeers   int          `json:"total_beers"`
	AvgWeightKg  *float64     `json:"avg_weight_kg"` // nil when no weights were logged
}

// MonthSummary aggregates the trailing 30-day window.
type MonthSummary struct {
	WindowStart   caldate.Date `json:"window_start"`
	TotalDays     int          `json:"total_days"`
	ExerciseDays  int          `json:"exercise_days"`
	NoAlcoholDays int          `json:"no_alcohol_days"`
	BeerFreeRate  int          `json:"beer_free_rate"` // integer percent, 0 when no records
}

// Streaks is the pair shown on the dashboard and in reminder texts.
type Streaks struct {
	CurrentExercise  int `json:"current_exercise"`
	CurrentNoAlcohol int `json:"current_no_alcohol"`
	LongestExercise  int `json:"longest_exercise"`
}

// Dashboard is the published summary view.
type Dashboard struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Today       caldate.Date `json:"today"`
	Streaks     Streaks      `json:"streaks"`
	Week        WeekSummary  `json:"week"`
	Month       MonthSummary `json:"month"`
}
