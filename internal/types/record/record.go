package record

import (
	"time"

	"github.com/google/uuid"

	"habitLogAPI/internal/caldate"
)

type ExerciseType string

const (
	ExerciseGym         ExerciseType = "gym"
	ExerciseRunning     ExerciseType = "running"
	ExerciseWalking     ExerciseType = "walking"
	ExerciseCycling     ExerciseType = "cycling"
	ExerciseSwimming    ExerciseType = "swimming"
	ExerciseYoga        ExerciseType = "yoga"
	ExerciseHomeWorkout ExerciseType = "home_workout"
	ExerciseOther       ExerciseType = "other"
	ExerciseRestDay     ExerciseType = "rest_day"
)

// MaxBeerCount is the upper bound a stored beer count may take. Values
// outside [0, MaxBeerCount] are treated as absent on read.
const MaxBeerCount = 20

var validExerciseTypes = map[ExerciseType]bool{
	ExerciseGym:         true,
	ExerciseRunning:     true,
	ExerciseWalking:     true,
	ExerciseCycling:     true,
	ExerciseSwimming:    true,
	ExerciseYoga:        true,
	ExerciseHomeWorkout: true,
	ExerciseOther:       true,
	ExerciseRestDay:     true,
}

func (t ExerciseType) Valid() bool {
	return t == "" || validExerciseTypes[t]
}

// DailyRecord is one habit-log row. At most one exists per calendar date;
// the action guard enforces that on creation.
type DailyRecord struct {
	ID              uuid.UUID    `json:"id" db:"id"`
	Date            caldate.Date `json:"date" db:"date"`
	ExerciseType    ExerciseType `json:"exercise_type,omitempty" db:"exercise_type"`
	ExerciseMinutes *int         `json:"exercise_minutes,omitempty" db:"exercise_minutes"`
	BeerCount       *int         `json:"beer_count,omitempty" db:"beer_count"`
	WeightKg        *float64     `json:"weight_kg,omitempty" db:"weight_kg"`
	Notes           string       `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at" db:"updated_at"`
}

// Sanitize drops field values that fail range validation, so malformed rows
// read as partially absent instead of poisoning aggregation.
func (r *DailyRecord) Sanitize() {
	if !validExerciseTypes[r.ExerciseType] {
		r.ExerciseType = ""
	}
	if r.ExerciseMinutes != nil && *r.ExerciseMinutes < 0 {
		r.ExerciseMinutes = nil
	}
	if r.BeerCount != nil && (*r.BeerCount < 0 || *r.BeerCount > MaxBeerCount) {
		r.BeerCount = nil
	}
	if r.WeightKg != nil && *r.WeightKg <= 0 {
		r.WeightKg = nil
	}
}

// IsExerciseDay reports whether the day counts toward the exercise streak:
// a non-empty exercise type other than rest_day.
func (r *DailyRecord) IsExerciseDay() bool {
	return r.ExerciseType != "" && r.ExerciseType != ExerciseRestDay
}

// IsNoAlcoholDay reports whether the day counts toward the no-alcohol
// streak: beer count absent or zero.
func (r *DailyRecord) IsNoAlcoholDay() bool {
	return r.BeerCount == nil || *r.BeerCount == 0
}

// Minutes returns the exercise minutes with absent treated as zero.
func (r *DailyRecord) Minutes() int {
	if r.ExerciseMinutes == nil {
		return 0
	}
	return *r.ExerciseMinutes
}

// Beers returns the beer count with absent treated as zero.
func (r *DailyRecord) Beers() int {
	if r.BeerCount == nil {
		return 0
	}
	return *r.BeerCount
}

type UpdateRecordRequest struct {
	ExerciseType    *ExerciseType `json:"exercise_type,omitempty"`
	ExerciseMinutes *int          `json:"exercise_minutes,omitempty"`
	BeerCount       *int          `json:"beer_count,omitempty"`
	WeightKg        *float64      `json:"weight_kg,omitempty"`
	Notes           *string       `json:"notes,omitempty"`
}
