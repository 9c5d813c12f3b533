package aggregate

import (
	"math"
	"sort"
	"time"

	"habitLogAPI/internal/caldate"
	"habitLogAPI/internal/types/record"
	"habitLogAPI/internal/types/summary"
)

// Pure aggregation over the daily log. Every function sorts a copy of its
// input by ascending date first; storage insertion order carries no meaning
// here.

func sortedByDate(records []*record.DailyRecord) []*record.DailyRecord {
	sorted := make([]*record.DailyRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// currentStreak walks existing rows from the most recent backward, counting
// while isDay holds and dates stay consecutive. A missing row for "today"
// does not break the streak: only rows that exist are inspected.
func currentStreak(records []*record.DailyRecord, isDay func(*record.DailyRecord) bool) int {
	sorted := sortedByDate(records)

	count := 0
	var prev caldate.Date
	for i := len(sorted) - 1; i >= 0; i-- {
		rec := sorted[i]
		if count > 0 && prev.DaysSince(rec.Date) != 1 {
			break
		}
		if !isDay(rec) {
			break
		}
		count++
		prev = rec.Date
	}
	return count
}

// CurrentExerciseStreak returns the length of the consecutive run of
// exercise days ending at the most recent record.
func CurrentExerciseStreak(records []*record.DailyRecord, now time.Time) int {
	return currentStreak(records, (*record.DailyRecord).IsExerciseDay)
}

// CurrentNoAlcoholStreak returns the length of the consecutive run of
// no-alcohol days ending at the most recent record.
func CurrentNoAlcoholStreak(records []*record.DailyRecord, now time.Time) int {
	return currentStreak(records, (*record.DailyRecord).IsNoAlcoholDay)
}

// LongestExerciseStreak scans the whole log in date order and returns the
// longest run of exercise-day rows. Only a recorded non-exercise day resets
// the run; a day with no row at all does not. CurrentExerciseStreak is
// stricter and stops at date gaps.
func LongestExerciseStreak(records []*record.DailyRecord) int {
	sorted := sortedByDate(records)

	longest := 0
	current := 0
	for _, rec := range sorted {
		if !rec.IsExerciseDay() {
			current = 0
			continue
		}
		current++
		if current > longest {
			longest = current
		}
	}
	return longest
}

// WeekSummary aggregates records dated on or after the most recent Monday.
func WeekSummary(records []*record.DailyRecord, now time.Time) summary.WeekSummary {
	monday := caldate.FromTime(now).StartOfWeek()

	result := summary.WeekSummary{WeekStart: monday}
	var weights []float64
	for _, rec := range sortedByDate(records) {
		if rec.Date.Before(monday) {
			continue
		}
		if rec.IsExerciseDay() {
			result.ExerciseDays++
		}
		result.TotalMinutes += rec.Minutes()
		result.TotalBeers += rec.Beers()
		if rec.WeightKg != nil && *rec.WeightKg > 0 {
			weights = append(weights, *rec.WeightKg)
		}
	}

	if len(weights) > 0 {
		sum := 0.0
		for _, w := range weights {
			sum += w
		}
		avg := sum / float64(len(weights))
		result.AvgWeightKg = &avg
	}
	return result
}

// MonthSummary aggregates the trailing 30-day window ending at now.
func MonthSummary(records []*record.DailyRecord, now time.Time) summary.MonthSummary {
	today := caldate.FromTime(now)
	start := today.AddDays(-30)

	result := summary.MonthSummary{WindowStart: start}
	for _, rec := range sortedByDate(records) {
		if rec.Date.Before(start) || rec.Date.After(today) {
			continue
		}
		result.TotalDays++
		if rec.IsExerciseDay() {
			result.ExerciseDays++
		}
		if rec.IsNoAlcoholDay() {
			result.NoAlcoholDays++
		}
	}

	if result.TotalDays > 0 {
		result.BeerFreeRate = int(math.Round(float64(result.NoAlcoholDays) / float64(result.TotalDays) * 100))
	}
	return result
}

// Streaks bundles the three streak values computed from one pass over the
// log, for the dashboard and notification texts.
func Streaks(records []*record.DailyRecord, now time.Time) summary.Streaks {
	return summary.Streaks{
		CurrentExercise:  CurrentExerciseStreak(records, now),
		CurrentNoAlcohol: CurrentNoAlcoholStreak(records, now),
		LongestExercise:  LongestExerciseStreak(records),
	}
}
