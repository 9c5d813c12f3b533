package utils

import (
	"fmt"
	"strings"

	"habitLogAPI/internal/types/summary"
)

// Text composition for the push notifications. Pure functions; the guard
// decides whether anything gets sent.

func ComposeReminder(streaks summary.Streaks) (title, body string) {
	title = "Don't break the chain"

	switch {
	case streaks.CurrentExercise == 0:
		body = "No workout logged yet today. Even a short walk counts."
	case streaks.CurrentExercise == 1:
		body = "You exercised yesterday. Log today's session to start a streak."
	default:
		body = fmt.Sprintf("You're on a %d-day exercise streak. Log today's session to keep it alive.", streaks.CurrentExercise)
	}

	if streaks.CurrentNoAlcohol >= 3 {
		body += fmt.Sprintf(" Bonus: %d alcohol-free days in a row.", streaks.CurrentNoAlcohol)
	}
	return title, body
}

func ComposeWeeklySummary(week summary.WeekSummary, streaks summary.Streaks) (title, body string) {
	title = "Your week in review"

	var b strings.Builder
	fmt.Fprintf(&b, "Since %s: %d exercise day", week.WeekStart, week.ExerciseDays)
	if week.ExerciseDays != 1 {
		b.WriteString("s")
	}
	fmt.Fprintf(&b, ", %d min total, %d beer", week.TotalMinutes, week.TotalBeers)
	if week.TotalBeers != 1 {
		b.WriteString("s")
	}
	b.WriteString(".")

	if week.AvgWeightKg != nil {
		fmt.Fprintf(&b, " Avg weight %.1f kg.", *week.AvgWeightKg)
	}
	fmt.Fprintf(&b, " Current streak %d, best ever %d.", streaks.CurrentExercise, streaks.LongestExercise)

	return title, b.String()
}
