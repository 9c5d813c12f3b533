package utils

import (
	"strings"
	"testing"

	"habitLogAPI/internal/types/summary"
)

func TestComposeReminderMentionsStreak(t *testing.T) {
	_, body := ComposeReminder(summary.Streaks{CurrentExercise: 5})
	if !strings.Contains(body, "5-day") {
		t.Errorf("expected streak length in body, got %q", body)
	}

	_, body = ComposeReminder(summary.Streaks{CurrentExercise: 0})
	if !strings.Contains(body, "No workout logged yet") {
		t.Errorf("unexpected zero-streak body: %q", body)
	}
}

func TestComposeReminderNoAlcoholBonus(t *testing.T) {
	_, body := ComposeReminder(summary.Streaks{CurrentExercise: 2, CurrentNoAlcohol: 4})
	if !strings.Contains(body, "4 alcohol-free days") {
		t.Errorf("expected no-alcohol bonus line, got %q", body)
	}

	_, body = ComposeReminder(summary.Streaks{CurrentExercise: 2, CurrentNoAlcohol: 1})
	if strings.Contains(body, "alcohol-free") {
		t.Errorf("short no-alcohol run must not appear, got %q", body)
	}
}

func TestComposeWeeklySummary(t *testing.T) {
	avg := 80.5
	week := summary.WeekSummary{
		ExerciseDays: 3,
		TotalMinutes: 150,
		TotalBeers:   1,
		AvgWeightKg:  &avg,
	}

	_, body := ComposeWeeklySummary(week, summary.Streaks{CurrentExercise: 3, LongestExercise: 9})
	for _, want := range []string{"3 exercise days", "150 min", "1 beer.", "80.5 kg", "best ever 9"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in body %q", want, body)
		}
	}
}

func TestComposeWeeklySummaryNoWeight(t *testing.T) {
	_, body := ComposeWeeklySummary(summary.WeekSummary{}, summary.Streaks{})
	if strings.Contains(body, "kg") {
		t.Errorf("no weights logged, body must omit weight: %q", body)
	}
}
