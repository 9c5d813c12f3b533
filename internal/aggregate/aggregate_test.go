package aggregate

import (
	"testing"
	"time"

	"habitLogAPI/internal/caldate"
	"habitLogAPI/internal/types/record"
)

func day(t *testing.T, s string) caldate.Date {
	t.Helper()
	d, err := caldate.Parse(s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

func rec(t *testing.T, date string, exercise record.ExerciseType) *record.DailyRecord {
	t.Helper()
	return &record.DailyRecord{Date: day(t, date), ExerciseType: exercise}
}

func TestCurrentExerciseStreakEmpty(t *testing.T) {
	if got := CurrentExerciseStreak(nil, time.Now()); got != 0 {
		t.Errorf("expected 0 for empty log, got %d", got)
	}
}

func TestCurrentExerciseStreakSingleDay(t *testing.T) {
	records := []*record.DailyRecord{rec(t, "2026-08-27", record.ExerciseGym)}
	if got := CurrentExerciseStreak(records, time.Now()); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}

func TestCurrentExerciseStreakBrokenByRestDay(t *testing.T) {
	records := []*record.DailyRecord{
		rec(t, "2026-08-26", record.ExerciseGym),
		rec(t, "2026-08-27", record.ExerciseRestDay),
	}
	if got := CurrentExerciseStreak(records, time.Now()); got != 0 {
		t.Errorf("most recent day is a rest day, expected 0, got %d", got)
	}
}

func TestCurrentExerciseStreakBrokenByGap(t *testing.T) {
	records := []*record.DailyRecord{
		rec(t, "2026-08-24", record.ExerciseRunning),
		rec(t, "2026-08-25", record.ExerciseRunning),
		// no row for the 26th
		rec(t, "2026-08-27", record.ExerciseGym),
	}
	if got := CurrentExerciseStreak(records, time.Now()); got != 1 {
		t.Errorf("gap should stop the walk, expected 1, got %d", got)
	}
}

func TestCurrentExerciseStreakIgnoresInsertionOrder(t *testing.T) {
	records := []*record.DailyRecord{
		rec(t, "2026-08-27", record.ExerciseGym),
		rec(t, "2026-08-25", record.ExerciseRunning),
		rec(t, "2026-08-26", record.ExerciseYoga),
	}
	if got := CurrentExerciseStreak(records, time.Now()); got != 3 {
		t.Errorf("expected 3 regardless of slice order, got %d", got)
	}
}

func TestScenarioFourDays(t *testing.T) {
	// Mon gym, Tue rest, Wed+Thu running, now = Thu.
	records := []*record.DailyRecord{
		rec(t, "2026-08-24", record.ExerciseGym),
		rec(t, "2026-08-25", record.ExerciseRestDay),
		rec(t, "2026-08-26", record.ExerciseRunning),
		rec(t, "2026-08-27", record.ExerciseRunning),
	}
	now := time.Date(2026, 8, 27, 20, 0, 0, 0, time.UTC)

	if got := CurrentExerciseStreak(records, now); got != 2 {
		t.Errorf("current exercise streak: expected 2, got %d", got)
	}
	if got := LongestExerciseStreak(records); got != 2 {
		t.Errorf("longest exercise streak: expected 2, got %d", got)
	}
	// No beer counts logged on any day, all four count as no-alcohol days.
	if got := CurrentNoAlcoholStreak(records, now); got != 4 {
		t.Errorf("no-alcohol streak: expected 4, got %d", got)
	}
}

func TestCurrentNoAlcoholStreakZeroBeersCounts(t *testing.T) {
	withBeers := rec(t, "2026-08-26", "")
	withBeers.BeerCount = intPtr(3)
	zeroBeers := rec(t, "2026-08-27", "")
	zeroBeers.BeerCount = intPtr(0)

	records := []*record.DailyRecord{withBeers, zeroBeers}
	if got := CurrentNoAlcoholStreak(records, time.Now()); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}

func TestLongestExerciseStreakResetsAndKeepsMax(t *testing.T) {
	records := []*record.DailyRecord{
		rec(t, "2026-08-20", record.ExerciseGym),
		rec(t, "2026-08-21", record.ExerciseGym),
		rec(t, "2026-08-22", record.ExerciseGym),
		rec(t, "2026-08-23", record.ExerciseRestDay),
		rec(t, "2026-08-24", record.ExerciseRunning),
		rec(t, "2026-08-25", record.ExerciseRunning),
	}
	if got := LongestExerciseStreak(records); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}

	// Extending the tail past the old max raises the result.
	records = append(records,
		rec(t, "2026-08-26", record.ExerciseRunning),
		rec(t, "2026-08-27", record.ExerciseRunning),
	)
	if got := LongestExerciseStreak(records); got != 4 {
		t.Errorf("expected 4 after extending tail, got %d", got)
	}
}

func TestLongestExerciseStreakIgnoresMissingDays(t *testing.T) {
	// Only a recorded non-exercise day resets the run; a day with no row
	// at all does not.
	records := []*record.DailyRecord{
		rec(t, "2026-08-20", record.ExerciseGym),
		rec(t, "2026-08-21", record.ExerciseGym),
		// no row for the 22nd
		rec(t, "2026-08-23", record.ExerciseGym),
	}
	if got := LongestExerciseStreak(records); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestWeekSummaryMondayBoundary(t *testing.T) {
	// 2026-08-31 is a Monday.
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	sunday := rec(t, "2026-08-30", record.ExerciseGym)
	sunday.ExerciseMinutes = intPtr(45)
	monday := rec(t, "2026-08-31", record.ExerciseRunning)
	monday.ExerciseMinutes = intPtr(30)
	monday.BeerCount = intPtr(2)

	got := WeekSummary([]*record.DailyRecord{sunday, monday}, now)
	if got.WeekStart != day(t, "2026-08-31") {
		t.Errorf("week start: expected 2026-08-31, got %s", got.WeekStart)
	}
	if got.ExerciseDays != 1 {
		t.Errorf("preceding Sunday must be excluded: expected 1 exercise day, got %d", got.ExerciseDays)
	}
	if got.TotalMinutes != 30 {
		t.Errorf("expected 30 minutes, got %d", got.TotalMinutes)
	}
	if got.TotalBeers != 2 {
		t.Errorf("expected 2 beers, got %d", got.TotalBeers)
	}
}

func TestWeekSummarySundayNow(t *testing.T) {
	// On a Sunday the window reaches back six days to Monday.
	now := time.Date(2026, 9, 6, 9, 0, 0, 0, time.UTC)
	got := WeekSummary(nil, now)
	if got.WeekStart != day(t, "2026-08-31") {
		t.Errorf("expected week start 2026-08-31, got %s", got.WeekStart)
	}
}

func TestWeekSummaryWeights(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC) // Thursday

	a := rec(t, "2026-08-25", "")
	a.WeightKg = floatPtr(80)
	b := rec(t, "2026-08-26", "")
	b.WeightKg = floatPtr(82)
	c := rec(t, "2026-08-27", "") // no weight logged

	got := WeekSummary([]*record.DailyRecord{a, b, c}, now)
	if got.AvgWeightKg == nil {
		t.Fatal("expected an average weight")
	}
	if *got.AvgWeightKg != 81 {
		t.Errorf("expected avg 81, got %v", *got.AvgWeightKg)
	}

	empty := WeekSummary([]*record.DailyRecord{c}, now)
	if empty.AvgWeightKg != nil {
		t.Errorf("expected nil average with no weights, got %v", *empty.AvgWeightKg)
	}
}

func TestMonthSummaryEmpty(t *testing.T) {
	got := MonthSummary(nil, time.Now())
	if got.TotalDays != 0 || got.BeerFreeRate != 0 {
		t.Errorf("empty log must yield zeroes, got %+v", got)
	}
}

func TestMonthSummaryRates(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	gym := rec(t, "2026-08-25", record.ExerciseGym)
	beers := rec(t, "2026-08-26", "")
	beers.BeerCount = intPtr(4)
	rest := rec(t, "2026-08-27", record.ExerciseRestDay)

	// Outside the trailing 30 days, must not count.
	old := rec(t, "2026-07-01", record.ExerciseGym)

	got := MonthSummary([]*record.DailyRecord{gym, beers, rest, old}, now)
	if got.TotalDays != 3 {
		t.Errorf("expected 3 days in window, got %d", got.TotalDays)
	}
	if got.ExerciseDays != 1 {
		t.Errorf("expected 1 exercise day, got %d", got.ExerciseDays)
	}
	if got.NoAlcoholDays != 2 {
		t.Errorf("expected 2 no-alcohol days, got %d", got.NoAlcoholDays)
	}
	if got.BeerFreeRate != 67 {
		t.Errorf("expected 67%%, got %d", got.BeerFreeRate)
	}
}
