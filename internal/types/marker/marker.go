package marker

import (
	"time"

	"habitLogAPI/internal/caldate"
)

// Action names for the guarded scheduled actions.
const (
	ActionDailyReminder = "dailyReminder"
	ActionWeeklyRow     = "weeklyRow"
	ActionWeeklySummary = "weeklySummary"
)

// ActionMarker records the last calendar date an action completed. It is
// written only after the guarded side effect is confirmed, never before.
type ActionMarker struct {
	Action        string       `json:"action" db:"action"`
	LastCompleted caldate.Date `json:"last_completed" db:"last_completed"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// DoneOn reports whether the action already completed on the given day.
func (m *ActionMarker) DoneOn(day caldate.Date) bool {
	return m != nil && m.LastCompleted.Equal(day)
}
