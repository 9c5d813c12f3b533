package guard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/semaphore"

	"habitLogAPI/internal/aggregate"
	"habitLogAPI/internal/caldate"
	"habitLogAPI/internal/types/marker"
	"habitLogAPI/internal/types/record"
	"habitLogAPI/utils"
)

// DefaultLockTimeout bounds how long a guarded action waits for the
// process-wide lock before giving up for this tick.
const DefaultLockTimeout = 10 * time.Second

// ErrMissingStore is returned when the record or marker table has not been
// created yet. Callers surface it with a directive to run initialization.
var ErrMissingStore = errors.New("store not initialized: run initialization first")

// RecordStore is the slice of the record service the guard needs.
type RecordStore interface {
	ListRecords(ctx context.Context) ([]*record.DailyRecord, error)
	GetByDate(ctx context.Context, date caldate.Date) (*record.DailyRecord, error)
	AppendRecord(ctx context.Context, rec *record.DailyRecord) error
}

// MarkerStore persists the last-completed date per action.
type MarkerStore interface {
	Get(ctx context.Context, action string) (*marker.ActionMarker, error)
	SetCompleted(ctx context.Context, action string, day caldate.Date) error
}

// Sender delivers a composed notification. A non-nil error means the message
// did not go out and the action must be retried on a later tick.
type Sender interface {
	Send(ctx context.Context, title, body string) error
}

// Refresher republishes the dashboard view.
type Refresher interface {
	Refresh(ctx context.Context, now time.Time) error
}

// Guard wraps each scheduled action in lock-plus-marker at-most-once-per-day
// semantics. Overlapping scheduler ticks and retries are expected; the lock
// serializes the check-then-act region and the marker dedupes within a day.
type Guard struct {
	records   RecordStore
	markers   MarkerStore
	sender    Sender
	dashboard Refresher

	lock        *semaphore.Weighted
	lockTimeout time.Duration
}

func New(records RecordStore, markers MarkerStore, sender Sender, dashboard Refresher) *Guard {
	return &Guard{
		records:     records,
		markers:     markers,
		sender:      sender,
		dashboard:   dashboard,
		lock:        semaphore.NewWeighted(1),
		lockTimeout: DefaultLockTimeout,
	}
}

// SetLockTimeout overrides the lock wait bound, mainly for tests.
func (g *Guard) SetLockTimeout(d time.Duration) {
	g.lockTimeout = d
}

// acquire takes the process-wide mutation lock. false means the lock was
// busy past the timeout; the action is skipped for this tick and the next
// scheduled invocation retries.
func (g *Guard) acquire(ctx context.Context) bool {
	lockCtx, cancel := context.WithTimeout(ctx, g.lockTimeout)
	defer cancel()

	if err := g.lock.Acquire(lockCtx, 1); err != nil {
		log.Printf("Guard: lock busy, skipping action: %v", err)
		return false
	}
	return true
}

// EnsureTodayRecord appends a date-only row for today's date unless one
// already exists. Idempotent; a lock timeout is a silent no-op.
func (g *Guard) EnsureTodayRecord(ctx context.Context, now time.Time) error {
	if !g.acquire(ctx) {
		return nil
	}
	defer g.lock.Release(1)

	today := caldate.FromTime(now)
	existing, err := g.records.GetByDate(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to check today's record: %w", err)
	}
	if existing != nil {
		return nil
	}

	if err := g.records.AppendRecord(ctx, &record.DailyRecord{Date: today}); err != nil {
		return fmt.Errorf("failed to append today's record: %w", err)
	}
	log.Printf("Guard: created record row for %s", today)
	return nil
}

// MaybeSendReminder sends the evening nag unless it already went out today
// or today's row already shows exercise. The marker is written only after
// the send succeeded, so a transport failure retries on the next tick.
func (g *Guard) MaybeSendReminder(ctx context.Context, now time.Time) error {
	if !g.acquire(ctx) {
		return nil
	}
	defer g.lock.Release(1)

	today := caldate.FromTime(now)

	m, err := g.markers.Get(ctx, marker.ActionDailyReminder)
	if err != nil {
		return fmt.Errorf("failed to read reminder marker: %w", err)
	}
	if m.DoneOn(today) {
		return nil
	}

	todayRec, err := g.records.GetByDate(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to check today's record: %w", err)
	}
	if todayRec != nil && todayRec.ExerciseType != "" {
		// Habit already logged, no need to nag.
		return nil
	}

	records, err := g.records.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	title, body := utils.ComposeReminder(aggregate.Streaks(records, now))
	if err := g.sender.Send(ctx, title, body); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}

	if err := g.markers.SetCompleted(ctx, marker.ActionDailyReminder, today); err != nil {
		return fmt.Errorf("failed to set reminder marker: %w", err)
	}
	log.Printf("Guard: reminder sent for %s", today)
	return nil
}

// SendWeeklySummary pushes the week-in-review message and refreshes the
// dashboard. A defensive marker keeps a retried tick from sending twice on
// the same day.
func (g *Guard) SendWeeklySummary(ctx context.Context, now time.Time) error {
	if !g.acquire(ctx) {
		return nil
	}
	defer g.lock.Release(1)

	today := caldate.FromTime(now)

	m, err := g.markers.Get(ctx, marker.ActionWeeklySummary)
	if err != nil {
		return fmt.Errorf("failed to read weekly summary marker: %w", err)
	}
	if m.DoneOn(today) {
		return nil
	}

	records, err := g.records.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	week := aggregate.WeekSummary(records, now)
	streaks := aggregate.Streaks(records, now)

	title, body := utils.ComposeWeeklySummary(week, streaks)
	if err := g.sender.Send(ctx, title, body); err != nil {
		return fmt.Errorf("failed to send weekly summary: %w", err)
	}

	if err := g.markers.SetCompleted(ctx, marker.ActionWeeklySummary, today); err != nil {
		return fmt.Errorf("failed to set weekly summary marker: %w", err)
	}

	if g.dashboard != nil {
		if err := g.dashboard.Refresh(ctx, now); err != nil {
			log.Printf("Guard: dashboard refresh after weekly summary failed: %v", err)
		}
	}
	log.Printf("Guard: weekly summary sent for %s", today)
	return nil
}
