package guard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"habitLogAPI/internal/caldate"
	"habitLogAPI/internal/types/marker"
	"habitLogAPI/internal/types/record"
)

type fakeRecordStore struct {
	mu      sync.Mutex
	records []*record.DailyRecord
}

func (s *fakeRecordStore) ListRecords(ctx context.Context) ([]*record.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*record.DailyRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *fakeRecordStore) GetByDate(ctx context.Context, date caldate.Date) (*record.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.Date.Equal(date) {
			return rec, nil
		}
	}
	return nil, nil
}

func (s *fakeRecordStore) AppendRecord(ctx context.Context, rec *record.DailyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeRecordStore) countForDate(date caldate.Date) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rec := range s.records {
		if rec.Date.Equal(date) {
			n++
		}
	}
	return n
}

type fakeMarkerStore struct {
	mu      sync.Mutex
	markers map[string]caldate.Date
}

func newFakeMarkerStore() *fakeMarkerStore {
	return &fakeMarkerStore{markers: make(map[string]caldate.Date)}
}

func (s *fakeMarkerStore) Get(ctx context.Context, action string) (*marker.ActionMarker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, ok := s.markers[action]
	if !ok {
		return nil, nil
	}
	return &marker.ActionMarker{Action: action, LastCompleted: day}, nil
}

func (s *fakeMarkerStore) SetCompleted(ctx context.Context, action string, day caldate.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[action] = day
	return nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent int
	fail bool
	last string
}

func (s *fakeSender) Send(ctx context.Context, title, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("push gateway unavailable")
	}
	s.sent++
	s.last = body
	return nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}

type fakeRefresher struct {
	mu    sync.Mutex
	calls int
}

func (r *fakeRefresher) Refresh(ctx context.Context, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return nil
}

func newTestGuard() (*Guard, *fakeRecordStore, *fakeMarkerStore, *fakeSender, *fakeRefresher) {
	records := &fakeRecordStore{}
	markers := newFakeMarkerStore()
	sender := &fakeSender{}
	refresher := &fakeRefresher{}
	return New(records, markers, sender, refresher), records, markers, sender, refresher
}

var testNow = time.Date(2026, 8, 27, 19, 0, 0, 0, time.UTC)

func TestEnsureTodayRecordIdempotent(t *testing.T) {
	g, records, _, _, _ := newTestGuard()
	ctx := context.Background()

	if err := g.EnsureTodayRecord(ctx, testNow); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if err := g.EnsureTodayRecord(ctx, testNow); err != nil {
		t.Fatalf("second call: %v", err)
	}

	today := caldate.FromTime(testNow)
	if got := records.countForDate(today); got != 1 {
		t.Errorf("expected exactly one record for %s, got %d", today, got)
	}
}

func TestEnsureTodayRecordConcurrentRace(t *testing.T) {
	g, records, _, _, _ := newTestGuard()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := g.EnsureTodayRecord(ctx, testNow); err != nil {
				t.Errorf("concurrent call: %v", err)
			}
		}()
	}
	wg.Wait()

	today := caldate.FromTime(testNow)
	if got := records.countForDate(today); got != 1 {
		t.Errorf("racing callers must produce one record, got %d", got)
	}
}

func TestMaybeSendReminderOncePerDay(t *testing.T) {
	g, _, _, sender, _ := newTestGuard()
	ctx := context.Background()

	if err := g.MaybeSendReminder(ctx, testNow); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if err := g.MaybeSendReminder(ctx, testNow); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if got := sender.count(); got != 1 {
		t.Errorf("expected one reminder, got %d", got)
	}

	// A new day is a new key comparison; the marker does not need resetting.
	nextEvening := testNow.AddDate(0, 0, 1)
	if err := g.MaybeSendReminder(ctx, nextEvening); err != nil {
		t.Fatalf("next day call: %v", err)
	}
	if got := sender.count(); got != 2 {
		t.Errorf("expected a second reminder the next day, got %d", got)
	}
}

func TestMaybeSendReminderSkipsWhenHabitLogged(t *testing.T) {
	g, records, _, sender, _ := newTestGuard()
	ctx := context.Background()

	records.AppendRecord(ctx, &record.DailyRecord{
		Date:         caldate.FromTime(testNow),
		ExerciseType: record.ExerciseRunning,
	})

	if err := g.MaybeSendReminder(ctx, testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sender.count(); got != 0 {
		t.Errorf("habit already logged, expected no reminder, got %d", got)
	}
}

func TestMaybeSendReminderTransportFailureRetries(t *testing.T) {
	g, _, markers, sender, _ := newTestGuard()
	ctx := context.Background()

	sender.fail = true
	if err := g.MaybeSendReminder(ctx, testNow); err == nil {
		t.Fatal("expected transport failure to propagate")
	}

	// Marker must stay unset so the next tick retries.
	m, _ := markers.Get(ctx, marker.ActionDailyReminder)
	if m.DoneOn(caldate.FromTime(testNow)) {
		t.Error("marker must not be written when the send failed")
	}

	sender.fail = false
	if err := g.MaybeSendReminder(ctx, testNow); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if got := sender.count(); got != 1 {
		t.Errorf("expected the retry to send, got %d sends", got)
	}
}

func TestSendWeeklySummaryDedupesAndRefreshes(t *testing.T) {
	g, _, _, sender, refresher := newTestGuard()
	ctx := context.Background()

	if err := g.SendWeeklySummary(ctx, testNow); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if err := g.SendWeeklySummary(ctx, testNow); err != nil {
		t.Fatalf("second call: %v", err)
	}

	if got := sender.count(); got != 1 {
		t.Errorf("expected one summary per day, got %d", got)
	}
	if refresher.calls != 1 {
		t.Errorf("expected one dashboard refresh, got %d", refresher.calls)
	}
}

func TestLockTimeoutIsSilentSkip(t *testing.T) {
	g, records, _, _, _ := newTestGuard()
	g.SetLockTimeout(50 * time.Millisecond)
	ctx := context.Background()

	// Hold the lock so the guarded action times out.
	if err := g.lock.Acquire(ctx, 1); err != nil {
		t.Fatal(err)
	}
	defer g.lock.Release(1)

	if err := g.EnsureTodayRecord(ctx, testNow); err != nil {
		t.Fatalf("lock timeout must be a silent no-op, got %v", err)
	}
	if got := records.countForDate(caldate.FromTime(testNow)); got != 0 {
		t.Errorf("skipped action must have no partial effect, got %d records", got)
	}
}
