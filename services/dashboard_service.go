package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"habitLogAPI/internal/aggregate"
	"habitLogAPI/internal/caldate"
	"habitLogAPI/internal/types/summary"
)

// DashboardService recomputes the summary view from the record log and
// republishes it: an in-memory copy for the API plus a persisted snapshot
// row. Refresh is a pure function of the current record set, safe to call
// anytime.
type DashboardService struct {
	db      *pgxpool.Pool
	records *RecordService

	mu     sync.RWMutex
	latest *summary.Dashboard
}

func NewDashboardService(db *pgxpool.Pool, records *RecordService) *DashboardService {
	return &DashboardService{db: db, records: records}
}

func (s *DashboardService) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS dashboard_snapshots (
		id INT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		view JSONB NOT NULL,
		generated_at TIMESTAMPTZ NOT NULL
	)
	`
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create dashboard_snapshots table: %w", err)
	}
	return nil
}

// Refresh implements guard.Refresher.
func (s *DashboardService) Refresh(ctx context.Context, now time.Time) error {
	records, err := s.records.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to load records for dashboard: %w", err)
	}

	view := &summary.Dashboard{
		GeneratedAt: now,
		Today:       caldate.FromTime(now),
		Streaks:     aggregate.Streaks(records, now),
		Week:        aggregate.WeekSummary(records, now),
		Month:       aggregate.MonthSummary(records, now),
	}

	s.mu.Lock()
	s.latest = view
	s.mu.Unlock()

	viewJSON, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard view: %w", err)
	}

	query := `
	INSERT INTO dashboard_snapshots (id, view, generated_at)
	VALUES (1, $1, $2)
	ON CONFLICT (id) DO UPDATE SET view = $1, generated_at = $2
	`
	if _, err := s.db.Exec(ctx, query, viewJSON, now); err != nil {
		// The in-memory view already updated; the snapshot is best effort.
		log.Printf("Failed to persist dashboard snapshot: %v", err)
	}
	return nil
}

// View returns the latest published dashboard, computing one on first use.
func (s *DashboardService) View(ctx context.Context, now time.Time) (*summary.Dashboard, error) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()

	if latest != nil {
		return latest, nil
	}

	if err := s.Refresh(ctx, now); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, nil
}
