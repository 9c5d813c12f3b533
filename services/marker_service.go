package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitLogAPI/internal/caldate"
	"habitLogAPI/internal/types/marker"
)

// MarkerService persists the last-completed date per guarded action.
// Markers are only ever written after the guarded side effect succeeded.
type MarkerService struct {
	db *pgxpool.Pool
}

func NewMarkerService(db *pgxpool.Pool) *MarkerService {
	return &MarkerService{db: db}
}

func (s *MarkerService) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS action_markers (
		action TEXT PRIMARY KEY,
		last_completed DATE NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
	`
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create action_markers table: %w", err)
	}
	return nil
}

// Get returns the marker for an action, or nil when the action has never
// completed.
func (s *MarkerService) Get(ctx context.Context, action string) (*marker.ActionMarker, error) {
	query := `
	SELECT action, last_completed, updated_at
	FROM action_markers
	WHERE action = $1
	`

	m := &marker.ActionMarker{}
	var lastCompleted time.Time
	err := s.db.QueryRow(ctx, query, action).Scan(&m.Action, &lastCompleted, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get marker: %w", mapStoreErr(err))
	}
	m.LastCompleted = caldate.FromTime(lastCompleted)
	return m, nil
}

func (s *MarkerService) SetCompleted(ctx context.Context, action string, day caldate.Date) error {
	query := `
	INSERT INTO action_markers (action, last_completed, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (action)
	DO UPDATE SET last_completed = $2, updated_at = NOW()
	`

	if _, err := s.db.Exec(ctx, query, action, day.Time()); err != nil {
		return fmt.Errorf("failed to set marker: %w", mapStoreErr(err))
	}
	return nil
}
