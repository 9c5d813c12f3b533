package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitLogAPI/internal/caldate"
	"habitLogAPI/internal/guard"
	"habitLogAPI/internal/types/record"
)

type RecordService struct {
	db *pgxpool.Pool
}

func NewRecordService(db *pgxpool.Pool) *RecordService {
	return &RecordService{db: db}
}

// undefined_table means initialization never ran; map it to the sentinel the
// handlers turn into a "run initialization" directive.
func mapStoreErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42P01" {
		return guard.ErrMissingStore
	}
	return err
}

func (s *RecordService) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS daily_records (
		id UUID PRIMARY KEY,
		date DATE NOT NULL UNIQUE,
		exercise_type TEXT NOT NULL DEFAULT '',
		exercise_minutes INT,
		beer_count INT,
		weight_kg DOUBLE PRECISION,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
	`
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create daily_records table: %w", err)
	}
	return nil
}

func (s *RecordService) scanRecord(row pgx.Row) (*record.DailyRecord, error) {
	rec := &record.DailyRecord{}
	var date time.Time
	err := row.Scan(
		&rec.ID,
		&date,
		&rec.ExerciseType,
		&rec.ExerciseMinutes,
		&rec.BeerCount,
		&rec.WeightKg,
		&rec.Notes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Date = caldate.FromTime(date)
	rec.Sanitize()
	return rec, nil
}

const recordColumns = `id, date, exercise_type, exercise_minutes, beer_count, weight_kg, notes, created_at, updated_at`

// ListRecords returns the full log in ascending date order. Aggregation
// re-sorts anyway, but the dashboard and API rely on this ordering too.
func (s *RecordService) ListRecords(ctx context.Context) ([]*record.DailyRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM daily_records
	ORDER BY date ASC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", mapStoreErr(err))
	}
	defer rows.Close()

	var records []*record.DailyRecord
	for rows.Next() {
		rec, err := s.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetByDate returns the record for the given day, or nil when none exists.
func (s *RecordService) GetByDate(ctx context.Context, date caldate.Date) (*record.DailyRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM daily_records
	WHERE date = $1
	`

	rec, err := s.scanRecord(s.db.QueryRow(ctx, query, date.Time()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get record: %w", mapStoreErr(err))
	}
	return rec, nil
}

func (s *RecordService) AppendRecord(ctx context.Context, rec *record.DailyRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	query := `
	INSERT INTO daily_records (id, date, exercise_type, exercise_minutes, beer_count, weight_kg, notes)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.Exec(ctx, query,
		rec.ID, rec.Date.Time(), rec.ExerciseType, rec.ExerciseMinutes,
		rec.BeerCount, rec.WeightKg, rec.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to append record: %w", mapStoreErr(err))
	}
	return nil
}

// UpsertRecord overwrites the row for the given date in place. Historical
// correction is simple overwrite, nothing fancier.
func (s *RecordService) UpsertRecord(ctx context.Context, date caldate.Date, req *record.UpdateRecordRequest) (*record.DailyRecord, error) {
	if req.ExerciseType != nil && !req.ExerciseType.Valid() {
		return nil, fmt.Errorf("invalid exercise type %q", *req.ExerciseType)
	}
	if req.BeerCount != nil && (*req.BeerCount < 0 || *req.BeerCount > record.MaxBeerCount) {
		return nil, fmt.Errorf("beer count must be in [0, %d]", record.MaxBeerCount)
	}
	if req.ExerciseMinutes != nil && *req.ExerciseMinutes < 0 {
		return nil, fmt.Errorf("exercise minutes must be non-negative")
	}
	if req.WeightKg != nil && *req.WeightKg <= 0 {
		return nil, fmt.Errorf("weight must be positive")
	}

	exerciseType := ""
	if req.ExerciseType != nil {
		exerciseType = string(*req.ExerciseType)
	}
	notes := ""
	if req.Notes != nil {
		notes = *req.Notes
	}

	query := `
	INSERT INTO daily_records (id, date, exercise_type, exercise_minutes, beer_count, weight_kg, notes)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (date)
	DO UPDATE SET
		exercise_type = COALESCE($8, daily_records.exercise_type),
		exercise_minutes = COALESCE($4, daily_records.exercise_minutes),
		beer_count = COALESCE($5, daily_records.beer_count),
		weight_kg = COALESCE($6, daily_records.weight_kg),
		notes = COALESCE($9, daily_records.notes),
		updated_at = NOW()
	RETURNING ` + recordColumns + `
	`

	var exerciseTypeParam, notesParam *string
	if req.ExerciseType != nil {
		exerciseTypeParam = &exerciseType
	}
	if req.Notes != nil {
		notesParam = &notes
	}

	rec, err := s.scanRecord(s.db.QueryRow(ctx, query,
		uuid.New(), date.Time(), exerciseType, req.ExerciseMinutes,
		req.BeerCount, req.WeightKg, notes, exerciseTypeParam, notesParam,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert record: %w", mapStoreErr(err))
	}
	return rec, nil
}
