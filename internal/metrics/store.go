package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"foodflow/internal/shared"
)

const timestampLayout = "2006-01-02 15:04:05"

// GenerationMetric records metadata for a single plan generation.
type GenerationMetric struct {
	Mode          shared.GenerationMode
	Diet          string
	Skill         string
	Requested     int
	Produced      int
	FailedFetches int
	Fallback      bool
	LatencyMS     int64
	Timestamp     time.Time
}

// Store handles persistence of generation metrics to SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m GenerationMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_metrics
			(mode, diet, skill, requested, produced, failed_fetches, fallback, latency_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(m.Mode), m.Diet, m.Skill, m.Requested, m.Produced, m.FailedFetches,
		m.Fallback, m.LatencyMS, ts.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert generation metric: %w", err)
	}
	return nil
}

// RecordRun records metrics directly from shared.RunMeta.
func (s *Store) RecordRun(ctx context.Context, meta shared.RunMeta) error {
	return s.Record(ctx, FromRunMeta(meta))
}

// FromRunMeta converts run metadata into a GenerationMetric.
func FromRunMeta(meta shared.RunMeta) GenerationMetric {
	return GenerationMetric{
		Mode:          meta.Mode,
		Diet:          meta.Diet,
		Skill:         meta.Skill,
		Requested:     meta.Requested,
		Produced:      meta.Produced,
		FailedFetches: meta.Failed,
		Fallback:      meta.Fallback,
		LatencyMS:     meta.Latency.Milliseconds(),
	}
}

// DailySummary aggregates generation runs for a single day.
type DailySummary struct {
	Date          string
	Runs          int
	FetchRuns     int
	Fallbacks     int
	MealsProduced int
	FailedFetches int
	AvgLatencyMS  float64
}

// GetDailySummary retrieves per-day totals for the last N days, newest first.
func (s *Store) GetDailySummary(ctx context.Context, days int) ([]DailySummary, error) {
	since := s.now().UTC().AddDate(0, 0, -days).Format(timestampLayout)

	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(timestamp, 1, 10) AS day,
		       COUNT(*),
		       COALESCE(SUM(CASE WHEN mode = 'fetch' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(fallback), 0),
		       COALESCE(SUM(produced), 0),
		       COALESCE(SUM(failed_fetches), 0),
		       COALESCE(AVG(latency_ms), 0)
		FROM generation_metrics
		WHERE timestamp >= ?
		GROUP BY day
		ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily summary: %w", err)
	}
	defer rows.Close()

	var results []DailySummary
	for rows.Next() {
		var d DailySummary
		if err := rows.Scan(&d.Date, &d.Runs, &d.FetchRuns, &d.Fallbacks, &d.MealsProduced, &d.FailedFetches, &d.AvgLatencyMS); err != nil {
			return nil, fmt.Errorf("failed to scan daily summary: %w", err)
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days and
// returns how many were deleted.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := s.now().UTC().AddDate(0, 0, -olderThanDays).Format(timestampLayout)

	res, err := s.db.ExecContext(ctx, `DELETE FROM generation_metrics WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up generation metrics: %w", err)
	}
	return res.RowsAffected()
}
