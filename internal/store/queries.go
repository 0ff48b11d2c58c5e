package store

import (
	"context"
	"fmt"
	"time"

	"github.com/econlab/econpipe/pkg/types"
)

// LatestObservationDate returns the most recent stored observation date for a
// series. The second return is false when the series has no stored data yet.
func (s *Store) LatestObservationDate(ctx context.Context, seriesID string) (time.Time, bool, error) {
	var latest *time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT MAX(d.observation_date)
		FROM indicator_data d
		JOIN indicators i ON i.indicator_id = d.indicator_id
		WHERE i.series_id = $1
	`, seriesID).Scan(&latest)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("latest observation date for %s: %w", seriesID, err)
	}
	if latest == nil {
		return time.Time{}, false, nil
	}
	return *latest, true, nil
}

// SeriesData returns all stored observations for a series in date order.
func (s *Store) SeriesData(ctx context.Context, seriesID string) ([]types.Observation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT d.observation_date, d.value
		FROM indicator_data d
		JOIN indicators i ON i.indicator_id = d.indicator_id
		WHERE i.series_id = $1 AND d.value IS NOT NULL
		ORDER BY d.observation_date
	`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("query series data for %s: %w", seriesID, err)
	}
	defer rows.Close()

	var obs []types.Observation
	for rows.Next() {
		var o types.Observation
		if err := rows.Scan(&o.Date, &o.Value); err != nil {
			return nil, err
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

// SampleObservations returns the most recent observations for a series,
// newest first.
func (s *Store) SampleObservations(ctx context.Context, seriesID string, limit int) ([]types.Observation, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.pool.Query(ctx, `
		SELECT d.observation_date, d.value
		FROM indicator_data d
		JOIN indicators i ON i.indicator_id = d.indicator_id
		WHERE i.series_id = $1 AND d.value IS NOT NULL
		ORDER BY d.observation_date DESC
		LIMIT $2
	`, seriesID, limit)
	if err != nil {
		return nil, fmt.Errorf("query sample observations for %s: %w", seriesID, err)
	}
	defer rows.Close()

	var obs []types.Observation
	for rows.Next() {
		var o types.Observation
		if err := rows.Scan(&o.Date, &o.Value); err != nil {
			return nil, err
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

// TableCounts summarizes row counts across the three tables.
type TableCounts struct {
	Indicators   int64
	Observations int64
	Runs         int64
}

// Counts returns row counts for the indicators, indicator_data, and etl_logs tables.
func (s *Store) Counts(ctx context.Context) (TableCounts, error) {
	var c TableCounts
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM indicators),
			(SELECT COUNT(*) FROM indicator_data),
			(SELECT COUNT(*) FROM etl_logs)
	`).Scan(&c.Indicators, &c.Observations, &c.Runs)
	if err != nil {
		return TableCounts{}, fmt.Errorf("query table counts: %w", err)
	}
	return c, nil
}

// IndicatorSummary is the per-indicator rollup used by the verify surface.
type IndicatorSummary struct {
	Series     string
	Title      string
	LatestDate *time.Time
	Rows       int64
}

// IndicatorSummaries returns one rollup row per catalog indicator, including
// indicators that have no stored data yet.
func (s *Store) IndicatorSummaries(ctx context.Context) ([]IndicatorSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT i.series_id, i.title, MAX(d.observation_date), COUNT(d.data_id)
		FROM indicators i
		LEFT JOIN indicator_data d ON d.indicator_id = i.indicator_id
		GROUP BY i.indicator_id, i.series_id, i.title
		ORDER BY i.series_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query indicator summaries: %w", err)
	}
	defer rows.Close()

	var summaries []IndicatorSummary
	for rows.Next() {
		var sum IndicatorSummary
		if err := rows.Scan(&sum.Series, &sum.Title, &sum.LatestDate, &sum.Rows); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// RunRecord is one etl_logs row as read back for display.
type RunRecord struct {
	RunTimestamp     time.Time
	Status           string
	Records          int
	ErrorMessage     string
	ExecutionSeconds float64
}

// RecentRuns returns the most recent ETL runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.pool.Query(ctx, `
		SELECT run_timestamp, status,
			COALESCE(records_processed, 0),
			COALESCE(error_message, ''),
			COALESCE(execution_time_seconds, 0)
		FROM etl_logs
		ORDER BY run_timestamp DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunTimestamp, &r.Status, &r.Records, &r.ErrorMessage, &r.ExecutionSeconds); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LatestValue is the newest stored observation for one indicator.
type LatestValue struct {
	Series string
	Title  string
	Date   *time.Time
	Value  *float64
}

// LatestValues returns the newest observation per catalog indicator via a
// lateral join, with nil Date/Value for indicators that have no data.
func (s *Store) LatestValues(ctx context.Context) ([]LatestValue, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT i.series_id, i.title, o.observation_date, o.value
		FROM indicators i
		LEFT JOIN LATERAL (
			SELECT observation_date, value
			FROM indicator_data d
			WHERE d.indicator_id = i.indicator_id
			ORDER BY observation_date DESC
			LIMIT 1
		) o ON TRUE
		ORDER BY i.series_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query latest values: %w", err)
	}
	defer rows.Close()

	var values []LatestValue
	for rows.Next() {
		var v LatestValue
		if err := rows.Scan(&v.Series, &v.Title, &v.Date, &v.Value); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
