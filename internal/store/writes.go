package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/econlab/econpipe/pkg/types"
)

// SeedCatalog inserts the catalog's indicator rows, leaving existing rows
// untouched. Safe to run on every initialization.
func (s *Store) SeedCatalog(ctx context.Context, catalog types.Catalog) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, ind := range catalog {
		_, err := tx.Exec(ctx, `
			INSERT INTO indicators (series_id, title)
			VALUES ($1, $2)
			ON CONFLICT (series_id) DO NOTHING
		`, ind.Series, ind.Title)
		if err != nil {
			return fmt.Errorf("seed indicator %s: %w", ind.Series, err)
		}
	}
	return tx.Commit(ctx)
}

// ResolveIndicatorID maps a series code to its indicator_id.
// Returns ErrSeriesNotFound for codes outside the seeded catalog.
func (s *Store) ResolveIndicatorID(ctx context.Context, seriesID string) (int32, error) {
	var id int32
	err := s.pool.QueryRow(ctx, `
		SELECT indicator_id FROM indicators WHERE series_id = $1
	`, seriesID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%s: %w", seriesID, ErrSeriesNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("resolve indicator %s: %w", seriesID, err)
	}
	return id, nil
}

// prepareObservations parses raw wire observations into storable rows.
// Missing-value sentinels and unparseable rows are dropped, never stored.
func prepareObservations(obs []types.RawObservation) (valid []types.Observation, missing, malformed int) {
	for _, o := range obs {
		if o.Value == types.MissingValueSentinel {
			missing++
			continue
		}
		date, err := time.Parse("2006-01-02", o.Date)
		if err != nil {
			malformed++
			continue
		}
		value, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			malformed++
			continue
		}
		valid = append(valid, types.Observation{Date: date, Value: value})
	}
	return valid, missing, malformed
}

// UpsertObservations writes the parseable observations for one indicator in a
// single transaction, updating the value on (indicator_id, observation_date)
// conflicts. It returns the number of rows attempted after filtering; any
// error rolls the whole batch back.
func (s *Store) UpsertObservations(ctx context.Context, indicatorID int32, obs []types.RawObservation) (int, error) {
	valid, missing, malformed := prepareObservations(obs)
	if missing > 0 || malformed > 0 {
		s.logger.Debug("filtered observations before upsert",
			slog.Int("indicatorID", int(indicatorID)),
			slog.Int("missing", missing),
			slog.Int("malformed", malformed))
	}
	if len(valid) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, o := range valid {
		_, err := tx.Exec(ctx, `
			INSERT INTO indicator_data (indicator_id, observation_date, value)
			VALUES ($1, $2, $3)
			ON CONFLICT (indicator_id, observation_date) DO UPDATE SET
				value = EXCLUDED.value
		`, indicatorID, o.Date, o.Value)
		if err != nil {
			return 0, fmt.Errorf("upsert observation %s: %w", o.Date.Format("2006-01-02"), err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit observations: %w", err)
	}
	return len(valid), nil
}

// TouchLastUpdated stamps the indicator's last_updated column with the
// current time. Runs outside the observation transaction.
func (s *Store) TouchLastUpdated(ctx context.Context, seriesID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE indicators SET last_updated = NOW() WHERE series_id = $1
	`, seriesID)
	if err != nil {
		return fmt.Errorf("touch last_updated for %s: %w", seriesID, err)
	}
	return nil
}

// LogRun records one etl_logs row for a pipeline invocation. Logging is
// best-effort: a nil store warns and returns nil, and insert failures are
// warned rather than returned, so audit problems never fail a run.
func (s *Store) LogRun(ctx context.Context, entry types.RunLogEntry) error {
	if s == nil || s.pool == nil {
		slog.Warn("no database connection, skipping run log", "status", entry.Status)
		return nil
	}

	var msg *string
	if entry.ErrorMessage != "" {
		msg = &entry.ErrorMessage
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO etl_logs (status, records_processed, error_message, execution_time_seconds)
		VALUES ($1, $2, $3, $4)
	`, string(entry.Status), entry.RecordsProcessed, msg, entry.ExecutionSeconds)
	if err != nil {
		s.logger.Warn("failed to write run log", "error", err, "status", entry.Status)
	}
	return nil
}
