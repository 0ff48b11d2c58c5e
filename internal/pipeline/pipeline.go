// Package pipeline orchestrates the fetch, archive, and store flow for every
// catalog indicator in one run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/econlab/econpipe/internal/fred"
	"github.com/econlab/econpipe/internal/metrics"
	"github.com/econlab/econpipe/pkg/types"
)

const defaultLookbackDays = 3650

// Fetcher retrieves raw observations from the upstream API.
type Fetcher interface {
	FetchObservations(ctx context.Context, seriesID, startDate string) (*fred.ObservationsResponse, []byte, error)
}

// Archiver persists raw payloads before any parsing happens.
type Archiver interface {
	Save(ctx context.Context, seriesID string, payload []byte) (string, error)
}

// Storer is the store surface the run loop needs.
type Storer interface {
	ResolveIndicatorID(ctx context.Context, seriesID string) (int32, error)
	UpsertObservations(ctx context.Context, indicatorID int32, obs []types.RawObservation) (int, error)
	TouchLastUpdated(ctx context.Context, seriesID string) error
	LatestObservationDate(ctx context.Context, seriesID string) (time.Time, bool, error)
	LogRun(ctx context.Context, entry types.RunLogEntry) error
}

// Runner executes the ETL flow across the catalog. Series are loaded
// sequentially; one series failing never stops the others.
type Runner struct {
	fetcher  Fetcher
	archiver Archiver
	store    Storer
	catalog  types.Catalog

	lookbackDays int
	logger       *slog.Logger
	now          func() time.Time

	otelRecords  metric.Int64Counter
	otelFailures metric.Int64Counter
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the run logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithLookbackDays bounds the first fetch of a series with no stored history.
func WithLookbackDays(days int) RunnerOption {
	return func(r *Runner) {
		if days > 0 {
			r.lookbackDays = days
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a pipeline runner over the given dependencies.
func NewRunner(fetcher Fetcher, archiver Archiver, store Storer, catalog types.Catalog, opts ...RunnerOption) *Runner {
	r := &Runner{
		fetcher:      fetcher,
		archiver:     archiver,
		store:        store,
		catalog:      catalog,
		lookbackDays: defaultLookbackDays,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	meter := otel.Meter("github.com/econlab/econpipe/internal/pipeline")
	var err error
	if r.otelRecords, err = meter.Int64Counter("econpipe.records.processed"); err != nil {
		otel.Handle(err)
	}
	if r.otelFailures, err = meter.Int64Counter("econpipe.series.failures"); err != nil {
		otel.Handle(err)
	}
	return r
}

// Run loads every catalog series once and writes exactly one run log row.
// Per-series failures are reported in the summary without failing the run;
// the returned error is non-nil only for run-level failures such as
// cancellation.
func (r *Runner) Run(ctx context.Context) (*types.RunSummary, error) {
	runID := ulid.Make().String()
	logger := r.logger.With("runID", runID)
	started := r.now()

	summary := &types.RunSummary{
		RunID:     runID,
		Status:    types.RunSuccess,
		StartedAt: started,
	}
	metrics.RunsTotal.Add(1)
	logger.Info("starting pipeline run", "indicators", len(r.catalog))

	for _, ind := range r.catalog {
		if err := ctx.Err(); err != nil {
			summary.Status = types.RunFailure
			summary.Err = fmt.Errorf("run interrupted: %w", err)
			break
		}

		res := r.loadSeries(ctx, logger, ind)
		summary.Results = append(summary.Results, res)
		if res.Failed() {
			metrics.SeriesFailed.Add(1)
			r.otelFailures.Add(ctx, 1)
			logger.Error("series load failed", "series", ind.Series, "error", res.Err)
			continue
		}
		metrics.SeriesLoaded.Add(1)
		metrics.RecordsProcessed.Add(int64(res.Records))
		r.otelRecords.Add(ctx, int64(res.Records))
		summary.TotalRecords += res.Records
		logger.Info("series loaded", "series", ind.Series, "records", res.Records, "elapsed", res.Elapsed)
	}

	summary.Elapsed = r.now().Sub(started)
	if summary.Status == types.RunFailure {
		metrics.RunsFailed.Add(1)
	}

	entry := types.RunLogEntry{
		Status:           summary.Status,
		RecordsProcessed: summary.TotalRecords,
		ExecutionSeconds: summary.Elapsed.Seconds(),
	}
	if summary.Err != nil {
		entry.ErrorMessage = summary.Err.Error()
	}
	if err := r.store.LogRun(ctx, entry); err != nil {
		logger.Warn("failed to record run log", "error", err)
	}

	logger.Info("pipeline run complete",
		"status", summary.Status,
		"records", summary.TotalRecords,
		"failedSeries", len(summary.FailedSeries()),
		"elapsed", summary.Elapsed)
	return summary, summary.Err
}

func (r *Runner) loadSeries(ctx context.Context, logger *slog.Logger, ind types.IndicatorSpec) types.SeriesResult {
	started := r.now()
	res := types.SeriesResult{Series: ind.Series}
	finish := func() types.SeriesResult {
		res.Elapsed = r.now().Sub(started)
		return res
	}

	resp, raw, err := r.fetcher.FetchObservations(ctx, ind.Series, r.fetchStart(ctx, ind.Series))
	if err != nil {
		res.Err = fmt.Errorf("fetch: %w", err)
		return finish()
	}

	key, err := r.archiver.Save(ctx, ind.Series, raw)
	if err != nil {
		res.Err = fmt.Errorf("archive: %w", err)
		return finish()
	}
	metrics.PayloadsArchived.Add(1)
	logger.Debug("raw payload archived", "series", ind.Series, "key", key, "observations", len(resp.Observations))

	indicatorID, err := r.store.ResolveIndicatorID(ctx, ind.Series)
	if err != nil {
		res.Err = fmt.Errorf("resolve indicator: %w", err)
		return finish()
	}

	count, err := r.store.UpsertObservations(ctx, indicatorID, resp.Observations)
	if err != nil {
		res.Err = fmt.Errorf("store observations: %w", err)
		return finish()
	}
	res.Records = count

	if err := r.store.TouchLastUpdated(ctx, ind.Series); err != nil {
		res.Err = fmt.Errorf("touch last_updated: %w", err)
		return finish()
	}
	return finish()
}

// fetchStart picks the observation_start for a series: the latest stored
// date when the series has history (inclusive, so a revised newest point
// is picked up and the upsert keeps the overlap idempotent), otherwise
// the lookback horizon.
func (r *Runner) fetchStart(ctx context.Context, seriesID string) string {
	latest, ok, err := r.store.LatestObservationDate(ctx, seriesID)
	if err != nil {
		r.logger.Warn("could not determine latest stored date, using lookback", "series", seriesID, "error", err)
	}
	if err != nil || !ok {
		return r.now().AddDate(0, 0, -r.lookbackDays).Format("2006-01-02")
	}
	return latest.Format("2006-01-02")
}
