// Package report builds the chart, forecast, and summary reports from
// stored observations.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/econlab/econpipe/internal/charts"
	"github.com/econlab/econpipe/internal/forecast"
	"github.com/econlab/econpipe/internal/metrics"
	"github.com/econlab/econpipe/internal/store"
	"github.com/econlab/econpipe/internal/timeseries"
	"github.com/econlab/econpipe/pkg/types"
)

const (
	// DefaultForecastSteps is the forecast horizon of the full report.
	DefaultForecastSteps = 12

	// yoyPeriods is the lag of the year-over-year change: twelve
	// observations, one year on monthly data.
	yoyPeriods = 12

	minYoYPoints      = 12
	minForecastPoints = 24

	maxConcurrentRenders = 4
)

var sectionRule = strings.Repeat("=", 70)

// Store is the read surface the report needs.
type Store interface {
	SeriesData(ctx context.Context, seriesID string) ([]types.Observation, error)
	LatestValues(ctx context.Context) ([]store.LatestValue, error)
}

// ChartRenderer is the chart surface the report drives.
type ChartRenderer interface {
	TimeSeriesPNG(title string, s *timeseries.Series) (string, error)
	DashboardPNG(panels []charts.Panel) (string, error)
	YoYBarPNG(name string, dates []time.Time, changes []float64) (string, error)
	CorrelationHeatmapPNG(labels []string, matrix [][]float64) (string, error)
	ForecastPNG(name string, history *timeseries.Series, fc *forecast.Result) (string, error)
	InteractiveHTML(panels []charts.Panel) (string, error)
}

// Generator produces the full and quick reports for a catalog.
type Generator struct {
	store   Store
	charts  ChartRenderer
	catalog types.Catalog

	out    io.Writer
	logger *slog.Logger
	steps  int
}

// Option configures a Generator.
type Option func(*Generator)

// WithOutput redirects the report narration, which defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(g *Generator) { g.out = w }
}

// WithLogger sets the generator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithForecastSteps overrides the forecast horizon.
func WithForecastSteps(steps int) Option {
	return func(g *Generator) {
		if steps > 0 {
			g.steps = steps
		}
	}
}

// NewGenerator creates a report generator over the given dependencies.
func NewGenerator(st Store, ch ChartRenderer, catalog types.Catalog, opts ...Option) *Generator {
	g := &Generator{
		store:   st,
		charts:  ch,
		catalog: catalog,
		out:     os.Stdout,
		logger:  slog.Default(),
		steps:   DefaultForecastSteps,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type indicatorSeries struct {
	spec   types.IndicatorSpec
	series *timeseries.Series
}

// Full generates every chart and forecast for the catalog and returns the
// paths of the files it wrote. Indicators without stored data are skipped
// with a notice; a forecast failing for one series never stops the rest.
func (g *Generator) Full(ctx context.Context) ([]string, error) {
	fmt.Fprintln(g.out, sectionRule)
	fmt.Fprintln(g.out, "Economic Indicators Report Generator")
	fmt.Fprintln(g.out, sectionRule)

	loaded, err := g.loadSeries(ctx)
	if err != nil {
		return nil, err
	}

	var manifest []string
	fmt.Fprintln(g.out, "\nGenerating visualizations...")

	panels := make([]charts.Panel, 0, len(loaded))
	for _, item := range loaded {
		if item.series.Len() < 2 {
			continue
		}
		panels = append(panels, charts.Panel{Title: item.spec.Title, Series: item.series})
	}
	if len(panels) > 0 {
		fmt.Fprintln(g.out, "Creating multi-indicator dashboard...")
		path, err := g.charts.DashboardPNG(panels)
		if err != nil {
			return nil, fmt.Errorf("dashboard: %w", err)
		}
		manifest = append(manifest, path)

		fmt.Fprintln(g.out, "Creating interactive dashboard...")
		if path, err = g.charts.InteractiveHTML(panels); err != nil {
			return nil, fmt.Errorf("interactive dashboard: %w", err)
		}
		manifest = append(manifest, path)
	}

	paths, err := g.renderTimeSeries(loaded)
	if err != nil {
		return nil, err
	}
	manifest = append(manifest, paths...)

	manifest = append(manifest, g.renderYoY(loaded)...)

	if path := g.renderCorrelations(loaded); path != "" {
		manifest = append(manifest, path)
	}

	manifest = append(manifest, g.renderForecasts(loaded)...)

	fmt.Fprintf(g.out, "\n%s\nReport Generation Complete\n%s\n", sectionRule, sectionRule)
	metrics.ReportsGenerated.Add(1)
	return manifest, nil
}

// loadSeries fetches stored observations for every catalog indicator,
// skipping indicators that have none.
func (g *Generator) loadSeries(ctx context.Context) ([]indicatorSeries, error) {
	fmt.Fprintln(g.out, "\nFetching indicator data...")

	loaded := make([]indicatorSeries, 0, len(g.catalog))
	for _, ind := range g.catalog {
		obs, err := g.store.SeriesData(ctx, ind.Series)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", ind.Series, err)
		}
		if len(obs) == 0 {
			fmt.Fprintf(g.out, "  [SKIP] %s: no data available\n", ind.Title)
			continue
		}
		s := timeseries.FromObservations(obs, ind.Title)
		s.SortByDate()
		loaded = append(loaded, indicatorSeries{spec: ind, series: s})
		fmt.Fprintf(g.out, "  [OK] %s: %d data points\n", ind.Title, s.Len())
	}
	if len(loaded) == 0 {
		return nil, errors.New("no indicator has stored data")
	}
	return loaded, nil
}

// renderTimeSeries draws the per-indicator line charts concurrently.
func (g *Generator) renderTimeSeries(loaded []indicatorSeries) ([]string, error) {
	var eg errgroup.Group
	eg.SetLimit(maxConcurrentRenders)

	results := make([]string, len(loaded))
	for i, item := range loaded {
		if item.series.Len() < 2 {
			fmt.Fprintf(g.out, "  [SKIP] %s: not enough points to chart\n", item.spec.Title)
			continue
		}
		fmt.Fprintf(g.out, "Creating time series plot for %s...\n", item.spec.Title)
		eg.Go(func() error {
			path, err := g.charts.TimeSeriesPNG(item.spec.Title, item.series)
			if err != nil {
				return fmt.Errorf("time series chart %s: %w", item.spec.Series, err)
			}
			results[i] = path
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var paths []string
	for _, p := range results {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// renderYoY draws year-over-year change bars for every series long enough
// to have a full year of history.
func (g *Generator) renderYoY(loaded []indicatorSeries) []string {
	fmt.Fprintln(g.out, "\nGenerating year-over-year change plots...")

	var paths []string
	for _, item := range loaded {
		if item.series.Len() < minYoYPoints {
			continue
		}
		dates, changes := yoyChanges(item.series, yoyPeriods)
		if len(changes) == 0 {
			continue
		}
		fmt.Fprintf(g.out, "Creating YoY plot for %s...\n", item.spec.Title)
		path, err := g.charts.YoYBarPNG(item.spec.Title, dates, changes)
		if err != nil {
			fmt.Fprintf(g.out, "  [ERROR] Could not plot %s: %v\n", item.spec.Title, err)
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

// renderCorrelations draws the correlation heatmap when at least two series
// share observation dates. Returns "" when there is nothing to draw.
func (g *Generator) renderCorrelations(loaded []indicatorSeries) string {
	if len(loaded) < 2 {
		return ""
	}
	fmt.Fprintln(g.out, "\nCalculating correlations...")

	labels, matrix, joined := correlationMatrix(loaded)
	if joined < 2 {
		fmt.Fprintln(g.out, "  [SKIP] fewer than two shared observation dates")
		return ""
	}
	fmt.Fprintf(g.out, "Creating correlation heatmap (%d shared dates)...\n", joined)
	path, err := g.charts.CorrelationHeatmapPNG(labels, matrix)
	if err != nil {
		fmt.Fprintf(g.out, "  [ERROR] Could not plot correlations: %v\n", err)
		return ""
	}
	return path
}

// renderForecasts fits an ARIMA(1,1,1) per long-enough series and charts a
// twelve-step forecast. A series that cannot be forecast is reported and
// skipped.
func (g *Generator) renderForecasts(loaded []indicatorSeries) []string {
	fmt.Fprintf(g.out, "\n%s\nGenerating Forecasts (ARIMA)\n%s\n", sectionRule, sectionRule)

	var paths []string
	for _, item := range loaded {
		if item.series.Len() < minForecastPoints {
			continue
		}
		fmt.Fprintf(g.out, "\nForecasting %s...\n", item.spec.Title)
		path, err := g.forecastOne(item)
		if err != nil {
			fmt.Fprintf(g.out, "  [ERROR] Could not forecast %s: %v\n", item.spec.Title, err)
			g.logger.Warn("forecast failed", "series", item.spec.Series, "error", err)
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

func (g *Generator) forecastOne(item indicatorSeries) (string, error) {
	f := forecast.NewForecaster(item.series)
	if err := f.FitARIMA(forecast.Order{P: 1, D: 1, Q: 1}); err != nil {
		return "", err
	}
	res, err := f.Forecast(g.steps)
	if err != nil {
		return "", err
	}
	path, err := g.charts.ForecastPNG(item.spec.Title, item.series, res)
	if err != nil {
		return "", err
	}
	metrics.ForecastsComputed.Add(1)

	fmt.Fprintf(g.out, "  [OK] %s forecast completed\n", item.spec.Title)
	if adf := forecast.ADF(item.series, 0); adf != nil {
		fmt.Fprintf(g.out, "  ADF p-value %.3f (stationary: %t)\n", adf.PValue, adf.IsStationary)
	}
	fmt.Fprintf(g.out, "  Next %d periods:\n", min(3, len(res.Dates)))
	for i := 0; i < min(3, len(res.Dates)); i++ {
		fmt.Fprintf(g.out, "    %s: %.2f (%.0f%% CI: %.2f - %.2f)\n",
			res.Dates[i].Format("2006-01"), res.Mean[i], res.Level*100, res.Lower[i], res.Upper[i])
	}
	return path, nil
}

// Quick prints the newest stored value per catalog indicator.
func (g *Generator) Quick(ctx context.Context) error {
	fmt.Fprintln(g.out, sectionRule)
	fmt.Fprintln(g.out, "Economic Indicators - Quick Summary")
	fmt.Fprintln(g.out, sectionRule)

	values, err := g.store.LatestValues(ctx)
	if err != nil {
		return fmt.Errorf("latest values: %w", err)
	}

	fmt.Fprintln(g.out, "\nLatest Economic Indicators:")
	fmt.Fprintln(g.out, strings.Repeat("-", 70))
	for _, v := range values {
		if v.Date == nil || v.Value == nil {
			fmt.Fprintf(g.out, "%-40s No data\n", v.Title)
			continue
		}
		fmt.Fprintf(g.out, "%-40s %8.2f  (as of %s)\n", v.Title, *v.Value, v.Date.Format("2006-01-02"))
	}
	return nil
}
