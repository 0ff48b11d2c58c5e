package report

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/econlab/econpipe/internal/charts"
	"github.com/econlab/econpipe/internal/forecast"
	"github.com/econlab/econpipe/internal/store"
	"github.com/econlab/econpipe/internal/timeseries"
	"github.com/econlab/econpipe/pkg/types"
)

type fakeStore struct {
	data   map[string][]types.Observation
	latest []store.LatestValue
	err    error
}

func (f *fakeStore) SeriesData(_ context.Context, seriesID string) ([]types.Observation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data[seriesID], nil
}

func (f *fakeStore) LatestValues(_ context.Context) ([]store.LatestValue, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.latest, nil
}

func monthlyObservations(n int, value func(i int) float64) []types.Observation {
	obs := make([]types.Observation, n)
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		obs[i] = types.Observation{Date: start.AddDate(0, i, 0), Value: value(i)}
	}
	return obs
}

func testCatalog() types.Catalog {
	return types.Catalog{
		{Series: "UNRATE", Title: "Unemployment Rate"},
		{Series: "CPIAUCSL", Title: "Consumer Price Index"},
		{Series: "GDP", Title: "Gross Domestic Product"},
	}
}

func TestFullReport(t *testing.T) {
	st := &fakeStore{data: map[string][]types.Observation{
		"UNRATE":   monthlyObservations(36, func(i int) float64 { return 5 + math.Sin(float64(i)/3) }),
		"CPIAUCSL": monthlyObservations(36, func(i int) float64 { return 100 + 0.4*float64(i) }),
		// GDP has no stored data and must be skipped.
	}}
	dir := t.TempDir()
	var out bytes.Buffer
	g := NewGenerator(st, charts.NewRenderer(dir), testCatalog(), WithOutput(&out))

	manifest, err := g.Full(context.Background())
	require.NoError(t, err)

	names := make(map[string]bool, len(manifest))
	for _, p := range manifest {
		info, statErr := os.Stat(p)
		require.NoError(t, statErr, p)
		require.Greater(t, info.Size(), int64(0), p)
		names[filepath.Base(p)] = true
	}
	for _, want := range []string{
		"multi_indicator_dashboard.png",
		"interactive_dashboard.html",
		"unemployment_rate_timeseries.png",
		"consumer_price_index_timeseries.png",
		"unemployment_rate_yoy_change.png",
		"consumer_price_index_yoy_change.png",
		"correlation_heatmap.png",
		"unemployment_rate_forecast.png",
		"consumer_price_index_forecast.png",
	} {
		assert.True(t, names[want], "manifest missing %s", want)
	}

	text := out.String()
	assert.Contains(t, text, "[OK] Unemployment Rate: 36 data points")
	assert.Contains(t, text, "[SKIP] Gross Domestic Product: no data available")
	assert.Contains(t, text, "Next 3 periods:")
	assert.Contains(t, text, "ADF p-value")
	assert.NotContains(t, text, "[ERROR]")
}

func TestFullReportNoData(t *testing.T) {
	st := &fakeStore{data: map[string][]types.Observation{}}
	g := NewGenerator(st, charts.NewRenderer(t.TempDir()), testCatalog(), WithOutput(&bytes.Buffer{}))

	_, err := g.Full(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no indicator has stored data")
}

// failingCharts fails every forecast chart while letting the rest of the
// report proceed.
type failingCharts struct {
	forecastCalls int
}

func (f *failingCharts) TimeSeriesPNG(title string, _ *timeseries.Series) (string, error) {
	return title + "_timeseries.png", nil
}

func (f *failingCharts) DashboardPNG([]charts.Panel) (string, error) {
	return "multi_indicator_dashboard.png", nil
}

func (f *failingCharts) YoYBarPNG(name string, _ []time.Time, _ []float64) (string, error) {
	return name + "_yoy_change.png", nil
}

func (f *failingCharts) CorrelationHeatmapPNG([]string, [][]float64) (string, error) {
	return "correlation_heatmap.png", nil
}

func (f *failingCharts) ForecastPNG(string, *timeseries.Series, *forecast.Result) (string, error) {
	f.forecastCalls++
	return "", assert.AnError
}

func (f *failingCharts) InteractiveHTML([]charts.Panel) (string, error) {
	return "interactive_dashboard.html", nil
}

func TestFullReportContinuesPastForecastFailure(t *testing.T) {
	st := &fakeStore{data: map[string][]types.Observation{
		"UNRATE":   monthlyObservations(30, func(i int) float64 { return 4 + 0.05*float64(i) }),
		"CPIAUCSL": monthlyObservations(30, func(i int) float64 { return 100 + 0.4*float64(i) }),
	}}
	ch := &failingCharts{}
	var out bytes.Buffer
	g := NewGenerator(st, ch, testCatalog(), WithOutput(&out))

	manifest, err := g.Full(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, ch.forecastCalls)
	text := out.String()
	assert.Contains(t, text, "[ERROR] Could not forecast Unemployment Rate")
	assert.Contains(t, text, "[ERROR] Could not forecast Consumer Price Index")

	// Everything except the failed forecast charts still made the manifest.
	assert.Contains(t, manifest, "multi_indicator_dashboard.png")
	assert.Contains(t, manifest, "correlation_heatmap.png")
	for _, p := range manifest {
		assert.NotContains(t, p, "_forecast")
	}
}

func TestQuickReport(t *testing.T) {
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	value := 4.1
	st := &fakeStore{latest: []store.LatestValue{
		{Series: "UNRATE", Title: "Unemployment Rate", Date: &date, Value: &value},
		{Series: "GDP", Title: "Gross Domestic Product"},
	}}
	var out bytes.Buffer
	g := NewGenerator(st, &failingCharts{}, testCatalog(), WithOutput(&out))

	require.NoError(t, g.Quick(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Latest Economic Indicators:")
	assert.Contains(t, text, "Unemployment Rate")
	assert.Contains(t, text, "4.10")
	assert.Contains(t, text, "(as of 2025-06-01)")
	assert.Contains(t, text, "Gross Domestic Product")
	assert.Contains(t, text, "No data")
}

func TestQuickReportStoreError(t *testing.T) {
	st := &fakeStore{err: assert.AnError}
	g := NewGenerator(st, &failingCharts{}, testCatalog(), WithOutput(&bytes.Buffer{}))
	require.Error(t, g.Quick(context.Background()))
}
