// Package metrics exposes runtime counters via expvar.
package metrics

import "expvar"

var (
	RunsTotal         = expvar.NewInt("runs_total")
	RunsFailed        = expvar.NewInt("runs_failed")
	SeriesLoaded      = expvar.NewInt("series_loaded")
	SeriesFailed      = expvar.NewInt("series_failed")
	RecordsProcessed  = expvar.NewInt("records_processed")
	PayloadsArchived  = expvar.NewInt("payloads_archived")
	ForecastsComputed = expvar.NewInt("forecasts_computed")
	ChartsRendered    = expvar.NewInt("charts_rendered")
	ReportsGenerated  = expvar.NewInt("reports_generated")
)
