// Package types defines the public domain types shared across the econpipe ETL and reporting surfaces.
package types

import "time"

// RunStatus is the recorded outcome of one pipeline run.
type RunStatus string

// RunStatus values match the status column of the etl_logs table.
const (
	RunSuccess RunStatus = "success"
	RunFailure RunStatus = "failure"
)

// IndicatorSpec identifies one tracked series and its display title.
type IndicatorSpec struct {
	Series string `yaml:"series" json:"series"`
	Title  string `yaml:"title" json:"title"`
}

// Catalog is the ordered set of indicators a run operates on.
type Catalog []IndicatorSpec

// Titles returns the catalog titles keyed by series code.
func (c Catalog) Titles() map[string]string {
	m := make(map[string]string, len(c))
	for _, ind := range c {
		m[ind.Series] = ind.Title
	}
	return m
}

// MissingValueSentinel marks an observation with no value in the upstream
// wire format. Rows carrying it are filtered before storage, never stored
// as zero.
const MissingValueSentinel = "."

// RawObservation is one observation as it arrives from the upstream API.
// Both fields are strings; a missing value is the "." sentinel.
type RawObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// Observation is a single dated value after wire-format parsing.
// Missing observations never reach this type; they are dropped during parsing.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// SeriesResult is the per-series outcome of a pipeline run. A non-nil Err
// marks the series as failed without affecting the other series in the run.
type SeriesResult struct {
	Series  string        `json:"series"`
	Records int           `json:"records"`
	Err     error         `json:"-"`
	Elapsed time.Duration `json:"-"`
}

// Failed reports whether this series' load ended in an error.
func (r SeriesResult) Failed() bool { return r.Err != nil }

// RunSummary aggregates one pipeline invocation.
type RunSummary struct {
	RunID        string         `json:"runId"`
	Status       RunStatus      `json:"status"`
	Results      []SeriesResult `json:"results"`
	TotalRecords int            `json:"totalRecords"`
	StartedAt    time.Time      `json:"startedAt"`
	Elapsed      time.Duration  `json:"-"`
	Err          error          `json:"-"`
}

// FailedSeries returns the codes of series whose load failed.
func (s *RunSummary) FailedSeries() []string {
	var failed []string
	for _, r := range s.Results {
		if r.Failed() {
			failed = append(failed, r.Series)
		}
	}
	return failed
}

// RunLogEntry is one row of the etl_logs audit table.
type RunLogEntry struct {
	Status           RunStatus `json:"status"`
	RecordsProcessed int       `json:"recordsProcessed"`
	ErrorMessage     string    `json:"errorMessage,omitempty"`
	ExecutionSeconds float64   `json:"executionTimeSeconds"`
}
