package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/econlab/econpipe/pkg/types"
)

func TestPrepareObservationsFiltersSentinel(t *testing.T) {
	raw := []types.RawObservation{
		{Date: "2026-05-01", Value: "3.9"},
		{Date: "2026-06-01", Value: "."},
		{Date: "2026-07-01", Value: "4.1"},
	}

	valid, missing, malformed := prepareObservations(raw)
	require.Len(t, valid, 2)
	assert.Equal(t, 1, missing)
	assert.Equal(t, 0, malformed)

	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), valid[0].Date)
	assert.Equal(t, 3.9, valid[0].Value)
	assert.Equal(t, 4.1, valid[1].Value)
	for _, o := range valid {
		assert.NotZero(t, o.Value, "sentinel must never become a stored zero")
	}
}

func TestPrepareObservationsDropsMalformed(t *testing.T) {
	raw := []types.RawObservation{
		{Date: "not-a-date", Value: "1.0"},
		{Date: "2026-07-01", Value: "abc"},
		{Date: "2026-07-02", Value: "2.5"},
	}

	valid, missing, malformed := prepareObservations(raw)
	require.Len(t, valid, 1)
	assert.Equal(t, 0, missing)
	assert.Equal(t, 2, malformed)
	assert.Equal(t, 2.5, valid[0].Value)
}

func TestPrepareObservationsAllFiltered(t *testing.T) {
	raw := []types.RawObservation{
		{Date: "2026-07-01", Value: "."},
		{Date: "2026-07-02", Value: "."},
	}

	valid, missing, malformed := prepareObservations(raw)
	assert.Empty(t, valid)
	assert.Equal(t, 2, missing)
	assert.Equal(t, 0, malformed)
}

func TestLogRunWithoutConnection(t *testing.T) {
	var s *Store
	err := s.LogRun(context.Background(), types.RunLogEntry{
		Status:           types.RunFailure,
		ErrorMessage:     "database unreachable",
		ExecutionSeconds: 1.5,
	})
	assert.NoError(t, err, "run logging is best-effort and never fails the caller")
}
