package commands

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/econlab/econpipe/pkg/types"
)

func TestPrintRunSummary(t *testing.T) {
	summary := &types.RunSummary{
		RunID:        "01JXAMPLE",
		Status:       types.RunSuccess,
		TotalRecords: 900,
		Elapsed:      12500 * time.Millisecond,
		Results: []types.SeriesResult{
			{Series: "UNRATE", Records: 900},
			{Series: "GDP", Err: errors.New("fetch GDP: status 500")},
		},
	}

	var buf bytes.Buffer
	printRunSummary(&buf, summary)

	out := buf.String()
	assert.Contains(t, out, "✓ UNRATE: 900 records")
	assert.Contains(t, out, "✗ GDP: fetch GDP: status 500")
	assert.Contains(t, out, "Run 01JXAMPLE: 900 records in 12.5s")
	assert.Contains(t, out, "1 of 2 series failed")
}

func TestPrintRunSummary_AllPassed(t *testing.T) {
	summary := &types.RunSummary{
		RunID:        "01JCLEAN",
		Status:       types.RunSuccess,
		TotalRecords: 42,
		Elapsed:      3 * time.Second,
		Results:      []types.SeriesResult{{Series: "DGS10", Records: 42}},
	}

	var buf bytes.Buffer
	printRunSummary(&buf, summary)

	assert.NotContains(t, buf.String(), "series failed")
}
