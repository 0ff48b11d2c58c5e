// etl Lambda runs the scheduled indicator load.
package main

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"

	intlambda "github.com/econlab/econpipe/internal/lambda"
)

var (
	deps     *intlambda.Deps
	depsOnce sync.Once
	depsErr  error
)

func getDeps() (*intlambda.Deps, error) {
	depsOnce.Do(func() {
		deps, depsErr = intlambda.Init(context.Background())
	})
	return deps, depsErr
}

// handleRun executes one pipeline run and wraps the outcome in the response
// envelope. Per-series failures are inside the summary; only run-level
// failures produce the 500 envelope.
func handleRun(ctx context.Context, d *intlambda.Deps) (intlambda.Response, error) {
	summary, err := d.Runner.Run(ctx)

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if ferr := d.Flush(flushCtx); ferr != nil {
		d.Logger.Warn("flushing telemetry", "error", ferr)
	}

	if err != nil {
		d.Logger.Error("pipeline run failed", "error", err)
		return intlambda.Response{
			StatusCode: 500,
			Body: intlambda.ResponseBody{
				Message: "ETL pipeline failed",
				Error:   err.Error(),
			},
		}, nil
	}

	return intlambda.Response{
		StatusCode: 200,
		Body: intlambda.ResponseBody{
			Message:          "ETL pipeline executed successfully",
			RecordsProcessed: summary.TotalRecords,
			ExecutionSeconds: summary.Elapsed.Seconds(),
		},
	}, nil
}

func handler(ctx context.Context, event events.CloudWatchEvent) (intlambda.Response, error) {
	d, err := getDeps()
	if err != nil {
		return intlambda.Response{}, err
	}
	return handleRun(ctx, d)
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	awslambda.Start(handler)
}
