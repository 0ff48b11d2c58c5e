package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/econlab/econpipe/internal/archive"
	"github.com/econlab/econpipe/internal/config"
	"github.com/econlab/econpipe/internal/fred"
	"github.com/econlab/econpipe/internal/pipeline"
	"github.com/econlab/econpipe/internal/store"
	"github.com/econlab/econpipe/pkg/types"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the ETL pipeline once",
		Long:  "Fetches every catalog series from the FRED API, archives the raw payloads to S3, and upserts observations into Postgres.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runETL(catalogPath)
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Read indicators from a catalog YAML file instead of the built-in set")
	return cmd
}

func runETL(catalogPath string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	catalog, err := config.ResolveCatalog(catalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	st, err := store.New(ctx, cfg.DSN())
	if err != nil {
		return fmt.Errorf("connecting to Postgres: %w", err)
	}
	defer st.Close()

	arc, err := archive.NewArchiver(cfg.S3Bucket)
	if err != nil {
		return fmt.Errorf("creating S3 archiver: %w", err)
	}

	client := fred.NewClient(cfg.FREDAPIKey)
	runner := pipeline.NewRunner(client, arc, st, catalog,
		pipeline.WithLookbackDays(cfg.LookbackDays),
	)

	bold := color.New(color.Bold)
	_, _ = bold.Printf("Running ETL for %d indicators\n\n", len(catalog))

	summary, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	printRunSummary(os.Stdout, summary)
	return nil
}

// printRunSummary lists per-series outcomes and run totals. Series failures
// are reported here but do not fail the command; the run itself succeeded and
// its log row was written.
func printRunSummary(out io.Writer, summary *types.RunSummary) {
	for _, res := range summary.Results {
		if res.Failed() {
			fmt.Fprintf(out, "  %s %s: %v\n", color.RedString("✗"), res.Series, res.Err)
		} else {
			fmt.Fprintf(out, "  %s %s: %d records\n", color.GreenString("✓"), res.Series, res.Records)
		}
	}

	fmt.Fprintf(out, "\nRun %s: %d records in %.1fs\n",
		summary.RunID, summary.TotalRecords, summary.Elapsed.Seconds())
	if failed := summary.FailedSeries(); len(failed) > 0 {
		fmt.Fprintln(out, color.YellowString("%d of %d series failed", len(failed), len(summary.Results)))
	}
}
