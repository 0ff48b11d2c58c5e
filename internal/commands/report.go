package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/econlab/econpipe/internal/charts"
	"github.com/econlab/econpipe/internal/config"
	"github.com/econlab/econpipe/internal/report"
	"github.com/econlab/econpipe/internal/store"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	var full, quick bool
	var catalogPath string
	var steps int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate charts, forecasts, and summaries from stored data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(full, quick, catalogPath, steps)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Generate the full chart and forecast report (default)")
	cmd.Flags().BoolVar(&quick, "quick", false, "Print the latest values summary only")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Read indicators from a catalog YAML file")
	cmd.Flags().IntVar(&steps, "steps", report.DefaultForecastSteps, "Forecast horizon in periods")
	return cmd
}

func runReport(full, quick bool, catalogPath string, steps int) error {
	if full && quick {
		return fmt.Errorf("--full and --quick are mutually exclusive")
	}

	cfg, err := loadDBConfig()
	if err != nil {
		return err
	}
	catalog, err := config.ResolveCatalog(catalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	st, err := store.New(ctx, cfg.DSN())
	if err != nil {
		return fmt.Errorf("connecting to Postgres: %w", err)
	}
	defer st.Close()

	renderer := charts.NewRenderer(cfg.OutputDir)
	gen := report.NewGenerator(st, renderer, catalog, report.WithForecastSteps(steps))

	if quick {
		return gen.Quick(ctx)
	}

	manifest, err := gen.Full(ctx)
	if err != nil {
		return err
	}
	printManifest(os.Stdout, manifest)
	return nil
}
