package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/econlab/econpipe/internal/commands"
	"github.com/econlab/econpipe/internal/config"
)

var version = "dev"

func main() {
	config.LoadDotenv()

	root := &cobra.Command{
		Use:   "econpipe",
		Short: "Economic indicator ETL, forecasting, and reporting pipeline",
		Long: `econpipe loads U.S. economic indicators from the FRED API into Postgres,
archives every raw payload to S3, and turns the stored history into
forecasts, charts, and reports.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(
		commands.NewRunCmd(),
		commands.NewInitDBCmd(),
		commands.NewVerifyCmd(),
		commands.NewValidateCmd(),
		commands.NewReportCmd(),
		commands.NewServeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
