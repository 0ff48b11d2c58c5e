package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/econlab/econpipe/internal/store"
	"github.com/econlab/econpipe/pkg/types"
)

// sampleSeries is the series shown in the sample-data section.
const sampleSeries = "UNRATE"

// verifyStore is the read surface the verify command needs.
type verifyStore interface {
	Counts(ctx context.Context) (store.TableCounts, error)
	IndicatorSummaries(ctx context.Context) ([]store.IndicatorSummary, error)
	RecentRuns(ctx context.Context, limit int) ([]store.RunRecord, error)
	SampleObservations(ctx context.Context, seriesID string, limit int) ([]types.Observation, error)
}

// NewVerifyCmd creates the verify command.
func NewVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify stored data and recent ETL runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadDBConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			st, err := store.New(ctx, cfg.DSN())
			if err != nil {
				color.Red("\n[ERROR] Verification failed: %v", err)
				return err
			}
			defer st.Close()

			return runVerify(ctx, st, os.Stdout)
		},
	}
}

func runVerify(ctx context.Context, st verifyStore, out io.Writer) error {
	fmt.Fprintln(out, rule())
	fmt.Fprintln(out, "Economic Indicator Pipeline - Data Verification")
	fmt.Fprintln(out, rule())
	fmt.Fprintln(out)

	counts, err := st.Counts(ctx)
	if err != nil {
		return verifyFail(out, err)
	}
	fmt.Fprintln(out, "Table Statistics:")
	fmt.Fprintf(out, "  - Indicators: %d records\n", counts.Indicators)
	fmt.Fprintf(out, "  - Indicator Data: %d records\n", counts.Observations)
	fmt.Fprintf(out, "  - ETL Logs: %d records\n", counts.Runs)
	fmt.Fprintln(out)

	summaries, err := st.IndicatorSummaries(ctx)
	if err != nil {
		return verifyFail(out, err)
	}
	fmt.Fprintln(out, "Latest Data by Indicator:")
	fmt.Fprintln(out, strings.Repeat("-", ruleWidth))
	for _, s := range summaries {
		latest := "never"
		if s.LatestDate != nil {
			latest = s.LatestDate.Format("2006-01-02")
		}
		fmt.Fprintf(out, "  %-12s | %-10s | %4d records | %s\n", s.Series, latest, s.Rows, s.Title)
	}
	fmt.Fprintln(out)

	runs, err := st.RecentRuns(ctx, 5)
	if err != nil {
		return verifyFail(out, err)
	}
	fmt.Fprintln(out, "Most Recent ETL Runs:")
	fmt.Fprintln(out, strings.Repeat("-", ruleWidth))
	for _, r := range runs {
		fmt.Fprintf(out, "  %s | %-8s | %4d records | %.2fs\n",
			r.RunTimestamp.Format("2006-01-02 15:04:05"), r.Status, r.Records, r.ExecutionSeconds)
	}
	fmt.Fprintln(out)

	samples, err := st.SampleObservations(ctx, sampleSeries, 5)
	if err != nil {
		return verifyFail(out, err)
	}
	fmt.Fprintln(out, "Sample Data - Latest Unemployment Rates:")
	fmt.Fprintln(out, strings.Repeat("-", ruleWidth))
	for _, obs := range samples {
		fmt.Fprintf(out, "  %s | %.2f%%\n", obs.Date.Format("2006-01-02"), obs.Value)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, rule())
	fmt.Fprintln(out, color.GreenString("[SUCCESS] Data verification complete!"))
	fmt.Fprintln(out, rule())
	return nil
}

func verifyFail(out io.Writer, err error) error {
	fmt.Fprintf(out, "\n%s Verification failed: %v\n", color.RedString("[ERROR]"), err)
	return err
}
