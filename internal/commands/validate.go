package commands

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/spf13/cobra"

	"github.com/econlab/econpipe/internal/config"
	"github.com/econlab/econpipe/internal/store"
	"github.com/econlab/econpipe/internal/sysval"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	var functionName string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the deployed pipeline end to end",
		Long:  "Checks environment variables, database tables, the S3 archive, the Lambda function, its schedule, logs, and report outputs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(functionName)
		},
	}
	cmd.Flags().StringVar(&functionName, "function", "", "Lambda function name to validate (default economic-indicator-etl)")
	return cmd
}

func runValidate(functionName string) error {
	// FromEnv, not Load: missing variables are findings for the environment
	// check, not a reason to abort.
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return fmt.Errorf("loading AWS config: %w", err)
	}

	deps := sysval.Deps{
		S3:        s3.NewFromConfig(awsCfg),
		Lambda:    awslambda.NewFromConfig(awsCfg),
		Events:    eventbridge.NewFromConfig(awsCfg),
		Scheduler: scheduler.NewFromConfig(awsCfg),
		Logs:      cloudwatchlogs.NewFromConfig(awsCfg),
	}

	if st, err := store.New(ctx, cfg.DSN()); err != nil {
		deps.Database = unreachableDB{err: err}
	} else {
		defer st.Close()
		deps.Database = st
	}

	var opts []sysval.Option
	if functionName != "" {
		opts = append(opts, sysval.WithFunctionName(functionName))
	}

	_, err = sysval.New(cfg, deps, opts...).Run(ctx)
	return err
}

// unreachableDB surfaces a failed connection attempt through the database
// check instead of aborting the whole validation.
type unreachableDB struct{ err error }

func (u unreachableDB) Counts(context.Context) (store.TableCounts, error) {
	return store.TableCounts{}, u.err
}
