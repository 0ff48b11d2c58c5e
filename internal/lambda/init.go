// Package lambda provides shared types and initialization for the ETL
// Lambda handler.
package lambda

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/econlab/econpipe/internal/archive"
	"github.com/econlab/econpipe/internal/config"
	"github.com/econlab/econpipe/internal/fred"
	"github.com/econlab/econpipe/internal/observability"
	"github.com/econlab/econpipe/internal/pipeline"
	"github.com/econlab/econpipe/internal/store"
)

// Deps holds shared dependencies for the Lambda handler. They are built once
// per container and reused across invocations.
type Deps struct {
	Config *config.Config
	Store  *store.Store
	Runner *pipeline.Runner
	Logger *slog.Logger
	Flush  func(context.Context) error
}

// Init creates shared dependencies from environment variables.
// FRED_API_KEY and DB_PASSWORD may be indirected through Secrets Manager by
// setting FRED_API_KEY_SECRET_ARN / DB_PASSWORD_SECRET_ARN; a resolved
// secret wins over the direct value. CATALOG_PATH overrides the built-in
// indicator set.
func Init(ctx context.Context) (*Deps, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	if err := cfg.ResolveSecrets(ctx, secretsmanager.NewFromConfig(awsCfg)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	catalog, err := config.ResolveCatalog(os.Getenv("CATALOG_PATH"))
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	flush, err := observability.Setup(ctx, "econpipe-etl")
	if err != nil {
		logger.Warn("telemetry setup failed", "error", err)
		flush = func(context.Context) error { return nil }
	}

	st, err := store.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to Postgres: %w", err)
	}
	st.SetLogger(logger)

	arc, err := archive.NewArchiver(cfg.S3Bucket, archive.WithS3Client(s3.NewFromConfig(awsCfg)))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating S3 archiver: %w", err)
	}

	runner := pipeline.NewRunner(fred.NewClient(cfg.FREDAPIKey), arc, st, catalog,
		pipeline.WithLookbackDays(cfg.LookbackDays),
		pipeline.WithLogger(logger),
	)

	return &Deps{
		Config: cfg,
		Store:  st,
		Runner: runner,
		Logger: logger,
		Flush:  flush,
	}, nil
}
