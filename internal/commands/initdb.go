package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/econlab/econpipe/internal/config"
	"github.com/econlab/econpipe/internal/store"
	"github.com/econlab/econpipe/pkg/types"
)

// initStore is the store surface the initdb command needs.
type initStore interface {
	Migrate(ctx context.Context) error
	MigrateSQL(ctx context.Context, ddl string) error
	SeedCatalog(ctx context.Context, catalog types.Catalog) error
	Counts(ctx context.Context) (store.TableCounts, error)
}

// NewInitDBCmd creates the initdb command.
func NewInitDBCmd() *cobra.Command {
	var schemaPath, catalogPath string

	cmd := &cobra.Command{
		Use:   "initdb",
		Short: "Create the database schema and seed the indicator catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInitDBCmd(schemaPath, catalogPath)
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "Apply DDL from a SQL file instead of the built-in schema")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Seed indicators from a catalog YAML file")
	return cmd
}

func runInitDBCmd(schemaPath, catalogPath string) error {
	fmt.Println(rule())
	fmt.Println("Economic Indicator Pipeline - Database Initialization")
	fmt.Println(rule())
	fmt.Println()

	cfg, err := loadDBConfig()
	if err != nil {
		return err
	}
	catalog, err := config.ResolveCatalog(catalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	var ddl string
	if schemaPath != "" {
		data, err := os.ReadFile(schemaPath)
		if err != nil {
			color.Red("\n[ERROR] Reading schema file: %v", err)
			return err
		}
		ddl = string(data)
	}

	fmt.Println("Connecting to database...")
	fmt.Printf("Host: %s\n", cfg.DBHost)
	fmt.Printf("Database: %s\n", cfg.DBName)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	st, err := store.New(ctx, cfg.DSN())
	if err != nil {
		color.Red("\n[ERROR] Database error: %v", err)
		return err
	}
	defer st.Close()
	fmt.Println("Connected successfully!")

	return runInitDB(ctx, st, catalog, ddl, os.Stdout)
}

func runInitDB(ctx context.Context, st initStore, catalog types.Catalog, ddl string, out io.Writer) error {
	fmt.Fprintln(out, "\nExecuting schema...")

	var err error
	if ddl != "" {
		err = st.MigrateSQL(ctx, ddl)
	} else {
		err = st.Migrate(ctx)
	}
	if err != nil {
		fmt.Fprintf(out, "\n%s Database error: %v\n", color.RedString("[ERROR]"), err)
		return err
	}
	fmt.Fprintf(out, "\n%s Database schema created successfully!\n", color.GreenString("[SUCCESS]"))

	if err := st.SeedCatalog(ctx, catalog); err != nil {
		fmt.Fprintf(out, "\n%s Seeding catalog: %v\n", color.RedString("[ERROR]"), err)
		return err
	}

	fmt.Fprintln(out, "\nSeeded indicators:")
	for _, ind := range catalog {
		fmt.Fprintf(out, "  - %s: %s\n", ind.Series, ind.Title)
	}

	counts, err := st.Counts(ctx)
	if err != nil {
		fmt.Fprintf(out, "\n%s Database error: %v\n", color.RedString("[ERROR]"), err)
		return err
	}
	fmt.Fprintln(out, "\nTable statistics:")
	fmt.Fprintf(out, "  - Indicators: %d records\n", counts.Indicators)
	fmt.Fprintf(out, "  - Indicator Data: %d records\n", counts.Observations)
	fmt.Fprintf(out, "  - ETL Logs: %d records\n", counts.Runs)

	fmt.Fprintf(out, "\n%s Database initialization complete!\n", color.GreenString("[SUCCESS]"))
	return nil
}
