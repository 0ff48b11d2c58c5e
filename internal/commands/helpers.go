// Package commands implements the CLI subcommands for the econpipe binary.
package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/econlab/econpipe/internal/config"
)

// ruleWidth is the width of the section rules printed by the database
// commands.
const ruleWidth = 60

func rule() string {
	return strings.Repeat("=", ruleWidth)
}

// loadDBConfig reads configuration without requiring the FRED or S3
// variables, so database-only commands run with a partial environment.
func loadDBConfig() (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	var missing []string
	if cfg.DBHost == "" {
		missing = append(missing, "DB_HOST")
	}
	if cfg.DBPassword == "" {
		missing = append(missing, "DB_PASSWORD")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

// fileKB formats the on-disk size of path for manifest listings.
func fileKB(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "missing"
	}
	return fmt.Sprintf("%.1f KB", float64(info.Size())/1024)
}

// printManifest lists generated report files with their sizes.
func printManifest(out io.Writer, manifest []string) {
	if len(manifest) == 0 {
		return
	}
	fmt.Fprintln(out, "\nGenerated files:")
	for _, path := range manifest {
		fmt.Fprintf(out, "  %-40s %s\n", filepath.Base(path), fileKB(path))
	}
}
