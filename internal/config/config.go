// Package config handles loading and validation of econpipe configuration
// from the environment and optional catalog files.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// RequiredEnvVars are the environment variables with no usable default.
var RequiredEnvVars = []string{"FRED_API_KEY", "S3_BUCKET_NAME", "DB_HOST", "DB_PASSWORD"}

// SecretEnvVars holds the variable names whose values must be masked in any output.
var SecretEnvVars = []string{"FRED_API_KEY", "DB_PASSWORD"}

// Config carries everything a pipeline run needs from the environment.
type Config struct {
	FREDAPIKey string
	S3Bucket   string
	AWSRegion  string

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// LookbackDays bounds the first fetch of a series with no stored history.
	LookbackDays int

	// OutputDir receives rendered charts and report artifacts.
	OutputDir string
}

// FromEnv reads configuration from the environment without validating it.
// Callers that need a usable config should use Load instead; FromEnv exists
// for surfaces that report on missing configuration rather than fail on it.
func FromEnv() (*Config, error) {
	cfg := &Config{
		FREDAPIKey: os.Getenv("FRED_API_KEY"),
		S3Bucket:   os.Getenv("S3_BUCKET_NAME"),
		AWSRegion:  envOrDefault("AWS_REGION", "us-east-1"),
		DBHost:     os.Getenv("DB_HOST"),
		DBName:     envOrDefault("DB_NAME", "economic_indicators"),
		DBUser:     envOrDefault("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		OutputDir:  envOrDefault("OUTPUT_DIR", "output"),
	}

	port, err := strconv.Atoi(envOrDefault("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("parsing DB_PORT: %w", err)
	}
	cfg.DBPort = port

	lookback, err := strconv.Atoi(envOrDefault("LOOKBACK_DAYS", "3650"))
	if err != nil {
		return nil, fmt.Errorf("parsing LOOKBACK_DAYS: %w", err)
	}
	cfg.LookbackDays = lookback

	return cfg, nil
}

// Load reads configuration from the environment and fails fast when any
// required variable is missing, naming all of them in one error.
func Load() (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing required variable in a single error.
func (c *Config) Validate() error {
	var missing []string
	if c.FREDAPIKey == "" {
		missing = append(missing, "FRED_API_KEY")
	}
	if c.S3Bucket == "" {
		missing = append(missing, "S3_BUCKET_NAME")
	}
	if c.DBHost == "" {
		missing = append(missing, "DB_HOST")
	}
	if c.DBPassword == "" {
		missing = append(missing, "DB_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// DSN builds a pgx connection string for the configured database.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		url.QueryEscape(c.DBUser),
		url.QueryEscape(c.DBPassword),
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

// LoadDotenv loads a .env file from the working directory when one exists.
// Missing files are not an error; local runs use .env, deployed runs use
// real environment variables.
func LoadDotenv() {
	_ = godotenv.Load()
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
