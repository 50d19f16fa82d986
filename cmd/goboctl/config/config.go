// Package config builds the component configurations the CLI commands use.
package config

import (
	"fmt"

	"offer-reconciliation-service/internal/parsers"
	"offer-reconciliation-service/internal/reconciler"
	"offer-reconciliation-service/internal/reporter"
	"offer-reconciliation-service/internal/storage"
)

// CreateLoadConfig creates a loader configuration. Strict mode fails the
// load on the first invalid record instead of skipping it.
func CreateLoadConfig(strict bool) *parsers.LoadConfig {
	config := parsers.DefaultLoadConfig()
	config.SkipInvalid = !strict
	return config
}

// CreateServiceConfig creates a reconciliation service configuration.
func CreateServiceConfig(strict bool) *reconciler.ServiceConfig {
	return &reconciler.ServiceConfig{
		LoadConfig: CreateLoadConfig(strict),
	}
}

// CreateReportConfig creates a report configuration for the specified
// output format.
func CreateReportConfig(format string) (*reporter.ReportConfig, error) {
	config := reporter.DefaultReportConfig()

	switch format {
	case "console":
		config.Format = reporter.FormatConsole
		config.IncludeUnmatchedOffers = true
		config.IncludeParseStats = true
	case "json":
		config.Format = reporter.FormatJSON
		config.IncludeUnmatchedOffers = true
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
		// CSV is row data only; unmatched offers have no rows.
		config.IncludeUnmatchedOffers = false
	default:
		return nil, fmt.Errorf("unsupported output format: %s (use console, json or csv)", format)
	}

	return config, nil
}

// OpenStateStore opens the JSON state file backing hidden groups and the
// profile id allocator, loading it eagerly.
func OpenStateStore(path string) (*storage.FileStore, error) {
	store := storage.NewFileStore(path)
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}
