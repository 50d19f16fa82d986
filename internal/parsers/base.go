// Package parsers loads the engine's JSON inputs: offer inventories,
// sailing inventories, loyalty profiles and saved search states.
//
// Input files come from spreadsheet exports and browser-storage dumps, so
// the loaders tolerate the field aliases those sources use and skip
// records that fail validation instead of aborting the whole load. Every
// load reports statistics so callers can surface how much of a file was
// usable.
//
// Loader types:
//   - OfferLoader: promotional offer inventories
//   - SailingLoader: bookable sailing inventories
//   - ProfileLoader: loyalty profiles and saved search states
//
// Example usage:
//
//	loader := NewOfferLoader(nil)
//	offers, stats, err := loader.LoadOffers("offers.json")
package parsers

import (
	"fmt"
	"os"

	"offer-reconciliation-service/pkg/errors"
	"offer-reconciliation-service/pkg/logger"
)

// RecordError describes one record that failed to decode or validate.
type RecordError struct {
	Index   int
	Field   string
	Message string
	Err     error
}

func (e *RecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("record %d (%s): %s: %v", e.Index, e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("record %d (%s): %s", e.Index, e.Field, e.Message)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// LoadConfig controls how loaders handle bad records.
type LoadConfig struct {
	// SkipInvalid drops records that fail validation instead of failing
	// the whole load.
	SkipInvalid bool
	// MaxErrorSamples caps how many record errors are retained in stats.
	MaxErrorSamples int
}

// DefaultLoadConfig returns a configuration with sensible defaults.
func DefaultLoadConfig() *LoadConfig {
	return &LoadConfig{
		SkipInvalid:     true,
		MaxErrorSamples: 20,
	}
}

// ParseStats holds statistics about one load operation.
type ParseStats struct {
	TotalRecords int
	RecordsValid int
	Skipped      int
	ErrorCount   int
	Errors       []*RecordError
}

// NewParseStats creates an empty ParseStats.
func NewParseStats() *ParseStats {
	return &ParseStats{Errors: make([]*RecordError, 0)}
}

// AddError records a bad record, keeping at most max samples.
func (ps *ParseStats) AddError(err *RecordError, max int) {
	ps.ErrorCount++
	if max <= 0 || len(ps.Errors) < max {
		ps.Errors = append(ps.Errors, err)
	}
}

// HasErrors reports whether any records failed.
func (ps *ParseStats) HasErrors() bool {
	return ps.ErrorCount > 0
}

// String returns a human-readable summary of the load.
func (ps *ParseStats) String() string {
	return fmt.Sprintf("Loaded %d records (%d valid, %d skipped), %d errors",
		ps.TotalRecords, ps.RecordsValid, ps.Skipped, ps.ErrorCount)
}

// readFile reads an input file, wrapping open failures into the error
// taxonomy.
func readFile(path string, log logger.Logger) ([]byte, error) {
	log.WithField("file_path", path).Debug("Reading input file")

	data, err := os.ReadFile(path)
	if err != nil {
		log.WithError(err).WithField("file_path", path).Error("Failed to read input file")
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError(errors.CodeFileCorrupted, path, err)
	}
	return data, nil
}
