package parsers

import (
	"encoding/json"
	"strconv"

	"offer-reconciliation-service/internal/filters"
	"offer-reconciliation-service/internal/models"
	"offer-reconciliation-service/pkg/errors"
	"offer-reconciliation-service/pkg/logger"
)

// OfferLoader loads offer inventory files.
type OfferLoader struct {
	config *LoadConfig
	logger logger.Logger
}

// NewOfferLoader creates an offer loader.
func NewOfferLoader(config *LoadConfig) *OfferLoader {
	if config == nil {
		config = DefaultLoadConfig()
	}
	return &OfferLoader{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("offer_loader"),
	}
}

// LoadOffers reads an offer inventory file. The file is either a bare JSON
// array or an object with an "offers" array; both shapes occur in
// spreadsheet exports. Invalid records are skipped when configured,
// otherwise the first one fails the load.
func (l *OfferLoader) LoadOffers(path string) ([]*models.Offer, *ParseStats, error) {
	data, err := readFile(path, l.logger)
	if err != nil {
		return nil, nil, err
	}

	raws, err := recordsArray(data, "offers", path)
	if err != nil {
		return nil, nil, err
	}

	stats := NewParseStats()
	offers := make([]*models.Offer, 0, len(raws))
	for i, raw := range raws {
		stats.TotalRecords++
		var offer models.Offer
		if err := json.Unmarshal(raw, &offer); err != nil {
			if !l.config.SkipInvalid {
				return nil, stats, errors.ParseError(errors.CodeInvalidJSON, path, recordDetail(i), err)
			}
			stats.Skipped++
			stats.AddError(&RecordError{Index: i, Field: "offer", Message: "invalid JSON", Err: err}, l.config.MaxErrorSamples)
			continue
		}
		if err := offer.Validate(); err != nil {
			if !l.config.SkipInvalid {
				return nil, stats, err
			}
			stats.Skipped++
			stats.AddError(&RecordError{Index: i, Field: "offer", Message: "validation failed", Err: err}, l.config.MaxErrorSamples)
			continue
		}
		stats.RecordsValid++
		offers = append(offers, &offer)
	}

	l.logger.WithFields(logger.Fields{
		"file_path": path,
		"total":     stats.TotalRecords,
		"valid":     stats.RecordsValid,
		"skipped":   stats.Skipped,
	}).Info("Loaded offer inventory")

	return offers, stats, nil
}

// SailingLoader loads sailing inventory files.
type SailingLoader struct {
	config *LoadConfig
	logger logger.Logger
}

// NewSailingLoader creates a sailing loader.
func NewSailingLoader(config *LoadConfig) *SailingLoader {
	if config == nil {
		config = DefaultLoadConfig()
	}
	return &SailingLoader{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("sailing_loader"),
	}
}

// LoadSailings reads a sailing inventory file, a bare array or an object
// with a "sailings" array.
func (l *SailingLoader) LoadSailings(path string) ([]*models.Sailing, *ParseStats, error) {
	data, err := readFile(path, l.logger)
	if err != nil {
		return nil, nil, err
	}

	raws, err := recordsArray(data, "sailings", path)
	if err != nil {
		return nil, nil, err
	}

	stats := NewParseStats()
	sailings := make([]*models.Sailing, 0, len(raws))
	for i, raw := range raws {
		stats.TotalRecords++
		var sailing models.Sailing
		if err := json.Unmarshal(raw, &sailing); err != nil {
			if !l.config.SkipInvalid {
				return nil, stats, errors.ParseError(errors.CodeInvalidJSON, path, recordDetail(i), err)
			}
			stats.Skipped++
			stats.AddError(&RecordError{Index: i, Field: "sailing", Message: "invalid JSON", Err: err}, l.config.MaxErrorSamples)
			continue
		}
		if err := sailing.Validate(); err != nil {
			if !l.config.SkipInvalid {
				return nil, stats, err
			}
			stats.Skipped++
			stats.AddError(&RecordError{Index: i, Field: "sailing", Message: "validation failed", Err: err}, l.config.MaxErrorSamples)
			continue
		}
		stats.RecordsValid++
		sailings = append(sailings, &sailing)
	}

	l.logger.WithFields(logger.Fields{
		"file_path": path,
		"total":     stats.TotalRecords,
		"valid":     stats.RecordsValid,
		"skipped":   stats.Skipped,
	}).Info("Loaded sailing inventory")

	return sailings, stats, nil
}

// ProfileLoader loads loyalty profiles and saved search states.
type ProfileLoader struct {
	logger logger.Logger
}

// NewProfileLoader creates a profile loader.
func NewProfileLoader() *ProfileLoader {
	return &ProfileLoader{
		logger: logger.GetGlobalLogger().WithComponent("profile_loader"),
	}
}

// LoadProfile reads one profile file.
func (l *ProfileLoader) LoadProfile(path string) (*models.Profile, error) {
	data, err := readFile(path, l.logger)
	if err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, errors.ParseError(errors.CodeInvalidJSON, path, "profile", err).
			WithSuggestion("Check that the file is a valid profile JSON export")
	}

	offers := 0
	for _, o := range profile.Data.Offers {
		if o != nil {
			offers++
		}
	}
	l.logger.WithFields(logger.Fields{
		"file_path": path,
		"email":     profile.Data.Email,
		"offers":    offers,
	}).Info("Loaded profile")

	return &profile, nil
}

// LoadSearchState reads a saved advanced-search state file.
func (l *ProfileLoader) LoadSearchState(path string) (*filters.SearchState, error) {
	data, err := readFile(path, l.logger)
	if err != nil {
		return nil, err
	}

	var state filters.SearchState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.ParseError(errors.CodeInvalidJSON, path, "search state", err).
			WithSuggestion("Check that the file is a valid saved search export")
	}

	l.logger.WithFields(logger.Fields{
		"file_path":  path,
		"enabled":    state.Enabled,
		"predicates": len(state.Predicates),
	}).Debug("Loaded search state")

	return &state, nil
}

// recordsArray extracts the record list from a file that is either a bare
// JSON array or an object wrapping one under the given key.
func recordsArray(data []byte, key, path string) ([]json.RawMessage, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err == nil {
		return raws, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, errors.ParseError(errors.CodeInvalidJSON, path, "document", err).
			WithSuggestion("The file must be a JSON array or an object containing one")
	}
	inner, ok := wrapper[key]
	if !ok {
		return nil, errors.ParseError(errors.CodeInvalidFormat, path, "missing \""+key+"\" array", nil).
			WithSuggestion("Wrap the records in a \"" + key + "\" array or use a bare array")
	}
	if err := json.Unmarshal(inner, &raws); err != nil {
		return nil, errors.ParseError(errors.CodeInvalidJSON, path, key, err)
	}
	return raws, nil
}

func recordDetail(index int) string {
	return "record " + strconv.Itoa(index)
}
