// Package reconciler provides high-level orchestration for the offer
// reconciliation workflows.
//
// This package coordinates the complete pipelines behind the CLI commands:
//   - Inventory matching: load offer and sailing files, run the matching
//     cascade, compile per-offer results
//   - Profile filtering: flatten a profile into rows, apply hidden groups
//     and the advanced-search predicates
//   - Profile consolidation: merge two profiles and report what survived
//
// The Service is the main entry point; each pipeline validates its request,
// loads its inputs, runs the engine components and aggregates a result the
// reporter can render.
package reconciler

import (
	"context"
	"time"

	"offer-reconciliation-service/internal/columns"
	"offer-reconciliation-service/internal/filters"
	"offer-reconciliation-service/internal/matcher"
	"offer-reconciliation-service/internal/merger"
	"offer-reconciliation-service/internal/models"
	"offer-reconciliation-service/internal/parsers"
	"offer-reconciliation-service/pkg/errors"
	"offer-reconciliation-service/pkg/logger"
)

// Service orchestrates the reconciliation pipelines.
type Service struct {
	engine  *matcher.Engine
	search  *filters.Search
	merger  *merger.Merger
	offers  *parsers.OfferLoader
	sails   *parsers.SailingLoader
	profile *parsers.ProfileLoader
	logger  logger.Logger
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// LoadConfig controls how the inventory loaders treat bad records.
	LoadConfig *parsers.LoadConfig
}

// NewService creates a reconciliation service.
func NewService(config *ServiceConfig, log logger.Logger) *Service {
	if config == nil {
		config = &ServiceConfig{}
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	log = log.WithComponent("reconciler")

	return &Service{
		engine:  matcher.NewEngine(log),
		search:  filters.NewSearch(log),
		merger:  merger.New(log),
		offers:  parsers.NewOfferLoader(config.LoadConfig),
		sails:   parsers.NewSailingLoader(config.LoadConfig),
		profile: parsers.NewProfileLoader(),
		logger:  log,
	}
}

// MatchRequest names the inventory files for a matching run.
type MatchRequest struct {
	OffersFile   string
	SailingsFile string
}

// Validate checks the request for required fields.
func (r *MatchRequest) Validate() error {
	if r.OffersFile == "" {
		return errors.ValidationError(errors.CodeMissingField, "offers_file", nil, nil).
			WithSuggestion("Provide the offers inventory file path")
	}
	if r.SailingsFile == "" {
		return errors.ValidationError(errors.CodeMissingField, "sailings_file", nil, nil).
			WithSuggestion("Provide the sailings inventory file path")
	}
	return nil
}

// MatchResult is the aggregate outcome of a matching run.
type MatchResult struct {
	Results []*matcher.Result

	OfferStats   *parsers.ParseStats
	SailingStats *parsers.ParseStats

	TotalOffers     int
	TotalSailings   int
	OffersMatched   int
	OffersUnmatched int
	ProcessingTime  time.Duration
}

// Match loads both inventories and matches every offer against every
// sailing.
func (s *Service) Match(ctx context.Context, request *MatchRequest) (*MatchResult, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	s.logger.WithFields(logger.Fields{
		"offers_file":   request.OffersFile,
		"sailings_file": request.SailingsFile,
	}).Info("Starting matching run")

	offers, offerStats, err := s.offers.LoadOffers(request.OffersFile)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.ReconciliationError(errors.CodeMatchingFailed, "match", err)
	}
	sailings, sailingStats, err := s.sails.LoadSailings(request.SailingsFile)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.ReconciliationError(errors.CodeMatchingFailed, "match", err)
	}

	results := s.engine.MatchAll(offers, sailings)

	result := &MatchResult{
		Results:        results,
		OfferStats:     offerStats,
		SailingStats:   sailingStats,
		TotalOffers:    len(offers),
		TotalSailings:  len(sailings),
		ProcessingTime: time.Since(start),
	}
	for _, r := range results {
		if len(r.Matches) > 0 {
			result.OffersMatched++
		} else {
			result.OffersUnmatched++
		}
	}

	s.logger.WithFields(logger.Fields{
		"offers":    result.TotalOffers,
		"sailings":  result.TotalSailings,
		"matched":   result.OffersMatched,
		"unmatched": result.OffersUnmatched,
		"elapsed":   result.ProcessingTime,
	}).Info("Matching run completed")

	return result, nil
}

// FilterRequest names a profile file and the filters to apply to it.
type FilterRequest struct {
	ProfileFile string
	// SearchFile optionally names a saved advanced-search state.
	SearchFile string
	// HiddenGroups are "Label:Value" rules; rows matching any are dropped.
	HiddenGroups []string
}

// Validate checks the request for required fields.
func (r *FilterRequest) Validate() error {
	if r.ProfileFile == "" {
		return errors.ValidationError(errors.CodeMissingField, "profile_file", nil, nil).
			WithSuggestion("Provide the profile file path")
	}
	return nil
}

// FilterResult is the outcome of a profile filtering run.
type FilterResult struct {
	Profile *models.Profile
	Records []filters.Record

	TotalRecords   int
	HiddenExcluded int
	SearchExcluded int
	ProcessingTime time.Duration
}

// Filter loads a profile, flattens it into rows and applies the
// hidden-group and advanced-search filters in that order.
func (s *Service) Filter(ctx context.Context, request *FilterRequest) (*FilterResult, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	profile, err := s.profile.LoadProfile(request.ProfileFile)
	if err != nil {
		return nil, err
	}

	var state *filters.SearchState
	if request.SearchFile != "" {
		state, err = s.profile.LoadSearchState(request.SearchFile)
		if err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.ReconciliationError(errors.CodeMatchingFailed, "filter", err)
	}

	records := filters.RecordsFromProfile(profile)
	total := len(records)

	labels := columns.NewLabelMap(columns.DefaultHeaders)
	afterHidden := filters.ApplyHiddenGroups(records, request.HiddenGroups, labels)
	afterSearch := s.search.Apply(afterHidden, state)

	result := &FilterResult{
		Profile:        profile,
		Records:        afterSearch,
		TotalRecords:   total,
		HiddenExcluded: total - len(afterHidden),
		SearchExcluded: len(afterHidden) - len(afterSearch),
		ProcessingTime: time.Since(start),
	}

	s.logger.WithFields(logger.Fields{
		"records": total,
		"hidden":  result.HiddenExcluded,
		"search":  result.SearchExcluded,
		"kept":    len(result.Records),
	}).Info("Profile filtering completed")

	return result, nil
}

// MergeRequest names the two profile files to consolidate.
type MergeRequest struct {
	ProfileFileA string
	ProfileFileB string
}

// Validate checks the request for required fields.
func (r *MergeRequest) Validate() error {
	if r.ProfileFileA == "" || r.ProfileFileB == "" {
		return errors.ValidationError(errors.CodeMissingField, "profile_files", nil, nil).
			WithSuggestion("Provide both profile file paths")
	}
	return nil
}

// MergeResult is the outcome of a consolidation run.
type MergeResult struct {
	Merged  *models.Profile
	Summary *merger.Summary

	ProcessingTime time.Duration
}

// Merge loads both profiles and consolidates them.
func (s *Service) Merge(ctx context.Context, request *MergeRequest) (*MergeResult, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	a, err := s.profile.LoadProfile(request.ProfileFileA)
	if err != nil {
		return nil, err
	}
	b, err := s.profile.LoadProfile(request.ProfileFileB)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.ReconciliationError(errors.CodeMergeFailed, "merge", err)
	}

	merged, summary := s.merger.Merge(a, b)
	if merged == nil {
		return nil, errors.ReconciliationError(errors.CodeMergeFailed, "merge", nil).
			WithSuggestion("Both profile files decoded to empty profiles")
	}

	result := &MergeResult{
		Merged:         merged,
		Summary:        summary,
		ProcessingTime: time.Since(start),
	}

	s.logger.WithFields(logger.Fields{
		"kept":    summary.Kept,
		"pruned":  summary.OffersPruned,
		"elapsed": result.ProcessingTime,
	}).Info("Profile consolidation completed")

	return result, nil
}
