// Package filters implements the two view filters applied to matched
// offer/sailing rows: the advanced-search predicate filter and the
// hidden-group filter. Both operate on Record pairs and resolve field
// values through the shared column resolver, so a filter always sees the
// same text a report column would render.
package filters

import (
	"fmt"
	"strings"

	"offer-reconciliation-service/internal/columns"
	"offer-reconciliation-service/internal/models"
	"offer-reconciliation-service/pkg/errors"
	"offer-reconciliation-service/pkg/logger"
)

// Record is one offer/sailing row as seen by the filters.
type Record struct {
	Offer   *models.ProfileOffer
	Sailing *models.ProfileSailing
}

// RecordsFromProfile flattens a profile into one Record per sailing.
func RecordsFromProfile(profile *models.Profile) []Record {
	if profile == nil {
		return nil
	}
	var records []Record
	for _, offer := range profile.Data.Offers {
		if offer == nil || offer.CampaignOffer == nil {
			continue
		}
		for _, sailing := range offer.CampaignOffer.Sailings {
			if sailing == nil {
				continue
			}
			records = append(records, Record{Offer: offer, Sailing: sailing})
		}
	}
	return records
}

// Predicate operators. "starts with" is accepted as input but evaluated as
// OpContains; downstream consumers depend on that aliasing, so it stays.
const (
	OpIn          = "in"
	OpNotIn       = "not in"
	OpContains    = "contains"
	OpNotContains = "not contains"
	OpStartsWith  = "starts with"
)

// Predicate is one structured search condition. Predicates combine with
// logical AND.
type Predicate struct {
	ID       string   `json:"id"`
	FieldKey string   `json:"fieldKey"`
	Operator string   `json:"operator"`
	Values   []string `json:"values"`
	Complete bool     `json:"complete"`
}

// evaluable reports whether the predicate carries enough information to be
// applied, regardless of its Complete flag.
func (p *Predicate) evaluable() bool {
	return p != nil && p.FieldKey != "" && p.Operator != "" && len(p.Values) > 0
}

// SearchState is the advanced-search session: the predicate list plus an
// optional pointer to one predicate being live-previewed mid-edit. The
// preview predicate is applied as if complete but is never persisted as
// such.
type SearchState struct {
	Enabled    bool         `json:"enabled"`
	Predicates []*Predicate `json:"predicates"`
	PreviewID  string       `json:"previewId,omitempty"`
}

// activePredicates selects the committed predicates plus, when PreviewID
// names an incomplete but evaluable predicate, that preview predicate.
func (s *SearchState) activePredicates() []*Predicate {
	var active []*Predicate
	for _, p := range s.Predicates {
		if p != nil && p.Complete && p.evaluable() {
			active = append(active, p)
		}
	}
	if s.PreviewID != "" {
		for _, p := range s.Predicates {
			if p != nil && p.ID == s.PreviewID && !p.Complete && p.evaluable() {
				active = append(active, p)
				break
			}
		}
	}
	return active
}

// Search applies advanced-search predicates to records.
type Search struct {
	log logger.Logger
}

// NewSearch creates a predicate filter.
func NewSearch(log logger.Logger) *Search {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Search{log: log.WithComponent("search")}
}

// Apply returns the records satisfying every active predicate. A disabled
// state or an empty predicate set returns the input unchanged. Evaluation
// failures are asymmetric: a failure scoped to one predicate hides the
// record (fail-closed), a failure of the whole predicate walk keeps it
// (fail-open) — partial failures should hide questionable rows, total
// failures must never blank the list.
func (s *Search) Apply(records []Record, state *SearchState) []Record {
	if state == nil || !state.Enabled {
		return records
	}
	preds := state.activePredicates()
	if len(preds) == 0 {
		return records
	}

	filtered := make([]Record, 0, len(records))
	for _, rec := range records {
		if s.matchesAll(rec, preds) {
			filtered = append(filtered, rec)
		}
	}
	s.log.WithFields(logger.Fields{
		"predicates": len(preds),
		"in":         len(records),
		"out":        len(filtered),
	}).Debug("advanced search applied")
	return filtered
}

// matchesAll reports whether the record passes every predicate.
func (s *Search) matchesAll(rec Record, preds []*Predicate) (passed bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("panic", r).Warn("predicate walk failed, keeping record")
			passed = true
		}
	}()
	for _, pred := range preds {
		ok, err := s.matchesOne(rec, pred)
		if err != nil {
			s.log.WithError(err).WithField("predicate", pred.ID).Debug("predicate evaluation failed, hiding record")
			return false
		}
		if !ok {
			return false
		}
	}
	return true
}

// matchesOne evaluates one predicate against the record. A panic raised
// while resolving the field value or applying the operator is scoped to
// this predicate and surfaces as an error; the caller hides the record.
func (s *Search) matchesOne(rec Record, pred *Predicate) (matched bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			matched = false
			err = errors.InternalError(fmt.Sprintf("predicate evaluation panicked: %v", r), nil)
		}
	}()
	return evaluatePredicate(pred, columns.Value(rec.Offer, rec.Sailing, pred.FieldKey)), nil
}

// evaluatePredicate applies one predicate to a resolved field value. An
// incomplete predicate (no operator or no values) is vacuously true so a
// half-built search never hides all data.
func evaluatePredicate(pred *Predicate, fieldValue string) bool {
	op := strings.ToLower(strings.TrimSpace(pred.Operator))
	if op == OpStartsWith {
		op = OpContains
	}
	values := make([]string, 0, len(pred.Values))
	for _, v := range pred.Values {
		values = append(values, normalizeTerm(v))
	}
	fv := normalizeTerm(fieldValue)
	if op == "" || len(values) == 0 {
		return true
	}

	switch op {
	case OpIn:
		for _, v := range values {
			if fv == v {
				return true
			}
		}
		return false
	case OpNotIn:
		for _, v := range values {
			if fv == v {
				return false
			}
		}
		return true
	case OpContains:
		for _, v := range values {
			if strings.Contains(fv, v) {
				return true
			}
		}
		return false
	case OpNotContains:
		for _, v := range values {
			if strings.Contains(fv, v) {
				return false
			}
		}
		return true
	}
	// Unknown operators are vacuously true, same policy as incomplete
	// predicates.
	return true
}

// normalizeTerm prepares both sides of a predicate comparison.
func normalizeTerm(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
