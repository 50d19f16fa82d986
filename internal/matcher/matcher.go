// Package matcher implements the offer-to-sailing reconciliation cascade.
//
// An offer's criteria (code, name, eligible ships, explicit sailing dates,
// eligibility window) are evaluated against each sailing through a fixed
// priority cascade, highest-confidence criterion first:
//
//  1. Offer code equality — definitive, overrides everything else
//  2. Offer name equality — strong
//  3. Ship containment AND exact sailing date
//  4. Ship containment AND eligibility window
//  5. Exact sailing date only
//  6. Eligibility window only
//  7. Ship containment only
//
// Each tier reports Matched, NoMatch or NotApplicable; the first conclusive
// tier wins. An offer with no usable criteria matches nothing. Matching is
// deterministic and rule-based: every result carries the tier that produced
// it so a match is always explainable.
package matcher

import (
	"sort"
	"time"

	"offer-reconciliation-service/internal/models"
	"offer-reconciliation-service/internal/normalize"
	"offer-reconciliation-service/pkg/logger"
)

// Engine matches offers against a sailing inventory. Matching is pure: the
// engine holds no per-run state and is safe to re-invoke with the same
// inputs at any time.
type Engine struct {
	log logger.Logger
}

// NewEngine creates a matching engine.
func NewEngine(log logger.Logger) *Engine {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Engine{log: log.WithComponent("matcher")}
}

// SailingMatch is one matched sailing with its resolved dates and the tier
// that admitted it.
type SailingMatch struct {
	Sailing *models.Sailing
	Tier    MatchTier

	Departure    time.Time
	HasDeparture bool
	Return       time.Time
	HasReturn    bool
}

// Result is the outcome of matching one offer against the inventory.
type Result struct {
	Offer   *models.Offer
	Matches []*SailingMatch
	Summary Summary
}

// Summary aggregates match counts per tier for one offer.
type Summary struct {
	TotalSailings     int
	Matched           int
	CodeMatches       int
	NameMatches       int
	ShipDateMatches   int
	ShipWindowMatches int
	DateMatches       int
	WindowMatches     int
	ShipMatches       int
}

// Match returns the sailings the offer applies to, sorted ascending by
// resolved departure date with unparseable dates last. This is the engine's
// primary contract; MatchDetailed exposes per-sailing tiers.
func (e *Engine) Match(offer *models.Offer, sailings []*models.Sailing) []*models.Sailing {
	result := e.MatchDetailed(offer, sailings)
	out := make([]*models.Sailing, 0, len(result.Matches))
	for _, m := range result.Matches {
		out = append(out, m.Sailing)
	}
	return out
}

// MatchDetailed runs the cascade for every sailing and returns the matched
// subset with tier attribution, sorted ascending by resolved departure date.
func (e *Engine) MatchDetailed(offer *models.Offer, sailings []*models.Sailing) *Result {
	result := &Result{
		Offer:   offer,
		Summary: Summary{TotalSailings: len(sailings)},
	}

	c := buildCriteria(offer)
	if !c.hasAny() {
		// No criteria at all: explicit empty result, never "match everything".
		e.log.WithField("offer", offer.OfferCode).Debug("offer has no usable criteria")
		return result
	}

	for _, sailing := range sailings {
		if sailing == nil {
			continue
		}
		f := buildSailingFacts(sailing)
		tier := evaluateTiers(c, f)
		if tier == TierNone {
			continue
		}

		match := &SailingMatch{
			Sailing:      sailing,
			Tier:         tier,
			Departure:    f.departure,
			HasDeparture: f.hasDeparture,
		}
		match.Return, match.HasReturn = resolveReturn(sailing, f)
		result.Matches = append(result.Matches, match)
		result.Summary.count(tier)
	}

	sortByDeparture(result.Matches)
	result.Summary.Matched = len(result.Matches)

	e.log.WithFields(logger.Fields{
		"offer":    offer.OfferCode,
		"sailings": len(sailings),
		"matched":  len(result.Matches),
	}).Debug("offer matched against inventory")

	return result
}

// MatchAll matches every offer against the same inventory.
func (e *Engine) MatchAll(offers []*models.Offer, sailings []*models.Sailing) []*Result {
	results := make([]*Result, 0, len(offers))
	for _, offer := range offers {
		if offer == nil {
			continue
		}
		results = append(results, e.MatchDetailed(offer, sailings))
	}
	return results
}

func (s *Summary) count(tier MatchTier) {
	switch tier {
	case TierOfferCode:
		s.CodeMatches++
	case TierOfferName:
		s.NameMatches++
	case TierShipAndDate:
		s.ShipDateMatches++
	case TierShipAndWindow:
		s.ShipWindowMatches++
	case TierDateOnly:
		s.DateMatches++
	case TierWindowOnly:
		s.WindowMatches++
	case TierShipOnly:
		s.ShipMatches++
	}
}

// resolveReturn resolves a sailing's return date, deriving it from the
// departure plus nights when the raw return date is unparseable.
func resolveReturn(sailing *models.Sailing, f *sailingFacts) (time.Time, bool) {
	if d, ok := normalize.Date(sailing.ReturnDate); ok {
		return d, true
	}
	if f.hasDeparture && sailing.Nights > 0 {
		return f.departure.AddDate(0, 0, sailing.Nights), true
	}
	return time.Time{}, false
}

// sortByDeparture orders matches ascending by resolved departure date;
// sailings without a parseable departure sort last. The sort is stable so
// equal dates keep their inventory order.
func sortByDeparture(matches []*SailingMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.HasDeparture != b.HasDeparture {
			return a.HasDeparture
		}
		if !a.HasDeparture {
			return false
		}
		return a.Departure.Before(b.Departure)
	})
}
