package matcher

import (
	"strings"
	"time"

	"offer-reconciliation-service/internal/models"
	"offer-reconciliation-service/internal/normalize"
)

// MatchTier identifies which rung of the priority cascade matched a sailing.
type MatchTier int

const (
	// TierNone means no tier matched.
	TierNone MatchTier = iota

	// TierOfferCode is a definitive match on normalized offer code equality.
	// Authoritative regardless of ship or date criteria.
	TierOfferCode

	// TierOfferName is a strong match on normalized offer name equality.
	TierOfferName

	// TierShipAndDate requires ship containment plus an exact sailing-date
	// hit when the offer supplies both ships and explicit dates.
	TierShipAndDate

	// TierShipAndWindow requires ship containment plus eligibility-window
	// membership when the offer supplies ships and a date range.
	TierShipAndWindow

	// TierDateOnly matches on the explicit date list alone.
	TierDateOnly

	// TierWindowOnly matches on window membership alone.
	TierWindowOnly

	// TierShipOnly matches on ship containment alone when the offer has no
	// date information.
	TierShipOnly
)

// String returns the tier name for reports and logs.
func (t MatchTier) String() string {
	switch t {
	case TierOfferCode:
		return "offer_code"
	case TierOfferName:
		return "offer_name"
	case TierShipAndDate:
		return "ship_and_date"
	case TierShipAndWindow:
		return "ship_and_window"
	case TierDateOnly:
		return "date_only"
	case TierWindowOnly:
		return "window_only"
	case TierShipOnly:
		return "ship_only"
	default:
		return "none"
	}
}

// TierResult is the tri-state outcome of evaluating one tier for one sailing.
type TierResult int

const (
	// TierNotApplicable means the tier's criteria are not present for this
	// offer/sailing pair; evaluation falls through to the next tier.
	TierNotApplicable TierResult = iota

	// TierMatched means the tier's criteria are present and satisfied.
	TierMatched

	// TierNoMatch means the tier's criteria are present and failed; the
	// cascade stops without a match.
	TierNoMatch
)

// criteria holds an offer's matching criteria in normalized, parsed form.
type criteria struct {
	code  string
	name  string
	ships []string
	dates []time.Time

	start    time.Time
	end      time.Time
	hasStart bool
	hasEnd   bool
}

// buildCriteria extracts and normalizes an offer's usable criteria. The
// window end falls back to the expiration date and the window start falls
// back to the offer received date, matching how real offer exports encode
// eligibility.
func buildCriteria(offer *models.Offer) *criteria {
	c := &criteria{
		code: normalize.OfferCode(offer.OfferCode),
		name: normalize.OfferName(offer.Name),
	}

	for _, ship := range offer.Ships {
		if normalized := normalize.ShipName(ship); normalized != "" {
			c.ships = append(c.ships, normalized)
		}
	}

	for _, raw := range offer.SailingDates {
		if d, ok := normalize.Date(raw); ok {
			c.dates = append(c.dates, d)
		}
	}

	if d, ok := normalize.Date(offer.StartDate); ok {
		c.start, c.hasStart = d, true
	} else if d, ok := normalize.Date(offer.ReceivedDate); ok {
		c.start, c.hasStart = d, true
	}

	if d, ok := normalize.Date(offer.EndDate); ok {
		c.end, c.hasEnd = d, true
	} else if d, ok := normalize.Date(offer.ExpirationDate); ok {
		c.end, c.hasEnd = d, true
	}

	return c
}

// hasAny reports whether any usable criterion was extracted.
func (c *criteria) hasAny() bool {
	return c.code != "" || c.name != "" || len(c.ships) > 0 ||
		len(c.dates) > 0 || c.hasStart || c.hasEnd
}

// sailingFacts caches a sailing's normalized comparison values.
type sailingFacts struct {
	sailing *models.Sailing

	ship string
	code string
	name string

	departure    time.Time
	hasDeparture bool
}

func buildSailingFacts(sailing *models.Sailing) *sailingFacts {
	f := &sailingFacts{
		sailing: sailing,
		ship:    normalize.ShipName(sailing.ShipName),
		code:    normalize.OfferCode(sailing.OfferCode),
		name:    normalize.OfferName(sailing.OfferName),
	}
	if d, ok := normalize.Date(sailing.DepartureDate); ok {
		f.departure, f.hasDeparture = d, true
	}
	return f
}

// shipMatches tests bidirectional substring containment so either side may
// carry the more specific name. An empty sailing ship never matches.
func (c *criteria) shipMatches(f *sailingFacts) bool {
	if f.ship == "" {
		return false
	}
	for _, offerShip := range c.ships {
		if strings.Contains(f.ship, offerShip) || strings.Contains(offerShip, f.ship) {
			return true
		}
	}
	return false
}

// dateMatches tests exact day equality against the offer's explicit dates.
func (c *criteria) dateMatches(f *sailingFacts) bool {
	if !f.hasDeparture {
		return false
	}
	for _, d := range c.dates {
		if normalize.SameDay(d, f.departure) {
			return true
		}
	}
	return false
}

// windowMatches tests eligibility-window membership. Both bounds present is
// an inclusive range; a lone end bound admits earlier-or-equal departures; a
// lone start bound admits later-or-equal departures.
func (c *criteria) windowMatches(f *sailingFacts) bool {
	if !f.hasDeparture {
		return false
	}
	d := f.departure
	switch {
	case c.hasStart && c.hasEnd:
		return !d.Before(c.start) && !d.After(c.end)
	case c.hasEnd:
		return !d.After(c.end)
	case c.hasStart:
		return !d.Before(c.start)
	default:
		return false
	}
}

// tierEvaluator pairs a tier tag with its evaluation function.
type tierEvaluator struct {
	Tier     MatchTier
	Evaluate func(c *criteria, f *sailingFacts) TierResult
}

// tiers is the cascade, highest priority first. Evaluation walks the list and
// stops at the first TierMatched or TierNoMatch; TierNotApplicable falls
// through. The code and name tiers never return TierNoMatch: a sailing whose
// code differs can still qualify through the ship/date tiers below.
var tiers = []tierEvaluator{
	{
		Tier: TierOfferCode,
		Evaluate: func(c *criteria, f *sailingFacts) TierResult {
			if c.code == "" || f.code == "" {
				return TierNotApplicable
			}
			if c.code == f.code {
				return TierMatched
			}
			return TierNotApplicable
		},
	},
	{
		Tier: TierOfferName,
		Evaluate: func(c *criteria, f *sailingFacts) TierResult {
			if c.name == "" || f.name == "" {
				return TierNotApplicable
			}
			if c.name == f.name {
				return TierMatched
			}
			return TierNotApplicable
		},
	},
	{
		Tier: TierShipAndDate,
		Evaluate: func(c *criteria, f *sailingFacts) TierResult {
			if len(c.ships) == 0 || len(c.dates) == 0 {
				return TierNotApplicable
			}
			if c.shipMatches(f) && c.dateMatches(f) {
				return TierMatched
			}
			return TierNoMatch
		},
	},
	{
		Tier: TierShipAndWindow,
		Evaluate: func(c *criteria, f *sailingFacts) TierResult {
			if len(c.ships) == 0 || (!c.hasStart && !c.hasEnd) {
				return TierNotApplicable
			}
			if c.shipMatches(f) && c.windowMatches(f) {
				return TierMatched
			}
			return TierNoMatch
		},
	},
	{
		Tier: TierDateOnly,
		Evaluate: func(c *criteria, f *sailingFacts) TierResult {
			if len(c.dates) == 0 {
				return TierNotApplicable
			}
			if c.dateMatches(f) {
				return TierMatched
			}
			return TierNoMatch
		},
	},
	{
		Tier: TierWindowOnly,
		Evaluate: func(c *criteria, f *sailingFacts) TierResult {
			if !c.hasStart && !c.hasEnd {
				return TierNotApplicable
			}
			if c.windowMatches(f) {
				return TierMatched
			}
			return TierNoMatch
		},
	},
	{
		Tier: TierShipOnly,
		Evaluate: func(c *criteria, f *sailingFacts) TierResult {
			if len(c.ships) == 0 {
				return TierNotApplicable
			}
			if c.shipMatches(f) {
				return TierMatched
			}
			return TierNoMatch
		},
	},
}

// evaluateTiers runs the cascade for one sailing and returns the matching
// tier, or TierNone when no tier matched.
func evaluateTiers(c *criteria, f *sailingFacts) MatchTier {
	for _, tier := range tiers {
		switch tier.Evaluate(c, f) {
		case TierMatched:
			return tier.Tier
		case TierNoMatch:
			return TierNone
		}
	}
	return TierNone
}
