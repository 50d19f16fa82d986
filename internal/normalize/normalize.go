// Package normalize provides the canonical-form helpers the matching and
// filtering layers compare with. Every function here is pure, deterministic
// and total: malformed input produces a safe zero value, never an error.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	brandPrefixRe = regexp.MustCompile(`^(?:THE\s+)?(?:ROYAL\s+CARIBBEAN\s*-?\s*)?(?:RCCL\s+)?(?:CELEBRITY\s+)?`)
	shipSuffixRe  = regexp.MustCompile(`\s+OF\s+THE\s+SEAS$`)
	nonAlnumRe    = regexp.MustCompile(`[^A-Z0-9]`)
	nonWordSpRe   = regexp.MustCompile(`[^A-Z0-9 ]`)

	isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	usDateRe  = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})[-/](\d{4})$`)
)

// canonicalShips is the fixed fleet list cleaned ship names are matched
// against. Entries are the short form left after prefix/suffix stripping.
var canonicalShips = map[string]struct{}{
	// Royal Caribbean International
	"ICON": {}, "STAR": {}, "LEGEND": {},
	"UTOPIA": {}, "OASIS": {}, "ALLURE": {}, "HARMONY": {}, "SYMPHONY": {}, "WONDER": {},
	"FREEDOM": {}, "LIBERTY": {}, "INDEPENDENCE": {},
	"QUANTUM": {}, "ANTHEM": {}, "OVATION": {}, "SPECTRUM": {}, "ODYSSEY": {},
	"VOYAGER": {}, "NAVIGATOR": {}, "MARINER": {}, "ADVENTURE": {}, "EXPLORER": {},
	"RADIANCE": {}, "BRILLIANCE": {}, "SERENADE": {}, "JEWEL": {},
	"VISION": {}, "ENCHANTMENT": {}, "GRANDEUR": {}, "RHAPSODY": {},
	"MAJESTY": {}, "SOVEREIGN": {}, "EMPRESS": {},
	// Celebrity Cruises
	"XCEL": {}, "ASCENT": {}, "BEYOND": {}, "APEX": {}, "EDGE": {},
	"REFLECTION": {}, "SILHOUETTE": {}, "EQUINOX": {}, "ECLIPSE": {}, "SOLSTICE": {},
	"CONSTELLATION": {}, "SUMMIT": {}, "INFINITY": {}, "MILLENNIUM": {}, "FLORA": {},
}

// ShipName reduces a raw ship name to its canonical comparable form:
// uppercase, collapsed whitespace, brand prefix and "OF THE SEAS" suffix
// stripped, punctuation removed. When the cleaned name is in the canonical
// fleet list it is returned as-is; otherwise the cleaned string is returned
// unchanged so unknown ships still compare consistently.
func ShipName(name string) string {
	cleaned := strings.ToUpper(strings.TrimSpace(name))
	cleaned = nonWordSpRe.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	cleaned = brandPrefixRe.ReplaceAllString(cleaned, "")
	cleaned = shipSuffixRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	return cleaned
}

// IsCanonicalShip reports whether the cleaned form of name is in the fleet list.
func IsCanonicalShip(name string) bool {
	_, ok := canonicalShips[ShipName(name)]
	return ok
}

// OfferCode normalizes an offer code for robust equality across punctuation
// and casing variants: uppercase, trimmed, all non-alphanumerics stripped.
func OfferCode(code string) string {
	upper := strings.ToUpper(strings.TrimSpace(code))
	return nonAlnumRe.ReplaceAllString(upper, "")
}

// OfferName normalizes an offer name for loose word-preserving equality:
// lowercase, trimmed, internal whitespace collapsed.
func OfferName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	return whitespaceRe.ReplaceAllString(lower, " ")
}

// Date parses a raw date value in the formats the source data actually
// carries: ISO (YYYY-MM-DD with optional time suffix), M/D/YYYY, M-D-YYYY,
// and a small set of fallback layouts. The result is truncated to day
// granularity in UTC. Returns ok=false for anything unparseable.
func Date(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, false
	}

	if isoDateRe.MatchString(s) {
		// Take the date portion only so time-of-day and zone offsets in the
		// source never shift the day.
		datePart := s[:10]
		if t, err := time.Parse("2006-01-02", datePart); err == nil {
			return t, true
		}
	}

	if m := usDateRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			// Reject rollovers such as 2/31.
			if t.Day() == day && int(t.Month()) == month {
				return t, true
			}
		}
		return time.Time{}, false
	}

	fallbacks := []string{
		time.RFC3339,
		"Jan 2, 2006",
		"January 2, 2006",
		"2006/01/02",
		"2 Jan 2006",
	}
	for _, layout := range fallbacks {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), true
		}
	}

	return time.Time{}, false
}

// Day truncates t to day granularity in UTC. All engine date comparisons go
// through this so time-of-day and millisecond artifacts never affect matching.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two times fall on the same UTC day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}
