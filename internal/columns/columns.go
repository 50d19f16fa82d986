// Package columns computes the derived display values the filtering layer
// evaluates against. A predicate or hidden-group rule references a logical
// column key; for the well-known keys the value is computed from the
// offer+sailing pair (formatted dates, parsed itinerary, guest/perk strings),
// and unknown keys fall back to a direct property lookup on the offer record.
package columns

import (
	"fmt"
	"regexp"
	"strings"

	"offer-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

// Well-known logical column keys.
const (
	KeyOfferCode     = "offerCode"
	KeyOfferDate     = "offerDate"
	KeyExpiration    = "expiration"
	KeyOfferName     = "offerName"
	KeyShipClass     = "shipClass"
	KeyShip          = "ship"
	KeySailDate      = "sailDate"
	KeyDeparturePort = "departurePort"
	KeyNights        = "nights"
	KeyDestination   = "destination"
	KeyCategory      = "category"
	KeyGuests        = "guests"
	KeyPerks         = "perks"
	KeyTradeInValue  = "tradeInValue"
)

// Header pairs a display label with its logical column key.
type Header struct {
	Label string `json:"label"`
	Key   string `json:"key"`
}

// DefaultHeaders is the standard label set used when the caller supplies no
// schema of its own.
var DefaultHeaders = []Header{
	{Label: "Offer Code", Key: KeyOfferCode},
	{Label: "Offer Date", Key: KeyOfferDate},
	{Label: "Expiration", Key: KeyExpiration},
	{Label: "Offer Name", Key: KeyOfferName},
	{Label: "Ship Class", Key: KeyShipClass},
	{Label: "Ship", Key: KeyShip},
	{Label: "Sail Date", Key: KeySailDate},
	{Label: "Departure Port", Key: KeyDeparturePort},
	{Label: "Nights", Key: KeyNights},
	{Label: "Destination", Key: KeyDestination},
	{Label: "Category", Key: KeyCategory},
	{Label: "Guests", Key: KeyGuests},
	{Label: "Perks", Key: KeyPerks},
	{Label: "Trade-In Value", Key: KeyTradeInValue},
}

// LabelMap resolves display labels to column keys, case-insensitively.
type LabelMap map[string]string

// NewLabelMap builds a LabelMap from headers; labels are lowercased so
// lookups are case-insensitive.
func NewLabelMap(headers []Header) LabelMap {
	m := make(LabelMap, len(headers))
	for _, h := range headers {
		if h.Label != "" && h.Key != "" {
			m[strings.ToLower(h.Label)] = h.Key
		}
	}
	return m
}

// Key resolves a display label to its column key.
func (m LabelMap) Key(label string) (string, bool) {
	key, ok := m[strings.ToLower(strings.TrimSpace(label))]
	return key, ok
}

// Value computes the display value of a logical column for an offer+sailing
// pair. Unknown keys fall back to a direct property lookup in the offer's
// extra fields. Missing values render as "-" to match the table display.
func Value(offer *models.ProfileOffer, sailing *models.ProfileSailing, key string) string {
	co := offer.CampaignOffer

	switch key {
	case KeyOfferCode:
		if co == nil {
			return ""
		}
		return co.OfferCode
	case KeyOfferDate:
		if co == nil {
			return "-"
		}
		return FormatDate(co.StartDate)
	case KeyExpiration:
		if co == nil {
			return "-"
		}
		return FormatDate(co.ReserveByDate)
	case KeyOfferName:
		if co == nil || co.Name == "" {
			return "-"
		}
		return co.Name
	case KeyShipClass:
		if sailing == nil {
			return "-"
		}
		return ShipClass(sailing.ShipName)
	case KeyShip:
		if sailing == nil || sailing.ShipName == "" {
			return "-"
		}
		return sailing.ShipName
	case KeySailDate:
		if sailing == nil {
			return "-"
		}
		return FormatDate(sailing.SailDate)
	case KeyDeparturePort:
		if sailing == nil || sailing.DeparturePort == nil || sailing.DeparturePort.Name == "" {
			return "-"
		}
		return sailing.DeparturePort.Name
	case KeyNights:
		nights, _ := ParseItinerary(itineraryOf(sailing))
		return nights
	case KeyDestination:
		_, destination := ParseItinerary(itineraryOf(sailing))
		return destination
	case KeyCategory:
		return CategoryText(sailing)
	case KeyGuests:
		return GuestsText(sailing)
	case KeyPerks:
		return PerksText(offer, sailing)
	case KeyTradeInValue:
		if co == nil {
			return "-"
		}
		return FormatTradeValue(co.TradeInValue)
	default:
		return offer.Extra[key]
	}
}

// itineraryOf prefers the itinerary description and falls back to the sailing
// type name.
func itineraryOf(sailing *models.ProfileSailing) string {
	if sailing == nil {
		return ""
	}
	if sailing.ItineraryDescription != "" {
		return sailing.ItineraryDescription
	}
	if sailing.SailingType != nil {
		return sailing.SailingType.Name
	}
	return ""
}

// itineraryRe accepts "7 NIGHT ...", "5N ...", "3 NTS - ..." style headers.
var itineraryRe = regexp.MustCompile(`(?i)^\s*(\d+)\s*N(?:IGHT|T)?S?\b[\s\-.,]*([\s\S]*)$`)

// ParseItinerary extracts the nights count and destination from an itinerary
// description. Unrecognized strings return the whole text as the destination.
func ParseItinerary(itinerary string) (nights, destination string) {
	if itinerary == "" {
		return "-", "-"
	}
	m := itineraryRe.FindStringSubmatch(itinerary)
	if m == nil {
		return "-", itinerary
	}
	destination = strings.TrimSpace(m[2])
	if destination == "" {
		destination = "-"
	}
	return m[1], destination
}

// FormatDate renders a raw ISO-ish date string as MM/DD/YY without going
// through time parsing, so zone offsets in the source never shift the day.
func FormatDate(dateStr string) string {
	if dateStr == "" {
		return "-"
	}
	datePart := strings.SplitN(dateStr, "T", 2)[0]
	parts := strings.Split(datePart, "-")
	if len(parts) != 3 || len(parts[0]) != 4 {
		return dateStr
	}
	year := parts[0][len(parts[0])-2:]
	return fmt.Sprintf("%s/%s/%s", parts[1], parts[2], year)
}

// CategoryText renders the room category with a GTY suffix for guaranteed
// cabins.
func CategoryText(sailing *models.ProfileSailing) string {
	if sailing == nil {
		return "-"
	}
	room := sailing.RoomType
	if sailing.IsGTY {
		if room != "" {
			room += " GTY"
		} else {
			room = "GTY"
		}
	}
	if room == "" {
		return "-"
	}
	return room
}

// GuestsText renders the guest-count string, including any dollars-off and
// freeplay amounts attached to the sailing.
func GuestsText(sailing *models.ProfileSailing) string {
	if sailing == nil {
		return "-"
	}
	text := "2 Guests"
	if sailing.IsGOBO {
		text = "1 Guest"
	}
	if sailing.IsDollarsOff && sailing.DollarsOffAmount > 0 {
		text += fmt.Sprintf(" + $%d off", sailing.DollarsOffAmount)
	}
	if sailing.IsFreeplay && sailing.FreeplayAmount > 0 {
		text += fmt.Sprintf(" + $%d freeplay", sailing.FreeplayAmount)
	}
	return text
}

// PerksText joins the distinct perk names of the offer plus any next-cruise
// bonus perk on the sailing.
func PerksText(offer *models.ProfileOffer, sailing *models.ProfileSailing) string {
	seen := make(map[string]struct{})
	var names []string

	add := func(perk models.Perk) {
		name := perk.PerkName
		if name == "" {
			name = perk.PerkCode
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	if offer != nil && offer.CampaignOffer != nil {
		for _, perk := range offer.CampaignOffer.PerkCodes {
			add(perk)
		}
	}
	if sailing != nil && sailing.NextCruiseBonusPerk != nil {
		add(*sailing.NextCruiseBonusPerk)
	}

	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, " | ")
}

// FormatTradeValue renders a trade-in value as "$1,234" or "$1,234.56".
// A zero value renders as "-" since the source data uses absence, not zero.
func FormatTradeValue(value decimal.Decimal) string {
	if value.IsZero() {
		return "-"
	}
	if value.Equal(value.Truncate(0)) {
		return "$" + groupThousands(value.Truncate(0).String())
	}
	fixed := value.StringFixed(2)
	dot := strings.Index(fixed, ".")
	return "$" + groupThousands(fixed[:dot]) + fixed[dot:]
}

// groupThousands inserts comma separators into a plain integer string.
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
