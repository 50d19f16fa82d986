// Package models defines the core data structures for the offer
// reconciliation engine: the cruise inventory (sailings), promotional offers
// with their eligibility criteria, and the linked loyalty profiles consumed
// by the merger.
//
// Source data arrives from spreadsheets, scraped pages and stored blobs, so
// the JSON codecs here are deliberately tolerant: field-name aliases are
// accepted on input, dates stay raw strings until the normalize package
// resolves them, and monetary values accept both numbers and formatted
// strings.
package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Sailing represents one bookable cruise departure from the user's inventory.
// No stable source id is assumed; dedup identity is the composite of ship,
// date, itinerary and linked offer code/name.
type Sailing struct {
	ShipName             string `json:"shipName"`
	DepartureDate        string `json:"departureDate"`
	ReturnDate           string `json:"returnDate,omitempty"`
	Nights               int    `json:"nights,omitempty"`
	DeparturePort        string `json:"departurePort,omitempty"`
	Category             string `json:"category,omitempty"`
	ItineraryDescription string `json:"itineraryDescription,omitempty"`
	OfferCode            string `json:"offerCode,omitempty"`
	OfferName            string `json:"offerName,omitempty"`
}

// sailingAliases maps the spreadsheet column spellings seen in source data
// onto canonical Sailing fields.
var sailingAliases = map[string][]string{
	"shipName":             {"shipName", "ship", "Ship", "Ship Name", "SHIP NAME"},
	"departureDate":        {"departureDate", "Sailing Date", "Sail Date", "Start Date", "startDate", "sailDate"},
	"returnDate":           {"returnDate", "Return Date", "End Date", "endDate"},
	"nights":               {"nights", "Nights", "NIGHT", "Nite"},
	"departurePort":        {"departurePort", "Departure Port", "port"},
	"category":             {"category", "Category", "roomType", "Room Type"},
	"itineraryDescription": {"itineraryDescription", "Itinerary", "itinerary"},
	"offerCode":            {"offerCode", "Offer Code", "OFFER CODE"},
	"offerName":            {"offerName", "Offer Name", "OFFER NAME"},
}

// UnmarshalJSON accepts any of the known column-name aliases for each field.
func (s *Sailing) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.ShipName = firstString(raw, sailingAliases["shipName"]...)
	s.DepartureDate = firstString(raw, sailingAliases["departureDate"]...)
	s.ReturnDate = firstString(raw, sailingAliases["returnDate"]...)
	s.Nights = firstInt(raw, sailingAliases["nights"]...)
	s.DeparturePort = firstString(raw, sailingAliases["departurePort"]...)
	s.Category = firstString(raw, sailingAliases["category"]...)
	s.ItineraryDescription = firstString(raw, sailingAliases["itineraryDescription"]...)
	s.OfferCode = firstString(raw, sailingAliases["offerCode"]...)
	s.OfferName = firstString(raw, sailingAliases["offerName"]...)

	return nil
}

// Validate performs basic validation on the Sailing
func (s *Sailing) Validate() error {
	if strings.TrimSpace(s.ShipName) == "" && strings.TrimSpace(s.DepartureDate) == "" {
		return fmt.Errorf("sailing must have a ship name or a departure date")
	}
	return nil
}

// String returns a string representation of the Sailing
func (s *Sailing) String() string {
	return fmt.Sprintf("Sailing{Ship: %s, Departs: %s, Offer: %s}",
		s.ShipName, s.DepartureDate, s.OfferCode)
}

// Perk is a named benefit attached to an offer.
type Perk struct {
	PerkCode string `json:"perkCode,omitempty"`
	PerkName string `json:"perkName,omitempty"`
}

// Offer represents a promotional record with eligibility criteria. Offers are
// immutable once loaded; eligibility is re-evaluated against the current
// sailing list on every engine run and never cached as matched.
type Offer struct {
	OfferCode      string          `json:"offerCode,omitempty"`
	Name           string          `json:"offerName,omitempty"`
	Ships          []string        `json:"ships,omitempty"`
	SailingDates   []string        `json:"sailingDates,omitempty"`
	StartDate      string          `json:"offerStartDate,omitempty"`
	EndDate        string          `json:"offerEndDate,omitempty"`
	ReceivedDate   string          `json:"offerReceivedDate,omitempty"`
	ExpirationDate string          `json:"expirationDate,omitempty"`
	TradeInValue   decimal.Decimal `json:"tradeInValue,omitempty"`
	Perks          []Perk          `json:"perks,omitempty"`
}

var offerAliases = map[string][]string{
	"offerCode":      {"offerCode", "Offer Code", "OFFER CODE"},
	"offerName":      {"offerName", "Offer Name", "OFFER NAME", "name"},
	"ships":          {"ships", "Ships", "SHIPS"},
	"ship":           {"Ship", "Ship Name", "ship"},
	"sailingDates":   {"sailingDates", "Sailing Dates", "SAILING DATES"},
	"sailingDate":    {"Sail Date", "Sailing Date", "Start Date", "startDate"},
	"startDate":      {"offerStartDate", "Offer Start Date", "OFFER START DATE"},
	"endDate":        {"offerEndDate", "Offer End Date", "OFFER END DATE"},
	"receivedDate":   {"offerReceivedDate", "Offer Received Date", "OFFER RECEIVED DATE"},
	"expirationDate": {"expirationDate", "expires", "Expires", "EXPIRES", "Expiration Date", "OFFER EXPIRE DATE"},
	"tradeInValue":   {"tradeInValue", "Trade-In Value", "TRADE IN VALUE", "compValue"},
	"perks":          {"perks", "perkCodes"},
}

// UnmarshalJSON accepts the column-name aliases found in real exports.
// A single-valued "Ship" or "Sail Date" column is folded into the list form
// of the criterion so the matcher sees one shape.
func (o *Offer) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	o.OfferCode = firstString(raw, offerAliases["offerCode"]...)
	o.Name = firstString(raw, offerAliases["offerName"]...)

	o.Ships = firstStringList(raw, offerAliases["ships"]...)
	if len(o.Ships) == 0 {
		if single := firstString(raw, offerAliases["ship"]...); single != "" {
			o.Ships = []string{single}
		}
	}

	o.SailingDates = firstStringList(raw, offerAliases["sailingDates"]...)
	if single := firstString(raw, offerAliases["sailingDate"]...); single != "" {
		o.SailingDates = append(o.SailingDates, single)
	}

	o.StartDate = firstString(raw, offerAliases["startDate"]...)
	o.EndDate = firstString(raw, offerAliases["endDate"]...)
	o.ReceivedDate = firstString(raw, offerAliases["receivedDate"]...)
	o.ExpirationDate = firstString(raw, offerAliases["expirationDate"]...)
	o.TradeInValue = firstDecimal(raw, offerAliases["tradeInValue"]...)

	for _, key := range offerAliases["perks"] {
		if msg, ok := raw[key]; ok {
			var perks []Perk
			if err := json.Unmarshal(msg, &perks); err == nil {
				o.Perks = perks
				break
			}
		}
	}

	return nil
}

// MarshalJSON writes the canonical field names with the trade-in value as a
// plain string.
func (o *Offer) MarshalJSON() ([]byte, error) {
	type Alias Offer
	out := struct {
		*Alias
		TradeInValue string `json:"tradeInValue,omitempty"`
	}{
		Alias: (*Alias)(o),
	}
	if !o.TradeInValue.IsZero() {
		out.TradeInValue = o.TradeInValue.String()
	}
	return json.Marshal(out)
}

// Validate performs basic validation on the Offer
func (o *Offer) Validate() error {
	if strings.TrimSpace(o.OfferCode) == "" && strings.TrimSpace(o.Name) == "" {
		return fmt.Errorf("offer must have a code or a name")
	}
	return nil
}

// HasCriteria reports whether the offer carries any usable matching criteria.
// An offer without criteria matches nothing, by design.
func (o *Offer) HasCriteria() bool {
	return strings.TrimSpace(o.OfferCode) != "" ||
		strings.TrimSpace(o.Name) != "" ||
		len(o.Ships) > 0 ||
		len(o.SailingDates) > 0 ||
		strings.TrimSpace(o.StartDate) != "" ||
		strings.TrimSpace(o.EndDate) != "" ||
		strings.TrimSpace(o.ReceivedDate) != "" ||
		strings.TrimSpace(o.ExpirationDate) != ""
}

// String returns a string representation of the Offer
func (o *Offer) String() string {
	return fmt.Sprintf("Offer{Code: %s, Name: %s, Ships: %d, Dates: %d}",
		o.OfferCode, o.Name, len(o.Ships), len(o.SailingDates))
}

// firstString returns the first present key decoded as a string. Numbers and
// booleans are stringified; null and missing keys yield "".
func firstString(raw map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		msg, ok := raw[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(msg, &s); err == nil {
			if strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(msg, &n); err == nil {
			return n.String()
		}
	}
	return ""
}

// firstInt returns the first present key decoded as an int, accepting both
// numeric and numeric-string forms.
func firstInt(raw map[string]json.RawMessage, keys ...string) int {
	for _, key := range keys {
		msg, ok := raw[key]
		if !ok {
			continue
		}
		var n int
		if err := json.Unmarshal(msg, &n); err == nil {
			return n
		}
		var s string
		if err := json.Unmarshal(msg, &s); err == nil {
			var parsed int
			if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &parsed); err == nil {
				return parsed
			}
		}
	}
	return 0
}

// firstStringList returns the first present key decoded as a string slice,
// accepting a bare string as a single-element list.
func firstStringList(raw map[string]json.RawMessage, keys ...string) []string {
	for _, key := range keys {
		msg, ok := raw[key]
		if !ok {
			continue
		}
		var list []string
		if err := json.Unmarshal(msg, &list); err == nil {
			var cleaned []string
			for _, item := range list {
				if strings.TrimSpace(item) != "" {
					cleaned = append(cleaned, strings.TrimSpace(item))
				}
			}
			if len(cleaned) > 0 {
				return cleaned
			}
			continue
		}
		var s string
		if err := json.Unmarshal(msg, &s); err == nil && strings.TrimSpace(s) != "" {
			return []string{strings.TrimSpace(s)}
		}
	}
	return nil
}

// firstDecimal returns the first present key decoded as a decimal, accepting
// numbers and formatted strings such as "$1,234.50".
func firstDecimal(raw map[string]json.RawMessage, keys ...string) decimal.Decimal {
	for _, key := range keys {
		msg, ok := raw[key]
		if !ok {
			continue
		}
		var n json.Number
		if err := json.Unmarshal(msg, &n); err == nil {
			if d, err := decimal.NewFromString(n.String()); err == nil {
				return d
			}
		}
		var s string
		if err := json.Unmarshal(msg, &s); err == nil {
			cleaned := strings.Map(func(r rune) rune {
				if (r >= '0' && r <= '9') || r == '.' || r == '-' {
					return r
				}
				return -1
			}, s)
			if cleaned != "" {
				if d, err := decimal.NewFromString(cleaned); err == nil {
					return d
				}
			}
		}
	}
	return decimal.Zero
}
