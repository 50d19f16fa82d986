package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Profile is one loyalty account's stored blob: the account email plus the
// offers (and their sailings) scraped for it. A merged profile additionally
// carries the merge stamps.
type Profile struct {
	Data       ProfileData `json:"data"`
	Merged     bool        `json:"merged,omitempty"`
	MergedFrom []string    `json:"mergedFrom,omitempty"`
	SavedAt    int64       `json:"savedAt,omitempty"`
}

// ProfileData holds the account payload.
type ProfileData struct {
	Email  string          `json:"email,omitempty"`
	Offers []*ProfileOffer `json:"offers"`
}

// ProfileOffer is one campaign attached to a profile. Unknown scalar fields
// from the stored blob are preserved in Extra so predicate filtering can fall
// back to a direct property lookup for unrecognized column keys.
type ProfileOffer struct {
	CampaignCode  string            `json:"campaignCode,omitempty"`
	Brand         string            `json:"brand,omitempty"`
	Category      string            `json:"category,omitempty"`
	Guests        string            `json:"guests,omitempty"`
	CampaignOffer *CampaignOffer    `json:"campaignOffer,omitempty"`
	Extra         map[string]string `json:"-"`
}

// profileOfferKnown lists the keys decoded into typed fields; everything else
// lands in Extra.
var profileOfferKnown = map[string]struct{}{
	"campaignCode": {}, "brand": {}, "category": {}, "guests": {}, "campaignOffer": {},
}

// UnmarshalJSON decodes the typed fields and captures leftover scalar fields.
func (po *ProfileOffer) UnmarshalJSON(data []byte) error {
	type Alias ProfileOffer
	aux := (*Alias)(po)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, msg := range raw {
		if _, known := profileOfferKnown[key]; known {
			continue
		}
		var s string
		if err := json.Unmarshal(msg, &s); err == nil {
			if po.Extra == nil {
				po.Extra = make(map[string]string)
			}
			po.Extra[key] = s
			continue
		}
		var n json.Number
		if err := json.Unmarshal(msg, &n); err == nil {
			if po.Extra == nil {
				po.Extra = make(map[string]string)
			}
			po.Extra[key] = n.String()
		}
	}
	return nil
}

// CampaignOffer is the campaign detail record under a profile offer.
type CampaignOffer struct {
	OfferCode     string            `json:"offerCode,omitempty"`
	Name          string            `json:"name,omitempty"`
	Brand         string            `json:"brand,omitempty"`
	StartDate     string            `json:"startDate,omitempty"`
	ReserveByDate string            `json:"reserveByDate,omitempty"`
	TradeInValue  decimal.Decimal   `json:"tradeInValue,omitempty"`
	PerkCodes     []Perk            `json:"perkCodes,omitempty"`
	Sailings      []*ProfileSailing `json:"sailings"`
}

// NamedRef is a nested object carrying only a display name.
type NamedRef struct {
	Name string `json:"name,omitempty"`
}

// ProfileSailing is one sailing attached to a profile campaign, including the
// single-guest (GOBO) flag and the perk amounts the derived guest column
// renders.
type ProfileSailing struct {
	ShipName             string    `json:"shipName,omitempty"`
	SailDate             string    `json:"sailDate,omitempty"`
	RoomType             string    `json:"roomType,omitempty"`
	IsGOBO               bool      `json:"isGOBO,omitempty"`
	IsGTY                bool      `json:"isGTY,omitempty"`
	IsDollarsOff         bool      `json:"isDOLLARSOFF,omitempty"`
	DollarsOffAmount     int64     `json:"DOLLARSOFF_AMT,omitempty"`
	IsFreeplay           bool      `json:"isFREEPLAY,omitempty"`
	FreeplayAmount       int64     `json:"FREEPLAY_AMT,omitempty"`
	ItineraryDescription string    `json:"itineraryDescription,omitempty"`
	DeparturePort        *NamedRef `json:"departurePort,omitempty"`
	SailingType          *NamedRef `json:"sailingType,omitempty"`
	NextCruiseBonusPerk  *Perk     `json:"nextCruiseBonusPerkCode,omitempty"`
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	out := &Profile{
		Data:    ProfileData{Email: p.Data.Email},
		Merged:  p.Merged,
		SavedAt: p.SavedAt,
	}
	if p.MergedFrom != nil {
		out.MergedFrom = append([]string(nil), p.MergedFrom...)
	}
	for _, offer := range p.Data.Offers {
		out.Data.Offers = append(out.Data.Offers, offer.Clone())
	}
	return out
}

// Clone returns a deep copy of the profile offer.
func (po *ProfileOffer) Clone() *ProfileOffer {
	if po == nil {
		return nil
	}
	out := &ProfileOffer{
		CampaignCode: po.CampaignCode,
		Brand:        po.Brand,
		Category:     po.Category,
		Guests:       po.Guests,
	}
	if po.Extra != nil {
		out.Extra = make(map[string]string, len(po.Extra))
		for k, v := range po.Extra {
			out.Extra[k] = v
		}
	}
	out.CampaignOffer = po.CampaignOffer.Clone()
	return out
}

// Clone returns a deep copy of the campaign offer.
func (co *CampaignOffer) Clone() *CampaignOffer {
	if co == nil {
		return nil
	}
	out := &CampaignOffer{
		OfferCode:     co.OfferCode,
		Name:          co.Name,
		Brand:         co.Brand,
		StartDate:     co.StartDate,
		ReserveByDate: co.ReserveByDate,
		TradeInValue:  co.TradeInValue,
	}
	if co.PerkCodes != nil {
		out.PerkCodes = append([]Perk(nil), co.PerkCodes...)
	}
	for _, sailing := range co.Sailings {
		out.Sailings = append(out.Sailings, sailing.Clone())
	}
	return out
}

// Clone returns a deep copy of the profile sailing.
func (ps *ProfileSailing) Clone() *ProfileSailing {
	if ps == nil {
		return nil
	}
	out := *ps
	if ps.DeparturePort != nil {
		port := *ps.DeparturePort
		out.DeparturePort = &port
	}
	if ps.SailingType != nil {
		st := *ps.SailingType
		out.SailingType = &st
	}
	if ps.NextCruiseBonusPerk != nil {
		perk := *ps.NextCruiseBonusPerk
		out.NextCruiseBonusPerk = &perk
	}
	return &out
}
