// Package merger consolidates two loyalty profiles into one. A sailing
// survives the merge only when both profiles carry it under the same
// campaign code, ship, sail date and single-guest flag; surviving sailings
// are re-categorized by fixed cabin-hierarchy tables. The merge is
// deterministic and side-effect-free on its inputs.
package merger

import (
	"strings"
	"time"

	"offer-reconciliation-service/internal/models"
	"offer-reconciliation-service/internal/normalize"
	"offer-reconciliation-service/pkg/logger"
)

// Cabin category hierarchies, lowest tier first. Celebrity ships use a
// different ladder than the default line.
var (
	celebrityOrder = []string{"Interior", "Ocean View", "Veranda", "Concierge"}
	defaultOrder   = []string{"Interior", "Ocean View", "Balcony", "Junior Suite"}
)

// twoRoomPhrase vetoes a pairing outright: two-room offers cannot be
// consolidated with anything.
const twoRoomPhrase = "two room offer"

// mergedGuests is the guest text forced onto every surviving sailing.
const mergedGuests = "2 guests"

// Summary reports what a merge did.
type Summary struct {
	SailingsA       int
	Kept            int
	DroppedUnpaired int
	DroppedTwoRoom  int
	Upgrades        int
	Downgrades      int
	OffersPruned    int
}

// Merger merges profile pairs.
type Merger struct {
	log logger.Logger
	now func() time.Time
}

// New creates a merger. The clock is injectable for tests.
func New(log logger.Logger) *Merger {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Merger{log: log.WithComponent("merger"), now: time.Now}
}

// pairing is one B-side sailing with its offer context.
type pairing struct {
	offer   *models.ProfileOffer
	sailing *models.ProfileSailing
}

// Merge consolidates profile A with profile B. A is deep-copied before any
// mutation; both inputs are left untouched. A nil side returns the other
// side unchanged.
func (m *Merger) Merge(a, b *models.Profile) (*models.Profile, *Summary) {
	if a == nil && b == nil {
		return nil, &Summary{}
	}
	if a == nil {
		return b, &Summary{}
	}
	if b == nil {
		return a, &Summary{}
	}

	merged := a.Clone()
	summary := &Summary{}
	index := indexSailings(b)

	kept := merged.Data.Offers[:0]
	for _, offer := range merged.Data.Offers {
		if offer == nil || offer.CampaignOffer == nil {
			summary.OffersPruned++
			continue
		}
		m.mergeOffer(offer, index, summary)
		if len(offer.CampaignOffer.Sailings) == 0 {
			summary.OffersPruned++
			continue
		}
		kept = append(kept, offer)
	}
	merged.Data.Offers = kept

	merged.Merged = true
	merged.MergedFrom = mergedFrom(a, b)
	merged.SavedAt = m.now().UnixMilli()

	m.log.WithFields(logger.Fields{
		"kept":     summary.Kept,
		"unpaired": summary.DroppedUnpaired,
		"twoRoom":  summary.DroppedTwoRoom,
		"upgrades": summary.Upgrades,
		"pruned":   summary.OffersPruned,
	}).Info("profiles merged")

	return merged, summary
}

// mergeOffer filters one A-side offer's sailings against B's index and
// re-categorizes the survivors in place.
func (m *Merger) mergeOffer(offer *models.ProfileOffer, index map[string]pairing, summary *Summary) {
	nameA := strings.ToLower(offerName(offer))
	codeA := offerCode(offer)

	kept := offer.CampaignOffer.Sailings[:0]
	for _, sailing := range offer.CampaignOffer.Sailings {
		if sailing == nil {
			continue
		}
		summary.SailingsA++

		match, ok := index[sailingKey(offer.CampaignCode, sailing)]
		if !ok {
			summary.DroppedUnpaired++
			continue
		}
		nameB := strings.ToLower(offerName(match.offer))
		if strings.Contains(nameA, twoRoomPhrase) || strings.Contains(nameB, twoRoomPhrase) {
			summary.DroppedTwoRoom++
			continue
		}

		order := categoryOrder(offer, match.offer)
		if sailing.IsGOBO || match.sailing.IsGOBO {
			m.downgrade(offer, sailing, match.sailing, order)
			summary.Downgrades++
		} else {
			m.upgrade(offer, sailing, match.sailing, codeA, offerCode(match.offer), order)
			summary.Upgrades++
		}
		offer.Guests = mergedGuests
		summary.Kept++
		kept = append(kept, sailing)
	}
	offer.CampaignOffer.Sailings = kept
}

// downgrade handles the single-guest pairing: the flag is cleared and the
// merged category is the lower-ranked of the two sides. A category missing
// from the ladder ranks below everything, so the result falls back to the
// bottom tier.
func (m *Merger) downgrade(offer *models.ProfileOffer, a, b *models.ProfileSailing, order []string) {
	a.IsGOBO = false
	idx := minIndex(categoryIndex(order, a.RoomType), categoryIndex(order, b.RoomType))
	if idx < 0 {
		idx = 0
	}
	a.RoomType = order[idx]
	offer.Category = a.RoomType
}

// upgrade handles the standard pairing: take the higher-ranked category
// and bump it one tier unless already at the top. Categories outside the
// ladder leave the room type unchanged. Differing offer codes are combined
// with " / ".
func (m *Merger) upgrade(offer *models.ProfileOffer, a, b *models.ProfileSailing, codeA, codeB string, order []string) {
	if normalize.OfferCode(codeA) != normalize.OfferCode(codeB) {
		offer.CampaignOffer.OfferCode = codeA + " / " + codeB
	}
	idx := maxIndex(categoryIndex(order, a.RoomType), categoryIndex(order, b.RoomType))
	if idx >= 0 {
		if idx < len(order)-1 {
			idx++
		}
		a.RoomType = order[idx]
		offer.Category = a.RoomType
	}
}

// indexSailings keys every B-side sailing by campaign code, ship, sail
// date and single-guest flag.
func indexSailings(b *models.Profile) map[string]pairing {
	index := make(map[string]pairing)
	for _, offer := range b.Data.Offers {
		if offer == nil || offer.CampaignOffer == nil {
			continue
		}
		for _, sailing := range offer.CampaignOffer.Sailings {
			if sailing == nil {
				continue
			}
			index[sailingKey(offer.CampaignCode, sailing)] = pairing{offer: offer, sailing: sailing}
		}
	}
	return index
}

func sailingKey(campaignCode string, s *models.ProfileSailing) string {
	gobo := "false"
	if s.IsGOBO {
		gobo = "true"
	}
	return campaignCode + "|" + s.ShipName + "|" + s.SailDate + "|" + gobo
}

// categoryOrder selects the cabin ladder for a pairing: Celebrity when
// either side's brand or offer code mentions it, the default line
// otherwise.
func categoryOrder(a, b *models.ProfileOffer) []string {
	if isCelebrity(a) || isCelebrity(b) {
		return celebrityOrder
	}
	return defaultOrder
}

func isCelebrity(offer *models.ProfileOffer) bool {
	brand := offer.Brand
	if brand == "" && offer.CampaignOffer != nil {
		brand = offer.CampaignOffer.Brand
	}
	if strings.Contains(strings.ToLower(brand), "celebrity") {
		return true
	}
	return strings.Contains(strings.ToLower(offerCode(offer)), "celebrity")
}

func offerCode(offer *models.ProfileOffer) string {
	if offer.CampaignOffer != nil {
		return offer.CampaignOffer.OfferCode
	}
	return ""
}

func offerName(offer *models.ProfileOffer) string {
	if offer.CampaignOffer != nil {
		return offer.CampaignOffer.Name
	}
	return ""
}

func categoryIndex(order []string, roomType string) int {
	for i, c := range order {
		if c == roomType {
			return i
		}
	}
	return -1
}

func minIndex(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxIndex(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func mergedFrom(a, b *models.Profile) []string {
	var emails []string
	for _, e := range []string{a.Data.Email, b.Data.Email} {
		if e != "" {
			emails = append(emails, e)
		}
	}
	return emails
}
