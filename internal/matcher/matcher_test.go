package matcher

import (
	"testing"
	"time"

	"offer-reconciliation-service/internal/models"
	"offer-reconciliation-service/pkg/logger"
)

func newTestEngine() *Engine {
	return NewEngine(logger.Nop())
}

func makeOffer(code, name string, ships, dates []string, start, end string) *models.Offer {
	return &models.Offer{
		OfferCode:    code,
		Name:         name,
		Ships:        ships,
		SailingDates: dates,
		StartDate:    start,
		EndDate:      end,
	}
}

func makeSailing(ship, departure, code, name string) *models.Sailing {
	return &models.Sailing{
		ShipName:      ship,
		DepartureDate: departure,
		OfferCode:     code,
		OfferName:     name,
	}
}

func TestMatchOfferCodeAuthoritative(t *testing.T) {
	// The sailing's ship and date contradict every other criterion, but the
	// offer code agrees: the code tier must still admit it.
	offer := makeOffer("ABC123", "", []string{"Wonder"}, []string{"2025-06-01"}, "", "")
	sailing := makeSailing("Oasis", "2030-01-01", "abc-123", "")

	result := newTestEngine().MatchDetailed(offer, []*models.Sailing{sailing})
	if len(result.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(result.Matches))
	}
	if tier := result.Matches[0].Tier; tier != TierOfferCode {
		t.Errorf("expected tier %v, got %v", TierOfferCode, tier)
	}
	if result.Summary.CodeMatches != 1 {
		t.Errorf("expected CodeMatches=1, got %d", result.Summary.CodeMatches)
	}
}

func TestMatchCodeNormalization(t *testing.T) {
	// "ABC123" and "abc-123" normalize to the same code.
	tests := []struct {
		name        string
		offerCode   string
		sailingCode string
		want        bool
	}{
		{"case and punctuation ignored", "ABC123", "abc-123", true},
		{"spaces ignored", "AB C 123", "abc123", true},
		{"different digits", "ABC123", "ABC124", false},
	}

	engine := newTestEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := makeOffer(tt.offerCode, "", nil, nil, "", "")
			sailing := makeSailing("", "", tt.sailingCode, "")
			got := engine.Match(offer, []*models.Sailing{sailing})
			if (len(got) == 1) != tt.want {
				t.Errorf("match = %v, want %v", len(got) == 1, tt.want)
			}
		})
	}
}

func TestMatchOfferNameTier(t *testing.T) {
	offer := makeOffer("", "Summer  Splash Deal", nil, nil, "", "")
	sailing := makeSailing("", "", "", "summer splash deal")

	result := newTestEngine().MatchDetailed(offer, []*models.Sailing{sailing})
	if len(result.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(result.Matches))
	}
	if tier := result.Matches[0].Tier; tier != TierOfferName {
		t.Errorf("expected tier %v, got %v", TierOfferName, tier)
	}
}

func TestMatchShipAndDate(t *testing.T) {
	tests := []struct {
		name    string
		ships   []string
		dates   []string
		ship    string
		depart  string
		matched bool
	}{
		{"ship and exact date", []string{"Wonder of the Seas"}, []string{"2025-06-15"}, "Wonder", "2025-06-15", true},
		{"right ship wrong date", []string{"Wonder"}, []string{"2025-06-15"}, "Wonder", "2025-06-16", false},
		{"wrong ship right date", []string{"Wonder"}, []string{"2025-06-15"}, "Oasis", "2025-06-15", false},
		{"US date format in sailing", []string{"Wonder"}, []string{"2025-06-15"}, "Wonder", "6/15/2025", true},
	}

	engine := newTestEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := makeOffer("", "", tt.ships, tt.dates, "", "")
			sailing := makeSailing(tt.ship, tt.depart, "", "")
			got := engine.Match(offer, []*models.Sailing{sailing})
			if (len(got) == 1) != tt.matched {
				t.Errorf("match = %v, want %v", len(got) == 1, tt.matched)
			}
		})
	}
}

func TestMatchWindowBounds(t *testing.T) {
	// Window bounds are inclusive on both ends at day granularity.
	tests := []struct {
		name    string
		start   string
		end     string
		depart  string
		matched bool
	}{
		{"inside window", "2025-06-01", "2025-06-30", "2025-06-15", true},
		{"on start bound", "2025-06-01", "2025-06-30", "2025-06-01", true},
		{"on end bound", "2025-06-01", "2025-06-30", "2025-06-30", true},
		{"day before start", "2025-06-01", "2025-06-30", "2025-05-31", false},
		{"day after end", "2025-06-01", "2025-06-30", "2025-07-01", false},
		{"open-ended start", "", "2025-06-30", "2020-01-01", true},
		{"open-ended end", "2025-06-01", "", "2030-01-01", true},
	}

	engine := newTestEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := makeOffer("", "", nil, nil, tt.start, tt.end)
			sailing := makeSailing("Wonder", tt.depart, "", "")
			result := engine.MatchDetailed(offer, []*models.Sailing{sailing})
			if (len(result.Matches) == 1) != tt.matched {
				t.Fatalf("match = %v, want %v", len(result.Matches) == 1, tt.matched)
			}
			if tt.matched && result.Matches[0].Tier != TierWindowOnly {
				t.Errorf("expected tier %v, got %v", TierWindowOnly, result.Matches[0].Tier)
			}
		})
	}
}

func TestMatchShipAndWindow(t *testing.T) {
	offer := makeOffer("", "", []string{"Symphony of the Seas"}, nil, "2025-06-01", "2025-06-30")
	inside := makeSailing("Symphony", "2025-06-10", "", "")
	outside := makeSailing("Symphony", "2025-07-10", "", "")
	wrongShip := makeSailing("Oasis", "2025-06-10", "", "")

	result := newTestEngine().MatchDetailed(offer, []*models.Sailing{inside, outside, wrongShip})
	if len(result.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(result.Matches))
	}
	if result.Matches[0].Sailing != inside {
		t.Error("expected the in-window sailing on the eligible ship")
	}
	if result.Matches[0].Tier != TierShipAndWindow {
		t.Errorf("expected tier %v, got %v", TierShipAndWindow, result.Matches[0].Tier)
	}
}

func TestMatchShipOnlyTier(t *testing.T) {
	offer := makeOffer("", "", []string{"Celebrity Apex"}, nil, "", "")
	match := makeSailing("Apex", "2025-06-10", "", "")
	other := makeSailing("Edge", "2025-06-10", "", "")

	result := newTestEngine().MatchDetailed(offer, []*models.Sailing{match, other})
	if len(result.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(result.Matches))
	}
	if result.Matches[0].Tier != TierShipOnly {
		t.Errorf("expected tier %v, got %v", TierShipOnly, result.Matches[0].Tier)
	}
}

func TestMatchNoCriteria(t *testing.T) {
	// An offer with no usable criteria matches nothing, never everything.
	offer := &models.Offer{}
	sailings := []*models.Sailing{
		makeSailing("Wonder", "2025-06-15", "", ""),
		makeSailing("Oasis", "2025-07-15", "", ""),
	}

	result := newTestEngine().MatchDetailed(offer, sailings)
	if len(result.Matches) != 0 {
		t.Errorf("expected no matches, got %d", len(result.Matches))
	}
	if result.Summary.TotalSailings != 2 {
		t.Errorf("expected TotalSailings=2, got %d", result.Summary.TotalSailings)
	}
}

func TestMatchSortedByDeparture(t *testing.T) {
	offer := makeOffer("", "", []string{"Wonder"}, nil, "", "")
	late := makeSailing("Wonder", "2025-09-01", "", "")
	early := makeSailing("Wonder", "2025-03-01", "", "")
	unparseable := makeSailing("Wonder", "TBD", "", "")
	mid := makeSailing("Wonder", "2025-06-01", "", "")

	got := newTestEngine().Match(offer, []*models.Sailing{late, unparseable, early, mid})
	want := []*models.Sailing{early, mid, late, unparseable}
	if len(got) != len(want) {
		t.Fatalf("expected %d matches, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, got[i].DepartureDate, want[i].DepartureDate)
		}
	}
}

func TestResolveReturnFromNights(t *testing.T) {
	offer := makeOffer("", "", []string{"Wonder"}, nil, "", "")
	sailing := makeSailing("Wonder", "2025-06-15", "", "")
	sailing.Nights = 7

	result := newTestEngine().MatchDetailed(offer, []*models.Sailing{sailing})
	if len(result.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(result.Matches))
	}
	m := result.Matches[0]
	if !m.HasReturn {
		t.Fatal("expected return date to be derived from nights")
	}
	want := time.Date(2025, 6, 22, 0, 0, 0, 0, time.UTC)
	if !m.Return.Equal(want) {
		t.Errorf("return = %v, want %v", m.Return, want)
	}
}

func TestMatchStartDateFallsBackToReceived(t *testing.T) {
	offer := makeOffer("", "", nil, nil, "", "2025-06-30")
	offer.ReceivedDate = "2025-06-01"
	before := makeSailing("Wonder", "2025-05-15", "", "")
	inside := makeSailing("Wonder", "2025-06-15", "", "")

	got := newTestEngine().Match(offer, []*models.Sailing{before, inside})
	if len(got) != 1 || got[0] != inside {
		t.Fatalf("expected only the in-window sailing, got %d matches", len(got))
	}
}

func TestMatchAll(t *testing.T) {
	offers := []*models.Offer{
		makeOffer("A1", "", nil, nil, "", ""),
		nil,
		makeOffer("", "", []string{"Wonder"}, nil, "", ""),
	}
	sailings := []*models.Sailing{
		makeSailing("Wonder", "2025-06-15", "a1", ""),
	}

	results := newTestEngine().MatchAll(offers, sailings)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Summary.CodeMatches != 1 {
		t.Errorf("offer A1: expected one code match, got %d", results[0].Summary.CodeMatches)
	}
	if results[1].Summary.ShipMatches != 1 {
		t.Errorf("ship offer: expected one ship match, got %d", results[1].Summary.ShipMatches)
	}
}
