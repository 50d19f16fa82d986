package parsers

import (
	"os"
	"path/filepath"
	"testing"

	"offer-reconciliation-service/pkg/errors"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadOffersBareArray(t *testing.T) {
	path := writeTempFile(t, "offers.json", `[
		{"offerCode": "ABC123", "name": "Summer Deal", "ships": ["Oasis of the Seas"], "tradeInValue": "1250.50"},
		{"offerCode": "DEF456", "sailingDates": ["2025-06-15"]}
	]`)

	offers, stats, err := NewOfferLoader(nil).LoadOffers(path)
	if err != nil {
		t.Fatalf("LoadOffers() error: %v", err)
	}
	if len(offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(offers))
	}
	if stats.RecordsValid != 2 || stats.ErrorCount != 0 {
		t.Errorf("stats = %s", stats)
	}
	if offers[0].OfferCode != "ABC123" {
		t.Errorf("offerCode = %q", offers[0].OfferCode)
	}
	if offers[0].TradeInValue.String() != "1250.5" {
		t.Errorf("tradeInValue = %s", offers[0].TradeInValue)
	}
}

func TestLoadOffersWrappedObject(t *testing.T) {
	path := writeTempFile(t, "offers.json", `{"offers": [{"offerCode": "ABC123"}]}`)

	offers, _, err := NewOfferLoader(nil).LoadOffers(path)
	if err != nil {
		t.Fatalf("LoadOffers() error: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(offers))
	}
}

func TestLoadOffersSkipsInvalidRecords(t *testing.T) {
	// The middle record has neither code nor name and fails validation.
	path := writeTempFile(t, "offers.json", `[
		{"offerCode": "ABC123"},
		{"ships": ["Oasis of the Seas"]},
		{"name": "Good Deal"}
	]`)

	offers, stats, err := NewOfferLoader(nil).LoadOffers(path)
	if err != nil {
		t.Fatalf("LoadOffers() error: %v", err)
	}
	if len(offers) != 2 {
		t.Fatalf("expected 2 valid offers, got %d", len(offers))
	}
	if stats.Skipped != 1 || !stats.HasErrors() {
		t.Errorf("stats = %s", stats)
	}
	if stats.Errors[0].Index != 1 {
		t.Errorf("error index = %d, want 1", stats.Errors[0].Index)
	}
}

func TestLoadOffersStrictMode(t *testing.T) {
	path := writeTempFile(t, "offers.json", `[{"ships": ["Oasis of the Seas"]}]`)

	config := &LoadConfig{SkipInvalid: false}
	_, _, err := NewOfferLoader(config).LoadOffers(path)
	if err == nil {
		t.Fatal("strict mode should fail on invalid records")
	}
}

func TestLoadOffersFileErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantCode errors.ErrorCode
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.json"), errors.CodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewOfferLoader(nil).LoadOffers(tt.path)
			if !errors.IsCode(err, tt.wantCode) {
				t.Errorf("error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestLoadOffersMalformedDocument(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not JSON", `not json at all`},
		{"object without offers key", `{"records": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, "offers.json", tt.content)
			_, _, err := NewOfferLoader(nil).LoadOffers(path)
			if err == nil {
				t.Fatal("expected an error for malformed document")
			}
			if !errors.IsCategory(err, errors.CategoryParse) {
				t.Errorf("error = %v, want parse category", err)
			}
		})
	}
}

func TestLoadSailings(t *testing.T) {
	path := writeTempFile(t, "sailings.json", `{"sailings": [
		{"shipName": "Oasis of the Seas", "departureDate": "2025-06-15", "nights": 7},
		{"shipName": "Wonder of the Seas", "sailDate": "6/22/2025"},
		{"nights": 7}
	]}`)

	sailings, stats, err := NewSailingLoader(nil).LoadSailings(path)
	if err != nil {
		t.Fatalf("LoadSailings() error: %v", err)
	}
	if len(sailings) != 2 {
		t.Fatalf("expected 2 valid sailings, got %d", len(sailings))
	}
	if stats.Skipped != 1 {
		t.Errorf("stats = %s", stats)
	}
	if sailings[1].DepartureDate != "6/22/2025" {
		t.Errorf("sailDate alias not decoded: %q", sailings[1].DepartureDate)
	}
}

func TestLoadProfile(t *testing.T) {
	path := writeTempFile(t, "profile.json", `{
		"data": {
			"email": "a@example.com",
			"offers": [
				{
					"campaignCode": "C1",
					"campaignOffer": {
						"offerCode": "ROYAL1",
						"sailings": [{"shipName": "Oasis of the Seas", "sailDate": "2025-06-15"}]
					}
				}
			]
		}
	}`)

	profile, err := NewProfileLoader().LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile() error: %v", err)
	}
	if profile.Data.Email != "a@example.com" {
		t.Errorf("email = %q", profile.Data.Email)
	}
	if len(profile.Data.Offers) != 1 || profile.Data.Offers[0].CampaignCode != "C1" {
		t.Fatalf("offers not decoded: %+v", profile.Data.Offers)
	}
}

func TestLoadProfileInvalidJSON(t *testing.T) {
	path := writeTempFile(t, "profile.json", `{broken`)
	_, err := NewProfileLoader().LoadProfile(path)
	if !errors.IsCode(err, errors.CodeInvalidJSON) {
		t.Errorf("error = %v, want %s", err, errors.CodeInvalidJSON)
	}
}

func TestLoadSearchState(t *testing.T) {
	path := writeTempFile(t, "search.json", `{
		"enabled": true,
		"previewId": "p2",
		"predicates": [
			{"id": "p1", "fieldKey": "ship", "operator": "in", "values": ["OASIS OF THE SEAS"], "complete": true},
			{"id": "p2", "fieldKey": "category", "operator": "contains", "values": ["BAL"], "complete": false}
		]
	}`)

	state, err := NewProfileLoader().LoadSearchState(path)
	if err != nil {
		t.Fatalf("LoadSearchState() error: %v", err)
	}
	if !state.Enabled || state.PreviewID != "p2" {
		t.Errorf("state = %+v", state)
	}
	if len(state.Predicates) != 2 || state.Predicates[0].Operator != "in" {
		t.Fatalf("predicates not decoded: %+v", state.Predicates)
	}
}

func TestParseStatsErrorSampleCap(t *testing.T) {
	stats := NewParseStats()
	for i := 0; i < 5; i++ {
		stats.AddError(&RecordError{Index: i, Field: "offer", Message: "bad"}, 3)
	}
	if stats.ErrorCount != 5 {
		t.Errorf("ErrorCount = %d, want 5", stats.ErrorCount)
	}
	if len(stats.Errors) != 3 {
		t.Errorf("retained samples = %d, want 3", len(stats.Errors))
	}
}
