package filters

import (
	"encoding/json"
	"testing"

	"offer-reconciliation-service/internal/columns"
	"offer-reconciliation-service/internal/models"
	"offer-reconciliation-service/internal/storage"
	"offer-reconciliation-service/pkg/logger"
)

func makeRecord(code, name, ship, room string) Record {
	return Record{
		Offer: &models.ProfileOffer{
			CampaignCode: code,
			CampaignOffer: &models.CampaignOffer{
				OfferCode: code,
				Name:      name,
			},
		},
		Sailing: &models.ProfileSailing{
			ShipName: ship,
			RoomType: room,
		},
	}
}

func predicate(id, field, op string, complete bool, values ...string) *Predicate {
	return &Predicate{ID: id, FieldKey: field, Operator: op, Values: values, Complete: complete}
}

func searchState(preds ...*Predicate) *SearchState {
	return &SearchState{Enabled: true, Predicates: preds}
}

func TestSearchIdentityLaw(t *testing.T) {
	records := []Record{
		makeRecord("A1", "Deal One", "Oasis of the Seas", "Interior"),
		makeRecord("B2", "Deal Two", "Wonder of the Seas", "Balcony"),
	}
	search := NewSearch(logger.Nop())

	tests := []struct {
		name  string
		state *SearchState
	}{
		{"nil state", nil},
		{"disabled", &SearchState{Enabled: false, Predicates: []*Predicate{predicate("p1", columns.KeyShip, OpIn, true, "OASIS OF THE SEAS")}}},
		{"no predicates", searchState()},
		{"only incomplete predicates", searchState(predicate("p1", columns.KeyShip, OpIn, false, "OASIS OF THE SEAS"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := search.Apply(records, tt.state)
			if len(got) != len(records) {
				t.Errorf("expected all %d records, got %d", len(records), len(got))
			}
		})
	}
}

func TestSearchOperators(t *testing.T) {
	oasis := makeRecord("A1", "Summer Splash", "Oasis of the Seas", "Interior")
	wonder := makeRecord("B2", "Winter Deal", "Wonder of the Seas", "Balcony")
	records := []Record{oasis, wonder}
	search := NewSearch(logger.Nop())

	tests := []struct {
		name string
		pred *Predicate
		want []string
	}{
		{"in matches exact value", predicate("p", columns.KeyShip, OpIn, true, "oasis of the seas"), []string{"A1"}},
		{"in normalizes whitespace and case", predicate("p", columns.KeyShip, OpIn, true, "  OASIS OF THE SEAS  "), []string{"A1"}},
		{"not in", predicate("p", columns.KeyShip, OpNotIn, true, "Oasis of the Seas"), []string{"B2"}},
		{"contains substring", predicate("p", columns.KeyOfferName, OpContains, true, "splash"), []string{"A1"}},
		{"contains any of several values", predicate("p", columns.KeyOfferName, OpContains, true, "splash", "winter"), []string{"A1", "B2"}},
		{"not contains all values", predicate("p", columns.KeyOfferName, OpNotContains, true, "splash", "winter"), nil},
		{"starts with is contains, not a prefix test", predicate("p", columns.KeyOfferName, OpStartsWith, true, "splash"), []string{"A1"}},
		{"no value matches nothing for in", predicate("p", columns.KeyShip, OpIn, true, "Nonexistent"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := search.Apply(records, searchState(tt.pred))
			var codes []string
			for _, r := range got {
				codes = append(codes, r.Offer.CampaignCode)
			}
			if len(codes) != len(tt.want) {
				t.Fatalf("got %v, want %v", codes, tt.want)
			}
			for i := range tt.want {
				if codes[i] != tt.want[i] {
					t.Errorf("got %v, want %v", codes, tt.want)
					break
				}
			}
		})
	}
}

func TestSearchPredicatesCombineWithAnd(t *testing.T) {
	records := []Record{
		makeRecord("A1", "Summer Splash", "Oasis of the Seas", "Interior"),
		makeRecord("B2", "Summer Splash", "Wonder of the Seas", "Balcony"),
	}
	state := searchState(
		predicate("p1", columns.KeyOfferName, OpContains, true, "summer"),
		predicate("p2", columns.KeyShip, OpIn, true, "Wonder of the Seas"),
	)
	got := NewSearch(logger.Nop()).Apply(records, state)
	if len(got) != 1 || got[0].Offer.CampaignCode != "B2" {
		t.Fatalf("expected only B2, got %d records", len(got))
	}
}

func TestSearchVacuousPredicates(t *testing.T) {
	records := []Record{makeRecord("A1", "Deal", "Oasis of the Seas", "Interior")}
	search := NewSearch(logger.Nop())

	// A complete predicate with an evaluable shape is required for selection,
	// but an unknown operator is still vacuously true.
	state := searchState(predicate("p1", columns.KeyShip, "between", true, "x"))
	if got := search.Apply(records, state); len(got) != 1 {
		t.Errorf("unknown operator should be vacuously true, got %d records", len(got))
	}
}

func TestSearchPreviewPredicate(t *testing.T) {
	records := []Record{
		makeRecord("A1", "Deal", "Oasis of the Seas", "Interior"),
		makeRecord("B2", "Deal", "Wonder of the Seas", "Balcony"),
	}
	preview := predicate("draft", columns.KeyShip, OpIn, false, "Wonder of the Seas")
	state := searchState(preview)
	state.PreviewID = "draft"

	got := NewSearch(logger.Nop()).Apply(records, state)
	if len(got) != 1 || got[0].Offer.CampaignCode != "B2" {
		t.Fatalf("preview predicate should filter, got %d records", len(got))
	}
	if preview.Complete {
		t.Error("preview predicate must not be marked complete")
	}

	// A preview pointer at a complete predicate adds nothing extra.
	state.Predicates[0].Complete = true
	got = NewSearch(logger.Nop()).Apply(records, state)
	if len(got) != 1 {
		t.Errorf("expected 1 record, got %d", len(got))
	}
}

func TestSearchUnknownKeyFallsBackToExtra(t *testing.T) {
	rec := makeRecord("A1", "Deal", "Oasis of the Seas", "Interior")
	rec.Offer.Extra = map[string]string{"region": "Caribbean"}
	other := makeRecord("B2", "Deal", "Wonder of the Seas", "Balcony")

	state := searchState(predicate("p1", "region", OpIn, true, "caribbean"))
	got := NewSearch(logger.Nop()).Apply([]Record{rec, other}, state)
	if len(got) != 1 || got[0].Offer.CampaignCode != "A1" {
		t.Fatalf("expected only the record with the extra field, got %d", len(got))
	}
}

func TestSearchPredicateFailureHidesRecord(t *testing.T) {
	good := makeRecord("A1", "Deal", "Oasis of the Seas", "Interior")
	good.Offer.Extra = map[string]string{"region": "Caribbean"}

	// Resolving an extra-field key against a record without an offer side
	// panics; that failure is scoped to the predicate, so only this record
	// must be hidden.
	bad := makeRecord("B2", "Deal", "Wonder of the Seas", "Balcony")
	bad.Offer = nil

	state := searchState(predicate("p1", "region", OpContains, true, "caribbean"))
	got := NewSearch(logger.Nop()).Apply([]Record{good, bad}, state)
	if len(got) != 1 || got[0].Offer.CampaignCode != "A1" {
		t.Fatalf("record with a failing predicate must be hidden, got %d records", len(got))
	}
}

func TestApplyHiddenGroups(t *testing.T) {
	labels := columns.NewLabelMap(columns.DefaultHeaders)
	oasis := makeRecord("A1", "Deal", "Oasis of the Seas", "Interior")
	wonder := makeRecord("B2", "Deal", "Wonder of the Seas", "Balcony")
	records := []Record{oasis, wonder}

	tests := []struct {
		name   string
		groups []string
		want   int
	}{
		{"no groups", nil, 2},
		{"exact case-insensitive match excludes", []string{"Ship:OASIS OF THE SEAS"}, 1},
		{"canonical ship entry excludes full name", []string{"Ship:OASIS"}, 1},
		{"ship comparison stays exact after canonicalization", []string{"Ship:OAS"}, 2},
		{"label lookup is case-insensitive", []string{"ship:Wonder of the Seas"}, 1},
		{"unknown label skipped", []string{"Starboard:Oasis of the Seas"}, 2},
		{"missing value skipped", []string{"Ship:"}, 2},
		{"missing separator skipped", []string{"Oasis of the Seas"}, 2},
		{"category group", []string{"Category:BALCONY"}, 1},
		{"multiple groups exclude independently", []string{"Ship:Oasis of the Seas", "Category:Balcony"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyHiddenGroups(records, tt.groups, labels)
			if len(got) != tt.want {
				t.Errorf("expected %d records, got %d", tt.want, len(got))
			}
		})
	}
}

func TestHiddenGroupStoreLoadMigratesLegacyKeys(t *testing.T) {
	mem := storage.NewMemoryStore()
	legacyA, _ := json.Marshal([]string{"Ship:Oasis of the Seas", "Category:Interior"})
	legacyB, _ := json.Marshal([]string{"Ship:Oasis of the Seas", "Ship:Wonder of the Seas"})
	if err := mem.Set("goboHiddenGroups-user1", string(legacyA)); err != nil {
		t.Fatal(err)
	}
	if err := mem.Set("goboHiddenGroups-user2", string(legacyB)); err != nil {
		t.Fatal(err)
	}

	hgs := NewHiddenGroupStore(mem, logger.Nop())
	groups, err := hgs.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 unioned groups, got %d: %v", len(groups), groups)
	}

	// Migration wrote the global key but left legacy keys in place.
	if _, found, _ := mem.Get(HiddenGroupsKey); !found {
		t.Error("global key not written after migration")
	}
	if _, found, _ := mem.Get("goboHiddenGroups-user1"); !found {
		t.Error("legacy key deleted, migration must be additive")
	}

	// Second load reads the global key directly.
	again, err := hgs.Load()
	if err != nil {
		t.Fatalf("second Load() error: %v", err)
	}
	if len(again) != 3 {
		t.Errorf("expected 3 groups on reload, got %d", len(again))
	}
}

func TestHiddenGroupStoreAddRemove(t *testing.T) {
	mem := storage.NewMemoryStore()
	hgs := NewHiddenGroupStore(mem, logger.Nop())

	groups, err := hgs.Add("Ship:Oasis of the Seas")
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}

	// Add is idempotent.
	groups, err = hgs.Add("Ship:Oasis of the Seas")
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 {
		t.Errorf("duplicate add should be a no-op, got %d groups", len(groups))
	}

	groups, err = hgs.Remove("Ship:Oasis of the Seas")
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 0 {
		t.Errorf("expected empty list after remove, got %d", len(groups))
	}

	// Removing a missing group is a no-op.
	if _, err := hgs.Remove("Ship:Nowhere"); err != nil {
		t.Errorf("remove of absent group should not error: %v", err)
	}
}

func TestRecordsFromProfile(t *testing.T) {
	profile := &models.Profile{
		Data: models.ProfileData{
			Email: "a@example.com",
			Offers: []*models.ProfileOffer{
				{
					CampaignCode: "A1",
					CampaignOffer: &models.CampaignOffer{
						OfferCode: "A1",
						Sailings: []*models.ProfileSailing{
							{ShipName: "Oasis of the Seas"},
							nil,
							{ShipName: "Wonder of the Seas"},
						},
					},
				},
				nil,
				{CampaignCode: "B2"}, // no campaign offer
			},
		},
	}
	records := RecordsFromProfile(profile)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Sailing.ShipName != "Oasis of the Seas" {
		t.Errorf("unexpected first record ship %q", records[0].Sailing.ShipName)
	}
}
