package filters

import (
	"encoding/json"
	"strings"

	"offer-reconciliation-service/internal/columns"
	"offer-reconciliation-service/internal/normalize"
	"offer-reconciliation-service/internal/storage"
	"offer-reconciliation-service/pkg/logger"
)

const (
	// HiddenGroupsKey is the single global key hidden groups live under.
	HiddenGroupsKey = "goboHiddenGroups-global"
	// hiddenGroupsLegacyPrefix covers the old per-profile keys that are
	// unioned into the global key on first load.
	hiddenGroupsLegacyPrefix = "goboHiddenGroups-"
)

// ApplyHiddenGroups drops every record matching any hidden-group entry.
// Each entry is a "Label:Value" rule: the label resolves to a column key
// through the label map and the record's derived value for that key is
// compared case-insensitively for exact equality. Ship values compare in
// canonical form, so "Ship:OASIS" hides "Oasis of the Seas" rows.
// Unparseable entries and unknown labels are skipped, never errors.
func ApplyHiddenGroups(records []Record, groups []string, labels columns.LabelMap) []Record {
	if len(groups) == 0 {
		return records
	}
	filtered := make([]Record, 0, len(records))
	for _, rec := range records {
		if !hiddenByAny(rec, groups, labels) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

func hiddenByAny(rec Record, groups []string, labels columns.LabelMap) bool {
	for _, group := range groups {
		label, value, ok := splitGroup(group)
		if !ok {
			continue
		}
		key, ok := labels.Key(label)
		if !ok {
			continue
		}
		resolved := columns.Value(rec.Offer, rec.Sailing, key)
		if resolved == "" {
			continue
		}
		if key == columns.KeyShip {
			if normalize.ShipName(resolved) == normalize.ShipName(value) {
				return true
			}
			continue
		}
		if strings.EqualFold(resolved, value) {
			return true
		}
	}
	return false
}

// splitGroup parses a "Label:Value" entry. Entries missing either side are
// reported as unusable.
func splitGroup(group string) (label, value string, ok bool) {
	parts := strings.SplitN(group, ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	label = strings.TrimSpace(parts[0])
	value = strings.TrimSpace(parts[1])
	return label, value, label != "" && value != ""
}

// HiddenGroupStore persists the global hidden-group list and migrates
// legacy per-profile lists into it.
type HiddenGroupStore struct {
	store storage.Store
	log   logger.Logger
}

// NewHiddenGroupStore creates a hidden-group store over the given backing
// store.
func NewHiddenGroupStore(store storage.Store, log logger.Logger) *HiddenGroupStore {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &HiddenGroupStore{store: store, log: log.WithComponent("hidden-groups")}
}

// Load returns the global hidden-group list. When the global key is absent
// it performs a one-time migration: every legacy per-profile list is read,
// unioned, and written to the global key. Legacy keys are left in place;
// migration is additive, never destructive.
func (h *HiddenGroupStore) Load() ([]string, error) {
	raw, found, err := h.store.Get(HiddenGroupsKey)
	if err != nil {
		return nil, err
	}
	if found {
		var groups []string
		if err := json.Unmarshal([]byte(raw), &groups); err != nil {
			h.log.WithError(err).Warn("global hidden groups corrupt, treating as empty")
			return nil, nil
		}
		return groups, nil
	}

	keys, err := h.store.Keys(hiddenGroupsLegacyPrefix)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var merged []string
	for _, key := range keys {
		if key == HiddenGroupsKey {
			continue
		}
		legacy, found, err := h.store.Get(key)
		if err != nil || !found {
			continue
		}
		var groups []string
		if err := json.Unmarshal([]byte(legacy), &groups); err != nil {
			continue
		}
		for _, g := range groups {
			if !seen[g] {
				seen[g] = true
				merged = append(merged, g)
			}
		}
	}
	if err := h.save(merged); err != nil {
		return nil, err
	}
	if len(merged) > 0 {
		h.log.WithFields(logger.Fields{
			"legacyKeys": len(keys),
			"groups":     len(merged),
		}).Info("migrated legacy hidden groups to global key")
	}
	return merged, nil
}

// Add appends a group to the global list if not already present.
func (h *HiddenGroupStore) Add(group string) ([]string, error) {
	groups, err := h.Load()
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if g == group {
			return groups, nil
		}
	}
	groups = append(groups, group)
	if err := h.save(groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// Remove deletes a group from the global list.
func (h *HiddenGroupStore) Remove(group string) ([]string, error) {
	groups, err := h.Load()
	if err != nil {
		return nil, err
	}
	kept := groups[:0]
	for _, g := range groups {
		if g != group {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(groups) {
		return groups, nil
	}
	if err := h.save(kept); err != nil {
		return nil, err
	}
	return kept, nil
}

func (h *HiddenGroupStore) save(groups []string) error {
	if groups == nil {
		groups = []string{}
	}
	return storage.SetJSON(h.store, HiddenGroupsKey, groups)
}
