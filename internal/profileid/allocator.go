// Package profileid assigns stable numeric ids to profile storage keys.
// Once a key receives an id it keeps it until the key is removed; removed
// ids return to a free pool and are reused smallest-first by future
// assignments. State is persisted write-through on every mutation.
package profileid

import (
	"sort"
	"sync"

	"offer-reconciliation-service/internal/storage"
	"offer-reconciliation-service/pkg/logger"
)

// Storage keys for the persisted allocator state. All three are written
// together on every mutation.
const (
	MapKey  = "goboProfileIdMap_v1"
	FreeKey = "goboProfileIdFreeIds_v1"
	NextKey = "goboProfileIdNext_v1"
)

// keyPrefix restricts allocation to profile keys; other storage keys are
// silently ignored.
const keyPrefix = "gobo-"

// State is the allocator lifecycle state.
type State int

const (
	// Pending means the backing store has not confirmed hydration yet;
	// mutations queue instead of allocating.
	Pending State = iota
	// Ready means persisted state is loaded and allocations apply
	// immediately.
	Ready
)

func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "pending"
}

// Allocator assigns numeric ids to profile keys. It is safe for concurrent
// use; all mutations are serialized internally.
type Allocator struct {
	mu    sync.Mutex
	state State
	ids   map[string]int
	free  []int
	next  int

	pendingAssign map[string]bool
	pendingRemove map[string]bool

	store storage.Store
	log   logger.Logger
}

// NewAllocator creates an allocator over the given store. Until ready
// fires, EnsureIDs and RemoveKeys enqueue their keys; once it fires the
// allocator hydrates persisted state and drains the queues, removals
// first so freed ids are available to queued assignments in the same
// pass. A nil channel means the store is already hydrated and the
// allocator becomes Ready immediately.
func NewAllocator(store storage.Store, ready <-chan struct{}, log logger.Logger) *Allocator {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	a := &Allocator{
		ids:           make(map[string]int),
		next:          1,
		pendingAssign: make(map[string]bool),
		pendingRemove: make(map[string]bool),
		store:         store,
		log:           log.WithComponent("profileid"),
	}
	if ready == nil {
		a.mu.Lock()
		a.hydrateLocked()
		a.mu.Unlock()
		return a
	}
	go func() {
		<-ready
		a.mu.Lock()
		defer a.mu.Unlock()
		a.hydrateLocked()
	}()
	return a
}

// State reports the current lifecycle state.
func (a *Allocator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// EnsureIDs assigns a fresh id to every given profile key not already
// mapped. Keys without the profile prefix are ignored. While Pending the
// keys are queued for assignment after hydration; no ephemeral ids are
// handed out.
func (a *Allocator) EnsureIDs(keys []string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Ready {
		for _, k := range keys {
			if isProfileKey(k) {
				a.pendingAssign[k] = true
			}
		}
		a.log.WithField("queued", len(a.pendingAssign)).Debug("store not ready, queued assignments")
		return
	}
	a.assignLocked(keys)
}

// RemoveKeys deletes the mapping for each given key and returns its id to
// the free pool. While Pending the keys are queued; queued removals are
// applied before queued assignments on hydration.
func (a *Allocator) RemoveKeys(keys []string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Ready {
		for _, k := range keys {
			if isProfileKey(k) {
				a.pendingRemove[k] = true
			}
		}
		a.log.WithField("queued", len(a.pendingRemove)).Debug("store not ready, queued removals")
		return
	}
	a.removeLocked(keys)
}

// GetID returns the id mapped to the key. The second return is false while
// Pending or when the key is unmapped; callers must never treat a false
// result as a valid id.
func (a *Allocator) GetID(key string) (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != Ready {
		return 0, false
	}
	id, ok := a.ids[key]
	return id, ok
}

// Snapshot is a point-in-time view of the allocator for diagnostics.
type Snapshot struct {
	State         string         `json:"state"`
	IDs           map[string]int `json:"ids"`
	Free          []int          `json:"free"`
	Next          int            `json:"next"`
	PendingAssign []string       `json:"pendingAssign,omitempty"`
	PendingRemove []string       `json:"pendingRemove,omitempty"`
}

// Dump returns a copy of the allocator's current state.
func (a *Allocator) Dump() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := Snapshot{
		State: a.state.String(),
		IDs:   make(map[string]int, len(a.ids)),
		Free:  append([]int(nil), a.free...),
		Next:  a.next,
	}
	for k, v := range a.ids {
		snap.IDs[k] = v
	}
	for k := range a.pendingAssign {
		snap.PendingAssign = append(snap.PendingAssign, k)
	}
	for k := range a.pendingRemove {
		snap.PendingRemove = append(snap.PendingRemove, k)
	}
	sort.Strings(snap.PendingAssign)
	sort.Strings(snap.PendingRemove)
	return snap
}

// hydrateLocked loads persisted state, marks the allocator Ready and
// drains the pending queues, removals first.
func (a *Allocator) hydrateLocked() {
	if a.state == Ready {
		return
	}

	if found, err := storage.GetJSON(a.store, MapKey, &a.ids); err != nil || !found {
		a.ids = make(map[string]int)
		if err != nil {
			a.log.WithError(err).Error("failed to load id map, starting empty")
		}
	}
	if found, err := storage.GetJSON(a.store, FreeKey, &a.free); err != nil || !found {
		a.free = nil
		if err != nil {
			a.log.WithError(err).Error("failed to load free list, starting empty")
		}
	}
	var next int
	if found, err := storage.GetJSON(a.store, NextKey, &next); err == nil && found && next > 0 {
		a.next = next
	} else {
		// Derive the counter from the highest mapped id.
		max := 0
		for _, id := range a.ids {
			if id > max {
				max = id
			}
		}
		a.next = max + 1
	}

	a.state = Ready
	a.log.WithFields(logger.Fields{
		"ids":  len(a.ids),
		"free": len(a.free),
		"next": a.next,
	}).Debug("allocator hydrated")

	if len(a.pendingRemove) > 0 {
		keys := setToSlice(a.pendingRemove)
		a.pendingRemove = make(map[string]bool)
		a.removeLocked(keys)
	}
	if len(a.pendingAssign) > 0 {
		keys := setToSlice(a.pendingAssign)
		a.pendingAssign = make(map[string]bool)
		a.assignLocked(keys)
	}
}

func (a *Allocator) assignLocked(keys []string) {
	assigned := 0
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !isProfileKey(k) || seen[k] {
			continue
		}
		seen[k] = true
		if _, ok := a.ids[k]; ok {
			continue
		}
		var id int
		if len(a.free) > 0 {
			sort.Ints(a.free)
			id = a.free[0]
			a.free = a.free[1:]
		} else {
			id = a.next
			a.next++
		}
		a.ids[k] = id
		assigned++
	}
	if assigned > 0 {
		a.log.WithField("assigned", assigned).Debug("ids assigned")
		a.persistLocked()
	}
}

func (a *Allocator) removeLocked(keys []string) {
	removed := 0
	for _, k := range keys {
		id, ok := a.ids[k]
		if !ok {
			continue
		}
		delete(a.ids, k)
		if !containsInt(a.free, id) {
			a.free = append(a.free, id)
		}
		removed++
	}
	if removed > 0 {
		a.log.WithFields(logger.Fields{
			"removed": removed,
			"free":    len(a.free),
		}).Debug("ids reclaimed")
		a.persistLocked()
	}
}

// persistLocked writes all three state values. Write failures are logged,
// not propagated: the in-memory mapping stays authoritative and the next
// mutation retries the write.
func (a *Allocator) persistLocked() {
	if err := storage.SetJSON(a.store, MapKey, a.ids); err != nil {
		a.log.WithError(err).Error("failed to persist id map")
	}
	if err := storage.SetJSON(a.store, FreeKey, a.freeOrEmpty()); err != nil {
		a.log.WithError(err).Error("failed to persist free list")
	}
	if err := storage.SetJSON(a.store, NextKey, a.next); err != nil {
		a.log.WithError(err).Error("failed to persist next counter")
	}
}

func (a *Allocator) freeOrEmpty() []int {
	if a.free == nil {
		return []int{}
	}
	return a.free
}

func isProfileKey(key string) bool {
	return len(key) > len(keyPrefix) && key[:len(keyPrefix)] == keyPrefix
}

func setToSlice(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
