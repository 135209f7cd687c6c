// Package challenge tracks which named challenges a player has completed in each hold.
// Records are persisted in the player's packed variable store and are merged and
// re-keyed when save snapshots are reconciled during imports.
package challenge

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/udisondev/holdstate/internal/cue"
	"github.com/udisondev/holdstate/internal/packedvars"
)

// KeyPrefix namespaces per-hold challenge entries in a packed store.
const KeyPrefix = "challenges."

// ErrMalformedEntry marks a stored hold entry that could not be read.
var ErrMalformedEntry = errors.New("challenge: malformed entry")

type nameSet map[string]struct{}

// Challenges maps hold ID to the set of challenge names completed there.
// Every mutation is a set union, so no operation ever drops a completed challenge.
// Not safe for concurrent use: a value belongs to a single player record.
type Challenges struct {
	holds map[uint32]nameSet
}

// New creates an empty record.
func New() *Challenges {
	return &Challenges{holds: make(map[uint32]nameSet, 4)}
}

// FromStore creates a record from the challenge entries in store.
// The returned record is usable even when err reports skipped entries.
func FromStore(store *packedvars.Store) (*Challenges, error) {
	c := New()
	err := c.Deserialize(store)
	return c, err
}

// Clear removes all hold entries.
func (c *Challenges) Clear() {
	clear(c.holds)
}

// HoldIDs returns the sorted IDs of holds with at least one completed challenge.
func (c *Challenges) HoldIDs() []uint32 {
	ids := make([]uint32, 0, len(c.holds))
	for id, set := range c.holds {
		if len(set) > 0 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Get returns the sorted challenge names completed in holdID.
// A hold without entries yields an empty slice.
func (c *Challenges) Get(holdID uint32) []string {
	set := c.holds[holdID]
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Has reports whether name is completed in holdID.
func (c *Challenges) Has(holdID uint32, name string) bool {
	_, ok := c.holds[holdID][normalizeName(name)]
	return ok
}

// Count returns the total number of completed challenges across all holds.
func (c *Challenges) Count() int {
	n := 0
	for _, set := range c.holds {
		n += len(set)
	}
	return n
}

// Add unions names into holdID's set and reports whether anything new was added.
// Hold 0 and empty names are ignored. Invalid UTF-8 is replaced with U+FFFD so
// the stored set matches what Serialize persists.
func (c *Challenges) Add(holdID uint32, names ...string) bool {
	if holdID == 0 {
		return false
	}
	added := false
	for _, name := range names {
		name = normalizeName(name)
		if name == "" {
			continue
		}
		set := c.holds[holdID]
		if set == nil {
			set = make(nameSet, len(names))
			c.holds[holdID] = set
		}
		if _, ok := set[name]; ok {
			continue
		}
		set[name] = struct{}{}
		added = true
	}
	return added
}

// AddEvents records the challenges completed during one turn.
// Returns true iff at least one new challenge was recorded.
func (c *Challenges) AddEvents(holdID uint32, events *cue.Events) bool {
	return c.Add(holdID, GetFrom(events)...)
}

// GetFrom extracts the sorted, de-duplicated challenge names signaled by events.
// events is not modified.
func GetFrom(events *cue.Events) []string {
	payloads := events.Payloads(cue.ChallengeCompleted)
	if len(payloads) == 0 {
		return nil
	}
	seen := make(nameSet, len(payloads))
	for _, p := range payloads {
		name, ok := p.(string)
		if !ok || name == "" {
			continue
		}
		seen[normalizeName(name)] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Merge unions rhs into c for every hold present on either side.
// Merge is commutative and idempotent; c.Merge(c) is a no-op.
func (c *Challenges) Merge(rhs *Challenges) {
	if rhs == nil || rhs == c {
		return
	}
	for id, set := range rhs.holds {
		for name := range set {
			c.Add(id, name)
		}
	}
}

// RekeyHoldIDs moves every hold listed in holdIDMap to its new ID.
// The remap is applied simultaneously, so swaps and chains behave as a single
// renumbering. When the destination already has entries the sets are unioned.
// A mapping to 0 is ignored.
func (c *Challenges) RekeyHoldIDs(holdIDMap map[uint32]uint32) {
	if len(holdIDMap) == 0 {
		return
	}
	rekeyed := make(map[uint32]nameSet, len(c.holds))
	for id, set := range c.holds {
		if newID, ok := holdIDMap[id]; ok && newID != 0 {
			id = newID
		}
		dst, ok := rekeyed[id]
		if !ok {
			rekeyed[id] = set
			continue
		}
		for name := range set {
			dst[name] = struct{}{}
		}
	}
	c.holds = rekeyed
}

// Clone returns a deep copy.
func (c *Challenges) Clone() *Challenges {
	out := New()
	out.Merge(c)
	return out
}

// Equal reports whether both records hold the same names for every hold.
func (c *Challenges) Equal(other *Challenges) bool {
	a, b := c.HoldIDs(), other.HoldIDs()
	if !slices.Equal(a, b) {
		return false
	}
	for _, id := range a {
		if !maps.Equal(c.holds[id], other.holds[id]) {
			return false
		}
	}
	return true
}

// Deserialize rebuilds the record from the challenge entries in store.
// Unreadable entries are skipped and reported in the joined error; all other
// holds are still loaded.
func (c *Challenges) Deserialize(store *packedvars.Store) error {
	c.Clear()

	var errs []error
	for _, key := range store.Keys(KeyPrefix) {
		holdID, names, err := readEntry(store, key)
		if err != nil {
			slog.Warn("skipping challenge entry", "key", key, "error", err)
			errs = append(errs, err)
			continue
		}
		c.Add(holdID, names...)
	}

	slog.Debug("challenges loaded",
		"holds", len(c.holds),
		"challenges", c.Count(),
		"skipped", len(errs))

	return errors.Join(errs...)
}

// Serialize writes every non-empty hold into store, replacing any previous
// challenge entries. Names are written sorted so equal records produce equal blobs.
func (c *Challenges) Serialize(store *packedvars.Store) {
	store.DeletePrefix(KeyPrefix)
	for _, id := range c.HoldIDs() {
		store.SetBytes(holdKey(id), encodeNames(c.Get(id)))
	}
}

func normalizeName(name string) string {
	return strings.ToValidUTF8(name, "\uFFFD")
}

func holdKey(holdID uint32) string {
	return KeyPrefix + strconv.FormatUint(uint64(holdID), 10)
}

func readEntry(store *packedvars.Store, key string) (uint32, []string, error) {
	raw := strings.TrimPrefix(key, KeyPrefix)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, nil, fmt.Errorf("%w: bad hold id %q", ErrMalformedEntry, raw)
	}
	payload, ok := store.LookupBytes(key)
	if !ok {
		return 0, nil, fmt.Errorf("%w: hold %d: unexpected value type", ErrMalformedEntry, id)
	}
	names, err := decodeNames(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: hold %d: %v", ErrMalformedEntry, id, err)
	}
	return uint32(id), names, nil
}
