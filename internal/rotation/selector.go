// Package rotation picks the media shown in each display round. The default
// policy avoids showing an item in two consecutive rounds whenever the
// catalog is large enough to allow it.
package rotation

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"kiosk-signage/internal/catalog"
)

// Policy names a selection policy. A session uses exactly one.
type Policy string

const (
	// PolicyFresh prefers items not shown in the previous round.
	PolicyFresh Policy = "fresh"
	// PolicyNewest pins the PinnedNewest most recent items into every round
	// and fills the rest at random.
	PolicyNewest Policy = "newest"
)

// PinnedNewest is the number of most recent items PolicyNewest always shows.
const PinnedNewest = 3

// ParsePolicy resolves a configured policy name. Empty selects PolicyFresh.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fresh":
		return PolicyFresh, nil
	case "newest":
		return PolicyNewest, nil
	}
	return "", fmt.Errorf("unknown rotation policy %q", s)
}

// IDSet is a set of media ids.
type IDSet map[string]struct{}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. A nil set is empty.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Selector picks rounds from a catalog. It is safe for concurrent use.
type Selector struct {
	mu     sync.Mutex
	rng    *rand.Rand
	policy Policy
}

// NewSelector returns a Selector using rng for shuffling. A nil rng is
// replaced with a randomly seeded PCG source; tests pass a fixed seed.
func NewSelector(policy Policy, rng *rand.Rand) *Selector {
	if policy == "" {
		policy = PolicyFresh
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{rng: rng, policy: policy}
}

// Policy returns the selector's policy.
func (s *Selector) Policy() Policy {
	return s.policy
}

// Pick chooses up to n items from items. last holds the ids shown in the
// previous round; next holds exactly the ids chosen now.
func (s *Selector) Pick(items []catalog.MediaItem, n int, last IDSet) (chosen []catalog.MediaItem, next IDSet) {
	unique := Usable(items)
	if n <= 0 || len(unique) == 0 {
		return []catalog.MediaItem{}, IDSet{}
	}

	switch s.policy {
	case PolicyNewest:
		chosen = s.pickNewest(unique, n)
	default:
		chosen = s.pickFresh(unique, n, last)
	}

	next = make(IDSet, len(chosen))
	for _, it := range chosen {
		next[it.ID] = struct{}{}
	}
	return chosen, next
}

func (s *Selector) pickFresh(unique []catalog.MediaItem, n int, last IDSet) []catalog.MediaItem {
	fresh := make([]catalog.MediaItem, 0, len(unique))
	for _, it := range unique {
		if !last.Has(it.ID) {
			fresh = append(fresh, it)
		}
	}

	picked := s.shuffled(fresh)
	if len(picked) > n {
		picked = picked[:n]
	}
	if len(picked) == n {
		return picked
	}

	// Fresh pool exhausted: top up from everything not already picked,
	// previously shown items included.
	pickedIDs := make(IDSet, len(picked))
	for _, it := range picked {
		pickedIDs[it.ID] = struct{}{}
	}
	remainder := make([]catalog.MediaItem, 0, len(unique)-len(picked))
	for _, it := range unique {
		if !pickedIDs.Has(it.ID) {
			remainder = append(remainder, it)
		}
	}
	need := n - len(picked)
	topUp := s.shuffled(remainder)
	if len(topUp) > need {
		topUp = topUp[:need]
	}
	return append(picked, topUp...)
}

func (s *Selector) pickNewest(unique []catalog.MediaItem, n int) []catalog.MediaItem {
	byRecency := make([]catalog.MediaItem, len(unique))
	copy(byRecency, unique)
	sort.SliceStable(byRecency, func(i, j int) bool {
		return byRecency[i].SortKey > byRecency[j].SortKey
	})

	pinned := min(PinnedNewest, n, len(byRecency))
	out := make([]catalog.MediaItem, 0, n)
	out = append(out, byRecency[:pinned]...)

	rest := s.shuffled(byRecency[pinned:])
	if fill := n - pinned; len(rest) > fill {
		rest = rest[:fill]
	}
	out = append(out, rest...)
	return s.shuffled(out)
}

// shuffled returns a uniformly shuffled copy of items (Fisher-Yates).
func (s *Selector) shuffled(items []catalog.MediaItem) []catalog.MediaItem {
	out := make([]catalog.MediaItem, len(items))
	copy(out, items)
	s.mu.Lock()
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	s.mu.Unlock()
	return out
}

// Usable deduplicates items by id, first occurrence winning, and drops
// entries that are malformed or of an unplayable kind.
func Usable(items []catalog.MediaItem) []catalog.MediaItem {
	seen := make(map[string]bool, len(items))
	out := make([]catalog.MediaItem, 0, len(items))
	for _, it := range items {
		if !it.Valid() || seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	return out
}
