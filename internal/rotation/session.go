package rotation

import (
	"sync"

	"kiosk-signage/internal/catalog"
)

// Result is the outcome of one round.
type Result struct {
	Round int
	Items []catalog.MediaItem
	// Available is the number of usable catalog items.
	Available int
	// Repeats counts items that were also shown in the previous round.
	Repeats int
}

// Session owns the rotation state of one display client.
type Session struct {
	mu       sync.Mutex
	selector *Selector
	last     IDSet
	round    int
}

// NewSession returns a session with an empty last-round set.
func NewSession(selector *Selector) *Session {
	return &Session{selector: selector, last: IDSet{}}
}

// Next picks the next round of up to n items and replaces the last-round
// set with the ids chosen.
func (s *Session) Next(items []catalog.MediaItem, n int) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	chosen, next := s.selector.Pick(items, n, s.last)

	repeats := 0
	for _, it := range chosen {
		if s.last.Has(it.ID) {
			repeats++
		}
	}

	s.last = next
	s.round++
	return Result{
		Round:     s.round,
		Items:     chosen,
		Available: len(Usable(items)),
		Repeats:   repeats,
	}
}

// LastRound returns a copy of the ids shown in the most recent round.
func (s *Session) LastRound() IDSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(IDSet, len(s.last))
	for id := range s.last {
		out[id] = struct{}{}
	}
	return out
}

// Rounds returns the number of rounds picked so far.
func (s *Session) Rounds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}
