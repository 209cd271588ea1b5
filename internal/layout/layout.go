// Package layout maps a round's chosen media onto the fixed, named tiles of
// the display grid.
package layout

import (
	"errors"
	"fmt"
	"strings"

	"kiosk-signage/internal/catalog"
)

// Slot names one tile of the grid, e.g. "r1c2" for row 1, column 2.
type Slot string

// DefaultSlots is a 4x3 grid whose middle row centre (r2c2, r2c3) is taken
// by the static banner.
var DefaultSlots = []Slot{
	"r1c1", "r1c2", "r1c3", "r1c4",
	"r2c1", "r2c4",
	"r3c1", "r3c2", "r3c3", "r3c4",
}

var (
	// ErrEmptySlot is returned for a blank slot name.
	ErrEmptySlot = errors.New("slot name is empty")
	// ErrDuplicateSlot is returned when a slot name occurs twice.
	ErrDuplicateSlot = errors.New("duplicate slot name")
)

// Overflow decides what happens to chosen items beyond the number of slots.
type Overflow string

const (
	// OverflowDrop discards the extra items.
	OverflowDrop Overflow = "drop"
	// OverflowWrap maps item i to slot i mod len(slots); later items replace
	// earlier ones in the same slot.
	OverflowWrap Overflow = "wrap"
)

// ParseOverflow resolves a configured overflow policy. Empty selects
// OverflowDrop.
func ParseOverflow(s string) (Overflow, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop":
		return OverflowDrop, nil
	case "wrap":
		return OverflowWrap, nil
	}
	return "", fmt.Errorf("unknown overflow policy %q", s)
}

// ParseSlots converts configured names into validated slots. An empty list
// selects DefaultSlots.
func ParseSlots(names []string) ([]Slot, error) {
	if len(names) == 0 {
		out := make([]Slot, len(DefaultSlots))
		copy(out, DefaultSlots)
		return out, nil
	}
	slots := make([]Slot, len(names))
	for i, n := range names {
		slots[i] = Slot(strings.TrimSpace(n))
	}
	if err := Validate(slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// Validate checks that every slot is named and unique.
func Validate(slots []Slot) error {
	seen := make(map[Slot]bool, len(slots))
	for i, s := range slots {
		if s == "" {
			return fmt.Errorf("slot %d: %w", i, ErrEmptySlot)
		}
		if seen[s] {
			return fmt.Errorf("slot %q: %w", s, ErrDuplicateSlot)
		}
		seen[s] = true
	}
	return nil
}

// Cell is one slot and the item assigned to it; Item is nil for an empty
// slot, which renders as a placeholder.
type Cell struct {
	Slot Slot
	Item *catalog.MediaItem
}

// Assign places chosen[i] into slots[i]. The result has one cell per slot,
// in slot order.
func Assign(slots []Slot, chosen []catalog.MediaItem, overflow Overflow) []Cell {
	cells := make([]Cell, len(slots))
	for i, s := range slots {
		cells[i] = Cell{Slot: s}
	}
	if len(slots) == 0 {
		return cells
	}

	for i := range chosen {
		idx := i
		if idx >= len(slots) {
			if overflow != OverflowWrap {
				break
			}
			idx = i % len(slots)
		}
		item := chosen[i]
		cells[idx].Item = &item
	}
	return cells
}
