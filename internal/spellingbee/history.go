package spellingbee

import (
	"fmt"
	"maps"
	"slices"
)

// History stores the roster as it stood after each round's eliminations.
// Competitor holds no references, so cloning the slice is a full copy; every
// read and write goes through a copy so callers never alias stored rounds.
type History struct {
	rounds map[int][]Competitor
}

func NewHistory() *History {
	return &History{rounds: make(map[int][]Competitor)}
}

// Snapshot stores a copy of roster under round, replacing any earlier one.
func (h *History) Snapshot(round int, roster *Roster) {
	h.rounds[round] = roster.Competitors()
}

func (h *History) Get(round int) ([]Competitor, error) {
	snap, ok := h.rounds[round]
	if !ok {
		return nil, fmt.Errorf("%w: no snapshot for round %d", ErrNotFound, round)
	}
	return slices.Clone(snap), nil
}

func (h *History) Has(round int) bool {
	_, ok := h.rounds[round]
	return ok
}

// Rounds lists the snapshotted round numbers in ascending order.
func (h *History) Rounds() []int {
	return slices.Sorted(maps.Keys(h.rounds))
}

// DropAfter forgets every snapshot for rounds greater than round.
func (h *History) DropAfter(round int) {
	for n := range h.rounds {
		if n > round {
			delete(h.rounds, n)
		}
	}
}
