package spellingbee

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

const minCompetitors = 2

// Roster is the ordered list of competitors in a run.
type Roster struct {
	competitors []Competitor
}

// NewRoster registers one competitor per name. newID may be nil, in which
// case random UUIDs are used.
func NewRoster(names []string, newID func() string) (*Roster, error) {
	if newID == nil {
		newID = uuid.NewString
	}

	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, fmt.Errorf("%w: competitor names must not be blank", ErrValidation)
		}
		cleaned = append(cleaned, n)
	}
	if len(cleaned) < minCompetitors {
		return nil, fmt.Errorf("%w: at least %d competitors are required", ErrValidation, minCompetitors)
	}

	r := &Roster{competitors: make([]Competitor, 0, len(cleaned))}
	seen := make(map[string]bool, len(cleaned))
	for _, name := range cleaned {
		id := newID()
		if id == "" || seen[id] {
			return nil, fmt.Errorf("%w: duplicate competitor id %q", ErrValidation, id)
		}
		seen[id] = true
		r.competitors = append(r.competitors, Competitor{ID: id, Name: name})
	}
	return r, nil
}

func rosterFrom(competitors []Competitor) *Roster {
	return &Roster{competitors: slices.Clone(competitors)}
}

// Competitors returns a copy of the roster in registration order.
func (r *Roster) Competitors() []Competitor {
	return slices.Clone(r.competitors)
}

func (r *Roster) Len() int { return len(r.competitors) }

func (r *Roster) Find(id string) (Competitor, bool) {
	i := r.index(id)
	if i < 0 {
		return Competitor{}, false
	}
	return r.competitors[i], true
}

// Active returns the competitors that have not been eliminated.
func (r *Roster) Active() []Competitor {
	var active []Competitor
	for _, c := range r.competitors {
		if !c.IsEliminated {
			active = append(active, c)
		}
	}
	return active
}

// SelectSpeller marks id as the competitor whose turn it is.
func (r *Roster) SelectSpeller(id string) error {
	i := r.index(id)
	if i < 0 {
		return fmt.Errorf("%w: unknown competitor %q", ErrValidation, id)
	}
	if r.competitors[i].IsEliminated {
		return fmt.Errorf("%w: %s has been eliminated", ErrValidation, r.competitors[i].Name)
	}
	for j := range r.competitors {
		r.competitors[j].IsCurrentTurn = j == i
	}
	return nil
}

func (r *Roster) ClearTurn() {
	for i := range r.competitors {
		r.competitors[i].IsCurrentTurn = false
	}
}

// ApplyEliminations eliminates every competitor whose id is not in winnerIDs
// and clears all turn flags.
func (r *Roster) ApplyEliminations(winnerIDs []string) error {
	if len(winnerIDs) == 0 {
		return fmt.Errorf("%w: at least one competitor must advance", ErrValidation)
	}
	winners := make(map[string]bool, len(winnerIDs))
	for _, id := range winnerIDs {
		if r.index(id) < 0 {
			return fmt.Errorf("%w: unknown competitor %q", ErrValidation, id)
		}
		winners[id] = true
	}

	for i := range r.competitors {
		r.competitors[i].IsEliminated = !winners[r.competitors[i].ID]
		r.competitors[i].IsCurrentTurn = false
	}
	return nil
}

func (r *Roster) Clone() *Roster {
	return rosterFrom(r.competitors)
}

func (r *Roster) index(id string) int {
	return slices.IndexFunc(r.competitors, func(c Competitor) bool { return c.ID == id })
}
