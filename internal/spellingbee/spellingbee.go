// Package spellingbee holds the competition run-state machine: the roster of
// competitors, per-round history, the turn timer and the round-transition
// engine that ties them together. It does no I/O and owns no goroutines;
// scheduling and transport live in the callers.
package spellingbee

import "context"

type Competitor struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	IsEliminated  bool   `json:"isEliminated"`
	IsCurrentTurn bool   `json:"isCurrentTurn"`
	Score         int    `json:"score"`
}

type WordEntry struct {
	Number int    `json:"number"`
	Word   string `json:"word"`
}

// Competition is the read-only word data a run is played against.
type Competition struct {
	Name    string
	Passkey string
	Rounds  map[int][]WordEntry
}

// LastRound returns the highest round number with authored words.
func (c Competition) LastRound() int {
	last := 0
	for n, words := range c.Rounds {
		if n > last && len(words) > 0 {
			last = n
		}
	}
	return last
}

// Loader fetches a competition by passkey. Implementations return an error
// wrapping ErrNotFound when no competition matches.
type Loader interface {
	LoadCompetition(ctx context.Context, passkey string) (Competition, error)
}

type Phase string

const (
	PhaseRegistration Phase = "registration"
	PhaseSpelling     Phase = "spelling"
	PhaseReview       Phase = "review"
	PhaseFinished     Phase = "finished"
)
