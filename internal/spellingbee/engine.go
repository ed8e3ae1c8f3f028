package spellingbee

import (
	"fmt"
	"slices"
)

type Options struct {
	// TurnSeconds is the initial countdown length; DefaultTurnSeconds if zero.
	TurnSeconds int
	NewID       func() string
	Notifier    Notifier
	Cues        CueSink
}

// CheckResult is the outcome of the last spelling check.
type CheckResult struct {
	Round      int     `json:"round"`
	WordNumber int     `json:"wordNumber"`
	Expected   string  `json:"expected"`
	Spelled    string  `json:"spelled"`
	Verdict    Verdict `json:"verdict"`
	SpellerID  string  `json:"spellerId,omitempty"`
}

// Engine is the round-transition state machine for one competition run.
// It is not safe for concurrent use; a single owner drives every transition.
type Engine struct {
	comp     Competition
	newID    func() string
	notifier Notifier
	cues     CueSink

	phase     Phase
	round     int
	frontier  int
	reviewing bool
	roster    *Roster
	history   *History
	timer     *Timer
	speller   string
	champion  *Competitor
	lastCheck *CheckResult
}

func NewEngine(comp Competition, opts Options) *Engine {
	e := &Engine{
		comp:     comp,
		newID:    opts.NewID,
		notifier: opts.Notifier,
		cues:     opts.Cues,
		timer:    NewTimer(opts.TurnSeconds),
	}
	if e.notifier == nil {
		e.notifier = discard{}
	}
	if e.cues == nil {
		e.cues = discard{}
	}
	e.reset()
	return e
}

func (e *Engine) reset() {
	e.phase = PhaseRegistration
	e.round = 1
	e.frontier = 1
	e.reviewing = false
	e.roster = &Roster{}
	e.history = NewHistory()
	e.timer.Reset()
	e.speller = ""
	e.champion = nil
	e.lastCheck = nil
}

// Load discards the current run and prepares a new one for comp.
func (e *Engine) Load(comp Competition) {
	e.comp = comp
	e.reset()
}

// Reset discards the current run, keeping the loaded competition.
func (e *Engine) Reset() {
	e.reset()
}

func (e *Engine) Phase() Phase { return e.phase }

func (e *Engine) CurrentRound() int { return e.round }

func (e *Engine) Competition() Competition { return e.comp }

// Timer exposes the turn timer's state for schedulers.
func (e *Engine) Timer() TimerView { return e.timer.View() }

func (e *Engine) Champion() (Competitor, bool) {
	if e.champion == nil {
		return Competitor{}, false
	}
	return *e.champion, true
}

// RoundSnapshot returns a copy of the stored roster for round.
func (e *Engine) RoundSnapshot(round int) ([]Competitor, error) {
	return e.history.Get(round)
}

// Register creates the roster and opens round 1.
func (e *Engine) Register(names []string) error {
	if err := e.requirePhase(PhaseRegistration); err != nil {
		return fmt.Errorf("%w: competitors are already registered", ErrWrongPhase)
	}
	roster, err := NewRoster(names, e.newID)
	if err != nil {
		return err
	}

	e.roster = roster
	e.round = 1
	e.frontier = 1
	e.history.Snapshot(1, roster)
	e.enterRound()
	return nil
}

func (e *Engine) SelectSpeller(id string) error {
	if err := e.requirePhase(PhaseSpelling); err != nil {
		return err
	}
	if err := e.roster.SelectSpeller(id); err != nil {
		e.notify(LevelError, NoticeInvalidSelection, "That competitor cannot spell right now.")
		return err
	}
	e.timer.Stop()
	e.speller = id
	return nil
}

// StartTurn starts the countdown for the selected speller and returns the
// timer generation that ticks must carry.
func (e *Engine) StartTurn(id string) (uint64, error) {
	if err := e.requirePhase(PhaseSpelling); err != nil {
		return 0, err
	}
	c, ok := e.roster.Find(id)
	if !ok || e.speller != id || c.IsEliminated {
		e.notify(LevelError, NoticeInvalidSelection, "Select an active competitor before starting a turn.")
		return 0, fmt.Errorf("%w: %q is not the selected speller", ErrValidation, id)
	}
	return e.timer.Start(), nil
}

// Tick delivers one second of countdown for generation gen. It reports
// whether the tick was applied.
func (e *Engine) Tick(gen uint64) bool {
	if !e.timer.Running() || e.timer.Generation() != gen {
		return false
	}
	if e.timer.Tick(gen) {
		name := "the speller"
		if c, ok := e.roster.Find(e.speller); ok {
			name = c.Name
		}
		e.notify(LevelError, NoticeTimeExpired, fmt.Sprintf("Time's up for %s!", name))
	}
	return true
}

func (e *Engine) SetTimerDuration(seconds int) error {
	return e.timer.SetDuration(seconds)
}

// Check compares a spelling against word wordNumber of the current round and
// ends the turn.
func (e *Engine) Check(wordNumber int, spelled string) (CheckResult, error) {
	if err := e.requirePhase(PhaseSpelling); err != nil {
		return CheckResult{}, err
	}
	word, err := WordAt(e.comp.Rounds[e.round], wordNumber)
	if err != nil {
		return CheckResult{}, err
	}

	res := CheckResult{
		Round:      e.round,
		WordNumber: wordNumber,
		Expected:   word.Word,
		Spelled:    spelled,
		Verdict:    CheckSpelling(word.Word, spelled),
		SpellerID:  e.speller,
	}
	e.endTurn()
	e.lastCheck = &res

	if res.Verdict == VerdictCorrect {
		e.cues.Cue(CueCorrect)
	} else {
		e.cues.Cue(CueIncorrect)
	}
	return res, nil
}

// Refresh cancels the current turn and clears the last check.
func (e *Engine) Refresh() error {
	if e.phase != PhaseSpelling && e.phase != PhaseReview {
		return e.requirePhase(PhaseSpelling)
	}
	e.endTurn()
	e.lastCheck = nil
	return nil
}

// EndSpelling closes the spelling phase so winners can be confirmed.
func (e *Engine) EndSpelling() error {
	if err := e.requirePhase(PhaseSpelling); err != nil {
		return err
	}
	e.endTurn()
	e.phase = PhaseReview
	return nil
}

// ConfirmWinners applies the organizer's decision for the current round.
// A round reached with PreviousRound is patched in place; otherwise the run
// either finishes or advances.
func (e *Engine) ConfirmWinners(winnerIDs []string) error {
	if err := e.requirePhase(PhaseReview); err != nil {
		return err
	}

	base := e.roster
	if e.reviewing {
		entering, err := e.enteringRoster(e.round)
		if err != nil {
			return err
		}
		base = entering
	}

	competing := make(map[string]bool)
	for _, c := range base.Active() {
		competing[c.ID] = true
	}
	for _, id := range winnerIDs {
		if !competing[id] {
			e.notify(LevelError, NoticeInvalidSelection, "Only competitors in this round can advance.")
			return fmt.Errorf("%w: %q is not competing in round %d", ErrValidation, id, e.round)
		}
	}

	next := base.Clone()
	if err := next.ApplyEliminations(winnerIDs); err != nil {
		e.notify(LevelError, NoticeInvalidSelection, "Please select at least one competitor to advance.")
		return err
	}

	e.endTurn()
	e.roster = next
	e.history.Snapshot(e.round, next)

	if e.reviewing {
		// Replaying from here drops the later snapshots, so this round is
		// the furthest one forward progress can reach.
		e.reviewing = false
		e.frontier = e.round
		e.phase = PhaseSpelling
		e.notify(LevelInfo, NoticeRoundPatched, fmt.Sprintf("Round %d results updated.", e.round))
		return nil
	}

	if active := next.Active(); len(active) == 1 {
		champ := active[0]
		e.champion = &champ
		e.phase = PhaseFinished
		e.notify(LevelSuccess, NoticeCompetitionWon, fmt.Sprintf("%s wins the competition!", champ.Name))
		e.cues.Cue(CueWinner)
		return nil
	}

	e.history.DropAfter(e.round)
	e.round++
	e.frontier = e.round
	e.notify(LevelSuccess, NoticeRoundAdvanced, fmt.Sprintf("Advancing to Round %d.", e.round))
	e.enterRound()
	return nil
}

// PreviousRound opens the previous round's result for review.
func (e *Engine) PreviousRound() error {
	if err := e.requireRunning(); err != nil {
		return err
	}
	if e.round <= 1 {
		e.notify(LevelInfo, NoticeFirstRound, "Already at the first round!")
		return nil
	}
	snap, err := e.history.Get(e.round - 1)
	if err != nil {
		e.notify(LevelError, NoticeRoundNotFound, fmt.Sprintf("Round %d has not been played.", e.round-1))
		return err
	}

	e.endTurn()
	e.lastCheck = nil
	e.roster = rosterFrom(snap)
	e.round--
	e.phase = PhaseReview
	e.reviewing = true
	return nil
}

// NextRound ends spelling when a round is being played; during review it
// moves forward to the next recorded round.
func (e *Engine) NextRound() error {
	if err := e.requireRunning(); err != nil {
		return err
	}
	if e.phase == PhaseSpelling {
		return e.EndSpelling()
	}

	snap, err := e.history.Get(e.round + 1)
	if err != nil {
		e.notify(LevelError, NoticeRoundNotFound, fmt.Sprintf("Confirm the winners for Round %d first.", e.round))
		return err
	}

	e.endTurn()
	e.lastCheck = nil
	e.roster = rosterFrom(snap)
	e.round++
	e.phase = PhaseReview
	e.reviewing = true
	return nil
}

// State is a detached copy of the run for rendering.
type State struct {
	CompetitionName   string       `json:"competitionName"`
	Passkey           string       `json:"passkey"`
	Phase             Phase        `json:"phase"`
	CurrentRound      int          `json:"currentRound"`
	FrontierRound     int          `json:"frontierRound"`
	LastRound         int          `json:"lastRound"`
	Reviewing         bool         `json:"reviewing"`
	WordCount         int          `json:"wordCount"`
	Competitors       []Competitor `json:"competitors"`
	Candidates        []Competitor `json:"candidates"`
	SelectedSpellerID string       `json:"selectedSpellerId,omitempty"`
	Timer             TimerView    `json:"timer"`
	Champion          *Competitor  `json:"champion,omitempty"`
	LastCheck         *CheckResult `json:"lastCheck,omitempty"`
	SnapshotRounds    []int        `json:"snapshotRounds"`
}

func (e *Engine) State() State {
	s := State{
		CompetitionName:   e.comp.Name,
		Passkey:           e.comp.Passkey,
		Phase:             e.phase,
		CurrentRound:      e.round,
		FrontierRound:     e.frontier,
		LastRound:         e.comp.LastRound(),
		Reviewing:         e.reviewing,
		WordCount:         len(e.comp.Rounds[e.round]),
		Competitors:       e.roster.Competitors(),
		Candidates:        e.candidates(),
		SelectedSpellerID: e.speller,
		Timer:             e.timer.View(),
		SnapshotRounds:    e.history.Rounds(),
	}
	if e.champion != nil {
		champ := *e.champion
		s.Champion = &champ
	}
	if e.lastCheck != nil {
		check := *e.lastCheck
		s.LastCheck = &check
	}
	return s
}

func (e *Engine) candidates() []Competitor {
	if e.phase != PhaseReview {
		return e.roster.Active()
	}
	if !e.reviewing {
		return e.roster.Active()
	}
	entering, err := e.enteringRoster(e.round)
	if err != nil {
		return nil
	}
	return entering.Active()
}

// enteringRoster rebuilds the roster as it stood when round began.
func (e *Engine) enteringRoster(round int) (*Roster, error) {
	if round == 1 {
		r := e.roster.Clone()
		for i := range r.competitors {
			r.competitors[i].IsEliminated = false
			r.competitors[i].IsCurrentTurn = false
		}
		return r, nil
	}
	snap, err := e.history.Get(round - 1)
	if err != nil {
		return nil, err
	}
	r := rosterFrom(snap)
	r.ClearTurn()
	return r, nil
}

// enterRound opens the current round for spelling, or straight into review
// when the round has no authored words.
func (e *Engine) enterRound() {
	if len(e.comp.Rounds[e.round]) > 0 {
		e.phase = PhaseSpelling
		return
	}
	e.phase = PhaseReview
	e.notify(LevelInfo, NoticeRoundsExhausted,
		fmt.Sprintf("All rounds completed! Confirm the final winner for Round %d.", e.round))
}

func (e *Engine) endTurn() {
	e.timer.Stop()
	e.roster.ClearTurn()
	e.speller = ""
}

func (e *Engine) requirePhase(want Phase) error {
	if e.phase != want {
		return fmt.Errorf("%w: not allowed during %s", ErrWrongPhase, e.phase)
	}
	return nil
}

func (e *Engine) requireRunning() error {
	if !slices.Contains([]Phase{PhaseSpelling, PhaseReview}, e.phase) {
		return fmt.Errorf("%w: not allowed during %s", ErrWrongPhase, e.phase)
	}
	return nil
}

func (e *Engine) notify(level Level, kind NoticeKind, msg string) {
	e.notifier.Notify(Notice{Level: level, Kind: kind, Message: msg})
}
