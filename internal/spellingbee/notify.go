package spellingbee

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type NoticeKind string

const (
	NoticeInvalidSelection NoticeKind = "invalid-selection"
	NoticeRoundNotFound    NoticeKind = "round-not-found"
	NoticeTimeExpired      NoticeKind = "time-expired"
	NoticeRoundAdvanced    NoticeKind = "round-advanced"
	NoticeCompetitionWon   NoticeKind = "competition-won"
	NoticeFirstRound       NoticeKind = "first-round"
	NoticeRoundsExhausted  NoticeKind = "rounds-exhausted"
	NoticeRoundPatched     NoticeKind = "round-patched"
)

// Notice is a human-readable event for the organizer.
type Notice struct {
	Level   Level      `json:"level"`
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

type Notifier interface {
	Notify(Notice)
}

type Cue string

const (
	CueCorrect   Cue = "correct"
	CueIncorrect Cue = "incorrect"
	CueWinner    Cue = "winner"
)

// CueSink receives audio/visual cues. Rendering them is up to the sink.
type CueSink interface {
	Cue(Cue)
}

type discard struct{}

func (discard) Notify(Notice) {}
func (discard) Cue(Cue) {}
