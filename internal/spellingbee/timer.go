package spellingbee

import "fmt"

type TimerState string

const (
	TimerIdle    TimerState = "idle"
	TimerRunning TimerState = "running"
	TimerExpired TimerState = "expired"
	TimerStopped TimerState = "stopped"
)

const DefaultTurnSeconds = 60

// Timer is the countdown for one turn. It never schedules anything itself:
// the owner delivers ticks tagged with the generation returned by Start, and
// ticks from any other generation are ignored.
type Timer struct {
	duration   int
	remaining  int
	state      TimerState
	generation uint64
}

func NewTimer(seconds int) *Timer {
	if seconds <= 0 {
		seconds = DefaultTurnSeconds
	}
	return &Timer{duration: seconds, remaining: seconds, state: TimerIdle}
}

// TimerView is the externally visible timer state.
type TimerView struct {
	DurationSeconds  int        `json:"durationSeconds"`
	RemainingSeconds int        `json:"remainingSeconds"`
	State            TimerState `json:"state"`
	Generation       uint64     `json:"generation"`
}

func (t *Timer) View() TimerView {
	return TimerView{
		DurationSeconds:  t.duration,
		RemainingSeconds: t.remaining,
		State:            t.state,
		Generation:       t.generation,
	}
}

func (t *Timer) Running() bool { return t.state == TimerRunning }

func (t *Timer) Generation() uint64 { return t.generation }

// Start begins a fresh countdown and returns its generation.
func (t *Timer) Start() uint64 {
	t.generation++
	t.remaining = t.duration
	t.state = TimerRunning
	return t.generation
}

// Tick advances the countdown by one second. It reports whether this tick
// expired the timer. Stale or out-of-state ticks are no-ops.
func (t *Timer) Tick(gen uint64) bool {
	if t.state != TimerRunning || gen != t.generation {
		return false
	}
	t.remaining--
	if t.remaining > 0 {
		return false
	}
	t.remaining = 0
	t.state = TimerExpired
	t.generation++
	return true
}

// Stop ends a running countdown. The generation moves on so that a tick
// already in flight for the old countdown is dropped.
func (t *Timer) Stop() {
	if t.state != TimerRunning {
		return
	}
	t.state = TimerStopped
	t.generation++
}

// Reset stops the timer and restores the full duration.
func (t *Timer) Reset() {
	t.Stop()
	t.state = TimerIdle
	t.remaining = t.duration
}

func (t *Timer) SetDuration(seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("%w: timer duration must be positive", ErrValidation)
	}
	if t.state == TimerRunning {
		return fmt.Errorf("%w: cannot change the timer while a turn is running", ErrValidation)
	}
	t.duration = seconds
	t.remaining = seconds
	return nil
}
