package live

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BobbyOffiong/spelling-bee-organizer/internal/spellingbee"
)

const wait = time.Second

func testCompetition() spellingbee.Competition {
	return spellingbee.Competition{
		Name:    "County Bee",
		Passkey: "bee-2025",
		Rounds: map[int][]spellingbee.WordEntry{
			1: spellingbee.NumberWords([]string{"apple", "banana"}),
			2: spellingbee.NumberWords([]string{"cherry"}),
		},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	if cfg.TickInterval == 0 {
		cfg.TickInterval = 5 * time.Millisecond
	}
	if cfg.TurnSeconds == 0 {
		cfg.TurnSeconds = 3
	}
	cfg.Logger = quietLogger()
	s := NewSession(context.Background(), testCompetition(), cfg)
	t.Cleanup(s.Close)
	return s
}

// recv waits for one update so tests never hang.
func recv(t *testing.T, ch <-chan Update) Update {
	t.Helper()
	select {
	case u, ok := <-ch:
		require.True(t, ok, "outbox closed unexpectedly")
		return u
	case <-time.After(wait):
		t.Fatal("timed out waiting for update")
		return Update{}
	}
}

// recvUntil drains updates until one carries the given notice kind.
func recvUntil(t *testing.T, ch <-chan Update, kind spellingbee.NoticeKind) []Update {
	t.Helper()
	var seen []Update
	deadline := time.After(wait)
	for {
		select {
		case u, ok := <-ch:
			require.True(t, ok, "outbox closed unexpectedly")
			seen = append(seen, u)
			for _, n := range u.Notices {
				if n.Kind == kind {
					return seen
				}
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s notice", kind)
			return nil
		}
	}
}

func register(t *testing.T, s *Session, names ...string) []spellingbee.Competitor {
	t.Helper()
	u, err := s.Do(context.Background(), Command{Type: CmdRegister, Names: names})
	require.NoError(t, err)
	return u.State.Competitors
}

func TestSessionBroadcastsVersionedUpdates(t *testing.T) {
	s := newTestSession(t, Config{})
	out, leave, err := s.Subscribe(context.Background(), "host", 8)
	require.NoError(t, err)
	defer leave()

	first := recv(t, out)
	assert.Equal(t, 0, first.Version)
	assert.Equal(t, spellingbee.PhaseRegistration, first.State.Phase)

	u, err := s.Do(context.Background(), Command{Type: CmdRegister, Names: []string{"Ann", "Ben"}})
	require.NoError(t, err)
	assert.Equal(t, 1, u.Version)

	next := recv(t, out)
	assert.Equal(t, 1, next.Version)
	assert.Equal(t, spellingbee.PhaseSpelling, next.State.Phase)
	assert.Len(t, next.State.Competitors, 2)
}

func TestSessionRejectedCommandKeepsVersion(t *testing.T) {
	s := newTestSession(t, Config{})
	register(t, s, "Ann", "Ben")

	u, err := s.Do(context.Background(), Command{Type: CmdSelectSpeller, CompetitorID: "nobody"})
	require.ErrorIs(t, err, spellingbee.ErrValidation)
	assert.Equal(t, 1, u.Version)
	require.Len(t, u.Notices, 1)
	assert.Equal(t, spellingbee.NoticeInvalidSelection, u.Notices[0].Kind)

	_, err = s.Do(context.Background(), Command{Type: "Dance"})
	require.ErrorIs(t, err, spellingbee.ErrValidation)

	v, err := s.View(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v.Version)
}

func TestSessionTimerCountsDownToExpiry(t *testing.T) {
	s := newTestSession(t, Config{TurnSeconds: 2})
	ann := register(t, s, "Ann", "Ben")[0]

	out, leave, err := s.Subscribe(context.Background(), "host", 32)
	require.NoError(t, err)
	defer leave()
	recv(t, out)

	_, err = s.Do(context.Background(), Command{Type: CmdSelectSpeller, CompetitorID: ann.ID})
	require.NoError(t, err)
	_, err = s.Do(context.Background(), Command{Type: CmdStartTurn, CompetitorID: ann.ID})
	require.NoError(t, err)

	seen := recvUntil(t, out, spellingbee.NoticeTimeExpired)
	last := seen[len(seen)-1]
	assert.Equal(t, spellingbee.TimerExpired, last.State.Timer.State)
	assert.Equal(t, 0, last.State.Timer.RemainingSeconds)

	v, err := s.View(context.Background())
	require.NoError(t, err)
	assert.Equal(t, spellingbee.TimerExpired, v.State.Timer.State)
}

func TestSessionRestartDropsStaleTicks(t *testing.T) {
	s := newTestSession(t, Config{TurnSeconds: 1000, TickInterval: 10 * time.Millisecond})
	cs := register(t, s, "Ann", "Ben")
	ann, ben := cs[0], cs[1]
	ctx := context.Background()

	out, leave, err := s.Subscribe(ctx, "host", 256)
	require.NoError(t, err)
	defer leave()
	recv(t, out)

	_, err = s.Do(ctx, Command{Type: CmdSelectSpeller, CompetitorID: ann.ID})
	require.NoError(t, err)
	_, err = s.Do(ctx, Command{Type: CmdStartTurn, CompetitorID: ann.ID})
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	// Selecting Ben stops Ann's clock before the shorter one starts.
	_, err = s.Do(ctx, Command{Type: CmdSelectSpeller, CompetitorID: ben.ID})
	require.NoError(t, err)
	_, err = s.Do(ctx, Command{Type: CmdSetTimer, Seconds: 2})
	require.NoError(t, err)
	started, err := s.Do(ctx, Command{Type: CmdStartTurn, CompetitorID: ben.ID})
	require.NoError(t, err)
	gen := started.State.Timer.Generation

	var remaining []int
	for _, u := range recvUntil(t, out, spellingbee.NoticeTimeExpired) {
		if u.Version <= started.Version {
			continue
		}
		if u.State.Timer.State == spellingbee.TimerRunning {
			assert.Equal(t, gen, u.State.Timer.Generation)
		}
		remaining = append(remaining, u.State.Timer.RemainingSeconds)
	}
	assert.Equal(t, []int{1, 0}, remaining)
}

func TestSessionStopsTickingAfterCheck(t *testing.T) {
	s := newTestSession(t, Config{TurnSeconds: 1000})
	ann := register(t, s, "Ann", "Ben")[0]
	ctx := context.Background()

	_, err := s.Do(ctx, Command{Type: CmdSelectSpeller, CompetitorID: ann.ID})
	require.NoError(t, err)
	_, err = s.Do(ctx, Command{Type: CmdStartTurn, CompetitorID: ann.ID})
	require.NoError(t, err)

	u, err := s.Do(ctx, Command{Type: CmdCheckSpelling, WordNumber: 1, Spelling: " APPLE "})
	require.NoError(t, err)
	require.NotNil(t, u.State.LastCheck)
	assert.Equal(t, spellingbee.VerdictCorrect, u.State.LastCheck.Verdict)
	assert.Equal(t, []spellingbee.Cue{spellingbee.CueCorrect}, u.Cues)
	assert.Equal(t, spellingbee.TimerStopped, u.State.Timer.State)

	time.Sleep(50 * time.Millisecond)
	v, err := s.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.Version, v.Version)
	assert.Equal(t, u.State.Timer.RemainingSeconds, v.State.Timer.RemainingSeconds)
}

func TestSessionDropsSlowSubscriber(t *testing.T) {
	s := newTestSession(t, Config{})
	out, _, err := s.Subscribe(context.Background(), "slow", 1)
	require.NoError(t, err)

	register(t, s, "Ann", "Ben")

	v, err := s.View(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, v.NumClients)

	first := recv(t, out)
	assert.Equal(t, 0, first.Version)
	_, ok := <-out
	assert.False(t, ok)
}

type recorder struct {
	outcomes chan Outcome
}

func (r *recorder) RecordOutcome(_ context.Context, o Outcome) error {
	r.outcomes <- o
	return nil
}

func TestSessionRecordsChampion(t *testing.T) {
	rec := &recorder{outcomes: make(chan Outcome, 1)}
	s := newTestSession(t, Config{Recorder: rec})
	cs := register(t, s, "Ann", "Ben")
	ctx := context.Background()

	_, err := s.Do(ctx, Command{Type: CmdNextRound})
	require.NoError(t, err)
	u, err := s.Do(ctx, Command{Type: CmdConfirmWinners, WinnerIDs: []string{cs[1].ID}})
	require.NoError(t, err)
	assert.Equal(t, spellingbee.PhaseFinished, u.State.Phase)
	assert.Contains(t, u.Cues, spellingbee.CueWinner)

	select {
	case o := <-rec.outcomes:
		assert.Equal(t, "Ben", o.Champion.Name)
		assert.Equal(t, "bee-2025", o.Passkey)
		assert.Equal(t, 1, o.Round)
		assert.Len(t, o.Competitors, 2)
	case <-time.After(wait):
		t.Fatal("outcome was not recorded")
	}
}

func TestSessionReloadResetsRun(t *testing.T) {
	s := newTestSession(t, Config{})
	register(t, s, "Ann", "Ben")

	comp := testCompetition()
	comp.Name = "Regional Bee"
	require.NoError(t, s.Reload(context.Background(), comp))

	v, err := s.View(context.Background())
	require.NoError(t, err)
	assert.Equal(t, spellingbee.PhaseRegistration, v.State.Phase)
	assert.Equal(t, "Regional Bee", v.State.CompetitionName)
	assert.Empty(t, v.State.Competitors)
}

func TestSessionCloseEndsSubscriptions(t *testing.T) {
	s := NewSession(context.Background(), testCompetition(), Config{Logger: quietLogger()})
	out, _, err := s.Subscribe(context.Background(), "host", 4)
	require.NoError(t, err)
	recv(t, out)

	s.Close()

	_, ok := <-out
	assert.False(t, ok)
	_, err = s.Do(context.Background(), Command{Type: CmdRefresh})
	assert.ErrorIs(t, err, ErrSessionClosed)
}
