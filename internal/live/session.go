package live

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BobbyOffiong/spelling-bee-organizer/internal/spellingbee"
)

var ErrSessionClosed = errors.New("session closed")

type Msg interface{ isSessionMsg() }

type FromClient struct {
	Cmd   Command
	Reply chan Result
}

func (FromClient) isSessionMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Update // receives every update until Leave or shutdown
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

// Reload swaps in freshly loaded competition data and discards the run.
type Reload struct {
	Competition spellingbee.Competition
	Reply       chan struct{}
}

func (Reload) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type tick struct{ gen uint64 }

func (tick) isSessionMsg() {}

// Update is what subscribers receive after every change.
type Update struct {
	Version int                  `json:"version"`
	State   spellingbee.State    `json:"state"`
	Notices []spellingbee.Notice `json:"notices,omitempty"`
	Cues    []spellingbee.Cue    `json:"cues,omitempty"`
}

type Result struct {
	Update Update
	Err    error
}

type View struct {
	Version    int
	NumClients int
	State      spellingbee.State
}

type Config struct {
	TurnSeconds  int
	TickInterval time.Duration
	Recorder     Recorder
	Logger       *slog.Logger
}

// collector gathers what the engine emits during one message.
type collector struct {
	notices []spellingbee.Notice
	cues    []spellingbee.Cue
}

func (c *collector) Notify(n spellingbee.Notice) { c.notices = append(c.notices, n) }

func (c *collector) Cue(q spellingbee.Cue) { c.cues = append(c.cues, q) }

func (c *collector) drain() ([]spellingbee.Notice, []spellingbee.Cue) {
	n, q := c.notices, c.cues
	c.notices, c.cues = nil, nil
	return n, q
}

// Session owns one competition run. All state lives on the loop goroutine;
// everything else talks to it through the inbox.
type Session struct {
	passkey  string
	inbox    chan Msg
	engine   *spellingbee.Engine
	events   *collector
	version  int
	clients  map[string]chan Update
	recorder Recorder
	logger   *slog.Logger

	tickEvery time.Duration
	armedGen  uint64
	stopTick  chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSession(parent context.Context, comp spellingbee.Competition, cfg Config) *Session {
	ctx, cancel := context.WithCancel(parent)

	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	events := &collector{}
	s := &Session{
		passkey: comp.Passkey,
		inbox:   make(chan Msg, 64),
		engine: spellingbee.NewEngine(comp, spellingbee.Options{
			TurnSeconds: cfg.TurnSeconds,
			Notifier:    events,
			Cues:        events,
		}),
		events:    events,
		clients:   make(map[string]chan Update),
		recorder:  cfg.Recorder,
		logger:    cfg.Logger.With("passkey", comp.Passkey),
		tickEvery: cfg.TickInterval,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	go s.loop()
	return s
}

func (s *Session) Passkey() string { return s.passkey }

// Inbox exposes the loop's mailbox for transports and tests.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Done is closed once the loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Do applies cmd and waits for the outcome.
func (s *Session) Do(ctx context.Context, cmd Command) (Update, error) {
	reply := make(chan Result, 1)
	if err := s.send(ctx, FromClient{Cmd: cmd, Reply: reply}); err != nil {
		return Update{}, err
	}
	select {
	case res := <-reply:
		return res.Update, res.Err
	case <-ctx.Done():
		return Update{}, ctx.Err()
	case <-s.done:
		return Update{}, ErrSessionClosed
	}
}

func (s *Session) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := s.send(ctx, GetState{Reply: reply}); err != nil {
		return View{}, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-s.done:
		return View{}, ErrSessionClosed
	}
}

// Subscribe registers a client outbox. The returned func unsubscribes.
func (s *Session) Subscribe(ctx context.Context, clientID string, buffer int) (<-chan Update, func(), error) {
	out := make(chan Update, buffer)
	if err := s.send(ctx, Join{ClientID: clientID, Outbox: out}); err != nil {
		return nil, nil, err
	}
	leave := func() {
		_ = s.send(context.Background(), Leave{ClientID: clientID})
	}
	return out, leave, nil
}

func (s *Session) Reload(ctx context.Context, comp spellingbee.Competition) error {
	reply := make(chan struct{}, 1)
	if err := s.send(ctx, Reload{Competition: comp, Reply: reply}); err != nil {
		return err
	}
	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrSessionClosed
	}
}

// Close stops the loop and waits for it to exit.
func (s *Session) Close() {
	s.cancel()
	<-s.done
}

func (s *Session) send(ctx context.Context, m Msg) error {
	select {
	case s.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrSessionClosed
	}
}

func (s *Session) loop() {
	defer close(s.done)

	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				s.clients[msg.ClientID] = msg.Outbox
				select {
				case msg.Outbox <- s.current(nil, nil):
				default:
				}

			case Leave:
				delete(s.clients, msg.ClientID)

			case FromClient:
				msg.Reply <- s.handle(msg.Cmd)

			case tick:
				before := s.engine.Timer()
				s.engine.Tick(msg.gen)
				if s.engine.Timer() != before {
					s.version++
					s.publish()
				}
				s.syncTimer()

			case Reload:
				s.engine.Load(msg.Competition)
				s.events.drain()
				s.version++
				s.publish()
				s.syncTimer()
				s.logger.Info("competition reloaded")
				msg.Reply <- struct{}{}

			case GetState:
				msg.Reply <- View{
					Version:    s.version,
					NumClients: len(s.clients),
					State:      s.engine.State(),
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) handle(cmd Command) Result {
	wasFinished := s.engine.Phase() == spellingbee.PhaseFinished

	if err := apply(s.engine, cmd); err != nil {
		s.logger.Info("command rejected", "type", cmd.Type, "error", err)
		// Rejections leave the run untouched, but notices still go out.
		notices, cues := s.events.drain()
		u := s.current(notices, cues)
		if len(notices) > 0 || len(cues) > 0 {
			s.broadcast(u)
		}
		return Result{Update: u, Err: err}
	}

	s.version++
	u := s.publish()
	s.syncTimer()
	s.logger.Debug("command applied", "type", cmd.Type, "version", s.version, "phase", u.State.Phase)

	if !wasFinished && u.State.Phase == spellingbee.PhaseFinished {
		s.recordOutcome(u.State)
	}
	return Result{Update: u}
}

func (s *Session) current(notices []spellingbee.Notice, cues []spellingbee.Cue) Update {
	return Update{
		Version: s.version,
		State:   s.engine.State(),
		Notices: notices,
		Cues:    cues,
	}
}

func (s *Session) publish() Update {
	notices, cues := s.events.drain()
	u := s.current(notices, cues)
	s.broadcast(u)
	return u
}

func (s *Session) broadcast(u Update) {
	for id, ch := range s.clients {
		select {
		case ch <- u:
		default:
			// Slow subscriber; drop it rather than stall the loop.
			close(ch)
			delete(s.clients, id)
		}
	}
}

// syncTimer keeps exactly one tick source alive while the engine's timer
// runs, tagged with the running generation, and none otherwise.
func (s *Session) syncTimer() {
	tv := s.engine.Timer()
	if tv.State != spellingbee.TimerRunning {
		s.disarm()
		return
	}
	if s.stopTick != nil && s.armedGen == tv.Generation {
		return
	}
	s.disarm()
	s.arm(tv.Generation)
}

func (s *Session) arm(gen uint64) {
	stop := make(chan struct{})
	s.stopTick = stop
	s.armedGen = gen

	go func() {
		t := time.NewTicker(s.tickEvery)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-s.ctx.Done():
				return
			case <-t.C:
				select {
				case s.inbox <- tick{gen: gen}:
				case <-stop:
					return
				case <-s.ctx.Done():
					return
				}
			}
		}
	}()
}

func (s *Session) disarm() {
	if s.stopTick == nil {
		return
	}
	close(s.stopTick)
	s.stopTick = nil
	s.armedGen = 0
}

func (s *Session) shutdown() {
	s.disarm()
	for id, ch := range s.clients {
		close(ch)
		delete(s.clients, id)
	}
	s.cancel()
}
