package live

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/BobbyOffiong/spelling-bee-organizer/internal/spellingbee"
)

// Hub keys live sessions by passkey.
type Hub struct {
	ctx    context.Context
	loader spellingbee.Loader
	cfg    Config

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewHub(ctx context.Context, loader spellingbee.Loader, cfg Config) *Hub {
	return &Hub{
		ctx:      ctx,
		loader:   loader,
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

func (h *Hub) Get(passkey string) (*Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[passkey]
	return s, ok
}

// Load fetches the competition and starts a session for it, or reloads the
// existing one. A failed fetch leaves any existing session untouched.
func (h *Hub) Load(ctx context.Context, passkey string) (*Session, error) {
	comp, err := h.loader.LoadCompetition(ctx, passkey)
	if err != nil {
		if errors.Is(err, spellingbee.ErrNotFound) {
			return nil, fmt.Errorf("competition %q: %w", passkey, err)
		}
		return nil, fmt.Errorf("%w: %w", spellingbee.ErrLoadFailed, err)
	}
	comp.Passkey = passkey

	h.mu.Lock()
	s, ok := h.sessions[passkey]
	if !ok || isDone(s) {
		s = NewSession(h.ctx, comp, h.cfg)
		h.sessions[passkey] = s
		h.mu.Unlock()
		return s, nil
	}
	h.mu.Unlock()

	if err := s.Reload(ctx, comp); err != nil {
		return nil, err
	}
	return s, nil
}

func (h *Hub) Remove(passkey string) {
	h.mu.Lock()
	s, ok := h.sessions[passkey]
	delete(h.sessions, passkey)
	h.mu.Unlock()
	if ok {
		s.Close()
	}
}

func (h *Hub) Close() {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

func isDone(s *Session) bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Check reports whether the hub still accepts loads.
func (h *Hub) Check(context.Context) error { return h.ctx.Err() }
