package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BobbyOffiong/spelling-bee-organizer/internal/live"
	"github.com/BobbyOffiong/spelling-bee-organizer/internal/spellingbee"
)

// LiveStateResponse is the response for GET /api/live/{passkey}/state.
type LiveStateResponse struct {
	Version int               `json:"version"`
	Clients int               `json:"clients"`
	State   spellingbee.State `json:"state"`
}

// CommandErrorResponse is returned when the run rejects a command. Notices
// holds what the rejection told the organizer, as subscribers also see it.
type CommandErrorResponse struct {
	Error   string               `json:"error"`
	Version int                  `json:"version"`
	Notices []spellingbee.Notice `json:"notices,omitempty"`
}

func handleLiveLoad(logger *slog.Logger, hub *live.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		passkey := chi.URLParam(r, "passkey")
		s, err := hub.Load(r.Context(), passkey)
		if err != nil {
			writeRunError(w, logger, err)
			return
		}
		v, err := s.View(r.Context())
		if err != nil {
			writeRunError(w, logger, err)
			return
		}
		logger.Info("competition loaded", "passkey", passkey)
		writeJSON(w, http.StatusOK, LiveStateResponse{Version: v.Version, Clients: v.NumClients, State: v.State})
	}
}

func handleLiveState(logger *slog.Logger, hub *live.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := liveSession(w, r, hub)
		if !ok {
			return
		}
		v, err := s.View(r.Context())
		if err != nil {
			writeRunError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, LiveStateResponse{Version: v.Version, Clients: v.NumClients, State: v.State})
	}
}

func handleLiveCommand(logger *slog.Logger, hub *live.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := liveSession(w, r, hub)
		if !ok {
			return
		}
		var cmd live.Command
		if err := readJSON(r, &cmd); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		u, err := s.Do(r.Context(), cmd)
		if err != nil {
			status, msg := runErrorStatus(logger, err)
			writeJSON(w, status, CommandErrorResponse{Error: msg, Version: u.Version, Notices: u.Notices})
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

func handleLiveResults(logger *slog.Logger, store CompetitionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		outcomes, err := store.ListOutcomes(r.Context(), chi.URLParam(r, "passkey"))
		if err != nil {
			logger.Error("listing results", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, outcomes)
	}
}

func liveSession(w http.ResponseWriter, r *http.Request, hub *live.Hub) (*live.Session, bool) {
	s, ok := hub.Get(chi.URLParam(r, "passkey"))
	if !ok {
		writeError(w, http.StatusNotFound, "Competition is not loaded.")
		return nil, false
	}
	return s, true
}
