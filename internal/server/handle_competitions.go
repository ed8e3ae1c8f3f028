package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/BobbyOffiong/spelling-bee-organizer/internal/live"
	"github.com/BobbyOffiong/spelling-bee-organizer/internal/spellingbee"
)

// CompetitionRequest creates a competition. Rounds are keyed by label
// ("Round 1") and hold the words in order.
type CompetitionRequest struct {
	Name    string              `json:"name"`
	Passkey string              `json:"passkey"`
	Rounds  map[string][]string `json:"rounds,omitempty"`
}

// SaveRoundsRequest merges the rounds sent into a competition.
type SaveRoundsRequest struct {
	Rounds map[string][]string `json:"rounds"`
}

type RoundWordsRequest struct {
	Words []string `json:"words"`
}

type RoundWordsResponse struct {
	Round int                     `json:"round"`
	Label string                  `json:"label"`
	Words []spellingbee.WordEntry `json:"words"`
}

func handleListCompetitions(logger *slog.Logger, store CompetitionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListCompetitions(r.Context(), organizerFrom(r).ID)
		if err != nil {
			logger.Error("listing competitions", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func handleCreateCompetition(logger *slog.Logger, store CompetitionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CompetitionRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.Passkey = strings.TrimSpace(req.Passkey)
		if req.Name == "" || req.Passkey == "" {
			writeError(w, http.StatusBadRequest, "name and passkey are required")
			return
		}
		rounds, err := spellingbee.RoundsFromLabels(req.Rounds)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		d, err := store.CreateCompetition(r.Context(), organizerFrom(r).ID, req.Name, req.Passkey, rounds)
		if errors.Is(err, ErrConflict) {
			writeError(w, http.StatusConflict, "passkey is already in use")
			return
		}
		if err != nil {
			logger.Error("creating competition", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, d)
	}
}

func handleGetCompetition(logger *slog.Logger, store CompetitionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := store.GetCompetition(r.Context(), organizerFrom(r).ID, chi.URLParam(r, "passkey"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Competition not found.")
			return
		}
		if err != nil {
			logger.Error("getting competition", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func handleSaveRounds(logger *slog.Logger, store CompetitionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SaveRoundsRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(req.Rounds) == 0 {
			writeError(w, http.StatusBadRequest, "at least one round is required")
			return
		}
		rounds, err := spellingbee.RoundsFromLabels(req.Rounds)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		d, err := store.SaveRounds(r.Context(), organizerFrom(r).ID, chi.URLParam(r, "passkey"), rounds)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Competition not found.")
			return
		}
		if err != nil {
			logger.Error("saving rounds", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func handleDeleteCompetition(logger *slog.Logger, store CompetitionStore, hub *live.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		passkey := chi.URLParam(r, "passkey")
		err := store.DeleteCompetition(r.Context(), organizerFrom(r).ID, passkey)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Competition not found.")
			return
		}
		if err != nil {
			logger.Error("deleting competition", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		hub.Remove(passkey)
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleGetRound(logger *slog.Logger, store CompetitionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		round, err := roundParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		words, err := store.RoundWords(r.Context(), organizerFrom(r).ID, chi.URLParam(r, "passkey"), round)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Competition not found.")
			return
		}
		if err != nil {
			logger.Error("getting round", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, RoundWordsResponse{Round: round, Label: spellingbee.RoundLabel(round), Words: words})
	}
}

func handlePutRound(logger *slog.Logger, store CompetitionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		round, err := roundParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		var req RoundWordsRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		words := spellingbee.NumberWords(req.Words)
		_, err = store.SaveRounds(r.Context(), organizerFrom(r).ID, chi.URLParam(r, "passkey"),
			map[int][]spellingbee.WordEntry{round: words})
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Competition not found.")
			return
		}
		if err != nil {
			logger.Error("saving round", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, RoundWordsResponse{Round: round, Label: spellingbee.RoundLabel(round), Words: words})
	}
}

// roundParam accepts "3" as well as "Round 3".
func roundParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "round")
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 1 {
			return 0, fmt.Errorf("round must be at least 1")
		}
		return n, nil
	}
	return spellingbee.ParseRoundLabel(raw)
}
