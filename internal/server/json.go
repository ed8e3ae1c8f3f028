package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BobbyOffiong/spelling-bee-organizer/internal/live"
	"github.com/BobbyOffiong/spelling-bee-organizer/internal/spellingbee"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// runErrorStatus maps run-state errors onto an HTTP status and the message
// shown to the client.
func runErrorStatus(logger *slog.Logger, err error) (int, string) {
	switch {
	case errors.Is(err, spellingbee.ErrWrongPhase):
		return http.StatusConflict, err.Error()
	case errors.Is(err, spellingbee.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, spellingbee.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, spellingbee.ErrLoadFailed):
		logger.Error("loading competition", "error", err)
		return http.StatusBadGateway, "could not load competition"
	case errors.Is(err, live.ErrSessionClosed):
		return http.StatusGone, "competition is no longer live"
	default:
		logger.Error("live request failed", "error", err)
		return http.StatusInternalServerError, "internal error"
	}
}

func writeRunError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, msg := runErrorStatus(logger, err)
	writeError(w, status, msg)
}
