package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/BobbyOffiong/spelling-bee-organizer/internal/live"
)

const subscriberBuffer = 16

func handleLiveEvents(logger *slog.Logger, hub *live.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := liveSession(w, r, hub)
		if !ok {
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		updates, leave, err := s.Subscribe(r.Context(), "sse-"+uuid.NewString(), subscriberBuffer)
		if err != nil {
			writeRunError(w, logger, err)
			return
		}
		defer leave()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case u, ok := <-updates:
				if !ok {
					// Dropped as a slow subscriber, or the session ended.
					return
				}
				data, err := json.Marshal(u)
				if err != nil {
					logger.Error("encoding update", "error", err)
					return
				}
				fmt.Fprintf(w, "id: %d\nevent: update\ndata: %s\n\n", u.Version, data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
