package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/BobbyOffiong/spelling-bee-organizer/internal/live"
)

// WSMessage is every frame the server sends on the live socket.
type WSMessage struct {
	Type   string       `json:"type"` // "update" or "result"
	Update *live.Update `json:"update,omitempty"`
	Error  string       `json:"error,omitempty"`
}

const wsMaxLifetime = 6 * time.Hour

// handleLiveWS carries commands in and updates out over one connection.
func handleLiveWS(logger *slog.Logger, hub *live.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := liveSession(w, r, hub)
		if !ok {
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), wsMaxLifetime)
		defer cancel()

		updates, leave, err := s.Subscribe(ctx, "ws-"+uuid.NewString(), subscriberBuffer)
		if err != nil {
			conn.Close(websocket.StatusTryAgainLater, "competition is no longer live")
			return
		}
		defer leave()

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case u, ok := <-updates:
					if !ok {
						return errSubscriptionEnded
					}
					if err := wsjson.Write(gctx, conn, WSMessage{Type: "update", Update: &u}); err != nil {
						return err
					}
				}
			}
		})

		g.Go(func() error {
			for {
				var cmd live.Command
				if err := wsjson.Read(gctx, conn, &cmd); err != nil {
					return err
				}
				reply := WSMessage{Type: "result"}
				u, err := s.Do(gctx, cmd)
				if err != nil {
					reply.Error = err.Error()
				} else {
					reply.Update = &u
				}
				if err := wsjson.Write(gctx, conn, reply); err != nil {
					return err
				}
			}
		})

		err = g.Wait()
		switch {
		case errors.Is(err, errSubscriptionEnded):
			conn.Close(websocket.StatusGoingAway, "subscription ended")
		case websocket.CloseStatus(err) == websocket.StatusNormalClosure:
			conn.Close(websocket.StatusNormalClosure, "")
		default:
			logger.Debug("websocket ended", "error", err)
		}
	}
}

var errSubscriptionEnded = errors.New("subscription ended")
