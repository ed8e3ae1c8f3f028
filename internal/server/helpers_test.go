package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/BobbyOffiong/spelling-bee-organizer/internal/database"
	"github.com/BobbyOffiong/spelling-bee-organizer/internal/handler/health"
	"github.com/BobbyOffiong/spelling-bee-organizer/internal/live"
	"github.com/BobbyOffiong/spelling-bee-organizer/internal/migrations"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return db
}

type testEnv struct {
	router http.Handler
	store  *SQLiteStore
	hub    *live.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	bcryptCost = bcrypt.MinCost

	db := setupTestDB(t)
	store := NewSQLiteStore(db)
	hub := live.NewHub(context.Background(), store, live.Config{
		TurnSeconds:  3,
		TickInterval: 10 * time.Millisecond,
		Recorder:     store,
		Logger:       quietLogger(),
	})
	t.Cleanup(hub.Close)

	return &testEnv{
		router: newRouter(quietLogger(), Deps{
			Organizers:   store,
			Competitions: store,
			Hub:          hub,
			Checks:       map[string]health.Checker{"sqlite": database.Checker{DB: db}, "live": hub},
		}),
		store: store,
		hub:   hub,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// signup registers an organizer and returns the session cookies.
func (e *testEnv) signup(t *testing.T, email string) []*http.Cookie {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/signup", CredentialsRequest{Email: email, Password: "spelling-bee"}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}

func (e *testEnv) createCompetition(t *testing.T, cookies []*http.Cookie, req CompetitionRequest) CompetitionDetail {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/competitions", req, cookies)
	if w.Code != http.StatusCreated {
		t.Fatalf("create competition: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var d CompetitionDetail
	decode(t, w, &d)
	return d
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	decode(t, w, &resp)
	return resp.Error
}
