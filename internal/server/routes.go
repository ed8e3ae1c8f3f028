package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/BobbyOffiong/spelling-bee-organizer/internal/handler/health"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Spelling Bee Organizer API", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, deps.Checks).Routes())

	// Organizer accounts.
	r.Post("/api/auth/signup", handleSignup(logger, deps.Organizers))
	r.Post("/api/auth/login", handleLogin(logger, deps.Organizers))
	r.Post("/api/auth/logout", handleLogout(logger, deps.Organizers))
	r.With(organizerAuthMiddleware(deps.Organizers)).Get("/api/auth/me", handleMe())

	// Word lists, scoped to the signed-in organizer.
	r.Route("/api/competitions", func(r chi.Router) {
		r.Use(organizerAuthMiddleware(deps.Organizers))
		r.Get("/", handleListCompetitions(logger, deps.Competitions))
		r.Post("/", handleCreateCompetition(logger, deps.Competitions))
		r.Get("/{passkey}", handleGetCompetition(logger, deps.Competitions))
		r.Patch("/{passkey}", handleSaveRounds(logger, deps.Competitions))
		r.Delete("/{passkey}", handleDeleteCompetition(logger, deps.Competitions, deps.Hub))
		r.Get("/{passkey}/rounds/{round}", handleGetRound(logger, deps.Competitions))
		r.Put("/{passkey}/rounds/{round}", handlePutRound(logger, deps.Competitions))
	})

	// Running a competition. The passkey is the credential.
	r.Route("/api/live/{passkey}", func(r chi.Router) {
		r.Post("/load", handleLiveLoad(logger, deps.Hub))
		r.Get("/state", handleLiveState(logger, deps.Hub))
		r.Post("/commands", handleLiveCommand(logger, deps.Hub))
		r.Get("/events", handleLiveEvents(logger, deps.Hub))
		r.Get("/ws", handleLiveWS(logger, deps.Hub))
		r.Get("/results", handleLiveResults(logger, deps.Competitions))
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
