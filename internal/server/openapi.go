package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/BobbyOffiong/spelling-bee-organizer/internal/live"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthStatus is one entry of the /healthz response.
type HealthStatus struct {
	Status string `json:"status"`
}

type passkeyPath struct {
	Passkey string `path:"passkey" json:"-" description:"Competition passkey."`
}

type roundPath struct {
	Passkey string `path:"passkey" json:"-" description:"Competition passkey."`
	Round   string `path:"round" json:"-" description:"Round number or \"Round N\" label."`
}

type saveRoundsInput struct {
	Passkey string `path:"passkey" json:"-"`
	SaveRoundsRequest
}

type roundWordsInput struct {
	Passkey string `path:"passkey" json:"-"`
	Round   string `path:"round" json:"-"`
	RoundWordsRequest
}

type commandInput struct {
	Passkey string `path:"passkey" json:"-"`
	live.Command
}

type operation struct {
	method      string
	path        string
	summary     string
	description string
	req         any
	resp        map[int]any
	contentType string
}

var operations = []operation{
	{
		method:      http.MethodGet,
		path:        "/healthz",
		summary:     "Health check",
		description: "Returns the health status of backend dependencies.",
		resp:        map[int]any{http.StatusOK: map[string]HealthStatus{}, http.StatusServiceUnavailable: map[string]HealthStatus{}},
	},
	{
		method:      http.MethodPost,
		path:        "/api/auth/signup",
		summary:     "Organizer signup",
		description: "Creates an organizer account and sets the organizer_session cookie.",
		req:         CredentialsRequest{},
		resp:        map[int]any{http.StatusCreated: Organizer{}, http.StatusBadRequest: ErrorResponse{}, http.StatusConflict: ErrorResponse{}},
	},
	{
		method:      http.MethodPost,
		path:        "/api/auth/login",
		summary:     "Organizer login",
		description: "Authenticate with email and password. Sets organizer_session cookie.",
		req:         CredentialsRequest{},
		resp:        map[int]any{http.StatusOK: Organizer{}, http.StatusUnauthorized: ErrorResponse{}},
	},
	{
		method:      http.MethodPost,
		path:        "/api/auth/logout",
		summary:     "Organizer logout",
		description: "Clears the organizer session and cookie.",
		resp:        map[int]any{http.StatusOK: nil},
	},
	{
		method:      http.MethodGet,
		path:        "/api/auth/me",
		summary:     "Current organizer",
		description: "Returns the signed-in organizer.",
		resp:        map[int]any{http.StatusOK: Organizer{}, http.StatusUnauthorized: ErrorResponse{}},
	},
	{
		method:      http.MethodGet,
		path:        "/api/competitions",
		summary:     "List competitions",
		description: "Returns the organizer's competitions with round and word counts.",
		resp:        map[int]any{http.StatusOK: []CompetitionSummary{}, http.StatusUnauthorized: ErrorResponse{}},
	},
	{
		method:      http.MethodPost,
		path:        "/api/competitions",
		summary:     "Create competition",
		description: "Creates a competition with a globally unique passkey and optional word lists keyed \"Round N\".",
		req:         CompetitionRequest{},
		resp:        map[int]any{http.StatusCreated: CompetitionDetail{}, http.StatusBadRequest: ErrorResponse{}, http.StatusConflict: ErrorResponse{}},
	},
	{
		method:      http.MethodGet,
		path:        "/api/competitions/{passkey}",
		summary:     "Get competition",
		description: "Returns a competition with every round's numbered words.",
		req:         passkeyPath{},
		resp:        map[int]any{http.StatusOK: CompetitionDetail{}, http.StatusNotFound: ErrorResponse{}},
	},
	{
		method:      http.MethodPatch,
		path:        "/api/competitions/{passkey}",
		summary:     "Save rounds",
		description: "Replaces the words of every round sent and keeps the rest. Words are renumbered from 1.",
		req:         saveRoundsInput{},
		resp:        map[int]any{http.StatusOK: CompetitionDetail{}, http.StatusBadRequest: ErrorResponse{}, http.StatusNotFound: ErrorResponse{}},
	},
	{
		method:      http.MethodDelete,
		path:        "/api/competitions/{passkey}",
		summary:     "Delete competition",
		description: "Deletes a competition, its words and results, and stops any live run.",
		req:         passkeyPath{},
		resp:        map[int]any{http.StatusNoContent: nil, http.StatusNotFound: ErrorResponse{}},
	},
	{
		method:      http.MethodGet,
		path:        "/api/competitions/{passkey}/rounds/{round}",
		summary:     "Get round words",
		description: "Returns one round's words in order.",
		req:         roundPath{},
		resp:        map[int]any{http.StatusOK: RoundWordsResponse{}, http.StatusNotFound: ErrorResponse{}},
	},
	{
		method:      http.MethodPut,
		path:        "/api/competitions/{passkey}/rounds/{round}",
		summary:     "Replace round words",
		description: "Replaces one round's words. Blank entries are dropped and the rest renumbered from 1.",
		req:         roundWordsInput{},
		resp:        map[int]any{http.StatusOK: RoundWordsResponse{}, http.StatusNotFound: ErrorResponse{}},
	},
	{
		method:      http.MethodPost,
		path:        "/api/live/{passkey}/load",
		summary:     "Load competition",
		description: "Loads the competition into a live run, replacing any run in progress.",
		req:         passkeyPath{},
		resp:        map[int]any{http.StatusOK: LiveStateResponse{}, http.StatusNotFound: ErrorResponse{}, http.StatusBadGateway: ErrorResponse{}},
	},
	{
		method:      http.MethodGet,
		path:        "/api/live/{passkey}/state",
		summary:     "Live state",
		description: "Returns the current run state and update version.",
		req:         passkeyPath{},
		resp:        map[int]any{http.StatusOK: LiveStateResponse{}, http.StatusNotFound: ErrorResponse{}},
	},
	{
		method:      http.MethodPost,
		path:        "/api/live/{passkey}/commands",
		summary:     "Run command",
		description: "Applies one command to the live run. Wrong-phase commands return 409. Rejections carry the notices they raised.",
		req:         commandInput{},
		resp: map[int]any{
			http.StatusOK:         live.Update{},
			http.StatusBadRequest: CommandErrorResponse{},
			http.StatusNotFound:   ErrorResponse{},
			http.StatusConflict:   CommandErrorResponse{},
		},
	},
	{
		method:      http.MethodGet,
		path:        "/api/live/{passkey}/events",
		summary:     "SSE update stream",
		description: "Server-Sent Events stream of versioned live updates.",
		req:         passkeyPath{},
		resp:        map[int]any{http.StatusOK: nil},
		contentType: "text/event-stream",
	},
	{
		method:      http.MethodGet,
		path:        "/api/live/{passkey}/ws",
		summary:     "Live WebSocket",
		description: "Accepts commands as JSON frames and pushes update and result frames.",
		req:         passkeyPath{},
		resp:        map[int]any{http.StatusSwitchingProtocols: nil},
		contentType: "application/json",
	},
	{
		method:      http.MethodGet,
		path:        "/api/live/{passkey}/results",
		summary:     "Past results",
		description: "Champions of finished runs, newest first.",
		req:         passkeyPath{},
		resp:        map[int]any{http.StatusOK: []live.Outcome{}},
	},
}

func newOpenAPISpec() (*openapi3.Spec, error) {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Spelling Bee Organizer API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Organizer accounts, word lists and live spelling bee runs.")

	var errs []error
	for _, op := range operations {
		oc, err := r.NewOperationContext(op.method, op.path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", op.method, op.path, err))
			continue
		}
		oc.SetSummary(op.summary)
		if op.description != "" {
			oc.SetDescription(op.description)
		}
		if op.req != nil {
			oc.AddReqStructure(op.req)
		}
		for status, body := range op.resp {
			opts := []openapi.ContentOption{openapi.WithHTTPStatus(status)}
			if op.contentType != "" {
				opts = append(opts, openapi.WithContentType(op.contentType))
			}
			oc.AddRespStructure(body, opts...)
		}
		if err := r.AddOperation(oc); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", op.method, op.path, err))
		}
	}
	return r.Spec, errors.Join(errs...)
}

func handleOpenAPI() http.HandlerFunc {
	spec, err := newOpenAPISpec()
	if err != nil {
		panic(fmt.Sprintf("building openapi spec: %v", err))
	}
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
