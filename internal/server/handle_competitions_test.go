package server

import (
	"net/http"
	"testing"
)

func countyBee() CompetitionRequest {
	return CompetitionRequest{
		Name:    "County Bee",
		Passkey: "county-2025",
		Rounds: map[string][]string{
			"Round 1": {"apple", " ", "banana"},
			"Round 2": {"cherry"},
		},
	}
}

func TestCreateAndGetCompetition(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signup(t, "host@example.com")

	d := env.createCompetition(t, cookies, countyBee())
	round1 := d.Rounds["Round 1"]
	if len(round1) != 2 || round1[1].Number != 2 || round1[1].Word != "banana" {
		t.Fatalf("Round 1 = %+v, want apple/banana numbered 1..2", round1)
	}

	w := env.do(t, http.MethodGet, "/api/competitions/county-2025", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	var got CompetitionDetail
	decode(t, w, &got)
	if got.Name != "County Bee" || len(got.Rounds) != 2 {
		t.Errorf("got %+v", got)
	}

	w = env.do(t, http.MethodGet, "/api/competitions", nil, cookies)
	var list []CompetitionSummary
	decode(t, w, &list)
	if len(list) != 1 || list[0].RoundCount != 2 || list[0].WordCount != 3 {
		t.Errorf("list = %+v, want one competition with 2 rounds and 3 words", list)
	}
}

func TestCreateCompetitionValidation(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signup(t, "host@example.com")
	env.createCompetition(t, cookies, countyBee())
	other := env.signup(t, "other@example.com")

	tests := []struct {
		name       string
		cookies    bool
		req        CompetitionRequest
		wantStatus int
	}{
		{name: "missing name", cookies: true, req: CompetitionRequest{Passkey: "x"}, wantStatus: http.StatusBadRequest},
		{name: "bad round label", cookies: true, req: CompetitionRequest{Name: "A", Passkey: "a", Rounds: map[string][]string{"First": {"x"}}}, wantStatus: http.StatusBadRequest},
		{name: "passkey taken by another organizer", cookies: true, req: CompetitionRequest{Name: "Copy", Passkey: "county-2025"}, wantStatus: http.StatusConflict},
		{name: "not signed in", req: CompetitionRequest{Name: "A", Passkey: "a"}, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := other
			if !tt.cookies {
				c = nil
			}
			w := env.do(t, http.MethodPost, "/api/competitions", tt.req, c)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestCompetitionsAreOrganizerScoped(t *testing.T) {
	env := newTestEnv(t)
	owner := env.signup(t, "host@example.com")
	env.createCompetition(t, owner, countyBee())
	other := env.signup(t, "other@example.com")

	w := env.do(t, http.MethodGet, "/api/competitions/county-2025", nil, other)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if msg := errorMessage(t, w); msg != "Competition not found." {
		t.Errorf("error = %q", msg)
	}

	w = env.do(t, http.MethodDelete, "/api/competitions/county-2025", nil, other)
	if w.Code != http.StatusNotFound {
		t.Errorf("delete by other organizer: expected 404, got %d", w.Code)
	}
}

func TestSaveRoundsMerges(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signup(t, "host@example.com")
	env.createCompetition(t, cookies, countyBee())

	w := env.do(t, http.MethodPatch, "/api/competitions/county-2025", SaveRoundsRequest{
		Rounds: map[string][]string{"Round 2": {"damson", "elder"}, "Round 3": {"fig"}},
	}, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var d CompetitionDetail
	decode(t, w, &d)

	if len(d.Rounds["Round 1"]) != 2 {
		t.Errorf("Round 1 should be untouched, got %+v", d.Rounds["Round 1"])
	}
	if r2 := d.Rounds["Round 2"]; len(r2) != 2 || r2[0].Word != "damson" {
		t.Errorf("Round 2 = %+v, want damson/elder", r2)
	}
	if len(d.Rounds["Round 3"]) != 1 {
		t.Errorf("Round 3 = %+v, want fig", d.Rounds["Round 3"])
	}
}

func TestRoundWords(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signup(t, "host@example.com")
	env.createCompetition(t, cookies, countyBee())

	w := env.do(t, http.MethodPut, "/api/competitions/county-2025/rounds/2", RoundWordsRequest{
		Words: []string{"", "grape", "  ", "hazel"},
	}, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("put: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/competitions/county-2025/rounds/2", nil, cookies)
	var resp RoundWordsResponse
	decode(t, w, &resp)
	if resp.Label != "Round 2" || len(resp.Words) != 2 {
		t.Fatalf("got %+v", resp)
	}
	for i, want := range []string{"grape", "hazel"} {
		if resp.Words[i].Number != i+1 || resp.Words[i].Word != want {
			t.Errorf("word %d = %+v, want %d %q", i, resp.Words[i], i+1, want)
		}
	}

	tests := []struct {
		path       string
		wantStatus int
	}{
		{path: "/api/competitions/county-2025/rounds/9", wantStatus: http.StatusOK},
		{path: "/api/competitions/county-2025/rounds/0", wantStatus: http.StatusBadRequest},
		{path: "/api/competitions/county-2025/rounds/first", wantStatus: http.StatusBadRequest},
		{path: "/api/competitions/missing/rounds/1", wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := env.do(t, http.MethodGet, tt.path, nil, cookies)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestDeleteCompetitionStopsLiveRun(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.signup(t, "host@example.com")
	env.createCompetition(t, cookies, countyBee())

	if w := env.do(t, http.MethodPost, "/api/live/county-2025/load", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("load: expected 200, got %d", w.Code)
	}

	w := env.do(t, http.MethodDelete, "/api/competitions/county-2025", nil, cookies)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", w.Code)
	}
	if _, ok := env.hub.Get("county-2025"); ok {
		t.Error("live session should be removed")
	}
	w = env.do(t, http.MethodGet, "/api/competitions/county-2025", nil, cookies)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", w.Code)
	}
}
