package server

import (
	"context"
	"errors"

	"github.com/BobbyOffiong/spelling-bee-organizer/internal/live"
	"github.com/BobbyOffiong/spelling-bee-organizer/internal/spellingbee"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type Organizer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type OrganizerStore interface {
	CreateOrganizer(ctx context.Context, email, passwordHash string) (Organizer, error)
	OrganizerByEmail(ctx context.Context, email string) (o Organizer, passwordHash string, err error)
	CreateSession(ctx context.Context, organizerID string) (sessionID string, err error)
	DeleteSession(ctx context.Context, sessionID string) error
	OrganizerFromSession(ctx context.Context, sessionID string) (Organizer, error)
}

type CompetitionSummary struct {
	Name       string `json:"name"`
	Passkey    string `json:"passkey"`
	RoundCount int    `json:"roundCount"`
	WordCount  int    `json:"wordCount"`
	UpdatedAt  string `json:"updatedAt"`
}

// CompetitionDetail keys rounds by their display label ("Round 2").
type CompetitionDetail struct {
	Name      string                             `json:"name"`
	Passkey   string                             `json:"passkey"`
	Rounds    map[string][]spellingbee.WordEntry `json:"rounds"`
	CreatedAt string                             `json:"createdAt"`
	UpdatedAt string                             `json:"updatedAt"`
}

type CompetitionStore interface {
	ListCompetitions(ctx context.Context, organizerID string) ([]CompetitionSummary, error)
	CreateCompetition(ctx context.Context, organizerID, name, passkey string, rounds map[int][]spellingbee.WordEntry) (CompetitionDetail, error)
	GetCompetition(ctx context.Context, organizerID, passkey string) (CompetitionDetail, error)
	DeleteCompetition(ctx context.Context, organizerID, passkey string) error
	// SaveRounds replaces the words of every round given and leaves the
	// others alone.
	SaveRounds(ctx context.Context, organizerID, passkey string, rounds map[int][]spellingbee.WordEntry) (CompetitionDetail, error)
	RoundWords(ctx context.Context, organizerID, passkey string, round int) ([]spellingbee.WordEntry, error)
	ListOutcomes(ctx context.Context, passkey string) ([]live.Outcome, error)
}
