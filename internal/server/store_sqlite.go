package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BobbyOffiong/spelling-bee-organizer/internal/live"
	"github.com/BobbyOffiong/spelling-bee-organizer/internal/spellingbee"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

var (
	_ OrganizerStore     = (*SQLiteStore)(nil)
	_ CompetitionStore   = (*SQLiteStore)(nil)
	_ spellingbee.Loader = (*SQLiteStore)(nil)
	_ live.Recorder      = (*SQLiteStore)(nil)
)

// Organizers.

func (s *SQLiteStore) CreateOrganizer(ctx context.Context, email, passwordHash string) (Organizer, error) {
	o := Organizer{ID: uuid.NewString(), Email: email}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO organizers (id, email, password_hash) VALUES (?, ?, ?)
	`, o.ID, o.Email, passwordHash)
	if isUniqueViolation(err) {
		return Organizer{}, ErrConflict
	}
	if err != nil {
		return Organizer{}, err
	}
	return o, nil
}

func (s *SQLiteStore) OrganizerByEmail(ctx context.Context, email string) (Organizer, string, error) {
	var o Organizer
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash FROM organizers WHERE email = ?
	`, email).Scan(&o.ID, &o.Email, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return Organizer{}, "", ErrNotFound
	}
	return o, hash, err
}

func (s *SQLiteStore) CreateSession(ctx context.Context, organizerID string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO organizer_sessions (id, organizer_id) VALUES (?, ?)
	`, id, organizerID)
	return id, err
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM organizer_sessions WHERE id = ?`, sessionID)
	return err
}

func (s *SQLiteStore) OrganizerFromSession(ctx context.Context, sessionID string) (Organizer, error) {
	var o Organizer
	err := s.db.QueryRowContext(ctx, `
		SELECT o.id, o.email
		FROM organizer_sessions s
		JOIN organizers o ON o.id = s.organizer_id
		WHERE s.id = ?
	`, sessionID).Scan(&o.ID, &o.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return Organizer{}, errNoSession
	}
	return o, err
}

// Competitions.

func (s *SQLiteStore) ListCompetitions(ctx context.Context, organizerID string) ([]CompetitionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, c.passkey, c.updated_at,
		       COUNT(DISTINCT w.round), COUNT(w.word)
		FROM competitions c
		LEFT JOIN competition_words w ON w.passkey = c.passkey
		WHERE c.organizer_id = ?
		GROUP BY c.passkey
		ORDER BY c.updated_at DESC, c.passkey
	`, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []CompetitionSummary{}
	for rows.Next() {
		var c CompetitionSummary
		if err := rows.Scan(&c.Name, &c.Passkey, &c.UpdatedAt, &c.RoundCount, &c.WordCount); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (s *SQLiteStore) CreateCompetition(ctx context.Context, organizerID, name, passkey string, rounds map[int][]spellingbee.WordEntry) (CompetitionDetail, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CompetitionDetail{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO competitions (passkey, organizer_id, name) VALUES (?, ?, ?)
	`, passkey, organizerID, name)
	if isUniqueViolation(err) {
		return CompetitionDetail{}, ErrConflict
	}
	if err != nil {
		return CompetitionDetail{}, err
	}
	if err := replaceRounds(ctx, tx, passkey, rounds); err != nil {
		return CompetitionDetail{}, err
	}
	if err := tx.Commit(); err != nil {
		return CompetitionDetail{}, err
	}
	return s.GetCompetition(ctx, organizerID, passkey)
}

func (s *SQLiteStore) GetCompetition(ctx context.Context, organizerID, passkey string) (CompetitionDetail, error) {
	d := CompetitionDetail{Passkey: passkey}
	err := s.db.QueryRowContext(ctx, `
		SELECT name, created_at, updated_at FROM competitions
		WHERE passkey = ? AND organizer_id = ?
	`, passkey, organizerID).Scan(&d.Name, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return CompetitionDetail{}, ErrNotFound
	}
	if err != nil {
		return CompetitionDetail{}, err
	}

	rounds, err := s.words(ctx, passkey)
	if err != nil {
		return CompetitionDetail{}, err
	}
	d.Rounds = make(map[string][]spellingbee.WordEntry, len(rounds))
	for n, words := range rounds {
		d.Rounds[spellingbee.RoundLabel(n)] = words
	}
	return d, nil
}

func (s *SQLiteStore) DeleteCompetition(ctx context.Context, organizerID, passkey string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM competitions WHERE passkey = ? AND organizer_id = ?
	`, passkey, organizerID)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SaveRounds(ctx context.Context, organizerID, passkey string, rounds map[int][]spellingbee.WordEntry) (CompetitionDetail, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CompetitionDetail{}, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE competitions
		SET updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE passkey = ? AND organizer_id = ?
	`, passkey, organizerID)
	if err != nil {
		return CompetitionDetail{}, err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return CompetitionDetail{}, ErrNotFound
	}
	if err := replaceRounds(ctx, tx, passkey, rounds); err != nil {
		return CompetitionDetail{}, err
	}
	if err := tx.Commit(); err != nil {
		return CompetitionDetail{}, err
	}
	return s.GetCompetition(ctx, organizerID, passkey)
}

func (s *SQLiteStore) RoundWords(ctx context.Context, organizerID, passkey string, round int) ([]spellingbee.WordEntry, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM competitions WHERE passkey = ? AND organizer_id = ?)
	`, passkey, organizerID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT number, word FROM competition_words
		WHERE passkey = ? AND round = ?
		ORDER BY number
	`, passkey, round)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	words := []spellingbee.WordEntry{}
	for rows.Next() {
		var w spellingbee.WordEntry
		if err := rows.Scan(&w.Number, &w.Word); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// LoadCompetition serves live sessions. Passkeys are global, so no organizer
// scope applies.
func (s *SQLiteStore) LoadCompetition(ctx context.Context, passkey string) (spellingbee.Competition, error) {
	c := spellingbee.Competition{Passkey: passkey}
	err := s.db.QueryRowContext(ctx, `
		SELECT name FROM competitions WHERE passkey = ?
	`, passkey).Scan(&c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return spellingbee.Competition{}, spellingbee.ErrNotFound
	}
	if err != nil {
		return spellingbee.Competition{}, err
	}

	c.Rounds, err = s.words(ctx, passkey)
	if err != nil {
		return spellingbee.Competition{}, err
	}
	return c, nil
}

// Results.

func (s *SQLiteStore) RecordOutcome(ctx context.Context, o live.Outcome) error {
	competitors, err := json.Marshal(o.Competitors)
	if err != nil {
		return fmt.Errorf("encoding competitors: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO results (id, passkey, competition_name, round, champion_id, champion_name, competitors, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), o.Passkey, o.CompetitionName, o.Round,
		o.Champion.ID, o.Champion.Name, string(competitors), o.FinishedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) ListOutcomes(ctx context.Context, passkey string) ([]live.Outcome, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT competition_name, round, champion_id, champion_name, competitors, finished_at
		FROM results WHERE passkey = ?
		ORDER BY finished_at DESC
	`, passkey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	outcomes := []live.Outcome{}
	for rows.Next() {
		o := live.Outcome{Passkey: passkey}
		var competitors, finished string
		if err := rows.Scan(&o.CompetitionName, &o.Round, &o.Champion.ID, &o.Champion.Name, &competitors, &finished); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(competitors), &o.Competitors); err != nil {
			return nil, fmt.Errorf("decoding competitors: %w", err)
		}
		if o.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("parsing finished_at: %w", err)
		}
		if i := slices.IndexFunc(o.Competitors, func(c spellingbee.Competitor) bool { return c.ID == o.Champion.ID }); i >= 0 {
			o.Champion = o.Competitors[i]
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// Internal helpers.

func (s *SQLiteStore) words(ctx context.Context, passkey string) (map[int][]spellingbee.WordEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT round, number, word FROM competition_words
		WHERE passkey = ?
		ORDER BY round, number
	`, passkey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make(map[int][]spellingbee.WordEntry)
	for rows.Next() {
		var round int
		var w spellingbee.WordEntry
		if err := rows.Scan(&round, &w.Number, &w.Word); err != nil {
			return nil, err
		}
		rounds[round] = append(rounds[round], w)
	}
	return rounds, rows.Err()
}

func replaceRounds(ctx context.Context, tx *sql.Tx, passkey string, rounds map[int][]spellingbee.WordEntry) error {
	for _, n := range slices.Sorted(maps.Keys(rounds)) {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM competition_words WHERE passkey = ? AND round = ?
		`, passkey, n); err != nil {
			return err
		}
		for _, w := range rounds[n] {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO competition_words (passkey, round, number, word) VALUES (?, ?, ?, ?)
			`, passkey, n, w.Number, w.Word); err != nil {
				return fmt.Errorf("saving %s word %d: %w", spellingbee.RoundLabel(n), w.Number, err)
			}
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
