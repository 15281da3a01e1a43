package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"pauseonlock/internal/core"
	"pauseonlock/internal/storage"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteJournal implements storage.Journal using SQLite
type SQLiteJournal struct {
	db *sql.DB
}

// New creates a new SQLite journal instance
func New(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	journal := &SQLiteJournal{db: db}

	if err := journal.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return journal, nil
}

// migrate creates the database schema
func (s *SQLiteJournal) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS transitions (
			id TEXT PRIMARY KEY,
			reason TEXT NOT NULL,
			observed_state TEXT NOT NULL,
			action TEXT NOT NULL,
			was_playing INTEGER NOT NULL,
			player TEXT NOT NULL,
			error TEXT,
			at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_transitions_at ON transitions(at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores a transition
func (s *SQLiteJournal) Record(ctx context.Context, t *core.Transition) error {
	if err := t.Validate(); err != nil {
		return err
	}

	var errText sql.NullString
	if t.Error != "" {
		errText = sql.NullString{String: t.Error, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transitions (id, reason, observed_state, action, was_playing, player, error, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, string(t.Reason), t.ObservedState.String(), string(t.Action), t.WasPlaying, t.Player, errText, t.At.UTC())

	if err != nil {
		return fmt.Errorf("failed to insert transition: %w", err)
	}
	return nil
}

// Recent retrieves up to limit transitions, newest first
func (s *SQLiteJournal) Recent(ctx context.Context, limit int) ([]*core.Transition, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reason, observed_state, action, was_playing, player, error, at
		FROM transitions ORDER BY at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transitions []*core.Transition
	for rows.Next() {
		var t core.Transition
		var reason, observed, action string
		var errText sql.NullString

		if err := rows.Scan(&t.ID, &reason, &observed, &action, &t.WasPlaying, &t.Player, &errText, &t.At); err != nil {
			return nil, err
		}

		t.Reason = core.TransitionReason(reason)
		t.ObservedState = core.ParsePlayState(observed)
		t.Action = core.Action(action)
		t.Error = errText.String
		t.At = t.At.UTC()

		transitions = append(transitions, &t)
	}

	return transitions, rows.Err()
}

// Close closes the database connection
func (s *SQLiteJournal) Close() error {
	return s.db.Close()
}

// Ensure SQLiteJournal implements storage.Journal
var _ storage.Journal = (*SQLiteJournal)(nil)
