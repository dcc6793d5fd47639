// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

// Package sqlite is the SQLite storage backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vorte-dev/vorte/internal/store"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

// Compile-time interface check.
var _ store.StatsStore = (*StatsStore)(nil)

// timeLayout is fixed-width so stored timestamps order lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// StatsStore implements store.StatsStore backed by SQLite.
type StatsStore struct {
	db *sql.DB
}

// NewStatsStore opens (or creates) a SQLite database at dbPath and
// initialises the conversation_stats table.
func NewStatsStore(dbPath string) (*StatsStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, vorteerr.Errorf(vorteerr.CodeStoreDatabaseFailure, "opening stats db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, vorteerr.Errorf(vorteerr.CodeStoreDatabaseFailure, "pinging stats db: %w", err)
	}

	if err := migrateStats(db); err != nil {
		_ = db.Close()
		return nil, vorteerr.Errorf(vorteerr.CodeStoreDatabaseFailure, "migrating stats db: %w", err)
	}

	return &StatsStore{db: db}, nil
}

func migrateStats(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS conversation_stats (
	conversation_id TEXT PRIMARY KEY,
	messages        INTEGER NOT NULL DEFAULT 0,
	first_seen      TEXT NOT NULL,
	last_seen       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversation_stats_last_seen ON conversation_stats(last_seen);
`
	_, err := db.Exec(ddl)
	return err
}

func (s *StatsStore) RecordMessage(ctx context.Context, conversationID string, at time.Time) error {
	if conversationID == "" {
		return store.InvalidConversation()
	}

	ts := at.UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO conversation_stats (conversation_id, messages, first_seen, last_seen)
VALUES (?, 1, ?, ?)
ON CONFLICT(conversation_id) DO UPDATE SET
	messages  = messages + 1,
	last_seen = MAX(last_seen, excluded.last_seen)`,
		conversationID, ts, ts)
	if err != nil {
		return vorteerr.Wrap(err, vorteerr.CodeStoreDatabaseFailure, "recording message",
			vorteerr.FieldConversationID(conversationID))
	}
	return nil
}

func (s *StatsStore) Conversation(ctx context.Context, conversationID string) (*store.ConversationStats, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT conversation_id, messages, first_seen, last_seen
FROM conversation_stats WHERE conversation_id = ?`, conversationID)

	c, err := scanStats(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ConversationNotFound(conversationID)
	}
	if err != nil {
		return nil, vorteerr.Wrap(err, vorteerr.CodeStoreDatabaseFailure, "loading conversation stats",
			vorteerr.FieldConversationID(conversationID))
	}
	return c, nil
}

func (s *StatsStore) Conversations(ctx context.Context, opts store.ListOpts) ([]*store.ConversationStats, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT conversation_id, messages, first_seen, last_seen
FROM conversation_stats
ORDER BY last_seen DESC, conversation_id ASC
LIMIT ?`, limit)
	if err != nil {
		return nil, vorteerr.Wrap(err, vorteerr.CodeStoreDatabaseFailure, "listing conversation stats")
	}
	defer func() { _ = rows.Close() }()

	var out []*store.ConversationStats
	for rows.Next() {
		c, err := scanStats(rows)
		if err != nil {
			return nil, vorteerr.Wrap(err, vorteerr.CodeStoreDatabaseFailure, "scanning conversation stats")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, vorteerr.Wrap(err, vorteerr.CodeStoreDatabaseFailure, "iterating conversation stats")
	}
	return out, nil
}

func (s *StatsStore) Totals(ctx context.Context) (store.Totals, error) {
	var t store.Totals
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(messages), 0) FROM conversation_stats`).
		Scan(&t.Conversations, &t.Messages)
	if err != nil {
		return store.Totals{}, vorteerr.Wrap(err, vorteerr.CodeStoreDatabaseFailure, "computing totals")
	}
	return t, nil
}

// Close closes the underlying database.
func (s *StatsStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStats(sc scanner) (*store.ConversationStats, error) {
	var (
		c                   store.ConversationStats
		firstSeen, lastSeen string
	)
	if err := sc.Scan(&c.ConversationID, &c.Messages, &firstSeen, &lastSeen); err != nil {
		return nil, err
	}

	var err error
	if c.FirstSeen, err = time.Parse(timeLayout, firstSeen); err != nil {
		return nil, err
	}
	if c.LastSeen, err = time.Parse(timeLayout, lastSeen); err != nil {
		return nil, err
	}
	return &c, nil
}
