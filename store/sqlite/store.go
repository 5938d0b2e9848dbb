// Package sqlite saves game records in a SQLite database. The record itself
// is stored as JSON; the columns next to it are for lookups.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/domino14/xwordplay/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id         TEXT PRIMARY KEY,
	code       TEXT NOT NULL UNIQUE,
	status     TEXT NOT NULL,
	version    INTEGER NOT NULL,
	record     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS games_status ON games (status);
`

// The update only applies over the version before the record's own. A
// record that fails that check, or that changes its code, touches no row.
const upsert = `
INSERT INTO games (id, code, status, version, record, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	status = excluded.status,
	version = excluded.version,
	record = excluded.record,
	updated_at = excluded.updated_at
WHERE games.code = excluded.code AND games.version = excluded.version - 1`

// Store is a game repository backed by a SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path. Use ":memory:" for
// a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	// SQLite allows one writer; a single connection also keeps a
	// :memory: database alive and shared.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	log.Debug().Str("path", path).Msg("sqlite-store-opened")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) getOne(ctx context.Context, query, key string) (*game.Record, error) {
	var bts string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&bts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", game.ErrGameNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("reading game %s: %w", key, err)
	}
	rec := &game.Record{}
	if err := json.Unmarshal([]byte(bts), rec); err != nil {
		return nil, fmt.Errorf("decoding game %s: %w", key, err)
	}
	return rec, nil
}

func (s *Store) Get(ctx context.Context, id string) (*game.Record, error) {
	return s.getOne(ctx, "SELECT record FROM games WHERE id = ?", id)
}

func (s *Store) GetByCode(ctx context.Context, code string) (*game.Record, error) {
	return s.getOne(ctx, "SELECT record FROM games WHERE code = ?", code)
}

// Save inserts or replaces the record. A game's join code never changes,
// and a stored game is only replaced by the version that follows it.
func (s *Store) Save(ctx context.Context, rec *game.Record) error {
	bts, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding game %s: %w", rec.Code, err)
	}
	r, err := s.db.ExecContext(ctx, upsert, rec.ID, rec.Code, string(rec.Status), rec.Version,
		string(bts), rec.CreatedAt.Format(time.RFC3339Nano), rec.UpdatedAt.Format(time.RFC3339Nano))
	var sqlErr *msqlite.Error
	// Conflicts on id are updates, so a constraint failure is the code.
	if errors.As(err, &sqlErr) && sqlErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("saving game %s: %w", rec.Code, game.ErrCodeInUse)
	}
	if err != nil {
		return fmt.Errorf("saving game %s: %w", rec.Code, err)
	}
	if err := expectSingleRowAffected(r); err != nil {
		return fmt.Errorf("saving game %s version %d: %w", rec.Code, rec.Version, game.ErrStaleRecord)
	}
	return nil
}

// CountByStatus returns how many games are in each status.
func (s *Store) CountByStatus(ctx context.Context) (map[game.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM games GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("counting games: %w", err)
	}
	defer rows.Close()
	counts := make(map[game.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[game.Status(status)] = n
	}
	return counts, rows.Err()
}

func expectSingleRowAffected(r sql.Result) error {
	rows, err := r.RowsAffected()
	if err != nil {
		return err
	}
	if rows != 1 {
		return fmt.Errorf("expected to update 1 row, but updated %d", rows)
	}
	return nil
}
