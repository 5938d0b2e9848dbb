// Package postgres saves game records in a Postgres database, for relays
// that share one store.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/domino14/xwordplay/game"
)

// ErrCodeInUse is returned when a new game would reuse a stored join code.
var ErrCodeInUse = game.ErrCodeInUse

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id         TEXT PRIMARY KEY,
	code       TEXT NOT NULL UNIQUE,
	status     TEXT NOT NULL,
	version    INTEGER NOT NULL,
	record     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
ALTER TABLE games ADD COLUMN IF NOT EXISTS version INTEGER NOT NULL DEFAULT 0;
CREATE INDEX IF NOT EXISTS games_status ON games (status);
`

// The update only applies over the version before the record's own. A
// record that fails that check, or that changes its code, touches no row.
const upsert = `
INSERT INTO games (id, code, status, version, record, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
	status = excluded.status,
	version = excluded.version,
	record = excluded.record,
	updated_at = excluded.updated_at
WHERE games.code = excluded.code AND games.version = excluded.version - 1`

// Store is a game repository backed by Postgres.
type Store struct {
	db *sql.DB
}

// Open connects to the database at url and creates the games table if it
// is missing.
func Open(ctx context.Context, url string) (*Store, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	log.Debug().Msg("postgres-store-opened")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) getOne(ctx context.Context, query, key string) (*game.Record, error) {
	var bts []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&bts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", game.ErrGameNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("reading game %s: %w", key, err)
	}
	rec := &game.Record{}
	if err := json.Unmarshal(bts, rec); err != nil {
		return nil, fmt.Errorf("decoding game %s: %w", key, err)
	}
	return rec, nil
}

func (s *Store) Get(ctx context.Context, id string) (*game.Record, error) {
	return s.getOne(ctx, "SELECT record FROM games WHERE id = $1", id)
}

func (s *Store) GetByCode(ctx context.Context, code string) (*game.Record, error) {
	return s.getOne(ctx, "SELECT record FROM games WHERE code = $1", code)
}

// Save inserts or replaces the record. A game's join code never changes,
// and a stored game is only replaced by the version that follows it.
func (s *Store) Save(ctx context.Context, rec *game.Record) error {
	bts, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding game %s: %w", rec.Code, err)
	}
	r, err := s.db.ExecContext(ctx, upsert, rec.ID, rec.Code, string(rec.Status), rec.Version,
		bts, rec.CreatedAt, rec.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("saving game %s: %w", rec.Code, ErrCodeInUse)
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
