// Package memory keeps game records in process memory. Everything is lost
// when the process exits; the shell and tests use it.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/domino14/xwordplay/game"
)

type entry struct {
	bts     []byte
	code    string
	version int
}

// Store is a map of encoded records. Records are stored encoded so that no
// caller can hold on to, and change, what is stored.
type Store struct {
	sync.RWMutex
	byID   map[string]entry
	codeID map[string]string
}

func NewStore() *Store {
	return &Store{byID: make(map[string]entry), codeID: make(map[string]string)}
}

func decode(bts []byte) (*game.Record, error) {
	rec := &game.Record{}
	if err := json.Unmarshal(bts, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) Get(ctx context.Context, id string) (*game.Record, error) {
	s.RLock()
	e, ok := s.byID[id]
	s.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: id %s", game.ErrGameNotFound, id)
	}
	return decode(e.bts)
}

func (s *Store) GetByCode(ctx context.Context, code string) (*game.Record, error) {
	s.RLock()
	id, ok := s.codeID[code]
	s.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: code %s", game.ErrGameNotFound, code)
	}
	return s.Get(ctx, id)
}

// Save inserts or replaces the record. A join code belongs to one game, and
// a stored game is only replaced by the version that follows it.
func (s *Store) Save(ctx context.Context, rec *game.Record) error {
	bts, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()
	if id, ok := s.codeID[rec.Code]; ok && id != rec.ID {
		return fmt.Errorf("saving game %s: %w", rec.Code, game.ErrCodeInUse)
	}
	if old, ok := s.byID[rec.ID]; ok {
		if old.code != rec.Code {
			return fmt.Errorf("saving game %s: stored under code %s", rec.Code, old.code)
		}
		if old.version != rec.Version-1 {
			return fmt.Errorf("saving game %s version %d over version %d: %w",
				rec.Code, rec.Version, old.version, game.ErrStaleRecord)
		}
	}
	s.byID[rec.ID] = entry{bts: bts, code: rec.Code, version: rec.Version}
	s.codeID[rec.Code] = rec.ID
	return nil
}

// Count returns the number of stored games.
func (s *Store) Count() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.byID)
}
