// Package engine runs games for remote players. It finds a game by its join
// code, applies one action at a time to it and saves the result.
package engine

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/xwordplay/cache"
	"github.com/domino14/xwordplay/config"
	"github.com/domino14/xwordplay/game"
	"github.com/domino14/xwordplay/move"
	"github.com/domino14/xwordplay/tilemapping"
)

// ErrNoFreeCode is returned when every join code tried was taken.
var ErrNoFreeCode = errors.New("could not find a free join code")

// Repository stores game records. Lookups of unknown games return an error
// wrapping game.ErrGameNotFound. Save refuses, with game.ErrCodeInUse, a new
// game whose code is taken, and with game.ErrStaleRecord, a record whose
// Version does not directly follow the stored one.
type Repository interface {
	Get(ctx context.Context, id string) (*game.Record, error)
	GetByCode(ctx context.Context, code string) (*game.Record, error)
	Save(ctx context.Context, rec *game.Record) error
}

// saveAttempts bounds how often an action is redone on a fresh copy of a
// game that another process saved first.
const saveAttempts = 3

// Config tunes a Service. Zero fields get defaults. With SharedStore set,
// other processes write to the repository too, and records are never cached.
type Config struct {
	LockShards      int
	CodeAttempts    int
	RecordCacheSize int
	SharedStore     bool

	Shuffler tilemapping.Shuffler
	NewCode  func() string
	NewID    func() string
	Clock    func() time.Time
}

// ConfigFrom reads the engine settings out of the loaded configuration. A
// Postgres database is always treated as shared.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		LockShards:      cfg.GetInt(config.ConfigLockShards),
		CodeAttempts:    cfg.GetInt(config.ConfigCodeAttempts),
		RecordCacheSize: cfg.GetInt(config.ConfigRecordCacheSize),
		SharedStore:     cfg.GetBool(config.ConfigSharedStore) || cfg.GetString(config.ConfigDatabaseURL) != "",
	}
}

// RandomCode returns six upper-case hex digits from three random bytes.
func RandomCode() string {
	return strings.ToUpper(hex.EncodeToString(frand.Bytes(3)))
}

func (c *Config) setDefaults() {
	if c.LockShards < 1 {
		c.LockShards = 64
	}
	if c.CodeAttempts < 1 {
		c.CodeAttempts = 8
	}
	if c.Shuffler == nil {
		c.Shuffler = tilemapping.CryptoShuffler
	}
	if c.NewCode == nil {
		c.NewCode = RandomCode
	}
	if c.NewID == nil {
		c.NewID = uuid.NewString
	}
	if c.Clock == nil {
		c.Clock = func() time.Time { return time.Now().UTC() }
	}
}

// Service is the game engine. It is safe for concurrent use: actions on one
// game are serialized, while different games proceed independently unless
// their codes share a lock shard. Across processes sharing a repository,
// versioned saves keep any action from applying over a state it did not see.
type Service struct {
	repo    Repository
	cfg     Config
	locks   *cache.LockTable
	records *cache.Cache[*game.Record]
}

func NewService(repo Repository, cfg Config) *Service {
	cfg.setDefaults()
	cacheSize := cfg.RecordCacheSize
	if cfg.SharedStore {
		cacheSize = 0
	}
	return &Service{
		repo:    repo,
		cfg:     cfg,
		locks:   cache.NewLockTable(cfg.LockShards),
		records: cache.New[*game.Record](cacheSize),
	}
}

// NormalizeCode upper-cases a join code as typed by a player.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateGame starts a game for its first player, who draws a rack at once.
func (s *Service) CreateGame(ctx context.Context, player1 string) (string, string, error) {
	if player1 == "" {
		return "", "", game.ErrMissingPlayerName
	}
	for i := 0; i < s.cfg.CodeAttempts; i++ {
		code := NormalizeCode(s.cfg.NewCode())
		g, err := s.createWithCode(ctx, code, player1)
		if err != nil {
			return "", "", err
		}
		if g != nil {
			log.Info().Str("game", code).Str("id", g.ID()).Str("player", player1).Msg("game-created")
			return g.ID(), code, nil
		}
		log.Debug().Str("code", code).Msg("join-code-taken")
	}
	return "", "", ErrNoFreeCode
}

// createWithCode returns a nil game if the code is taken, including by
// another process between the lookup and the save.
func (s *Service) createWithCode(ctx context.Context, code, player1 string) (*game.Game, error) {
	unlock := s.locks.Lock(code)
	defer unlock()
	_, err := s.repo.GetByCode(ctx, code)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, game.ErrGameNotFound) {
		return nil, fmt.Errorf("checking join code %s: %w", code, err)
	}
	g := game.New(s.cfg.NewID(), code, player1, s.cfg.Shuffler)
	err = s.save(ctx, g)
	if errors.Is(err, game.ErrCodeInUse) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// JoinGame seats the second player, or returns the slot of a player who is
// reconnecting.
func (s *Service) JoinGame(ctx context.Context, code, name string) (int, error) {
	if name == "" {
		return 0, game.ErrMissingPlayerName
	}
	var slot int
	err := s.mutate(ctx, code, func(g *game.Game) error {
		var err error
		slot, err = g.Join(name)
		return err
	})
	if err != nil {
		return 0, err
	}
	log.Info().Str("game", NormalizeCode(code)).Str("player", name).Int("slot", slot).Msg("player-joined")
	return slot, nil
}

// SubmitMove plays a placement for the named player.
func (s *Service) SubmitMove(ctx context.Context, code, name string, p move.Placement) (game.MoveResult, error) {
	var res game.MoveResult
	err := s.mutate(ctx, code, func(g *game.Game) error {
		var err error
		res, err = g.SubmitMove(name, p)
		return err
	})
	return res, err
}

// PassTurn passes for the named player.
func (s *Service) PassTurn(ctx context.Context, code, name string) (game.PassResult, error) {
	var res game.PassResult
	err := s.mutate(ctx, code, func(g *game.Game) error {
		var err error
		res, err = g.Pass(name)
		return err
	})
	return res, err
}

// GetStateFor returns the game as the named player may see it.
func (s *Service) GetStateFor(ctx context.Context, code, name string) (game.PlayerView, error) {
	g, err := s.load(ctx, NormalizeCode(code))
	if err != nil {
		return game.PlayerView{}, err
	}
	return g.View(name), nil
}

// Export returns the full stored record of a game, found by join code or by
// id. It reveals both racks and the bag; it is meant for operators.
func (s *Service) Export(ctx context.Context, codeOrID string) (*game.Record, error) {
	var rec *game.Record
	var err error
	if _, perr := uuid.Parse(codeOrID); perr == nil {
		rec, err = s.repo.Get(ctx, codeOrID)
	} else {
		rec, err = s.records.Get(NormalizeCode(codeOrID), s.loader(ctx))
	}
	if err != nil {
		return nil, err
	}
	g, err := game.FromRecord(rec)
	if err != nil {
		return nil, err
	}
	return g.Record(), nil
}

func (s *Service) loader(ctx context.Context) cache.LoadFunc[*game.Record] {
	return func(code string) (*game.Record, error) {
		return s.repo.GetByCode(ctx, code)
	}
}

// load rebuilds a game from its record. The record is shared with the
// cache and is never modified.
func (s *Service) load(ctx context.Context, code string) (*game.Game, error) {
	rec, err := s.records.Get(code, s.loader(ctx))
	if err != nil {
		return nil, err
	}
	return game.FromRecord(rec)
}

func (s *Service) save(ctx context.Context, g *game.Game) error {
	g.Stamp(s.cfg.Clock())
	rec := g.Record()
	if err := s.repo.Save(ctx, rec); err != nil {
		s.records.Delete(g.Code())
		return fmt.Errorf("saving game %s: %w", g.Code(), err)
	}
	s.records.Put(g.Code(), rec)
	return nil
}

// mutate runs fn on a fresh copy of the game while holding the game's lock,
// and saves the game if fn succeeds. A rejected action is not saved. If
// another process saved the game first, fn is run again on the newer state,
// where it may well be rejected.
func (s *Service) mutate(ctx context.Context, code string, fn func(g *game.Game) error) error {
	code = NormalizeCode(code)
	unlock := s.locks.Lock(code)
	defer unlock()

	for attempt := 1; ; attempt++ {
		g, err := s.load(ctx, code)
		if err != nil {
			return err
		}
		if err := fn(g); err != nil {
			log.Debug().Str("game", code).Err(err).Msg("action-rejected")
			return err
		}
		err = s.save(ctx, g)
		if !errors.Is(err, game.ErrStaleRecord) || attempt == saveAttempts {
			return err
		}
		log.Debug().Str("game", code).Int("attempt", attempt).Msg("stale-record-reloading")
	}
}
