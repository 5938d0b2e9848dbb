package postgres

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/matryer/is"

	"github.com/domino14/xwordplay/game"
	"github.com/domino14/xwordplay/move"
)

// These tests need a scratch database, e.g.
// XWORD_TEST_DATABASE_URL=postgres://postgres@localhost/xword_test?sslmode=disable
const testURLEnv = "XWORD_TEST_DATABASE_URL"

type noShuffle struct{}

func (noShuffle) Shuffle(int, func(i, j int)) {}

func openStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv(testURLEnv)
	if url == "" {
		t.Skip(testURLEnv + " is not set")
	}
	s, err := Open(context.Background(), url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// newKeys returns an id and a join code no other test run uses, and removes
// the game afterwards.
func newKeys(t *testing.T, s *Store) (string, string) {
	t.Helper()
	id := uuid.NewString()
	code := strings.ToUpper(strings.ReplaceAll(id, "-", "")[:6])
	t.Cleanup(func() {
		s.db.ExecContext(context.Background(), "DELETE FROM games WHERE id = $1 OR code = $2", id, code)
	})
	return id, code
}

func playedRecord(t *testing.T, id, code string) *game.Record {
	t.Helper()
	g := game.New(id, code, "alice", noShuffle{})
	g.Join("bob")
	p, err := move.ParsePlay("8H", "Zy")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.SubmitMove("alice", p); err != nil {
		t.Fatal(err)
	}
	g.Stamp(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	return g.Record()
}

func TestRoundTrip(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := openStore(t)
	id, code := newKeys(t, s)
	rec := playedRecord(t, id, code)
	is.NoErr(s.Save(ctx, rec))

	got, err := s.Get(ctx, id)
	is.NoErr(err)
	is.Equal(got, rec)

	got, err = s.GetByCode(ctx, code)
	is.NoErr(err)
	g, err := game.FromRecord(got)
	is.NoErr(err)
	is.Equal(g.PointsFor(1), 20)

	rec.Status = game.StatusFinished
	rec.Winner = "alice"
	rec.Version++
	is.NoErr(s.Save(ctx, rec))
	// The same version again is stale.
	is.True(errors.Is(s.Save(ctx, rec), game.ErrStaleRecord))
	got, err = s.Get(ctx, id)
	is.NoErr(err)
	is.Equal(got.Winner, "alice")

	counts, err := s.CountByStatus(ctx)
	is.NoErr(err)
	is.True(counts[game.StatusFinished] >= 1)
}

func TestCodesAreUnique(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := openStore(t)
	id, code := newKeys(t, s)
	otherID, otherCode := newKeys(t, s)
	is.NoErr(s.Save(ctx, playedRecord(t, id, code)))

	err := s.Save(ctx, playedRecord(t, otherID, code))
	is.True(errors.Is(err, ErrCodeInUse))
	// The same game under a new code changes nothing.
	is.True(s.Save(ctx, playedRecord(t, id, otherCode)) != nil)
}

func TestNotFound(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := openStore(t)
	_, err := s.Get(ctx, uuid.NewString())
	is.True(errors.Is(err, game.ErrGameNotFound))
}
