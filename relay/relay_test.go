package relay

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/nats-io/nats.go"

	"github.com/domino14/xwordplay/engine"
	"github.com/domino14/xwordplay/game"
	"github.com/domino14/xwordplay/move"
	"github.com/domino14/xwordplay/store/memory"
)

type noShuffle struct{}

func (noShuffle) Shuffle(int, func(i, j int)) {}

type published struct {
	subject string
	view    game.PlayerView
}

// fakePublisher records what is published, failing the first failures
// calls.
type fakePublisher struct {
	sync.Mutex
	failures int
	calls    int
	msgs     []published
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.Lock()
	defer f.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return errors.New("nats: connection closed")
	}
	v := game.PlayerView{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.msgs = append(f.msgs, published{subject, v})
	return nil
}

func newRelay(pub Publisher) *Relay {
	svc := engine.NewService(memory.NewStore(), engine.Config{
		Shuffler: noShuffle{},
		NewCode:  func() string { return "ABC123" },
	})
	return New(svc, pub, "xword")
}

func request(t *testing.T, req Request) []byte {
	t.Helper()
	bts, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	return bts
}

func TestSubjects(t *testing.T) {
	is := is.New(t)
	is.Equal(RequestSubject("xword", OpMove), "xword.move")
	is.Equal(PlayerSubject("xword", "ABC123", "bob"), "xword.game.ABC123.626f62")
	is.Equal(PlayerSubject("xword", "ABC123", "mr. b*b"), "xword.game.ABC123.6d722e20622a62")
	is.Equal(PlayerSubject("xword", "ABC123", ""), "xword.game.ABC123._")

	seen := map[string]string{}
	for _, name := range []string{"bob.x", "bob_x", "bob x", "bob*x", "bob>x", "_", "5f", "Bob.x"} {
		subj := PlayerSubject("xword", "ABC123", name)
		is.Equal(strings.Count(subj, "."), 3)
		is.True(!strings.ContainsAny(subj, "*> \t"))
		if other, ok := seen[subj]; ok {
			t.Fatalf("%q and %q share subject %s", name, other, subj)
		}
		seen[subj] = name
	}
}

func TestLookalikeNamesGetTheirOwnViews(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	pub := &fakePublisher{}
	r := newRelay(pub)

	is.True(r.Handle(ctx, OpCreate, request(t, Request{PlayerName: "bob.x"})).OK)
	is.True(r.Handle(ctx, OpJoin, request(t, Request{GameCode: "ABC123", PlayerName: "bob_x"})).OK)
	is.Equal(len(pub.msgs), 2)

	first := PlayerSubject("xword", "ABC123", "bob.x")
	second := PlayerSubject("xword", "ABC123", "bob_x")
	is.True(first != second)
	for _, m := range pub.msgs {
		switch m.subject {
		case first:
			is.Equal(m.view.MyPlayerNum, 1)
			is.Equal(m.view.MyRack, []string{"_", "_", "Z", "Y", "Y", "X", "W"})
		case second:
			is.Equal(m.view.MyPlayerNum, 2)
			is.Equal(m.view.MyRack, []string{"W", "V", "V", "U", "U", "U", "U"})
		default:
			t.Fatalf("unexpected subject %s", m.subject)
		}
	}
	is.True(pub.msgs[0].subject != pub.msgs[1].subject)
}

func TestHandleGame(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	pub := &fakePublisher{}
	r := newRelay(pub)

	resp := r.Handle(ctx, OpCreate, request(t, Request{PlayerName: "alice"}))
	is.True(resp.OK)
	is.Equal(resp.GameCode, "ABC123")
	is.Equal(resp.PlayerNum, 1)
	is.Equal(len(pub.msgs), 0)

	resp = r.Handle(ctx, OpJoin, request(t, Request{GameCode: "abc123", PlayerName: "bob"}))
	is.True(resp.OK)
	is.Equal(resp.PlayerNum, 2)
	is.Equal(len(pub.msgs), 2)

	body := `{"gameCode":"ABC123","playerName":"alice","placements":[` +
		`{"row":7,"col":7,"letter":"Z"},{"row":7,"col":8,"letter":"y","isBlank":true}]}`
	resp = r.Handle(ctx, OpMove, []byte(body))
	is.True(resp.OK)
	is.Equal(resp.Move.Score, 20)
	is.Equal(resp.Move.WordsText, "ZY")

	is.Equal(len(pub.msgs), 4)
	for _, m := range pub.msgs[2:] {
		// Each player gets their own rack and nobody else's.
		switch m.subject {
		case PlayerSubject("xword", "ABC123", "alice"):
			is.Equal(m.view.MyPlayerNum, 1)
			is.Equal(m.view.MyRack, []string{"_", "Y", "Y", "X", "W", "T", "T"})
		case PlayerSubject("xword", "ABC123", "bob"):
			is.Equal(m.view.MyPlayerNum, 2)
			is.Equal(m.view.MyRack, []string{"W", "V", "V", "U", "U", "U", "U"})
		default:
			t.Fatalf("unexpected subject %s", m.subject)
		}
		is.Equal(m.view.Player1Score, 20)
	}

	resp = r.Handle(ctx, OpPass, request(t, Request{GameCode: "ABC123", PlayerName: "bob"}))
	is.True(resp.OK)
	is.True(!resp.Pass.GameOver)

	resp = r.Handle(ctx, OpState, request(t, Request{GameCode: "ABC123", PlayerName: "bob"}))
	is.True(resp.OK)
	is.Equal(resp.State.ConsecutivePasses, 1)
	is.Equal(resp.State.CurrentPlayer, 1)
}

func TestHandleRejections(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	pub := &fakePublisher{}
	r := newRelay(pub)
	r.Handle(ctx, OpCreate, request(t, Request{PlayerName: "alice"}))
	r.Handle(ctx, OpJoin, request(t, Request{GameCode: "ABC123", PlayerName: "bob"}))
	sent := len(pub.msgs)

	testCases := []struct {
		op   string
		body string
		kind string
	}{
		{OpJoin, `{"gameCode":"FFFFFF","playerName":"carol"}`, "GameNotFound"},
		{OpJoin, `{"gameCode":"ABC123","playerName":"carol"}`, "GameFull"},
		{OpMove, `{"gameCode":"ABC123","playerName":"bob","placements":[{"row":7,"col":7,"letter":"W"},{"row":7,"col":8,"letter":"V"}]}`, "NotYourTurn"},
		{OpMove, `{"gameCode":"ABC123","playerName":"alice","placements":[]}`, "InvalidPlacementShape"},
		{OpMove, `{"gameCode":"ABC123","playerName":"alice","placements":[{"row":7,"col":7,"letter":"Z"},{"row":8,"col":8,"letter":"Y"}]}`, "InvalidPlacementShape"},
		{OpMove, `{"gameCode":"ABC123","playerName":"alice","placements":[{"row":0,"col":0,"letter":"Z"},{"row":0,"col":1,"letter":"Y"}]}`, "FirstMoveRuleViolation"},
		{OpMove, `{"gameCode":"ABC123","playerName":"alice","placements":[{"row":7,"col":7,"letter":"Q"},{"row":7,"col":8,"letter":"I"}]}`, "TileNotInRack"},
		{OpMove, `{"gameCode":"ABC123","playerName":"alice","placements":[{"row":7,"col":15,"letter":"Q"}]}`, "MalformedPlacement"},
		{OpPass, `{"gameCode":"ABC123","playerName":"mallory"}`, "NotAParticipant"},
		{OpCreate, `{"playerName":""}`, "MissingPlayerName"},
		{OpState, `not json`, "BadRequest"},
		{"resign", `{}`, "BadRequest"},
	}
	for _, tc := range testCases {
		resp := r.Handle(ctx, tc.op, []byte(tc.body))
		is.True(!resp.OK)
		is.Equal(resp.ErrorKind, tc.kind)
		is.True(resp.Error != "")
	}
	is.Equal(len(pub.msgs), sent) // rejections are not broadcast

	resp := r.Handle(ctx, OpMove, []byte(`{"gameCode":"ABC123","playerName":"alice","placements":[{"row":7,"col":7,"letter":"Q"},{"row":7,"col":8,"letter":"I"}]}`))
	is.Equal(resp.Error, "tile 'Q' not in your rack")
}

func TestBroadcastRetries(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	pub := &fakePublisher{failures: 2}
	r := newRelay(pub)
	r.Handle(ctx, OpCreate, request(t, Request{PlayerName: "alice"}))
	resp := r.Handle(ctx, OpJoin, request(t, Request{GameCode: "ABC123", PlayerName: "bob"}))
	is.True(resp.OK)
	is.Equal(pub.calls, 4)
	is.Equal(len(pub.msgs), 2)
}

func TestBroadcastGivesUp(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	pub := &fakePublisher{failures: 100}
	r := newRelay(pub)
	r.Handle(ctx, OpCreate, request(t, Request{PlayerName: "alice"}))
	resp := r.Handle(ctx, OpJoin, request(t, Request{GameCode: "ABC123", PlayerName: "bob"}))
	// The join was saved even though nobody heard about it.
	is.True(resp.OK)
	is.Equal(pub.calls, 2*publishAttempts)
	is.Equal(len(pub.msgs), 0)
}

// loopback answers client requests with a relay, without a NATS server.
type loopback struct {
	r *Relay
}

func (l loopback) RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error) {
	op := subj[strings.LastIndex(subj, ".")+1:]
	bts, err := json.Marshal(l.r.Handle(ctx, op, data))
	if err != nil {
		return nil, err
	}
	return &nats.Msg{Subject: subj, Data: bts}, nil
}

func TestClient(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	c := NewClient(loopback{newRelay(&fakePublisher{})}, "xword", time.Second)

	id, code, err := c.CreateGame(ctx, "alice")
	is.NoErr(err)
	is.True(id != "")
	is.Equal(code, "ABC123")
	slot, err := c.JoinGame(ctx, code, "bob")
	is.NoErr(err)
	is.Equal(slot, 2)

	p, err := move.ParsePlay("8H", "ZY")
	is.NoErr(err)
	_, err = c.SubmitMove(ctx, code, "bob", p)
	is.True(errors.Is(err, game.ErrNotYourTurn))
	var re *RemoteError
	is.True(errors.As(err, &re))
	is.Equal(re.Kind, "NotYourTurn")

	res, err := c.SubmitMove(ctx, code, "alice", p)
	is.NoErr(err)
	is.Equal(res.Score, 28)

	pr, err := c.PassTurn(ctx, code, "bob")
	is.NoErr(err)
	is.True(!pr.GameOver)

	v, err := c.GetStateFor(ctx, code, "alice")
	is.NoErr(err)
	is.Equal(v.MyRack, []string{"_", "_", "Y", "X", "W", "T", "T"})
	is.Equal(v.LastMove.Pass, true)
}
