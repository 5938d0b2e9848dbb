package relay

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/xwordplay/game"
	"github.com/domino14/xwordplay/move"
)

// Requester sends a request and waits for the reply. *nats.Conn is one.
type Requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// Client talks to a relay. It has the same methods as the engine, so a
// shell can play on a remote server.
type Client struct {
	nc      Requester
	prefix  string
	timeout time.Duration
}

func NewClient(nc Requester, prefix string, timeout time.Duration) *Client {
	return &Client{nc: nc, prefix: prefix, timeout: timeout}
}

func (c *Client) request(ctx context.Context, op string, req Request) (*Response, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	msg, err := c.nc.RequestWithContext(ctx, RequestSubject(c.prefix, op), data)
	if err != nil {
		log.Err(err).Str("op", op).Msg("request-failed")
		return nil, err
	}
	resp := &Response{}
	if err := json.Unmarshal(msg.Data, resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		if resp.Error == "" {
			return nil, errors.New("relay returned an empty error")
		}
		return nil, &RemoteError{Kind: resp.ErrorKind, Message: resp.Error}
	}
	return resp, nil
}

func (c *Client) CreateGame(ctx context.Context, player1 string) (string, string, error) {
	resp, err := c.request(ctx, OpCreate, Request{PlayerName: player1})
	if err != nil {
		return "", "", err
	}
	return resp.GameID, resp.GameCode, nil
}

func (c *Client) JoinGame(ctx context.Context, code, name string) (int, error) {
	resp, err := c.request(ctx, OpJoin, Request{GameCode: code, PlayerName: name})
	if err != nil {
		return 0, err
	}
	return resp.PlayerNum, nil
}

func (c *Client) SubmitMove(ctx context.Context, code, name string, p move.Placement) (game.MoveResult, error) {
	resp, err := c.request(ctx, OpMove, Request{GameCode: code, PlayerName: name, Placements: p})
	if err != nil {
		return game.MoveResult{}, err
	}
	if resp.Move == nil {
		return game.MoveResult{}, errors.New("relay reply has no move result")
	}
	return *resp.Move, nil
}

func (c *Client) PassTurn(ctx context.Context, code, name string) (game.PassResult, error) {
	resp, err := c.request(ctx, OpPass, Request{GameCode: code, PlayerName: name})
	if err != nil {
		return game.PassResult{}, err
	}
	if resp.Pass == nil {
		return game.PassResult{}, errors.New("relay reply has no pass result")
	}
	return *resp.Pass, nil
}

func (c *Client) GetStateFor(ctx context.Context, code, name string) (game.PlayerView, error) {
	resp, err := c.request(ctx, OpState, Request{GameCode: code, PlayerName: name})
	if err != nil {
		return game.PlayerView{}, err
	}
	if resp.State == nil {
		return game.PlayerView{}, errors.New("relay reply has no state")
	}
	return *resp.State, nil
}

// Watch calls fn with every view published for the player until ctx is
// done.
func Watch(ctx context.Context, nc *nats.Conn, prefix, code, player string, fn func(game.PlayerView)) error {
	sub, err := nc.Subscribe(PlayerSubject(prefix, code, player), func(m *nats.Msg) {
		v := game.PlayerView{}
		if err := json.Unmarshal(m.Data, &v); err != nil {
			log.Err(err).Str("subject", m.Subject).Msg("bad-view")
			return
		}
		fn(v)
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return sub.Unsubscribe()
}
