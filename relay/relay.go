// Package relay carries game requests and updates over NATS. Each op has a
// request/reply subject; after every accepted action, each player of the
// game is sent their own view on their own subject.
package relay

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/xwordplay/game"
	"github.com/domino14/xwordplay/move"
)

// Service is the game engine as the relay uses it.
type Service interface {
	CreateGame(ctx context.Context, player1 string) (string, string, error)
	JoinGame(ctx context.Context, code, name string) (int, error)
	SubmitMove(ctx context.Context, code, name string, p move.Placement) (game.MoveResult, error)
	PassTurn(ctx context.Context, code, name string) (game.PassResult, error)
	GetStateFor(ctx context.Context, code, name string) (game.PlayerView, error)
}

// Publisher sends a message without waiting for a reply. *nats.Conn is one.
type Publisher interface {
	Publish(subject string, data []byte) error
}

const (
	publishAttempts = 3
	publishDelay    = 50 * time.Millisecond
)

type Relay struct {
	svc    Service
	pub    Publisher
	prefix string
}

func New(svc Service, pub Publisher, prefix string) *Relay {
	return &Relay{svc: svc, pub: pub, prefix: prefix}
}

// RequestSubject is the subject requests for op are sent to.
func RequestSubject(prefix, op string) string {
	return prefix + "." + op
}

// PlayerSubject is the subject a player's updates for a game are sent to.
// Distinct names always get distinct subjects.
func PlayerSubject(prefix, code, player string) string {
	return prefix + ".game." + code + "." + subjectToken(player)
}

// subjectToken encodes a name as one subject token: its bytes in hex, which
// never contain the '.', '*' or '>' that NATS gives meaning to. The empty
// name, which hex would make an empty token, is "_".
func subjectToken(s string) string {
	if s == "" {
		return "_"
	}
	return hex.EncodeToString([]byte(s))
}

// Handle answers one request for op. It never fails: errors go in the
// response.
func (r *Relay) Handle(ctx context.Context, op string, data []byte) *Response {
	req := Request{}
	if err := json.Unmarshal(data, &req); err != nil {
		return &Response{Error: "could not parse request: " + err.Error(), ErrorKind: "BadRequest"}
	}
	code := strings.ToUpper(strings.TrimSpace(req.GameCode))

	switch op {
	case OpCreate:
		id, code, err := r.svc.CreateGame(ctx, req.PlayerName)
		if err != nil {
			return errorResponse(err)
		}
		return &Response{OK: true, GameID: id, GameCode: code, PlayerNum: 1}

	case OpJoin:
		slot, err := r.svc.JoinGame(ctx, code, req.PlayerName)
		if err != nil {
			return errorResponse(err)
		}
		r.broadcast(ctx, code)
		return &Response{OK: true, GameCode: code, PlayerNum: slot}

	case OpMove:
		p, err := move.NewPlacement(req.Placements)
		if err != nil {
			return errorResponse(err)
		}
		res, err := r.svc.SubmitMove(ctx, code, req.PlayerName, p)
		if err != nil {
			return errorResponse(err)
		}
		r.broadcast(ctx, code)
		return &Response{OK: true, GameCode: code, Move: &res}

	case OpPass:
		res, err := r.svc.PassTurn(ctx, code, req.PlayerName)
		if err != nil {
			return errorResponse(err)
		}
		r.broadcast(ctx, code)
		return &Response{OK: true, GameCode: code, Pass: &res}

	case OpState:
		v, err := r.svc.GetStateFor(ctx, code, req.PlayerName)
		if err != nil {
			return errorResponse(err)
		}
		return &Response{OK: true, GameCode: code, State: &v}
	}
	return &Response{Error: "unknown op: " + op, ErrorKind: "BadRequest"}
}

// broadcast sends each seated player their own view of the game. Failures
// are logged; the action they follow has already been saved.
func (r *Relay) broadcast(ctx context.Context, code string) {
	v, err := r.svc.GetStateFor(ctx, code, "")
	if err != nil {
		log.Err(err).Str("game", code).Msg("broadcast-load-failed")
		return
	}
	for _, name := range []string{v.Player1Name, v.Player2Name} {
		if name == "" {
			continue
		}
		pv, err := r.svc.GetStateFor(ctx, code, name)
		if err != nil {
			log.Err(err).Str("game", code).Str("player", name).Msg("broadcast-load-failed")
			continue
		}
		data, err := json.Marshal(pv)
		if err != nil {
			log.Err(err).Str("game", code).Msg("broadcast-encode-failed")
			continue
		}
		subject := PlayerSubject(r.prefix, code, name)
		err = retry.Do(
			func() error {
				return r.pub.Publish(subject, data)
			},
			retry.Context(ctx),
			retry.Attempts(publishAttempts),
			retry.Delay(publishDelay),
			retry.LastErrorOnly(true),
			retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
				log.Err(err).Uint("n", n).Str("subject", subject).Msg("publish-failed-try-again")
				return retry.BackOffDelay(n, err, config)
			}),
		)
		if err != nil {
			log.Err(err).Str("subject", subject).Msg("broadcast-failed")
		}
	}
}

// Listen subscribes to every request subject in a queue group, so several
// relays can share the load, and serves requests until ctx is done. It then
// drains the subscriptions.
func (r *Relay) Listen(ctx context.Context, nc *nats.Conn, queue string) error {
	// Requests still in flight when ctx ends are answered in full.
	hctx := context.WithoutCancel(ctx)
	subs := make([]*nats.Subscription, 0, len(ops))
	for _, op := range ops {
		subject := RequestSubject(r.prefix, op)
		sub, err := nc.QueueSubscribe(subject, queue, func(m *nats.Msg) {
			log.Debug().Str("subject", m.Subject).Int("bytes", len(m.Data)).Msg("request")
			resp := r.Handle(hctx, op, m.Data)
			data, err := json.Marshal(resp)
			if err != nil {
				data = []byte(fmt.Sprintf(`{"ok":false,"error":%q}`, err.Error()))
			}
			if err := m.Respond(data); err != nil {
				log.Err(err).Str("subject", m.Subject).Msg("respond-failed")
			}
		})
		if err != nil {
			return fmt.Errorf("subscribing to %s: %w", subject, err)
		}
		subs = append(subs, sub)
	}
	if err := nc.Flush(); err != nil {
		return err
	}
	log.Info().Str("prefix", r.prefix).Str("queue", queue).Msg("relay-listening")

	<-ctx.Done()
	for _, sub := range subs {
		if err := sub.Drain(); err != nil {
			log.Err(err).Str("subject", sub.Subject).Msg("drain-failed")
		}
	}
	return nil
}
