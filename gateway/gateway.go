// Package gateway lets browsers play over a websocket. Each socket sends the
// same requests the relay serves and is pushed its player's view after
// every accepted action in the game it sits in.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/domino14/xwordplay/relay"
)

// Message types sent to the browser.
const (
	TypeReply       = "reply"
	TypeStateUpdate = "state-update"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	sendQueueSize = 16
	maxMessage    = 8 << 10
)

// Handler answers one request; *relay.Relay is one.
type Handler interface {
	Handle(ctx context.Context, op string, data []byte) *relay.Response
}

// An inbound message is a relay.Request with the op in its type field:
// {"type":"move","gameCode":"ABC123","playerName":"alice","placements":[...]}
type inbound struct {
	Type string `json:"type"`
}

type outbound struct {
	Type  string          `json:"type"`
	Op    string          `json:"op,omitempty"`
	Reply *relay.Response `json:"reply,omitempty"`
	State json.RawMessage `json:"state,omitempty"`
}

type Gateway struct {
	h        Handler
	hub      *Hub
	prefix   string
	upgrader websocket.Upgrader
}

// New makes a gateway. The hub must also receive the relay's broadcasts,
// see Hub.Listen, for sockets to see other players' moves.
func New(h Handler, hub *Hub, prefix string) *Gateway {
	return &Gateway{
		h:      h,
		hub:    hub,
		prefix: prefix,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

type client struct {
	conn    *websocket.Conn
	remote  string
	out     chan outbound
	done    chan struct{}
	subject string // guarded by the hub
}

func (c *client) send(m outbound) bool {
	select {
	case <-c.done:
		return true
	case c.out <- m:
		return true
	default:
		return false
	}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Err(err).Str("remote", r.RemoteAddr).Msg("upgrade-failed")
		return
	}
	c := &client{
		conn:   conn,
		remote: r.RemoteAddr,
		out:    make(chan outbound, sendQueueSize),
		done:   make(chan struct{}),
	}
	log.Debug().Str("remote", c.remote).Msg("socket-connected")
	go g.writeMessages(c)
	g.readMessages(r.Context(), c)
	g.hub.unsubscribe(c)
	close(c.done)
	log.Debug().Str("remote", c.remote).Msg("socket-disconnected")
}

func (g *Gateway) readMessages(ctx context.Context, c *client) {
	c.conn.SetReadLimit(maxMessage)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Err(err).Str("remote", c.remote).Msg("socket-read-failed")
			}
			return
		}
		g.handle(ctx, c, data)
	}
}

func (g *Gateway) handle(ctx context.Context, c *client, data []byte) {
	in := inbound{}
	if err := json.Unmarshal(data, &in); err != nil {
		c.send(outbound{Type: TypeReply, Reply: &relay.Response{
			Error: "could not parse message: " + err.Error(), ErrorKind: "BadRequest"}})
		return
	}
	resp := g.h.Handle(ctx, in.Type, data)
	c.send(outbound{Type: TypeReply, Op: in.Type, Reply: resp})
	if !resp.OK {
		return
	}

	req := relay.Request{}
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}
	switch in.Type {
	case relay.OpCreate, relay.OpJoin:
		// The join broadcast went out before this socket was listening.
		g.follow(c, resp.GameCode, req.PlayerName)
		g.push(ctx, c, resp.GameCode, req.PlayerName)
	case relay.OpState:
		if resp.State != nil && resp.State.MyPlayerNum != 0 {
			g.follow(c, resp.GameCode, req.PlayerName)
		}
	}
}

func (g *Gateway) follow(c *client, code, player string) {
	g.hub.subscribe(relay.PlayerSubject(g.prefix, code, player), c)
}

func (g *Gateway) push(ctx context.Context, c *client, code, player string) {
	body, err := json.Marshal(relay.Request{GameCode: code, PlayerName: player})
	if err != nil {
		return
	}
	resp := g.h.Handle(ctx, relay.OpState, body)
	if !resp.OK || resp.State == nil {
		return
	}
	state, err := json.Marshal(resp.State)
	if err != nil {
		return
	}
	c.send(outbound{Type: TypeStateUpdate, State: state})
}

func (g *Gateway) writeMessages(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case m := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(m); err != nil {
				log.Err(err).Str("remote", c.remote).Msg("socket-write-failed")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
