package gateway

import (
	"context"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Hub delivers published views to the browser sockets subscribed to their
// subject. It is a relay.Publisher.
type Hub struct {
	sync.Mutex
	subs map[string]map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*client]struct{})}
}

// Publish hands data to every socket on subject. It never blocks: a socket
// whose queue is full misses the update.
func (h *Hub) Publish(subject string, data []byte) error {
	h.Lock()
	defer h.Unlock()
	for c := range h.subs[subject] {
		if !c.send(outbound{Type: TypeStateUpdate, State: data}) {
			log.Warn().Str("subject", subject).Str("remote", c.remote).Msg("socket-queue-full")
		}
	}
	return nil
}

// subscribe moves c to subject. A socket follows one seat at a time.
func (h *Hub) subscribe(subject string, c *client) {
	h.Lock()
	defer h.Unlock()
	h.remove(c)
	if h.subs[subject] == nil {
		h.subs[subject] = make(map[*client]struct{})
	}
	h.subs[subject][c] = struct{}{}
	c.subject = subject
}

func (h *Hub) unsubscribe(c *client) {
	h.Lock()
	defer h.Unlock()
	h.remove(c)
}

func (h *Hub) remove(c *client) {
	if c.subject == "" {
		return
	}
	delete(h.subs[c.subject], c)
	if len(h.subs[c.subject]) == 0 {
		delete(h.subs, c.subject)
	}
	c.subject = ""
}

// Subscribers returns how many sockets are following subject.
func (h *Hub) Subscribers(subject string) int {
	h.Lock()
	defer h.Unlock()
	return len(h.subs[subject])
}

// Listen feeds the hub every view published under prefix, by any relay,
// until ctx is done.
func (h *Hub) Listen(ctx context.Context, nc *nats.Conn, prefix string) error {
	sub, err := nc.Subscribe(prefix+".game.>", func(m *nats.Msg) {
		h.Publish(m.Subject, m.Data)
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return sub.Unsubscribe()
}
