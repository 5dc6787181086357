package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"faspmgr/internal/fasp"
)

const (
	feedSendBuffer = 64
	feedWriteWait  = 5 * time.Second
)

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *feedClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(feedWriteWait))
}

// Feed streams enhanced management events to websocket subscribers. Register
// it with fasp.FormatEnhanced; a slow subscriber is disconnected rather than
// stalling a transfer.
type Feed struct {
	mu      sync.RWMutex
	clients map[*feedClient]struct{}
	base    context.Context
	log     zerolog.Logger
}

// NewFeed returns an empty feed. Subscriptions end when base is done; a nil
// base never ends them.
func NewFeed(base context.Context, log zerolog.Logger) *Feed {
	if base == nil {
		base = context.Background()
	}
	return &Feed{
		clients: make(map[*feedClient]struct{}),
		base:    base,
		log:     log.With().Str("component", "feed").Logger(),
	}
}

// OnEvent implements fasp.Listener. It never fails the transfer.
func (f *Feed) OnEvent(e fasp.Event) error {
	if e.Format != fasp.FormatEnhanced {
		return nil
	}
	data, err := json.Marshal(e.Enhanced)
	if err != nil {
		f.log.Debug().Err(err).Msg("marshal event")
		return nil
	}
	f.broadcast(data)
	return nil
}

func (f *Feed) broadcast(data []byte) {
	var slow []*feedClient
	f.mu.RLock()
	for c := range f.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	f.mu.RUnlock()

	for _, c := range slow {
		f.log.Warn().Msg("feed client too slow, disconnecting")
		f.remove(c)
	}
}

func (f *Feed) add(conn *websocket.Conn) *feedClient {
	c := &feedClient{conn: conn, send: make(chan []byte, feedSendBuffer)}
	go c.writePump()
	f.mu.Lock()
	f.clients[c] = struct{}{}
	f.mu.Unlock()
	feedClients.Inc()
	return c
}

func (f *Feed) remove(c *feedClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		close(c.send)
		feedClients.Dec()
	}
}

// ClientCount returns the number of connected subscribers.
func (f *Feed) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// ServeHTTP upgrades the request and keeps the subscription open until the
// client goes away or the feed's base context ends.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.Debug().Err(err).Msg("upgrade")
		return
	}
	c := f.add(conn)
	defer f.remove(c)

	ctx, cancel := joinContexts(f.base, r.Context())
	defer cancel()
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	select {
	case <-readDone:
	case <-ctx.Done():
	}
}

// checkOrigin accepts same-host requests, requests without an Origin header
// and origins allowed by the CORS configuration.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range corsAllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}
