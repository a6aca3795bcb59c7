package ws

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/manpreetbhatti/beholder/internal/ratelimit"
	"github.com/manpreetbhatti/beholder/internal/session"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 1024 * 1024
	messagesPerSecond = 50
	messageBurst      = 100
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one live connection: a controller pushing updates or a
// viewer display receiving them. Its session record decides what the
// router lets through.
type Client struct {
	hub         *Hub
	router      *Router
	conn        *websocket.Conn
	send        chan []byte
	session     *session.Session
	rateLimiter *ratelimit.Limiter
	clientID    string

	// Canceled when the connection goes away, so in-flight store calls
	// from this connection stop with it.
	ctx    context.Context
	cancel context.CancelFunc
}

// SessionProvider resolves the per-connection session record from the
// upgrade request. The auth subsystem owns this; the default provider
// in cmd/server reads it from the request directly.
type SessionProvider func(r *http.Request) *session.Session

// ServeWs upgrades the request and starts the connection's pumps.
func ServeWs(router *Router, sessions SessionProvider, w http.ResponseWriter, r *http.Request) {
	sess := sessions(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		hub:         router.hub,
		router:      router,
		conn:        conn,
		send:        make(chan []byte, 512),
		session:     sess,
		rateLimiter: ratelimit.NewLimiter(messagesPerSecond, messageBurst),
		clientID:    fmt.Sprintf("%s-%d", conn.RemoteAddr().String(), time.Now().UnixNano()),
		ctx:         ctx,
		cancel:      cancel,
	}

	router.hub.Register(client)

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.cancel()
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	rateLimitWarnings := 0

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		if !c.rateLimiter.Allow() {
			rateLimitWarnings++
			if rateLimitWarnings%100 == 1 {
				log.Printf("Rate limit exceeded for client %s (warning #%d)",
					c.clientID, rateLimitWarnings)
			}
			if rateLimitWarnings > 1000 {
				log.Printf("Disconnecting client %s for excessive rate limit violations", c.clientID)
				return
			}
			continue
		}

		c.router.Dispatch(c, message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// reply sends a message to this connection only, dropping it if the
// writer is backed up.
func (c *Client) reply(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}
