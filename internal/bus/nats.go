// Package bus connects server instances through NATS so that a room's
// viewers see updates no matter which instance their websocket landed
// on. Delivery is fire-and-forget, matching the droppable semantics of
// the local broadcast path.
package bus

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const subject = "beholder.broadcasts"

// Handler receives broadcasts that originated on other instances.
type Handler func(roomID string, data []byte)

type envelope struct {
	Origin string          `json:"origin"`
	RoomID string          `json:"roomId"`
	Data   json.RawMessage `json:"data"`
}

type Conn struct {
	nc         *nats.Conn
	instanceID string
	sub        *nats.Subscription
}

func Connect(url string) (*Conn, error) {
	nc, err := nats.Connect(
		url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.PingInterval(20*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	return &Conn{
		nc:         nc,
		instanceID: uuid.NewString(),
	}, nil
}

// Publish sends a room broadcast to every other instance. The origin
// tag lets each instance skip messages it published itself.
func (c *Conn) Publish(roomID string, data []byte) error {
	msg, err := json.Marshal(envelope{
		Origin: c.instanceID,
		RoomID: roomID,
		Data:   data,
	})
	if err != nil {
		return err
	}
	return c.nc.Publish(subject, msg)
}

// Subscribe starts relaying remote broadcasts into handler.
func (c *Conn) Subscribe(handler Handler) error {
	sub, err := c.nc.Subscribe(subject, func(m *nats.Msg) {
		var env envelope
		if err := json.Unmarshal(m.Data, &env); err != nil {
			log.Printf("Malformed bus message: %v", err)
			return
		}
		if env.Origin == c.instanceID {
			return
		}
		handler(env.RoomID, env.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", subject, err)
	}
	c.sub = sub
	return nil
}

func (c *Conn) Close() {
	if c.sub != nil {
		c.sub.Unsubscribe()
	}
	c.nc.Drain()
}
