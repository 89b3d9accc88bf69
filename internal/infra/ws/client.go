package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	domainuser "homeseek/internal/domain/user"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 32 * 1024
	sendBufferSize = 64
)

// Client is the hub-side handle for one websocket connection. The send
// channel is the only write path to the socket.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID domainuser.ID
	send   chan []byte

	// rooms is owned by the hub and guarded by its mutex.
	rooms map[string]struct{}
}

func newClient(hub *Hub, conn *websocket.Conn, userID domainuser.ID) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
		rooms:  make(map[string]struct{}),
	}
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var envelope Envelope
		if err := json.Unmarshal(frame, &envelope); err != nil {
			continue
		}
		// Malformed or unknown frames are dropped without closing the
		// connection.
		if err := c.hub.handleEvent(ctx, c, envelope); err != nil {
			c.hub.warn("dropped inbound frame", err)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
