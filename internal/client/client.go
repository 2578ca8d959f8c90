package client

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/minstant/messenger/internal/domain"
	"github.com/minstant/messenger/internal/hub"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is an admitted WebSocket connection bound to a single room for its
// whole lifetime. The identity and room are fixed at admission.
type Client struct {
	registry    *hub.Registry
	broadcaster *hub.Broadcaster
	conn        *websocket.Conn
	send        chan []byte
	username    string
	room        string
}

// New creates a Client for an admitted connection.
func New(reg *hub.Registry, b *hub.Broadcaster, conn *websocket.Conn, username, room string) *Client {
	return &Client{
		registry:    reg,
		broadcaster: b,
		conn:        conn,
		send:        make(chan []byte, 256),
		username:    username,
		room:        room,
	}
}

// Identity returns the authenticated username bound to this connection.
func (c *Client) Identity() string {
	return c.username
}

// Room returns the room this connection was admitted to.
func (c *Client) Room() string {
	return c.room
}

// Send queues a message to be written to the peer. Never blocks: if the
// buffer is full the message is dropped and the rest of the fan-out is
// unaffected.
func (c *Client) Send(data []byte) {
	select {
	case c.send <- data:
	default:
		log.Warn().Str("user", c.username).Str("room", c.room).Msg("send buffer full, dropping message")
	}
}

// ReadPump reads frames from the connection and publishes chat messages.
// On exit the participant leaves its room before the connection closes, so
// no stale entry outlives the connection.
func (c *Client) ReadPump() {
	defer func() {
		c.registry.Leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Str("user", c.username).Err(err).Msg("read error")
			}
			return
		}
		c.handleFrame(data)
	}
}

// WritePump writes queued messages and pings to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

func (c *Client) handleFrame(data []byte) {
	frame, err := domain.DecodeInbound(data)
	if err != nil {
		c.sendError("invalid JSON")
		return
	}

	switch frame.Type {
	case domain.MsgChat:
		err := c.broadcaster.Publish(c.username, c.room, frame.Body)
		switch {
		case err == nil:
		case errors.Is(err, hub.ErrInvalidMessage):
			c.sendError("message body required")
		case errors.Is(err, hub.ErrPersistence):
			log.Err(err).Str("user", c.username).Str("room", c.room).Msg("publish failed")
			c.sendError("message not delivered")
		default:
			log.Err(err).Str("user", c.username).Msg("publish failed")
			c.sendError("message not delivered")
		}
	default:
		c.sendError("unknown message type: " + frame.Type)
	}
}

func (c *Client) sendError(message string) {
	if data, err := domain.Encode(domain.ErrorFrame{Type: domain.MsgError, Message: message}); err == nil {
		c.Send(data)
	}
}
