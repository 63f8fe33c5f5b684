package handler

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

// Frame is the wire envelope for every inbound websocket message.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outFrame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Client is one live websocket connection. The write pump drains send so
// a slow reader never blocks the pipelines pushing to it.
type Client struct {
	id     string
	socket *websocket.Conn
	send   chan outFrame

	mu     sync.RWMutex
	closed bool
}

func newClient(id string, socket *websocket.Conn, sendBuf int) *Client {
	return &Client{
		id:     id,
		socket: socket,
		send:   make(chan outFrame, sendBuf),
	}
}

// ConnID implements presence.Conn.
func (c *Client) ConnID() string { return c.id }

// Push queues an outbound event. Fire and forget: a full buffer or a
// closed connection drops the frame, delivery is deferred to the history
// query either way.
func (c *Client) Push(event string, payload interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return errors.New("connection closed")
	}

	select {
	case c.send <- outFrame{Event: event, Data: payload}:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for frame := range c.send {
		if err := c.socket.WriteJSON(frame); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

// close marks the client dead and drains pushers. Safe to call once the
// read loop has exited.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
