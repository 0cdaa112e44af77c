package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is a peer's connection to a host. Send may be called from several
// goroutines; Receive must be called from one.
type Conn struct {
	ws *websocket.Conn

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// Dial connects to the hub of the host at addr (host:port).
func Dial(ctx context.Context, addr string) (*Conn, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: Path}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not connect to %s: %w", addr, err)
	}
	ws.SetReadLimit(maxMessageSize)
	return &Conn{ws: ws}, nil
}

// LocalAddr returns the local end of the connection.
func (c *Conn) LocalAddr() string {
	return c.ws.LocalAddr().String()
}

// Send writes msg to the host.
func (c *Conn) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteJSON(msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}
	return nil
}

// Receive blocks until the next message from the host arrives. It returns
// ErrClosed when either side closed the connection normally.
func (c *Conn) Receive() (Message, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || c.isClosed() {
			return Message{}, ErrClosed
		}
		return Message{}, fmt.Errorf("receive: %w", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("receive: malformed message: %w", err)
	}
	return msg, nil
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Leave asks the host to end the session without dropping the socket, so
// messages already sent still arrive. Send fails afterwards and Receive
// returns ErrClosed once the host has answered.
func (c *Conn) Leave() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	err := c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	if errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}
	return err
}

// Close leaves the session and closes the socket.
func (c *Conn) Close() error {
	err := c.Leave()
	c.closeOnce.Do(func() {
		if cerr := c.ws.Close(); err == nil {
			err = cerr
		}
	})
	return err
}
