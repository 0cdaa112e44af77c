// Package net carries board sessions between a host and its peers: JSON
// messages over websockets, plus mDNS discovery and share links.
package net

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"LocalSketch/internal/logging"
	"LocalSketch/internal/state"
)

// Path is the HTTP path the hub is served on.
const Path = "/board"

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 << 20
	sendQueue      = 64
	inboundQueue   = 256
)

// ErrClosed is returned once a hub or connection has been closed.
var ErrClosed = errors.New("connection closed")

// Peer is one client connected to the host.
type Peer struct {
	ID   string
	Addr string

	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// close says goodbye with a close frame before dropping the connection.
func (p *Peer) close() {
	p.shutdown(true)
}

// abort drops the connection at once. It is used where a peer that stopped
// reading could otherwise hold up the caller for writeWait.
func (p *Peer) abort() {
	p.shutdown(false)
}

func (p *Peer) shutdown(handshake bool) {
	p.closeOnce.Do(func() {
		close(p.done)
		if handshake {
			_ = p.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
		}
		p.conn.Close()
	})
}

// Inbound is a message received by the hub, tagged with its sender.
type Inbound struct {
	Peer    *Peer
	Message Message
}

// Hub is run by the HOST. It accepts websocket connections from peers,
// funnels everything they send into one channel and fans messages out.
type Hub struct {
	upgrader websocket.Upgrader
	log      *slog.Logger

	mu    sync.RWMutex
	peers map[string]*Peer

	inbound   chan Inbound
	closed    chan struct{}
	closeOnce sync.Once
}

// NewHub creates a hub with no peers.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Peers join through a share link on the LAN, not from a page.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log:     logging.OrDiscard(log).With("component", "hub"),
		peers:   make(map[string]*Peer),
		inbound: make(chan Inbound, inboundQueue),
		closed:  make(chan struct{}),
	}
}

// Inbound returns the channel every peer message arrives on, including the
// synthetic TypeJoin and TypeLeave messages. It must be drained.
func (h *Hub) Inbound() <-chan Inbound {
	return h.inbound
}

// ServeHTTP upgrades the request and serves the peer until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.closed:
		http.Error(w, "hub closed", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	p := &Peer{
		ID:   state.NewID(),
		Addr: conn.RemoteAddr().String(),
		conn: conn,
		send: make(chan []byte, sendQueue),
		done: make(chan struct{}),
	}
	h.add(p)
	defer h.remove(p)

	go h.writePump(p)
	h.deliver(Inbound{Peer: p, Message: Message{Type: TypeJoin}})
	h.readPump(p)
	h.deliver(Inbound{Peer: p, Message: Message{Type: TypeLeave}})
}

func (h *Hub) add(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[p.ID] = p
	h.log.Info("peer connected", "peer", p.ID, "remote", p.Addr)
	select {
	case <-h.closed:
		// Close already ran over the peers it could see.
		p.close()
	default:
	}
}

func (h *Hub) remove(p *Peer) {
	h.mu.Lock()
	delete(h.peers, p.ID)
	h.mu.Unlock()
	p.close()
	h.log.Info("peer disconnected", "peer", p.ID, "remote", p.Addr)
}

func (h *Hub) deliver(in Inbound) {
	select {
	case h.inbound <- in:
	case <-h.closed:
	}
}

func (h *Hub) readPump(p *Peer) {
	p.conn.SetReadLimit(maxMessageSize)
	_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn("peer read failed", "peer", p.ID, "err", err)
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.log.Warn("dropping malformed message", "peer", p.ID, "err", err)
			continue
		}
		switch msg.Type {
		case TypeJoin, TypeLeave:
			h.log.Warn("dropping reserved message type", "peer", p.ID, "type", msg.Type)
			continue
		}
		h.deliver(Inbound{Peer: p, Message: msg})
	}
}

func (h *Hub) writePump(p *Peer) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case data := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.log.Warn("peer write failed", "peer", p.ID, "err", err)
				p.close()
				return
			}
		case <-ticker.C:
			if err := p.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				p.close()
				return
			}
		case <-p.done:
			return
		}
	}
}

// Send queues msg for p. A peer whose queue is full is dropped without a
// close handshake rather than allowed to stall the host.
func (h *Hub) Send(p *Peer, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	h.enqueue(p, data)
	return nil
}

// Broadcast queues msg for every connected peer.
func (h *Hub) Broadcast(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, p := range h.peers {
		h.enqueue(p, data)
	}
	return nil
}

func (h *Hub) enqueue(p *Peer, data []byte) {
	select {
	case <-p.done:
	case p.send <- data:
	default:
		h.log.Warn("peer too slow, disconnecting", "peer", p.ID)
		p.abort()
	}
}

// Peers returns the number of connected peers.
func (h *Hub) Peers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Close disconnects every peer. Messages still buffered on the inbound
// channel stay readable.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.closed)
		h.mu.RLock()
		defer h.mu.RUnlock()
		for _, p := range h.peers {
			p.close()
		}
	})
}

// Closed is closed once Close has been called.
func (h *Hub) Closed() <-chan struct{} {
	return h.closed
}
