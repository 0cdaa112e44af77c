// Package session shares one board between a host and the peers that join
// it over the LAN. The host's store is authoritative: peers send it their
// edits and draw whatever snapshot it broadcasts next.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"LocalSketch/internal/logging"
	"LocalSketch/internal/net"
	"LocalSketch/internal/state"
)

// Host applies the edits of every peer to a single store, in the order the
// hub receives them.
type Host struct {
	hub   *net.Hub
	store *state.Store
	clock state.Clock
	log   *slog.Logger

	mu       sync.RWMutex
	revision int64
	strokes  []state.Stroke
}

// NewHost returns a host with an empty board at revision 1.
func NewHost(log *slog.Logger) *Host {
	log = logging.OrDiscard(log)
	h := &Host{
		hub:   net.NewHub(log),
		store: state.NewStore(),
		log:   log.With("component", "host"),
	}
	h.revision = h.clock.Tick()
	return h
}

// Handler serves peers; mount it on net.Path.
func (h *Host) Handler() http.Handler {
	return h.hub
}

// Run is the store's only writer. It consumes peer messages until ctx is
// cancelled, then disconnects every peer.
func (h *Host) Run(ctx context.Context) error {
	defer h.hub.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case in := <-h.hub.Inbound():
			h.handle(in)
		}
	}
}

func (h *Host) handle(in net.Inbound) {
	log := h.log.With("peer", in.Peer.ID)
	switch in.Message.Type {
	case net.TypeJoin:
		log.Info("peer joined", "remote", in.Peer.Addr, "peers", h.hub.Peers())
		h.send(in.Peer)
	case net.TypeLeave:
		log.Info("peer left", "peers", h.hub.Peers())
	case net.TypeEdit:
		if in.Message.Edit == nil {
			log.Warn("edit message without an edit")
			return
		}
		e := *in.Message.Edit
		if !h.store.Apply(e) {
			// The sender drew this optimistically; show it the board as it is.
			log.Debug("edit changed nothing", "site", in.Message.Site, "edit", e)
			h.send(in.Peer)
			return
		}
		rev := h.publish()
		log.Debug("edit applied", "site", in.Message.Site, "edit", e, "revision", rev)
		if err := h.hub.Broadcast(net.SnapshotMessage(rev, h.Strokes())); err != nil {
			log.Error("broadcast failed", "err", err)
		}
	default:
		log.Warn("unexpected message", "type", in.Message.Type)
	}
}

func (h *Host) send(p *net.Peer) {
	if err := h.hub.Send(p, net.SnapshotMessage(h.Revision(), h.Strokes())); err != nil {
		h.log.Error("send snapshot failed", "peer", p.ID, "err", err)
	}
}

// publish records the store's strokes under a new revision.
func (h *Host) publish() int64 {
	strokes := h.store.Committed()
	rev := h.clock.Tick()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.revision, h.strokes = rev, strokes
	return rev
}

// Revision returns the revision of the latest snapshot.
func (h *Host) Revision() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.revision
}

// Strokes returns the committed strokes as of the latest revision. It may be
// called from any goroutine.
func (h *Host) Strokes() []state.Stroke {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]state.Stroke, len(h.strokes))
	copy(out, h.strokes)
	return out
}

// Peers returns the number of connected peers.
func (h *Host) Peers() int {
	return h.hub.Peers()
}
