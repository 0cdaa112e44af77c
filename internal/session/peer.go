package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"LocalSketch/internal/board"
	"LocalSketch/internal/logging"
	"LocalSketch/internal/net"
	"LocalSketch/internal/state"
)

const leaveTimeout = 2 * time.Second

// Peer keeps a board joined to a host. Local edits are applied to the board
// at once and forwarded; host snapshots then replace the committed strokes.
type Peer struct {
	site  string
	conn  *net.Conn
	board *board.Board
	clock state.Clock
	log   *slog.Logger

	// Edits wait in outbox for writeLoop so the board is never held up by
	// the network.
	outMu   sync.Mutex
	outbox  []state.Edit
	leaving bool
	wake    chan struct{}
	written chan struct{}

	done chan struct{}
	mu   sync.Mutex
	err  error
}

// Join connects b to the host at addr. It takes over b.OnEdit.
func Join(ctx context.Context, addr string, b *board.Board, log *slog.Logger) (*Peer, error) {
	conn, err := net.Dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	p := newPeer(conn, b, log)
	b.OnEdit = p.forward
	go p.receive()
	go p.writeLoop()
	p.log.Info("joined session", "host", addr, "local", conn.LocalAddr())
	return p, nil
}

func newPeer(conn *net.Conn, b *board.Board, log *slog.Logger) *Peer {
	p := &Peer{
		site:    state.NewID(),
		conn:    conn,
		board:   b,
		wake:    make(chan struct{}, 1),
		written: make(chan struct{}),
		done:    make(chan struct{}),
	}
	p.log = logging.OrDiscard(log).With("component", "peer", "site", p.site)
	return p
}

// Site identifies this peer's edits.
func (p *Peer) Site() string {
	return p.site
}

// forward queues e for the host. It runs under the board's lock and never
// blocks.
func (p *Peer) forward(e state.Edit) {
	p.outMu.Lock()
	if p.leaving {
		p.outMu.Unlock()
		p.log.Warn("edit after leaving not sent", "edit", e)
		return
	}
	p.outbox = append(p.outbox, e)
	p.outMu.Unlock()
	p.signal()
}

func (p *Peer) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// writeLoop sends queued edits in order until the peer leaves or the
// connection is lost.
func (p *Peer) writeLoop() {
	defer close(p.written)
	for {
		select {
		case <-p.wake:
		case <-p.done:
			return
		}
		p.outMu.Lock()
		batch, leaving := p.outbox, p.leaving
		p.outbox = nil
		p.outMu.Unlock()

		for _, e := range batch {
			if err := p.conn.Send(net.EditMessage(p.site, e)); err != nil {
				p.fail(err)
				p.log.Error("could not send edit", "edit", e, "err", err)
			}
		}
		if leaving {
			return
		}
	}
}

// fail records the first error of the session.
func (p *Peer) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil {
		p.err = err
	}
}

func (p *Peer) receive() {
	defer close(p.done)
	for {
		msg, err := p.conn.Receive()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				p.fail(err)
				p.log.Error("session lost", "err", err)
			} else {
				p.log.Info("session closed")
			}
			return
		}
		if msg.Type != net.TypeSnapshot {
			p.log.Warn("unexpected message", "type", msg.Type)
			continue
		}
		// Equal revisions carry the same strokes; the host resends one to
		// undo an optimistic edit it rejected.
		if msg.Revision < p.clock.Now() {
			p.log.Debug("stale snapshot", "revision", msg.Revision)
			continue
		}
		p.clock.Update(msg.Revision)
		p.board.Sync(msg.Strokes)
		p.log.Debug("snapshot applied", "revision", msg.Revision, "strokes", len(msg.Strokes))
	}
}

// Revision returns the newest host revision applied to the board.
func (p *Peer) Revision() int64 {
	return p.clock.Now()
}

// Done is closed when the connection to the host ends.
func (p *Peer) Done() <-chan struct{} {
	return p.done
}

// Err returns the first failure of the session: a lost connection or an
// edit that could not be sent. It is nil while all is well and after a
// normal Close.
func (p *Peer) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Close leaves the session. Edits already queued are sent first.
func (p *Peer) Close() error {
	p.outMu.Lock()
	p.leaving = true
	p.outMu.Unlock()
	p.signal()
	<-p.written

	err := p.conn.Leave()
	select {
	case <-p.done:
	case <-time.After(leaveTimeout):
		p.log.Warn("host did not acknowledge leaving")
	}
	if cerr := p.conn.Close(); err == nil {
		err = cerr
	}
	<-p.done
	return err
}
