package state

import (
	"LocalSketch/internal/geom"
)

// entry is a committed stroke together with its cached bounding box.
type entry struct {
	stroke Stroke
	bounds geom.Rect
}

func newEntry(s Stroke) entry {
	return entry{stroke: s, bounds: geom.Bounds(s.Points)}
}

// Store owns the committed strokes, the redo stack and the stroke currently
// being captured. Committed strokes are kept in insertion order, which is
// also their z-order.
//
// A Store has a single writer: every method must be called from one logical
// event stream, one call at a time. The Store does no locking; calling it
// from several goroutines without outside serialization is undefined.
type Store struct {
	committed  []entry
	redo       []entry
	inProgress *Stroke
	newID      func() string
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the uuid generator used to name new strokes.
func WithIDGenerator(f func() string) Option {
	return func(s *Store) {
		s.newID = f
	}
}

// NewStore returns an empty store in the idle state.
func NewStore(opts ...Option) *Store {
	s := &Store{newID: NewID}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartStroke begins capturing a new stroke at p. Tool, width and color are
// snapshotted into the stroke. Starting a stroke is a new edit, so the redo
// history is dropped even if the stroke is later discarded.
//
// If a capture is already running it is ended first, exactly as if
// EndStroke had been called.
func (s *Store) StartStroke(p geom.Point, tool Tool, width float64, color string) {
	if s.inProgress != nil {
		s.EndStroke()
	}
	s.inProgress = &Stroke{
		ID:     s.newID(),
		Points: []geom.Point{p},
		Tool:   tool,
		Width:  width,
		Color:  color,
	}
	s.redo = nil
}

// AddPoint appends p to the stroke being captured. It is ignored while
// idle since move events may arrive late or twice.
func (s *Store) AddPoint(p geom.Point) {
	if s.inProgress == nil {
		return
	}
	s.inProgress.Points = append(s.inProgress.Points, p)
}

// EndStroke finishes the capture. The stroke is committed if it has at least
// MinPoints points and dropped otherwise. It reports whether a stroke was
// committed and is a no-op while idle.
func (s *Store) EndStroke() (Stroke, bool) {
	if s.inProgress == nil {
		return Stroke{}, false
	}
	st := s.inProgress.Clone()
	s.inProgress = nil
	if !st.Renderable() {
		return Stroke{}, false
	}
	s.committed = append(s.committed, newEntry(st))
	return st, true
}

// Capturing reports whether a stroke is being captured.
func (s *Store) Capturing() bool {
	return s.inProgress != nil
}

// InProgress returns a copy of the stroke being captured.
func (s *Store) InProgress() (Stroke, bool) {
	if s.inProgress == nil {
		return Stroke{}, false
	}
	return s.inProgress.Clone(), true
}

// Committed returns the committed strokes in drawing order. The point slices
// are shared with the store and must not be modified.
func (s *Store) Committed() []Stroke {
	return strokes(s.committed)
}

// Len returns the number of committed strokes.
func (s *Store) Len() int {
	return len(s.committed)
}

// RedoDepth returns the number of strokes Redo could restore.
func (s *Store) RedoDepth() int {
	return len(s.redo)
}

// Commit appends a stroke captured elsewhere, for example by a remote peer.
// It follows the same rules as a local capture: strokes with fewer than
// MinPoints points are dropped and a commit clears the redo history.
// A stroke without an ID is given one.
func (s *Store) Commit(st Stroke) bool {
	s.redo = nil
	if !st.Renderable() {
		return false
	}
	st = st.Clone()
	if st.ID == "" {
		st.ID = s.newID()
	}
	s.committed = append(s.committed, newEntry(st))
	return true
}

// Undo moves the last committed stroke onto the redo stack.
func (s *Store) Undo() bool {
	n := len(s.committed)
	if n == 0 {
		return false
	}
	s.redo = append(s.redo, s.committed[n-1])
	s.committed = s.committed[:n-1]
	return true
}

// Redo moves the most recently undone stroke back on top of the drawing.
func (s *Store) Redo() bool {
	n := len(s.redo)
	if n == 0 {
		return false
	}
	s.committed = append(s.committed, s.redo[n-1])
	s.redo = s.redo[:n-1]
	return true
}

// ClearAll drops every committed stroke and the redo history. A capture in
// progress is left alone.
func (s *Store) ClearAll() {
	s.committed = nil
	s.redo = nil
}

// Replace swaps the committed strokes for snapshot, typically an
// authoritative copy held elsewhere. Strokes that cannot be rendered are
// skipped. The redo stack and any capture in progress are kept.
func (s *Store) Replace(snapshot []Stroke) {
	committed := make([]entry, 0, len(snapshot))
	for _, st := range snapshot {
		if !st.Renderable() {
			continue
		}
		committed = append(committed, newEntry(st.Clone()))
	}
	s.committed = committed
}

func strokes(entries []entry) []Stroke {
	out := make([]Stroke, len(entries))
	for i, e := range entries {
		out[i] = e.stroke
	}
	return out
}
