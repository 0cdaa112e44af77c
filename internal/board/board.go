// Package board turns pointer gestures and tool settings into edits on a
// stroke store. It is the surface a rendering layer talks to.
package board

import (
	"log/slog"
	"sync"

	"LocalSketch/internal/config"
	"LocalSketch/internal/export"
	"LocalSketch/internal/geom"
	"LocalSketch/internal/logging"
	"LocalSketch/internal/state"
)

// gesture is the snapshot of settings taken when the pointer goes down.
type gesture struct {
	active  bool
	erasing bool // subtracting, as opposed to capturing a stroke
	radius  float64
	cursor  geom.Point
}

// Board owns a stroke store and the current tool settings. It serializes
// its callers with a mutex, so gesture events, setting changes and session
// snapshots may arrive from different goroutines.
type Board struct {
	mu    sync.Mutex
	store *state.Store
	mode  config.EraseMode
	log   *slog.Logger

	tool        state.Tool
	strokeWidth float64
	eraserSize  float64
	color       string

	g gesture

	// OnEdit is called after each local edit reaches the store: every ended
	// stroke (including discarded ones), every erase, and every undo, redo or
	// clear request. It runs
	// with the board locked and must not call back into the board.
	OnEdit func(state.Edit)
}

// Option configures a Board.
type Option func(*Board)

// WithLogger sets the logger for board activity.
func WithLogger(l *slog.Logger) Option {
	return func(b *Board) {
		b.log = l
	}
}

// WithStore makes the board drive s instead of a fresh store.
func WithStore(s *state.Store) Option {
	return func(b *Board) {
		b.store = s
	}
}

// New returns a board using the initial settings in tools.
func New(tools config.Tools, opts ...Option) *Board {
	b := &Board{
		mode:        tools.EraseMode,
		tool:        state.Draw,
		strokeWidth: tools.StrokeWidth,
		eraserSize:  tools.EraserSize,
		color:       tools.Color,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.store == nil {
		b.store = state.NewStore()
	}
	if b.mode == "" {
		b.mode = config.EraseSubtract
	}
	b.log = logging.OrDiscard(b.log).With("component", "board")
	return b
}

// SetTool selects the tool for gestures that start after the call.
func (b *Board) SetTool(t state.Tool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tool = t
}

// SetStrokeWidth sets the width of draw strokes started after the call.
func (b *Board) SetStrokeWidth(w float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.strokeWidth = w
}

// SetEraserSize sets the eraser diameter for gestures started after the call.
func (b *Board) SetEraserSize(size float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.eraserSize = size
}

// SetColor sets the ink colour of draw strokes started after the call.
func (b *Board) SetColor(c string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.color = c
}

func (b *Board) Tool() state.Tool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tool
}

func (b *Board) StrokeWidth() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.strokeWidth
}

func (b *Board) EraserSize() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.eraserSize
}

func (b *Board) Color() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.color
}

// GestureStart handles the pointer going down at p. A gesture that is
// still running is ended first.
func (b *Board) GestureStart(p geom.Point) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.g.active {
		b.endLocked()
	}

	if b.tool == state.Erase && b.mode == config.EraseSubtract {
		b.g = gesture{active: true, erasing: true, radius: b.eraserSize / 2, cursor: p}
		b.eraseLocked(p)
		return
	}

	width, color := b.strokeWidth, b.color
	if b.tool == state.Erase {
		width, color = b.eraserSize, ""
	}
	b.g = gesture{active: true}
	b.store.StartStroke(p, b.tool, width, color)
}

// GestureUpdate handles the pointer moving to p. Moves outside a gesture
// are ignored.
func (b *Board) GestureUpdate(p geom.Point) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.g.active {
		return
	}
	if b.g.erasing {
		b.g.cursor = p
		b.eraseLocked(p)
		return
	}
	b.store.AddPoint(p)
}

// GestureEnd handles the pointer going up.
func (b *Board) GestureEnd() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.g.active {
		return
	}
	b.endLocked()
}

func (b *Board) endLocked() {
	erasing := b.g.erasing
	b.g = gesture{}
	if erasing {
		return
	}
	cur, _ := b.store.InProgress()
	st, ok := b.store.EndStroke()
	if !ok {
		b.log.Debug("discarded stroke with too few points")
		// Starting it still cleared the redo history. A replica applying the
		// commit does the same and then drops the stroke.
		b.emit(state.CommitEdit(cur))
		return
	}
	b.log.Debug("stroke committed", "id", st.ID, "points", len(st.Points), "tool", st.Tool)
	b.emit(state.CommitEdit(st))
}

func (b *Board) eraseLocked(p geom.Point) {
	if b.store.Erase(p, b.g.radius) {
		b.log.Debug("erased", "x", p.X, "y", p.Y, "radius", b.g.radius, "strokes", b.store.Len())
	}
	b.emit(state.EraseEdit(p, b.g.radius))
}

func (b *Board) emit(e state.Edit) {
	if b.OnEdit != nil {
		b.OnEdit(e)
	}
}

// Undo removes the most recent stroke. It reports whether the drawing
// changed locally.
func (b *Board) Undo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	ok := b.store.Undo()
	b.emit(state.Edit{Op: state.OpUndo})
	return ok
}

// Redo restores the most recently undone stroke. It reports whether the
// drawing changed locally.
func (b *Board) Redo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	ok := b.store.Redo()
	b.emit(state.Edit{Op: state.OpRedo})
	return ok
}

// ClearAll removes every stroke and the redo history.
func (b *Board) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.store.ClearAll()
	b.log.Info("board cleared")
	b.emit(state.Edit{Op: state.OpClear})
}

// Sync replaces the committed strokes with an authoritative snapshot. The
// gesture in progress and the redo history are kept and no edit is emitted.
func (b *Board) Sync(snapshot []state.Stroke) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.store.Replace(snapshot)
}

// Strokes returns the committed strokes in drawing order.
func (b *Board) Strokes() []state.Stroke {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.Committed()
}

// InProgress returns the stroke being drawn, if any.
func (b *Board) InProgress() (state.Stroke, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.InProgress()
}

// EraserCursor returns where to draw the eraser indicator while an erase
// gesture is down.
func (b *Board) EraserCursor() (center geom.Point, radius float64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.g.erasing {
		return geom.Point{}, 0, false
	}
	return b.g.cursor, b.g.radius, true
}

// ExportSVG serializes the committed strokes as a width×height SVG document.
func (b *Board) ExportSVG(width, height float64) string {
	return export.SVG(b.Strokes(), width, height)
}
