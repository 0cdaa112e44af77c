package board

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LocalSketch/internal/config"
	"LocalSketch/internal/geom"
	"LocalSketch/internal/state"
)

func newBoard(mode config.EraseMode) (*Board, *[]state.Edit) {
	tools := config.Default().Tools
	tools.EraseMode = mode
	b := New(tools)
	var edits []state.Edit
	b.OnEdit = func(e state.Edit) {
		edits = append(edits, e)
	}
	return b, &edits
}

func stroke(b *Board, pts ...geom.Point) {
	b.GestureStart(pts[0])
	for _, p := range pts[1:] {
		b.GestureUpdate(p)
	}
	b.GestureEnd()
}

func TestDrawWithDefaults(t *testing.T) {
	b, edits := newBoard(config.EraseSubtract)
	stroke(b, geom.Pt(0, 0), geom.Pt(10, 0))

	got := b.Strokes()
	require.Len(t, got, 1)
	assert.Equal(t, []geom.Point{geom.Pt(0, 0), geom.Pt(10, 0)}, got[0].Points)
	assert.Equal(t, state.Draw, got[0].Tool)
	assert.Equal(t, 3.0, got[0].Width)
	assert.Equal(t, "#000000", got[0].Color)

	require.Len(t, *edits, 1)
	assert.Equal(t, state.OpCommit, (*edits)[0].Op)
	assert.Equal(t, got[0].ID, (*edits)[0].Stroke.ID)
}

func TestInProgressVisibleWhileDrawing(t *testing.T) {
	b, _ := newBoard(config.EraseSubtract)
	b.GestureStart(geom.Pt(1, 1))
	b.GestureUpdate(geom.Pt(2, 2))

	cur, ok := b.InProgress()
	require.True(t, ok)
	assert.Len(t, cur.Points, 2)
	assert.Empty(t, b.Strokes())

	b.GestureEnd()
	_, ok = b.InProgress()
	assert.False(t, ok)
}

func TestSettingsApplyToNextGesture(t *testing.T) {
	b, _ := newBoard(config.EraseSubtract)
	b.SetStrokeWidth(7)
	b.SetColor("#007AFF")

	b.GestureStart(geom.Pt(0, 0))
	b.SetStrokeWidth(1)
	b.SetColor("#FF3B30")
	b.SetTool(state.Erase)
	b.GestureUpdate(geom.Pt(5, 0))
	b.GestureEnd()

	got := b.Strokes()
	require.Len(t, got, 1)
	assert.Equal(t, 7.0, got[0].Width)
	assert.Equal(t, "#007AFF", got[0].Color)
	assert.Equal(t, state.Draw, got[0].Tool)

	assert.Equal(t, state.Erase, b.Tool())
	assert.Equal(t, 1.0, b.StrokeWidth())
	assert.Equal(t, "#FF3B30", b.Color())
}

func TestStrayEventsAreIgnored(t *testing.T) {
	b, edits := newBoard(config.EraseSubtract)
	assert.NotPanics(t, func() {
		b.GestureUpdate(geom.Pt(1, 1))
		b.GestureEnd()
	})
	assert.Empty(t, b.Strokes())
	assert.Empty(t, *edits)
}

func TestSingleTapDiscarded(t *testing.T) {
	b, edits := newBoard(config.EraseSubtract)
	stroke(b, geom.Pt(1, 1))
	assert.Empty(t, b.Strokes())

	// The tap is still reported so replicas drop their redo history too.
	require.Len(t, *edits, 1)
	e := (*edits)[0]
	assert.Equal(t, state.OpCommit, e.Op)
	require.NotNil(t, e.Stroke)
	assert.Equal(t, []geom.Point{geom.Pt(1, 1)}, e.Stroke.Points)
}

func TestTapClearsRedoOnReplica(t *testing.T) {
	b, edits := newBoard(config.EraseSubtract)
	replica := state.NewStore()
	b.OnEdit = func(e state.Edit) {
		*edits = append(*edits, e)
		replica.Apply(e)
	}

	stroke(b, geom.Pt(0, 0), geom.Pt(10, 0))
	b.Undo()
	stroke(b, geom.Pt(5, 5))
	assert.False(t, b.Redo())

	assert.Empty(t, b.Strokes())
	assert.Zero(t, replica.Len())
	assert.Zero(t, replica.RedoDepth())
}

func TestSubtractEraser(t *testing.T) {
	b, edits := newBoard(config.EraseSubtract)
	stroke(b, geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(20, 0), geom.Pt(30, 0), geom.Pt(40, 0))
	*edits = nil

	b.SetTool(state.Erase)
	b.SetEraserSize(10)
	b.GestureStart(geom.Pt(20, 0))

	center, r, ok := b.EraserCursor()
	require.True(t, ok)
	assert.Equal(t, geom.Pt(20, 0), center)
	assert.Equal(t, 5.0, r)
	_, capturing := b.InProgress()
	assert.False(t, capturing, "subtracting never captures a stroke")

	got := b.Strokes()
	require.Len(t, got, 2)
	assert.Equal(t, []geom.Point{geom.Pt(0, 0), geom.Pt(10, 0)}, got[0].Points)
	assert.Equal(t, []geom.Point{geom.Pt(30, 0), geom.Pt(40, 0)}, got[1].Points)

	// Every move erases again.
	b.GestureUpdate(geom.Pt(40, 0))
	center, _, _ = b.EraserCursor()
	assert.Equal(t, geom.Pt(40, 0), center)
	got = b.Strokes()
	require.Len(t, got, 1, "the right fragment lost a point and is too short")

	b.GestureEnd()
	_, _, ok = b.EraserCursor()
	assert.False(t, ok)

	require.Len(t, *edits, 2)
	for _, e := range *edits {
		assert.Equal(t, state.OpErase, e.Op)
		assert.Equal(t, 5.0, e.Radius)
	}
}

func TestEraserSizeIsSnapshotted(t *testing.T) {
	b, _ := newBoard(config.EraseSubtract)
	stroke(b, geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(20, 0))

	b.SetTool(state.Erase)
	b.SetEraserSize(2)
	b.GestureStart(geom.Pt(100, 100))
	b.SetEraserSize(1000)
	b.GestureUpdate(geom.Pt(100, 101))
	b.GestureEnd()

	assert.Len(t, b.Strokes(), 1)
}

func TestPaintEraser(t *testing.T) {
	b, edits := newBoard(config.ErasePaint)
	b.SetTool(state.Erase)
	b.SetEraserSize(30)
	stroke(b, geom.Pt(0, 0), geom.Pt(5, 5))

	got := b.Strokes()
	require.Len(t, got, 1)
	assert.Equal(t, state.Erase, got[0].Tool)
	assert.Equal(t, 30.0, got[0].Width)
	assert.Empty(t, got[0].Color)
	_, _, ok := b.EraserCursor()
	assert.False(t, ok)
	require.Len(t, *edits, 1)
	assert.Equal(t, state.OpCommit, (*edits)[0].Op)

	assert.Contains(t, b.ExportSVG(100, 100), `stroke="#fff" stroke-width="30"`)
}

func TestNewGestureEndsRunningOne(t *testing.T) {
	b, _ := newBoard(config.EraseSubtract)
	b.GestureStart(geom.Pt(0, 0))
	b.GestureUpdate(geom.Pt(1, 0))
	b.GestureStart(geom.Pt(50, 50))
	b.GestureUpdate(geom.Pt(51, 50))
	b.GestureEnd()
	assert.Len(t, b.Strokes(), 2)
}

func TestUndoRedoClear(t *testing.T) {
	b, edits := newBoard(config.EraseSubtract)
	stroke(b, geom.Pt(0, 0), geom.Pt(1, 0))
	stroke(b, geom.Pt(0, 1), geom.Pt(1, 1))
	stroke(b, geom.Pt(0, 2), geom.Pt(1, 2))
	*edits = nil

	assert.True(t, b.Undo())
	assert.True(t, b.Undo())
	assert.True(t, b.Redo())
	assert.Len(t, b.Strokes(), 2)

	b.ClearAll()
	assert.Empty(t, b.Strokes())
	assert.False(t, b.Undo())
	assert.False(t, b.Redo())

	ops := make([]state.EditOp, len(*edits))
	for i, e := range *edits {
		ops[i] = e.Op
	}
	assert.Equal(t, []state.EditOp{
		state.OpUndo, state.OpUndo, state.OpRedo, state.OpClear, state.OpUndo, state.OpRedo,
	}, ops)
}

func TestSyncKeepsGesture(t *testing.T) {
	b, edits := newBoard(config.EraseSubtract)
	b.GestureStart(geom.Pt(0, 0))
	b.GestureUpdate(geom.Pt(1, 0))

	b.Sync([]state.Stroke{{ID: "remote", Points: []geom.Point{geom.Pt(5, 5), geom.Pt(6, 6)}}})
	assert.Empty(t, *edits)

	b.GestureEnd()
	got := b.Strokes()
	require.Len(t, got, 2)
	assert.Equal(t, "remote", got[0].ID)
}

func TestExportSVG(t *testing.T) {
	b, _ := newBoard(config.EraseSubtract)
	assert.Equal(t,
		`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="20" viewBox="0 0 10 20"></svg>`,
		b.ExportSVG(10, 20))

	stroke(b, geom.Pt(0, 0), geom.Pt(1, 0))
	stroke(b, geom.Pt(0, 1), geom.Pt(1, 1))
	assert.Equal(t, 2, strings.Count(b.ExportSVG(10, 20), "<path "))
}

func TestWithStore(t *testing.T) {
	s := state.NewStore()
	b := New(config.Default().Tools, WithStore(s))
	stroke(b, geom.Pt(0, 0), geom.Pt(1, 0))
	assert.Equal(t, 1, s.Len())
}

func TestConcurrentCallers(t *testing.T) {
	b, _ := newBoard(config.EraseSubtract)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = b.Strokes()
				b.SetColor("#FF3B30")
				_, _ = b.InProgress()
				_, _, _ = b.EraserCursor()
			}
		}()
	}
	for j := 0; j < 50; j++ {
		stroke(b, geom.Pt(0, float64(j)), geom.Pt(1, float64(j)))
	}
	wg.Wait()
	assert.Len(t, b.Strokes(), 50)
}
