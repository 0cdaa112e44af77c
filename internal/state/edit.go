package state

import (
	"encoding/json"
	"fmt"

	"LocalSketch/internal/geom"
)

// EditOp names a mutation of the committed strokes.
type EditOp string

const (
	OpCommit EditOp = "commit"
	OpErase  EditOp = "erase"
	OpUndo   EditOp = "undo"
	OpRedo   EditOp = "redo"
	OpClear  EditOp = "clear"
)

// Edit describes one mutation so it can be replayed on another store.
// Stroke is set for OpCommit; Point and Radius for OpErase.
type Edit struct {
	Op     EditOp      `json:"op"`
	Stroke *Stroke     `json:"stroke,omitempty"`
	Point  *geom.Point `json:"point,omitempty"`
	Radius float64     `json:"radius,omitempty"`
}

func (e Edit) String() string {
	switch e.Op {
	case OpCommit:
		if e.Stroke != nil {
			return fmt.Sprintf("commit %s (%d points)", e.Stroke.ID, len(e.Stroke.Points))
		}
	case OpErase:
		if e.Point != nil {
			return fmt.Sprintf("erase at (%g, %g) r=%g", e.Point.X, e.Point.Y, e.Radius)
		}
	}
	return string(e.Op)
}

type editJSON struct {
	Op     EditOp      `json:"op"`
	Stroke *Stroke     `json:"stroke,omitempty"`
	Point  *geom.Point `json:"point,omitempty"`
	Radius geom.Number `json:"radius,omitempty"`
}

func (e Edit) MarshalJSON() ([]byte, error) {
	return json.Marshal(editJSON{Op: e.Op, Stroke: e.Stroke, Point: e.Point, Radius: geom.Number(e.Radius)})
}

func (e *Edit) UnmarshalJSON(data []byte) error {
	var w editJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*e = Edit{Op: w.Op, Stroke: w.Stroke, Point: w.Point, Radius: float64(w.Radius)}
	return nil
}

// CommitEdit describes committing st.
func CommitEdit(st Stroke) Edit {
	return Edit{Op: OpCommit, Stroke: &st}
}

// EraseEdit describes an erase at center.
func EraseEdit(center geom.Point, radius float64) Edit {
	return Edit{Op: OpErase, Point: &center, Radius: radius}
}

// Apply performs e on the store and reports whether the committed strokes
// changed. Malformed edits and unknown ops are ignored.
func (s *Store) Apply(e Edit) bool {
	switch e.Op {
	case OpCommit:
		if e.Stroke == nil {
			return false
		}
		return s.Commit(*e.Stroke)
	case OpErase:
		if e.Point == nil {
			return false
		}
		return s.Erase(*e.Point, e.Radius)
	case OpUndo:
		return s.Undo()
	case OpRedo:
		return s.Redo()
	case OpClear:
		changed := s.Len() > 0
		s.ClearAll()
		return changed
	}
	return false
}
