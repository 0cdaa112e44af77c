// Package state is the stroke engine behind a board: the stroke model, the
// capture protocol, the eraser and the undo/redo history.
package state

import (
	"encoding/json"
	"fmt"

	"LocalSketch/internal/geom"
)

// Tool decides how a stroke is interpreted: ink or erasure.
type Tool int

const (
	Draw Tool = iota
	Erase
)

func (t Tool) String() string {
	switch t {
	case Draw:
		return "draw"
	case Erase:
		return "erase"
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

// MarshalText encodes the tool by name.
func (t Tool) MarshalText() ([]byte, error) {
	switch t {
	case Draw, Erase:
		return []byte(t.String()), nil
	}
	return nil, fmt.Errorf("unknown tool %d", int(t))
}

// UnmarshalText accepts "draw" and "erase" ("eraser" is an alias).
func (t *Tool) UnmarshalText(b []byte) error {
	tool, err := ParseTool(string(b))
	if err != nil {
		return err
	}
	*t = tool
	return nil
}

// ParseTool returns the tool called name.
func ParseTool(name string) (Tool, error) {
	switch name {
	case "draw", "pen":
		return Draw, nil
	case "erase", "eraser":
		return Erase, nil
	}
	return Draw, fmt.Errorf("unknown tool %q", name)
}

// Stroke is one recorded path. Tool, Width and Color are fixed when the
// stroke starts; later setting changes never reach an existing stroke.
type Stroke struct {
	ID     string       `json:"id"`
	Points []geom.Point `json:"points"`
	Tool   Tool         `json:"tool"`
	Width  float64      `json:"width"`
	Color  string       `json:"color,omitempty"`
}

// Clone returns a copy of s that shares no memory with it.
func (s Stroke) Clone() Stroke {
	c := s
	c.Points = append([]geom.Point(nil), s.Points...)
	return c
}

// strokeJSON is the wire form of a Stroke. Width is a geom.Number so that
// widths JSON cannot express still round-trip.
type strokeJSON struct {
	ID     string       `json:"id"`
	Points []geom.Point `json:"points"`
	Tool   Tool         `json:"tool"`
	Width  geom.Number  `json:"width"`
	Color  string       `json:"color,omitempty"`
}

func (s Stroke) MarshalJSON() ([]byte, error) {
	return json.Marshal(strokeJSON{ID: s.ID, Points: s.Points, Tool: s.Tool, Width: geom.Number(s.Width), Color: s.Color})
}

func (s *Stroke) UnmarshalJSON(data []byte) error {
	var w strokeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Stroke{ID: w.ID, Points: w.Points, Tool: w.Tool, Width: float64(w.Width), Color: w.Color}
	return nil
}

// Renderable reports whether s has enough points to draw a path.
func (s Stroke) Renderable() bool {
	return len(s.Points) >= MinPoints
}

// MinPoints is the smallest number of points a committed stroke may have.
const MinPoints = 2
