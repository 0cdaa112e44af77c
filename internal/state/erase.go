package state

import (
	"LocalSketch/internal/geom"
)

// Erase subtracts a circle of the given radius around center from every
// committed stroke. Points closer than radius to center are removed and the
// survivors are split into runs of consecutive points; runs of MinPoints or
// more become strokes in place of the original, shorter runs are dropped.
// Strokes the circle does not touch are kept as they are.
//
// Distance is measured point to point, not to the segments between points.
// Erasing is a new edit and always clears the redo history. Erase reports
// whether the committed strokes changed.
func (s *Store) Erase(center geom.Point, radius float64) bool {
	s.redo = nil

	var out []entry
	changed := false
	for i, e := range s.committed {
		if !e.bounds.Expand(radius).Contains(center) {
			if changed {
				out = append(out, e)
			}
			continue
		}
		fragments, touched := s.subtract(e.stroke, center, radius)
		if !touched {
			if changed {
				out = append(out, e)
			}
			continue
		}
		if !changed {
			changed = true
			out = make([]entry, i, len(s.committed)+len(fragments))
			copy(out, s.committed[:i])
		}
		for _, f := range fragments {
			out = append(out, newEntry(f))
		}
	}
	if changed {
		s.committed = out
	}
	return changed
}

// subtract splits st around the erase circle. touched is false when no point
// of st lies inside the circle.
func (s *Store) subtract(st Stroke, center geom.Point, radius float64) (fragments []Stroke, touched bool) {
	var run []geom.Point
	flush := func() {
		if len(run) >= MinPoints {
			fragments = append(fragments, Stroke{
				ID:     s.newID(),
				Points: run,
				Tool:   st.Tool,
				Width:  st.Width,
				Color:  st.Color,
			})
		}
		run = nil
	}
	for _, p := range st.Points {
		if p.Distance(center) < radius {
			touched = true
			flush()
			continue
		}
		run = append(run, p)
	}
	if !touched {
		return nil, false
	}
	flush()
	return fragments, true
}
