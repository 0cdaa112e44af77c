package geom

// Rect is an axis-aligned bounding box. The zero Rect is empty.
type Rect struct {
	Min, Max Point
	ok       bool
}

// Bounds returns the bounding box of points. Points with a NaN coordinate are
// skipped; if none remain the result is empty.
func Bounds(points []Point) Rect {
	var r Rect
	for _, p := range points {
		r = r.Extend(p)
	}
	return r
}

// Extend grows r to include p.
func (r Rect) Extend(p Point) Rect {
	if p.IsNaN() {
		return r
	}
	if !r.ok {
		return Rect{Min: p, Max: p, ok: true}
	}
	if p.X < r.Min.X {
		r.Min.X = p.X
	}
	if p.X > r.Max.X {
		r.Max.X = p.X
	}
	if p.Y < r.Min.Y {
		r.Min.Y = p.Y
	}
	if p.Y > r.Max.Y {
		r.Max.Y = p.Y
	}
	return r
}

// Empty reports whether r covers no point.
func (r Rect) Empty() bool {
	return !r.ok
}

// Expand moves every edge of r outwards by d.
func (r Rect) Expand(d float64) Rect {
	if !r.ok {
		return r
	}
	r.Min.X -= d
	r.Min.Y -= d
	r.Max.X += d
	r.Max.Y += d
	return r
}

// Contains reports whether p lies inside r or on its border.
func (r Rect) Contains(p Point) bool {
	return r.ok &&
		p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y
}
