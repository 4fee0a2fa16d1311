package geom

// Rect is an axis-aligned bounding box. It is derived on demand and
// never stored on a shape.
type Rect struct {
	Min, Max Vec
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Center returns the box center.
func (r Rect) Center() Vec {
	return Vec{(r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2}
}

// Contains reports whether p lies inside or on the box.
func (r Rect) Contains(p Vec) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Intersects reports whether the two boxes overlap, touching edges
// included.
func (r Rect) Intersects(o Rect) bool {
	return r.Min.X <= o.Max.X && r.Max.X >= o.Min.X &&
		r.Min.Y <= o.Max.Y && r.Max.Y >= o.Min.Y
}

// Expand returns the box grown by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{
		Min: Vec{r.Min.X - d, r.Min.Y - d},
		Max: Vec{r.Max.X + d, r.Max.Y + d},
	}
}

// Union returns the smallest box containing both r and o.
func (r Rect) Union(o Rect) Rect {
	out := r
	if o.Min.X < out.Min.X {
		out.Min.X = o.Min.X
	}
	if o.Min.Y < out.Min.Y {
		out.Min.Y = o.Min.Y
	}
	if o.Max.X > out.Max.X {
		out.Max.X = o.Max.X
	}
	if o.Max.Y > out.Max.Y {
		out.Max.Y = o.Max.Y
	}
	return out
}

// BoundsOf computes the bounding box of a point list. The zero Rect
// is returned for an empty list.
func BoundsOf(points []Vec) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	r := Rect{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		if p.X < r.Min.X {
			r.Min.X = p.X
		}
		if p.Y < r.Min.Y {
			r.Min.Y = p.Y
		}
		if p.X > r.Max.X {
			r.Max.X = p.X
		}
		if p.Y > r.Max.Y {
			r.Max.Y = p.Y
		}
	}
	return r
}
