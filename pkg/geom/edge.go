package geom

import "math"

// IntersectEpsilon is the determinant threshold below which two
// segments are considered parallel and yield no intersection.
const IntersectEpsilon = 1e-10

// Edge is a directed boundary piece from Start to End. Edges form a
// doubly-linked cyclic chain within their owning Shape and carry the
// shape's winding tag, which fixes the sign of the outward normal.
type Edge struct {
	Start, End *Vertex

	winding Winding
	next    *Edge
	prev    *Edge

	normal    Vec
	hasNormal bool
}

// Next returns the following edge in the cycle.
func (e *Edge) Next() *Edge { return e.next }

// Prev returns the preceding edge in the cycle.
func (e *Edge) Prev() *Edge { return e.prev }

// Winding returns the edge's winding tag.
func (e *Edge) Winding() Winding { return e.winding }

// Length returns the edge length.
func (e *Edge) Length() float64 {
	return e.Start.Pos.Distance(e.End.Pos)
}

// Dir returns the unit travel direction from Start to End, or the
// zero vector for a degenerate edge.
func (e *Edge) Dir() Vec {
	return e.End.Pos.Sub(e.Start.Pos).Normalize()
}

// Midpoint returns the point halfway along the edge.
func (e *Edge) Midpoint() Vec {
	return e.Start.Pos.Lerp(e.End.Pos, 0.5)
}

// PointAt returns the point at parameter t, where t=0 is Start and
// t=1 is End. t outside [0,1] extrapolates along the carrying line.
func (e *Edge) PointAt(t float64) Vec {
	return e.Start.Pos.Lerp(e.End.Pos, t)
}

// IsDegenerate reports whether the edge has near-zero length.
func (e *Edge) IsDegenerate() bool {
	return e.Start.Pos.DistanceSq(e.End.Pos) < Epsilon*Epsilon
}

// Normal returns the edge's outward normal: the travel direction
// rotated clockwise for a CCW loop and counter-clockwise for a CW
// loop, so it points away from the interior regardless of winding.
// The result is cached until an endpoint moves or the winding flips.
func (e *Edge) Normal() Vec {
	if e.hasNormal {
		return e.normal
	}
	d := e.Dir()
	if e.winding == CCW {
		e.normal = d.PerpCW()
	} else {
		e.normal = d.PerpCCW()
	}
	e.hasNormal = true
	return e.normal
}

// setWinding retags the edge and invalidates its normal. Winding only
// changes through Shape operations (Reverse, stitch reconciliation).
func (e *Edge) setWinding(w Winding) {
	if e.winding == w {
		return
	}
	e.winding = w
	e.invalidate()
}

// invalidate clears the edge's cached normal and cascades to both
// endpoint vertices, whose normals derive from it.
func (e *Edge) invalidate() {
	e.hasNormal = false
	if e.Start != nil {
		e.Start.invalidate()
	}
	if e.End != nil {
		e.End.invalidate()
	}
}

// Intersect returns the intersection point of the two edges treated
// as closed segments, or ok=false for parallel or non-overlapping
// segments.
func (e *Edge) Intersect(o *Edge) (Vec, bool) {
	return SegmentIntersect(e.Start.Pos, e.End.Pos, o.Start.Pos, o.End.Pos)
}

// IntersectParams returns the parameters t (on e) and u (on o) of the
// intersection of the two carrying lines, restricted to the segments.
// ok is false for parallel lines or an intersection outside either
// segment.
func (e *Edge) IntersectParams(o *Edge) (t, u float64, ok bool) {
	return SegmentIntersectParams(e.Start.Pos, e.End.Pos, o.Start.Pos, o.End.Pos)
}

// DistanceTo returns the distance from p to the closest point on the
// edge segment.
func (e *Edge) DistanceTo(p Vec) float64 {
	return SegmentDistance(e.Start.Pos, e.End.Pos, p)
}

// SegmentIntersectParams computes the intersection of segments
// (a1,a2) and (b1,b2) as parameters t on the first segment and u on
// the second. Parallel segments (determinant below IntersectEpsilon)
// and intersections outside [0,1] on either segment report ok=false.
func SegmentIntersectParams(a1, a2, b1, b2 Vec) (t, u float64, ok bool) {
	r := a2.Sub(a1)
	s := b2.Sub(b1)
	denom := r.Cross(s)
	if math.Abs(denom) < IntersectEpsilon {
		return 0, 0, false
	}
	qp := b1.Sub(a1)
	t = qp.Cross(s) / denom
	u = qp.Cross(r) / denom
	if t < -Epsilon || t > 1+Epsilon || u < -Epsilon || u > 1+Epsilon {
		return 0, 0, false
	}
	return t, u, true
}

// SegmentIntersect returns the intersection point of two segments, or
// ok=false when they are parallel or do not overlap.
func SegmentIntersect(a1, a2, b1, b2 Vec) (Vec, bool) {
	t, _, ok := SegmentIntersectParams(a1, a2, b1, b2)
	if !ok {
		return Vec{}, false
	}
	return a1.Lerp(a2, t), true
}

// LineIntersect intersects the two infinite lines through p1 with
// direction d1 and p2 with direction d2. ok is false for (near)
// parallel lines.
func LineIntersect(p1, d1, p2, d2 Vec) (Vec, bool) {
	denom := d1.Cross(d2)
	if math.Abs(denom) < IntersectEpsilon {
		return Vec{}, false
	}
	t := p2.Sub(p1).Cross(d2) / denom
	return p1.Add(d1.Scale(t)), true
}

// SegmentDistance returns the distance from p to segment (a,b).
func SegmentDistance(a, b, p Vec) float64 {
	ab := b.Sub(a)
	l2 := ab.LengthSq()
	if l2 < Epsilon*Epsilon {
		return a.Distance(p)
	}
	t := p.Sub(a).Dot(ab) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(ab.Scale(t)).Distance(p)
}
