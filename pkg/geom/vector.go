// Package geom is the 2D polygon geometry kernel for tessera. It
// represents closed polygonal shapes as cyclic chains of directed
// edges, supports in-place transformation, and provides the queries
// (area, centroid, containment) and derivations (outline offsetting)
// the rest of the system is built on.
//
// The coordinate conventions are those of mathematical graph paper:
// x increases to the right and y increases up the page, so a
// counter-clockwise loop encloses positive signed area.
package geom

import "math"

// Epsilon is the general tolerance for coordinate comparison. The
// kernel uses fixed tolerances rather than exact arithmetic; this is
// a documented limitation, not an oversight.
const Epsilon = 1e-9

// Vec is an immutable 2D point or direction. All operations return
// new values; none mutates its receiver.
type Vec struct {
	X, Y float64
}

// V is shorthand for constructing a Vec.
func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec {
	return Vec{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec {
	return Vec{v.X - o.X, v.Y - o.Y}
}

// Scale returns v scaled by s.
func (v Vec) Scale(s float64) Vec {
	return Vec{v.X * s, v.Y * s}
}

// Div returns v divided by s. Dividing by zero yields the zero
// vector rather than an error or infinity.
func (v Vec) Div(s float64) Vec {
	if s == 0 {
		return Vec{}
	}
	return Vec{v.X / s, v.Y / s}
}

// Dot returns the dot product of v and o.
func (v Vec) Dot(o Vec) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the z component of the 3D cross product of v and o.
// It is positive when o lies counter-clockwise of v.
func (v Vec) Cross(o Vec) float64 {
	return v.X*o.Y - v.Y*o.X
}

// Length returns the euclidean length of v.
func (v Vec) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// LengthSq returns the squared length of v, avoiding the square root
// when only comparisons are needed.
func (v Vec) LengthSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize returns the unit vector in the direction of v, or the
// zero vector if v has (near) zero length.
func (v Vec) Normalize() Vec {
	l := v.Length()
	if l < Epsilon {
		return Vec{}
	}
	return Vec{v.X / l, v.Y / l}
}

// Angle returns the angle of v in radians, in (-π, π].
func (v Vec) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// Rotate returns v rotated counter-clockwise by angle radians.
func (v Vec) Rotate(angle float64) Vec {
	sin, cos := math.Sincos(angle)
	return Vec{v.X*cos - v.Y*sin, v.X*sin + v.Y*cos}
}

// PerpCW returns v rotated 90° clockwise.
func (v Vec) PerpCW() Vec {
	return Vec{v.Y, -v.X}
}

// PerpCCW returns v rotated 90° counter-clockwise.
func (v Vec) PerpCCW() Vec {
	return Vec{-v.Y, v.X}
}

// Lerp returns the linear interpolation between v and o at parameter
// t, where t=0 yields v and t=1 yields o.
func (v Vec) Lerp(o Vec, t float64) Vec {
	return Vec{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// Distance returns the euclidean distance between v and o.
func (v Vec) Distance(o Vec) float64 {
	return math.Hypot(o.X-v.X, o.Y-v.Y)
}

// DistanceSq returns the squared distance between v and o.
func (v Vec) DistanceSq(o Vec) float64 {
	dx, dy := o.X-v.X, o.Y-v.Y
	return dx*dx + dy*dy
}

// Eq reports whether v and o coincide within Epsilon on both axes.
func (v Vec) Eq(o Vec) bool {
	return math.Abs(v.X-o.X) < Epsilon && math.Abs(v.Y-o.Y) < Epsilon
}

// Near reports whether v and o coincide within the given tolerance.
func (v Vec) Near(o Vec, tol float64) bool {
	return math.Abs(v.X-o.X) < tol && math.Abs(v.Y-o.Y) < tol
}
