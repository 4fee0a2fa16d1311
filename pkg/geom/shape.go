package geom

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidGeometry is returned when a shape is constructed from
// fewer than 3 points or a regular polygon is requested with fewer
// than 3 sides. It is the only kernel error surfaced to callers;
// everything else degrades gracefully.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Shape is one closed polygon: an ordered cyclic sequence of directed
// edges. Vertices and edges are exclusively owned by their shape and
// never shared; Clone rebuilds them rather than copying references.
//
// A Shape is not safe for concurrent mutation. Independent shapes may
// be processed in parallel freely.
type Shape struct {
	edges   []*Edge
	winding Winding

	// Ephemeral marks construction-only geometry that is excluded
	// from final rendered output.
	Ephemeral bool
	// Open suppresses the closing instruction in path data output.
	// The kernel itself always maintains a closed loop.
	Open bool
	// Group and Color are opaque pass-through tags for higher-level
	// generators and renderers; the kernel does not interpret them.
	Group string
	Color string
}

// NewShape builds a closed shape from an ordered point list. At least
// 3 points are required. If the signed area of the given order
// disagrees with the requested winding, the order is reversed, so the
// winding tag always matches the sign of Area.
func NewShape(points []Vec, winding Winding) (*Shape, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("%w: need at least 3 points, got %d", ErrInvalidGeometry, len(points))
	}
	pts := make([]Vec, len(points))
	copy(pts, points)

	area := SignedArea(pts)
	if (winding == CCW && area < 0) || (winding == CW && area > 0) {
		reversePoints(pts)
	}

	s := &Shape{winding: winding}
	s.rebuild(pts)
	return s, nil
}

// RegularPolygon builds a regular polygon with the given number of
// sides (≥3) and circumradius, centered at center. rotationOffset
// rotates the whole polygon; at zero offset the first vertex lies on
// the positive x axis. The result is wound CCW.
func RegularPolygon(sides int, radius float64, center Vec, rotationOffset float64) (*Shape, error) {
	if sides < 3 {
		return nil, fmt.Errorf("%w: need at least 3 sides, got %d", ErrInvalidGeometry, sides)
	}
	pts := make([]Vec, 0, sides)
	step := 2 * math.Pi / float64(sides)
	for i := 0; i < sides; i++ {
		a := rotationOffset + float64(i)*step
		pts = append(pts, center.Add(V(math.Cos(a), math.Sin(a)).Scale(radius)))
	}
	return NewShape(pts, CCW)
}

// rebuild replaces the shape's edge cycle with a fresh one built from
// pts, wiring next/prev links and vertex back-references. All normal
// caches start unset.
func (s *Shape) rebuild(pts []Vec) {
	n := len(pts)
	verts := make([]*Vertex, n)
	for i, p := range pts {
		verts[i] = NewVertex(p)
	}
	edges := make([]*Edge, n)
	for i := 0; i < n; i++ {
		edges[i] = &Edge{
			Start:   verts[i],
			End:     verts[(i+1)%n],
			winding: s.winding,
		}
		verts[i].out = edges[i]
		verts[(i+1)%n].in = edges[i]
	}
	for i := 0; i < n; i++ {
		edges[i].next = edges[(i+1)%n]
		edges[i].prev = edges[(i-1+n)%n]
	}
	s.edges = edges
}

// Edges returns the shape's edge cycle in order. The slice is the
// shape's own backing store; callers must not modify it.
func (s *Shape) Edges() []*Edge { return s.edges }

// Vertices returns the shape's vertices in traversal order.
func (s *Shape) Vertices() []*Vertex {
	out := make([]*Vertex, len(s.edges))
	for i, e := range s.edges {
		out[i] = e.Start
	}
	return out
}

// Points returns a copy of the vertex positions in traversal order.
func (s *Shape) Points() []Vec {
	out := make([]Vec, len(s.edges))
	for i, e := range s.edges {
		out[i] = e.Start.Pos
	}
	return out
}

// Winding returns the shape's winding tag.
func (s *Shape) Winding() Winding { return s.winding }

// Area returns the signed shoelace area: positive for CCW, negative
// for CW.
func (s *Shape) Area() float64 {
	return SignedArea(s.Points())
}

// Centroid returns the vertex average. This is the pivot used by
// Scale and Rotate when no explicit center is given.
func (s *Shape) Centroid() Vec {
	var sum Vec
	for _, e := range s.edges {
		sum = sum.Add(e.Start.Pos)
	}
	return sum.Div(float64(len(s.edges)))
}

// BoundingBox returns the axis-aligned bounding box of the vertices.
func (s *Shape) BoundingBox() Rect {
	return BoundsOf(s.Points())
}

// Scale scales the shape in place about its centroid.
func (s *Shape) Scale(factor float64) {
	s.ScaleAbout(factor, s.Centroid())
}

// ScaleAbout scales the shape in place about an explicit center.
func (s *Shape) ScaleAbout(factor float64, center Vec) {
	for _, e := range s.edges {
		v := e.Start
		v.SetPos(center.Add(v.Pos.Sub(center).Scale(factor)))
	}
}

// Rotate rotates the shape in place about its centroid by angle
// radians (counter-clockwise positive).
func (s *Shape) Rotate(angle float64) {
	s.RotateAbout(angle, s.Centroid())
}

// RotateAbout rotates the shape in place about an explicit center.
func (s *Shape) RotateAbout(angle float64, center Vec) {
	for _, e := range s.edges {
		v := e.Start
		v.SetPos(center.Add(v.Pos.Sub(center).Rotate(angle)))
	}
}

// Translate moves every vertex by offset. Translation preserves edge
// directions, so cached normals stay valid and are not invalidated.
func (s *Shape) Translate(offset Vec) {
	for _, e := range s.edges {
		e.Start.Pos = e.Start.Pos.Add(offset)
	}
}

// MoveTo translates the shape so its centroid lands on position.
func (s *Shape) MoveTo(position Vec) {
	s.Translate(position.Sub(s.Centroid()))
}

// Reverse rebuilds the edge cycle in the opposite vertex order and
// flips the winding tag. Area changes sign; the winding invariant is
// preserved.
func (s *Shape) Reverse() {
	pts := s.Points()
	reversePoints(pts)
	// Keep the same lead vertex so Reverse∘Reverse reproduces the
	// original vertex sequence exactly.
	rotatePoints(pts, len(pts)-1)
	s.winding = s.winding.Opposite()
	s.rebuild(pts)
}

// Clone returns a fully independent deep copy: new vertices, new
// edges, a re-linked cycle, and all flags and tags preserved.
func (s *Shape) Clone() *Shape {
	c := &Shape{
		winding:   s.winding,
		Ephemeral: s.Ephemeral,
		Open:      s.Open,
		Group:     s.Group,
		Color:     s.Color,
	}
	c.rebuild(s.Points())
	return c
}

// vertexProximity is the distance to a vertex below which the
// ray-casting parity test is considered unreliable and the jittered
// majority vote kicks in.
const vertexProximity = 1e-6

// jitterDistance is the perpendicular displacement used for the
// containment majority vote.
const jitterDistance = 1e-4

// ContainsPoint reports whether p lies inside the shape, using a
// ray-casting parity test. Ray casting is unstable when the
// horizontal ray passes exactly through a vertex, so if p lies within
// vertexProximity of any vertex the test is run four times, at p and
// at three small perpendicular jitters, and decided by majority
// vote. This is a pragmatic mitigation for an ill-posed edge case,
// not a robustness guarantee.
func (s *Shape) ContainsPoint(p Vec) bool {
	nearVertex := false
	for _, e := range s.edges {
		if e.Start.Pos.DistanceSq(p) < vertexProximity*vertexProximity {
			nearVertex = true
			break
		}
	}
	raw := s.rayCast(p)
	if !nearVertex {
		return raw
	}

	votes := 0
	if raw {
		votes++
	}
	jitters := []Vec{
		{0, jitterDistance},
		{0, -jitterDistance},
		{jitterDistance, 0},
	}
	for _, j := range jitters {
		if s.rayCast(p.Add(j)) {
			votes++
		}
	}
	if votes == 2 {
		return raw
	}
	return votes > 2
}

// rayCast is the plain crossing-parity test with a rightward
// horizontal ray.
func (s *Shape) rayCast(p Vec) bool {
	inside := false
	for _, e := range s.edges {
		a, b := e.Start.Pos, e.End.Pos
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if x > p.X {
				inside = !inside
			}
		}
	}
	return inside
}

// OnBoundary reports whether p lies within tol of any edge segment.
func (s *Shape) OnBoundary(p Vec, tol float64) bool {
	for _, e := range s.edges {
		if e.DistanceTo(p) <= tol {
			return true
		}
	}
	return false
}

// RemoveDegenerateEdges rebuilds the cycle without zero-length edges.
// It is the remediation step for the degenerate-edge violations that
// Validate reports. If fewer than 3 vertices remain the shape is left
// unchanged.
func (s *Shape) RemoveDegenerateEdges() {
	var pts []Vec
	for _, e := range s.edges {
		if !e.IsDegenerate() {
			pts = append(pts, e.Start.Pos)
		}
	}
	if len(pts) < 3 || len(pts) == len(s.edges) {
		return
	}
	s.rebuild(pts)
}

// PathData renders the outline as SVG path data: a move-to for the
// first vertex, a line-to for each subsequent vertex, and a closing
// instruction unless the shape is flagged open.
func (s *Shape) PathData() string {
	var b strings.Builder
	for i, p := range s.Points() {
		if i == 0 {
			fmt.Fprintf(&b, "M %g %g", p.X, p.Y)
		} else {
			fmt.Fprintf(&b, " L %g %g", p.X, p.Y)
		}
	}
	if !s.Open {
		b.WriteString(" Z")
	}
	return b.String()
}

// SignedArea computes the shoelace area of a point loop: positive for
// counter-clockwise traversal, negative for clockwise.
func SignedArea(points []Vec) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		a, b := points[i], points[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// WindingOf returns the winding implied by the signed area of points.
func WindingOf(points []Vec) Winding {
	if SignedArea(points) < 0 {
		return CW
	}
	return CCW
}

func reversePoints(pts []Vec) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

// rotatePoints rotates pts left by k positions.
func rotatePoints(pts []Vec, k int) {
	n := len(pts)
	if n == 0 {
		return
	}
	k %= n
	if k == 0 {
		return
	}
	tmp := make([]Vec, n)
	copy(tmp, pts[k:])
	copy(tmp[n-k:], pts[:k])
	copy(pts, tmp)
}
