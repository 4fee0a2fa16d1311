package geom

// Vertex is a mutable shape corner. It back-references the edge that
// leaves it (out) and the edge that arrives at it (in), and caches an
// outward normal derived from those two edges. A vertex is owned by
// exactly one Shape; vertices are never shared across shapes.
type Vertex struct {
	Pos Vec

	out *Edge // edge whose start is this vertex
	in  *Edge // edge whose end is this vertex

	normal    Vec
	hasNormal bool
}

// NewVertex creates a free vertex at p. It is linked into a shape's
// edge cycle by the shape constructor.
func NewVertex(p Vec) *Vertex {
	return &Vertex{Pos: p}
}

// Out returns the edge that starts at this vertex.
func (v *Vertex) Out() *Edge { return v.out }

// In returns the edge that ends at this vertex.
func (v *Vertex) In() *Edge { return v.in }

// Normal returns the vertex's outward normal: the normalized sum of
// the two adjacent edge normals. When the adjacent normals cancel
// (straight-through or degenerate corner) the incoming edge's normal
// is used as a fallback. The result is cached until the vertex moves
// or an adjacent edge is invalidated.
func (v *Vertex) Normal() Vec {
	if v.hasNormal {
		return v.normal
	}
	var n Vec
	if v.in != nil && v.out != nil {
		sum := v.in.Normal().Add(v.out.Normal())
		if sum.LengthSq() < Epsilon*Epsilon {
			n = v.in.Normal()
		} else {
			n = sum.Normalize()
		}
	} else if v.in != nil {
		n = v.in.Normal()
	} else if v.out != nil {
		n = v.out.Normal()
	}
	v.normal = n
	v.hasNormal = true
	return n
}

// SetPos moves the vertex and invalidates the normal caches of the
// vertex and both adjacent edges. All position mutation must go
// through here so no cache goes stale.
func (v *Vertex) SetPos(p Vec) {
	v.Pos = p
	v.invalidate()
	if v.in != nil {
		v.in.invalidate()
	}
	if v.out != nil {
		v.out.invalidate()
	}
}

// MoveAlongNormal displaces the vertex by distance along its own
// outward normal.
func (v *Vertex) MoveAlongNormal(distance float64) {
	n := v.Normal()
	v.SetPos(v.Pos.Add(n.Scale(distance)))
}

// Eq reports positional equality within Epsilon.
func (v *Vertex) Eq(o *Vertex) bool {
	return v.Pos.Eq(o.Pos)
}

// invalidate clears only this vertex's cached normal. Edge
// invalidation calls it for both endpoints; it never recurses back
// into the edges.
func (v *Vertex) invalidate() {
	v.hasNormal = false
}
