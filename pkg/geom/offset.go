package geom

// DefaultMiterLimit is the ratio of miter length to offset distance
// beyond which a sharp corner is beveled instead of mitered. The
// value matches the SVG/canvas stroking default.
const DefaultMiterLimit = 4

// Offset derives a new shape whose outline is displaced by distance
// along the outward normals, using DefaultMiterLimit for corner
// treatment. Positive distance grows the shape (outset), negative
// shrinks it (inset).
func (s *Shape) Offset(distance float64) *Shape {
	return s.OffsetMiter(distance, DefaultMiterLimit)
}

// OffsetMiter derives a new, independent shape offset by distance.
//
// For each vertex the two adjacent edges are displaced along their
// own outward normals and the displaced carrying lines intersected.
// If the lines are parallel the vertex is instead displaced along its
// own averaged normal. Otherwise the miter length (distance from the
// original vertex to the intersection) is measured against
// |distance| × miterLimit: within the limit the single intersection
// point is emitted (miter); beyond it the two displaced edge
// endpoints are emitted instead (bevel).
//
// Self-intersection repair after large offsets is out of scope; an
// offset that collapses below 3 surviving points degrades to an
// unmodified clone.
func (s *Shape) OffsetMiter(distance, miterLimit float64) *Shape {
	if miterLimit <= 0 {
		miterLimit = DefaultMiterLimit
	}
	limit := miterLimit * distance
	if limit < 0 {
		limit = -limit
	}

	var pts []Vec
	for _, e := range s.edges {
		v := e.Start
		in, out := e.prev, e

		// Displace both adjacent edges along their own normals and
		// intersect the displaced carrying lines.
		p1 := in.Start.Pos.Add(in.Normal().Scale(distance))
		p2 := out.Start.Pos.Add(out.Normal().Scale(distance))
		ip, ok := LineIntersect(p1, in.Dir(), p2, out.Dir())
		if !ok {
			// Parallel adjacent edges: fall back to the vertex's
			// averaged normal.
			pts = append(pts, v.Pos.Add(v.Normal().Scale(distance)))
			continue
		}
		if ip.Distance(v.Pos) > limit {
			// Bevel: displaced end of the incoming edge, then
			// displaced start of the outgoing edge.
			pts = append(pts,
				in.End.Pos.Add(in.Normal().Scale(distance)),
				out.Start.Pos.Add(out.Normal().Scale(distance)))
			continue
		}
		pts = append(pts, ip)
	}

	if len(pts) < 3 {
		return s.Clone()
	}

	// Surviving points always form a valid loop; only a fewer-than-3
	// point list can make NewShape fail, and that was handled above.
	off, err := NewShape(pts, s.winding)
	if err != nil {
		return s.Clone()
	}
	off.Ephemeral = s.Ephemeral
	off.Open = s.Open
	off.Group = s.Group
	off.Color = s.Color
	return off
}
