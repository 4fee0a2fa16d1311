// Package clip implements boolean set combination of polygons
// (union, difference) over geom.Shape values.
//
// Both operations run the same three-phase pipeline: shatter (split
// every edge at its cross-shape intersection points), filter
// (classify the resulting sub-edges by containment against the other
// input shapes, with deterministic index-order tie-breaks for
// coincident boundaries), and stitch (reconstruct closed loops by
// chaining kept sub-edges end to start). The pipeline is a pure
// function of its inputs: it never mutates the input shapes and
// returns new, independent shapes.
//
// Degenerate inputs such as coincident shapes or exact edge-on-edge
// overlap beyond the tie-break's resolution may legitimately produce zero
// or several output loops; that is an expected outcome, not an error.
package clip

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/chazu/tessera/pkg/geom"
)

const (
	// endpointParamEps excludes intersection parameters this close
	// to 0 or 1: the crossing coincides with an existing endpoint
	// and splitting there would only mint degenerate slivers.
	endpointParamEps = 1e-5

	// boundaryEps is the tolerance for "midpoint lies on another
	// shape's boundary", which routes classification through the
	// index-order tie-break instead of the parity test.
	boundaryEps = 1e-6

	// snapGrid quantizes sub-edge endpoints for the stitch lookup.
	snapGrid = 1e-6

	// mergeParamEps collapses split parameters that are this close
	// together into a single cut.
	mergeParamEps = 1e-9
)

// subEdge is one directed piece of an input shape's boundary after
// shattering. src indexes the combined input shape list.
type subEdge struct {
	a, b   geom.Vec
	src    int
	used   bool
	bounds rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (s *subEdge) Bounds() rtreego.Rect { return s.bounds }

var _ rtreego.Spatial = (*subEdge)(nil)

// Union combines the shapes into the set of loops enclosing the area
// covered by at least one input. A single input comes back as one
// equivalent shape; a fully-overlapped input is absorbed. The empty
// input yields an empty result.
func Union(shapes []*geom.Shape) []*geom.Shape {
	if len(shapes) == 0 {
		return nil
	}
	subs := shatter(shapes)
	kept := subs[:0:0]
	for _, se := range subs {
		if unionKeeps(se, shapes) {
			kept = append(kept, se)
		}
	}
	return stitch(kept, shapes)
}

// unionKeeps applies the union filter rule: a sub-edge survives
// unless its midpoint is strictly inside another input shape. A
// midpoint on another shape's boundary is a duplicated boundary; the
// copy whose source shape has the higher input index survives, so
// exactly one copy of any coincident boundary remains.
func unionKeeps(se *subEdge, shapes []*geom.Shape) bool {
	mid := se.a.Lerp(se.b, 0.5)
	for j, other := range shapes {
		if j == se.src {
			continue
		}
		if other.OnBoundary(mid, boundaryEps) {
			if j < se.src {
				return false
			}
			continue
		}
		if other.ContainsPoint(mid) {
			return false
		}
	}
	return true
}

// Difference subtracts the clip shapes from the subject shapes.
// Overlapping subjects merge as in Union; clip boundary pieces that
// fall strictly inside a subject are kept direction-reversed, forming
// inward-facing (CW) hole loops. Subtracting everything returns an
// empty slice, which is a valid result. With no clips the subjects
// are returned reconstructed (single subjects come back congruent).
func Difference(subjects, clips []*geom.Shape) []*geom.Shape {
	if len(subjects) == 0 {
		return nil
	}
	all := make([]*geom.Shape, 0, len(subjects)+len(clips))
	all = append(all, subjects...)
	all = append(all, clips...)

	subs := shatter(all)
	kept := subs[:0:0]
	for _, se := range subs {
		if se.src < len(subjects) {
			if differenceKeepsSubject(se, subjects, clips) {
				kept = append(kept, se)
			}
		} else if differenceKeepsClip(se, subjects, clips, len(subjects)) {
			se.a, se.b = se.b, se.a
			kept = append(kept, se)
		}
	}
	return stitch(kept, all)
}

// differenceKeepsSubject discards subject sub-edges inside (or on the
// boundary of) any clip, then merges overlapping subjects with the
// union tie-break.
func differenceKeepsSubject(se *subEdge, subjects, clips []*geom.Shape) bool {
	mid := se.a.Lerp(se.b, 0.5)
	for _, c := range clips {
		if c.OnBoundary(mid, boundaryEps) || c.ContainsPoint(mid) {
			return false
		}
	}
	for j, other := range subjects {
		if j == se.src {
			continue
		}
		if other.OnBoundary(mid, boundaryEps) {
			if j < se.src {
				return false
			}
			continue
		}
		if other.ContainsPoint(mid) {
			return false
		}
	}
	return true
}

// differenceKeepsClip keeps a clip sub-edge only when its midpoint is
// strictly inside at least one subject and not inside any other clip,
// with the same index tie-break among clips as among subjects.
// Kept pieces are reversed by the caller to face inward.
func differenceKeepsClip(se *subEdge, subjects, clips []*geom.Shape, clipBase int) bool {
	mid := se.a.Lerp(se.b, 0.5)
	inside := false
	for _, s := range subjects {
		if s.ContainsPoint(mid) && !s.OnBoundary(mid, boundaryEps) {
			inside = true
			break
		}
	}
	if !inside {
		return false
	}
	for j, other := range clips {
		gj := clipBase + j
		if gj == se.src {
			continue
		}
		if other.OnBoundary(mid, boundaryEps) {
			if gj < se.src {
				return false
			}
			continue
		}
		if other.ContainsPoint(mid) {
			return false
		}
	}
	return true
}

// shatter collects every edge of every input shape tagged with its
// source index and splits each at its interior intersections with
// edges of other shapes. An R-tree over edge bounding boxes prunes
// the candidate pairs; only bbox-overlapping cross-shape pairs reach
// the determinant test. The pairwise phase is still quadratic in the
// worst case and dominates large inputs.
func shatter(shapes []*geom.Shape) []*subEdge {
	var whole []*subEdge
	for i, s := range shapes {
		for _, e := range s.Edges() {
			whole = append(whole, &subEdge{
				a:      e.Start.Pos,
				b:      e.End.Pos,
				src:    i,
				bounds: segmentBounds(e.Start.Pos, e.End.Pos),
			})
		}
	}

	tree := rtreego.NewTree(2, 25, 50)
	for _, se := range whole {
		tree.Insert(se)
	}

	var out []*subEdge
	for _, se := range whole {
		var params []float64
		for _, hit := range tree.SearchIntersect(se.bounds) {
			o := hit.(*subEdge)
			if o == se || o.src == se.src {
				continue
			}
			t, _, ok := geom.SegmentIntersectParams(se.a, se.b, o.a, o.b)
			if !ok {
				continue
			}
			if t < endpointParamEps || t > 1-endpointParamEps {
				continue
			}
			params = append(params, t)
		}
		if len(params) == 0 {
			out = append(out, se)
			continue
		}
		sort.Float64s(params)

		prev := se.a
		last := 0.0
		for _, t := range params {
			if t-last < mergeParamEps {
				continue
			}
			cut := se.a.Lerp(se.b, t)
			out = append(out, &subEdge{a: prev, b: cut, src: se.src, bounds: segmentBounds(prev, cut)})
			prev, last = cut, t
		}
		out = append(out, &subEdge{a: prev, b: se.b, src: se.src, bounds: segmentBounds(prev, se.b)})
	}
	return out
}

// stitch reconstructs closed loops from the kept sub-edges. It pops
// an unused sub-edge and walks forward through a lookup keyed on
// snapped start coordinates; at junctions with several candidates the
// one turning furthest left relative to the incoming direction wins.
// A walk ends CLOSED when it returns to its own start (the loop
// becomes a shape) or DEAD_END when no candidate exists (the partial
// chain is dropped, a sign of inconsistent input). There are no
// retries.
func stitch(subs []*subEdge, shapes []*geom.Shape) []*geom.Shape {
	lookup := make(map[[2]int64][]*subEdge, len(subs))
	for _, se := range subs {
		k := snapKey(se.a)
		lookup[k] = append(lookup[k], se)
	}

	var results []*geom.Shape
	for _, start := range subs {
		if start.used {
			continue
		}
		start.used = true
		chain := []geom.Vec{start.a, start.b}
		cur := start

		for {
			if cur.b.Near(chain[0], boundaryEps) {
				if shape := loopShape(chain[:len(chain)-1], shapes[start.src]); shape != nil {
					results = append(results, shape)
				}
				break
			}

			var cands []*subEdge
			for _, c := range lookup[snapKey(cur.b)] {
				if !c.used {
					cands = append(cands, c)
				}
			}
			if len(cands) == 0 {
				break
			}

			next := cands[0]
			if len(cands) > 1 {
				next = leftmostTurn(cur, cands)
			}
			next.used = true
			chain = append(chain, next.b)
			cur = next
		}
	}
	return results
}

// leftmostTurn picks the candidate maximizing the signed turn angle
// relative to the incoming direction. This greedy rule resolves
// junctions where several shapes' boundaries meet; it keeps the walk
// on the outermost loop for simple overlaps but is heuristic for
// 3-plus-way junctions.
func leftmostTurn(cur *subEdge, cands []*subEdge) *subEdge {
	in := cur.b.Sub(cur.a).Normalize()
	best := math.Inf(-1)
	var pick *subEdge
	for _, c := range cands {
		d := c.b.Sub(c.a).Normalize()
		turn := math.Atan2(in.Cross(d), in.Dot(d))
		if turn > best {
			best = turn
			pick = c
		}
	}
	return pick
}

// loopShape builds a shape from a closed chain's points. The winding
// tag is taken from the realized signed area, so holes produced by
// reversed clip edges keep their CW orientation. Group and color tags
// are inherited from the loop's originating input shape.
func loopShape(pts []geom.Vec, origin *geom.Shape) *geom.Shape {
	if len(pts) < 3 {
		return nil
	}
	shape, err := geom.NewShape(pts, geom.WindingOf(pts))
	if err != nil {
		return nil
	}
	shape.Group = origin.Group
	shape.Color = origin.Color
	return shape
}

func snapKey(p geom.Vec) [2]int64 {
	return [2]int64{
		int64(math.Round(p.X / snapGrid)),
		int64(math.Round(p.Y / snapGrid)),
	}
}

// segmentBounds wraps a segment's bounding box as an R-tree
// rectangle, padded so axis-aligned segments keep positive extent.
func segmentBounds(a, b geom.Vec) rtreego.Rect {
	r := geom.BoundsOf([]geom.Vec{a, b}).Expand(boundaryEps)
	rect, err := rtreego.NewRect(
		rtreego.Point{r.Min.X, r.Min.Y},
		[]float64{r.Width(), r.Height()},
	)
	if err != nil {
		// Cannot happen: Expand guarantees positive lengths.
		rect, _ = rtreego.NewRect(rtreego.Point{a.X, a.Y}, []float64{1, 1})
	}
	return rect
}
