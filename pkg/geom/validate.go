package geom

import "fmt"

// Violation reports a single structural defect found by Validate.
// Violations are diagnostics, not errors: a shape with violations is
// still usable, and degenerate edges can be remediated with
// RemoveDegenerateEdges.
type Violation struct {
	Code    string // OPEN_LOOP, BROKEN_LINK, WINDING_MISMATCH, DEGENERATE_EDGE
	Message string
	Edge    int // index of the offending edge
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s (edge %d)", v.Code, v.Message, v.Edge)
}

// Validate checks the closure, adjacency, winding, and degeneracy
// invariants of the edge cycle and returns every violation found. It
// never panics or throws; a well-formed shape yields an empty list.
func (s *Shape) Validate() []Violation {
	var out []Violation
	n := len(s.edges)
	for i, e := range s.edges {
		next := s.edges[(i+1)%n]

		if !e.End.Pos.Eq(next.Start.Pos) {
			out = append(out, Violation{
				Code:    "OPEN_LOOP",
				Message: fmt.Sprintf("edge end (%g, %g) does not meet next edge start (%g, %g)", e.End.Pos.X, e.End.Pos.Y, next.Start.Pos.X, next.Start.Pos.Y),
				Edge:    i,
			})
		}
		if e.next != next || next.prev != e {
			out = append(out, Violation{
				Code:    "BROKEN_LINK",
				Message: "next/prev chain does not follow edge order",
				Edge:    i,
			})
		}
		if e.End != next.Start {
			out = append(out, Violation{
				Code:    "BROKEN_LINK",
				Message: "adjacent edges do not share a vertex",
				Edge:    i,
			})
		}
		if e.winding != s.winding {
			out = append(out, Violation{
				Code:    "WINDING_MISMATCH",
				Message: fmt.Sprintf("edge wound %s in a %s shape", e.winding, s.winding),
				Edge:    i,
			})
		}
		if e.IsDegenerate() {
			out = append(out, Violation{
				Code:    "DEGENERATE_EDGE",
				Message: "edge has near-zero length",
				Edge:    i,
			})
		}
	}
	return out
}
