package geom

import (
	"math"
	"testing"
)

// square returns a unit test square with min corner at origin,
// wound CCW.
func square(t *testing.T, size float64) *Shape {
	t.Helper()
	s, err := NewShape([]Vec{
		{0, 0}, {size, 0}, {size, size}, {0, size},
	}, CCW)
	if err != nil {
		t.Fatalf("NewShape: %v", err)
	}
	return s
}

func TestEdgeBasics(t *testing.T) {
	s := square(t, 10)
	e := s.Edges()[0] // (0,0) -> (10,0)

	if got := e.Length(); got != 10 {
		t.Errorf("Length() = %g, want 10", got)
	}
	if got := e.Dir(); !got.Eq(V(1, 0)) {
		t.Errorf("Dir() = %v, want (1,0)", got)
	}
	if got := e.Midpoint(); !got.Eq(V(5, 0)) {
		t.Errorf("Midpoint() = %v, want (5,0)", got)
	}
	if got := e.PointAt(0.25); !got.Eq(V(2.5, 0)) {
		t.Errorf("PointAt(0.25) = %v, want (2.5,0)", got)
	}
	if e.IsDegenerate() {
		t.Error("IsDegenerate() = true for a 10-unit edge")
	}
}

func TestEdgeCycleLinks(t *testing.T) {
	s := square(t, 1)
	edges := s.Edges()
	for i, e := range edges {
		next := edges[(i+1)%len(edges)]
		if e.Next() != next {
			t.Fatalf("edge %d Next() broken", i)
		}
		if next.Prev() != e {
			t.Fatalf("edge %d Prev() broken", i+1)
		}
		if e.End != next.Start {
			t.Fatalf("edge %d does not share its end vertex with the next edge", i)
		}
		if e.Start.Out() != e || e.End.In() != e {
			t.Fatalf("edge %d vertex back-references broken", i)
		}
	}
}

func TestEdgeNormalConvention(t *testing.T) {
	// CCW square: bottom edge travels +x, outward normal is -y.
	s := square(t, 10)
	if got := s.Edges()[0].Normal(); !got.Eq(V(0, -1)) {
		t.Errorf("CCW bottom edge normal = %v, want (0,-1)", got)
	}

	// Same square wound CW: the bottom edge now travels -x and its
	// outward normal must still point away from the interior (-y).
	s.Reverse()
	var bottom *Edge
	for _, e := range s.Edges() {
		if e.Midpoint().Eq(V(5, 0)) {
			bottom = e
			break
		}
	}
	if bottom == nil {
		t.Fatal("bottom edge not found after Reverse")
	}
	if got := bottom.Normal(); !got.Eq(V(0, -1)) {
		t.Errorf("CW bottom edge normal = %v, want (0,-1)", got)
	}
}

func TestVertexNormal(t *testing.T) {
	s := square(t, 10)
	// Corner (0,0) joins the left edge (normal -x) and the bottom
	// edge (normal -y): the vertex normal is the normalized sum.
	v := s.Edges()[0].Start
	want := V(-1, -1).Normalize()
	if got := v.Normal(); !got.Eq(want) {
		t.Errorf("corner normal = %v, want %v", got, want)
	}
}

func TestVertexNormalInvalidation(t *testing.T) {
	s := square(t, 10)
	v := s.Edges()[0].Start
	before := v.Normal()

	// Moving the adjacent corner changes the edge directions and
	// must invalidate the cached normal.
	s.Edges()[0].End.SetPos(V(10, 5))
	after := v.Normal()
	if before.Eq(after) {
		t.Errorf("normal cache not invalidated: %v == %v", before, after)
	}
}

func TestMoveAlongNormal(t *testing.T) {
	s := square(t, 10)
	v := s.Edges()[0].Start // corner (0,0), normal toward (-1,-1)/√2
	v.MoveAlongNormal(math.Sqrt2)
	if !v.Pos.Eq(V(-1, -1)) {
		t.Errorf("MoveAlongNormal moved to %v, want (-1,-1)", v.Pos)
	}
}

func TestSegmentIntersect(t *testing.T) {
	tests := []struct {
		name           string
		a1, a2, b1, b2 Vec
		want           Vec
		ok             bool
	}{
		{"perpendicular cross", V(0, 0), V(10, 0), V(5, -5), V(5, 5), V(5, 0), true},
		{"parallel", V(0, 0), V(10, 0), V(0, 1), V(10, 1), Vec{}, false},
		{"collinear", V(0, 0), V(10, 0), V(2, 0), V(8, 0), Vec{}, false},
		{"non-overlapping", V(0, 0), V(1, 0), V(5, -5), V(5, 5), Vec{}, false},
		{"touching endpoints", V(0, 0), V(5, 5), V(5, 5), V(10, 0), V(5, 5), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SegmentIntersect(tt.a1, tt.a2, tt.b1, tt.b2)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Eq(tt.want) {
				t.Errorf("intersection = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLineIntersectParallel(t *testing.T) {
	if _, ok := LineIntersect(V(0, 0), V(1, 0), V(0, 1), V(1, 0)); ok {
		t.Error("parallel lines reported an intersection")
	}
}

func TestSegmentDistance(t *testing.T) {
	tests := []struct {
		name string
		p    Vec
		want float64
	}{
		{"above middle", V(5, 3), 3},
		{"beyond end", V(13, 4), 5},
		{"on segment", V(5, 0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SegmentDistance(V(0, 0), V(10, 0), tt.p)
			if !almostEq(got, tt.want, 1e-12) {
				t.Errorf("SegmentDistance = %g, want %g", got, tt.want)
			}
		})
	}
}
