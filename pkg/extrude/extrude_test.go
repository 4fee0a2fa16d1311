package extrude

import (
	"testing"

	"github.com/chazu/tessera/pkg/geom"
)

func testSquare(t *testing.T, winding geom.Winding) *geom.Shape {
	t.Helper()
	s, err := geom.NewShape([]geom.Vec{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}, winding)
	if err != nil {
		t.Fatalf("NewShape: %v", err)
	}
	return s
}

func TestExtrudeSquare(t *testing.T) {
	s := testSquare(t, geom.CCW)
	s.Group = "block"

	m, err := Extrude(s, 5)
	if err != nil {
		t.Fatalf("Extrude: %v", err)
	}
	if m.IsEmpty() {
		t.Fatal("extruded mesh is empty")
	}
	if m.PartName != "block" {
		t.Errorf("PartName = %q, want block", m.PartName)
	}

	// Flat-array bookkeeping: one normal per vertex, one index per
	// vertex, three indices per triangle.
	if len(m.Normals) != len(m.Vertices) {
		t.Errorf("normals/vertices length mismatch: %d vs %d", len(m.Normals), len(m.Vertices))
	}
	if len(m.Indices) != m.VertexCount() {
		t.Errorf("index count %d != vertex count %d", len(m.Indices), m.VertexCount())
	}
	if m.TriangleCount()*3 != len(m.Indices) {
		t.Errorf("triangle count %d inconsistent with %d indices", m.TriangleCount(), len(m.Indices))
	}
}

func TestExtrudeBounds(t *testing.T) {
	m, err := Extrude(testSquare(t, geom.CCW), 5)
	if err != nil {
		t.Fatal(err)
	}
	// The solid is centered on z=0, so every vertex z sits within
	// ±height/2 plus tessellation slack.
	const slack = 1.0
	for i := 2; i < len(m.Vertices); i += 3 {
		z := float64(m.Vertices[i])
		if z < -2.5-slack || z > 2.5+slack {
			t.Fatalf("vertex z = %g outside extrusion range", z)
		}
	}
}

func TestExtrudeCWOutline(t *testing.T) {
	s := testSquare(t, geom.CW)
	m, err := Extrude(s, 5)
	if err != nil {
		t.Fatalf("Extrude rejected CW outline: %v", err)
	}
	if m.IsEmpty() {
		t.Fatal("CW outline produced an empty mesh")
	}
	// The input shape keeps its own winding.
	if s.Winding() != geom.CW {
		t.Error("Extrude mutated the input shape's winding")
	}
}

func TestExtrudeInvalidHeight(t *testing.T) {
	s := testSquare(t, geom.CCW)
	for _, h := range []float64{0, -3} {
		if _, err := Extrude(s, h); err == nil {
			t.Errorf("Extrude(%g) succeeded, want error", h)
		}
	}
}
