package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/tessera/pkg/geom"
)

// evalScene evaluates source and fails the test on any error.
func evalScene(t *testing.T, source string) *geom.Scene {
	t.Helper()
	sc, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	return sc
}

// --- preprocessing ---

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"keyword", `(shape :winding :ccw)`, `(shape "__kw_winding" "__kw_ccw")`},
		{"kebab call", `(move-to s p)`, `(move_to s p)`},
		{"kebab keyword", `:miter-limit`, `"__kw_miter-limit"`},
		{"minus stays", `(- 5 3)`, `(- 5 3)`},
		{"negative number", `(vec -5 3)`, `(vec -5 3)`},
		{"string untouched", `"a-b :c"`, `"a-b :c"`},
		{"assignment", `(x := 5)`, `(x := 5)`},
		{"lisp comment", "; note\n(vec 1 2)", "// note\n(vec 1 2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := preprocessSource(tt.in); got != tt.want {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseArgsSeparation(t *testing.T) {
	sc := evalScene(t, `(place (polygon :sides 5 :radius 10 :at (vec 30 30) :color "#0f0"))`)
	if len(sc.Shapes) != 1 {
		t.Fatalf("scene has %d shapes, want 1", len(sc.Shapes))
	}
	s := sc.Shapes[0]
	if len(s.Edges()) != 5 {
		t.Errorf("polygon has %d sides, want 5", len(s.Edges()))
	}
	if s.Color != "#0f0" {
		t.Errorf("color = %q, want #0f0", s.Color)
	}
	if c := s.Centroid(); !c.Eq(geom.V(30, 30)) {
		t.Errorf("centroid = %v, want (30,30)", c)
	}
}

// --- shape construction and mutation ---

func TestShapeBuiltin(t *testing.T) {
	sc := evalScene(t, `(place (shape (vec 0 0) (vec 10 0) (vec 10 10) (vec 0 10)))`)
	if len(sc.Shapes) != 1 {
		t.Fatalf("scene has %d shapes, want 1", len(sc.Shapes))
	}
	if a := sc.Shapes[0].Area(); math.Abs(a-100) > 1e-9 {
		t.Errorf("area = %g, want 100", a)
	}
	if sc.Shapes[0].Winding() != geom.CCW {
		t.Error("default winding is not ccw")
	}
}

func TestShapeBuiltinCW(t *testing.T) {
	sc := evalScene(t, `(place (shape (vec 0 0) (vec 10 0) (vec 10 10) :winding :cw))`)
	if sc.Shapes[0].Winding() != geom.CW {
		t.Error("explicit :cw winding not applied")
	}
	if a := sc.Shapes[0].Area(); a >= 0 {
		t.Errorf("CW area = %g, want negative", a)
	}
}

func TestTransformBuiltins(t *testing.T) {
	sc := evalScene(t, `
(def s (polygon :sides 4 :radius 10 :at (vec 0 0)))
(scale s 2)
(rotate s 0.5)
(translate s (vec 5 5))
(move-to s (vec 100 100))
(place s)
`)
	if len(sc.Shapes) != 1 {
		t.Fatalf("scene has %d shapes, want 1", len(sc.Shapes))
	}
	if c := sc.Shapes[0].Centroid(); !c.Eq(geom.V(100, 100)) {
		t.Errorf("centroid = %v, want (100,100)", c)
	}
}

func TestOffsetBuiltin(t *testing.T) {
	sc := evalScene(t, `
(def s (shape (vec 0 0) (vec 10 0) (vec 10 10) (vec 0 10)))
(place (offset s 2))
`)
	bb := sc.Shapes[0].BoundingBox()
	if bb.Width() != 14 {
		t.Errorf("offset bbox width = %g, want 14", bb.Width())
	}
}

func TestUnionBuiltin(t *testing.T) {
	sc := evalScene(t, `
(def a (shape (vec 0 0) (vec 10 0) (vec 10 10) (vec 0 10)))
(def b (shape (vec 5 5) (vec 15 5) (vec 15 15) (vec 5 15)))
(place (union a b))
`)
	if len(sc.Shapes) != 1 {
		t.Fatalf("scene has %d shapes, want 1", len(sc.Shapes))
	}
	if a := sc.Shapes[0].Area(); math.Abs(a-175) > 1e-6 {
		t.Errorf("union area = %g, want 175", a)
	}
}

func TestDifferenceBuiltin(t *testing.T) {
	sc := evalScene(t, `
(def a (shape (vec 0 0) (vec 10 0) (vec 10 10) (vec 0 10)))
(def b (shape (vec 5 5) (vec 15 5) (vec 15 15) (vec 5 15)))
(place (difference a b))
`)
	if len(sc.Shapes) != 1 {
		t.Fatalf("scene has %d shapes, want 1", len(sc.Shapes))
	}
	if a := sc.Shapes[0].Area(); math.Abs(a-75) > 1e-6 {
		t.Errorf("difference area = %g, want 75", a)
	}
}

func TestCanvasBuiltin(t *testing.T) {
	sc := evalScene(t, `(canvas 800 600)`)
	if sc.Width != 800 || sc.Height != 600 {
		t.Errorf("canvas = %g×%g, want 800×600", sc.Width, sc.Height)
	}
}

func TestEphemeralBuiltin(t *testing.T) {
	sc := evalScene(t, `
(place (ephemeral (polygon :sides 3 :radius 5 :at (vec 0 0))))
(place (polygon :sides 4 :radius 5 :at (vec 20 20)))
`)
	if len(sc.Shapes) != 2 {
		t.Fatalf("scene has %d shapes, want 2", len(sc.Shapes))
	}
	vis := sc.Visible()
	if len(vis) != 1 {
		t.Fatalf("visible shapes = %d, want 1", len(vis))
	}
	if len(vis[0].Edges()) != 4 {
		t.Error("the visible shape should be the square, not the ephemeral triangle")
	}
}

func TestGroupTag(t *testing.T) {
	sc := evalScene(t, `(place (polygon :sides 3 :radius 5 :group "tiles"))`)
	if sc.Shapes[0].Group != "tiles" {
		t.Errorf("group = %q, want tiles", sc.Shapes[0].Group)
	}
}

func TestQueryBuiltins(t *testing.T) {
	// Use the script-level queries to drive a placement decision, as
	// generator scripts do. The sandbox's conditional form is cond.
	sc := evalScene(t, `
(def s (shape (vec 0 0) (vec 10 0) (vec 10 10) (vec 0 10)))
(cond (contains s (vec 5 5))
      (place s)
      (place (polygon :sides 3 :radius 1)))
`)
	if len(sc.Shapes) != 1 || len(sc.Shapes[0].Edges()) != 4 {
		t.Error("contains query did not select the square branch")
	}
}

func TestPolygonTooFewSides(t *testing.T) {
	_, evalErrs, err := NewEngine().Evaluate(`(polygon :sides 2 :radius 5)`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors for 2-sided polygon")
	}
	joined := ""
	for _, e := range evalErrs {
		joined += e.Message
	}
	if !strings.Contains(joined, "invalid geometry") {
		t.Errorf("errors %q do not mention invalid geometry", joined)
	}
}
