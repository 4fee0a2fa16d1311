package geom

// Scene is an ordered collection of shapes on a canvas of a given
// size. It is the unit of output produced by the script engine and
// consumed by the renderers. Shapes flagged ephemeral stay in the
// scene (generators may keep deriving from them) but are excluded
// from Visible.
type Scene struct {
	Width, Height float64
	Shapes        []*Shape
}

// NewScene creates an empty scene with the given canvas size.
func NewScene(width, height float64) *Scene {
	return &Scene{Width: width, Height: height}
}

// Add appends shapes to the scene in draw order.
func (sc *Scene) Add(shapes ...*Shape) {
	sc.Shapes = append(sc.Shapes, shapes...)
}

// Visible returns the shapes that participate in final output,
// skipping ephemeral construction geometry.
func (sc *Scene) Visible() []*Shape {
	out := make([]*Shape, 0, len(sc.Shapes))
	for _, s := range sc.Shapes {
		if !s.Ephemeral {
			out = append(out, s)
		}
	}
	return out
}
