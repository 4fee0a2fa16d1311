// Package render serializes scenes as SVG documents. It consumes the
// kernel's path-data conversion and opaque color/group tags; no
// geometry happens here.
package render

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/chazu/tessera/pkg/geom"
)

// palette is the default fill cycle for shapes without a color tag.
var palette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// WriteSVG writes the scene's visible shapes as one SVG document.
// Shapes are emitted in draw order, one path each; consecutive shapes
// sharing a group tag are wrapped in a <g> element. Shapes without a
// color tag cycle through the default palette.
//
// SVG's y axis grows downward while the kernel's grows upward, so the
// document applies a flip transform; callers never pre-transform.
func WriteSVG(w io.Writer, scene *geom.Scene) error {
	if scene == nil {
		return fmt.Errorf("render: nil scene")
	}
	canvas := svg.New(w)
	canvas.Start(int(scene.Width), int(scene.Height))
	canvas.Gtransform(fmt.Sprintf("translate(0,%g) scale(1,-1)", scene.Height))

	openGroup := ""
	for i, s := range scene.Visible() {
		if s.Group != openGroup {
			if openGroup != "" {
				canvas.Gend()
			}
			if s.Group != "" {
				canvas.Gid(s.Group)
			}
			openGroup = s.Group
		}
		fill := s.Color
		if fill == "" {
			fill = palette[i%len(palette)]
		}
		style := fmt.Sprintf(`fill="%s"`, fill)
		if s.Open {
			style = fmt.Sprintf(`fill="none" stroke="%s"`, fill)
		}
		canvas.Path(s.PathData(), style)
	}
	if openGroup != "" {
		canvas.Gend()
	}

	canvas.Gend() // flip transform
	canvas.End()
	return nil
}
