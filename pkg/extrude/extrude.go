// Package extrude lifts 2D kernel shapes into 3D triangle meshes
// using the github.com/deadsy/sdfx SDF-based CAD library. The 2D
// outline becomes an sdfx polygon, is extruded along z, and is
// tessellated with marching cubes.
package extrude

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/tessera/pkg/geom"
)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 100

// Extrude converts a shape's outline into a triangle mesh of the
// solid obtained by extruding it by height along z. The solid is
// centered on z=0, matching sdfx's extrusion convention. The shape is
// not mutated: sdfx requires a CCW outline, so a CW shape's point
// order is reversed on the way in.
func Extrude(s *geom.Shape, height float64) (*Mesh, error) {
	if height <= 0 {
		return nil, fmt.Errorf("extrude: height must be positive, got %g", height)
	}

	pts := s.Points()
	if s.Winding() == geom.CW {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	outline := make([]v2.Vec, len(pts))
	for i, p := range pts {
		outline[i] = v2.Vec{X: p.X, Y: p.Y}
	}

	poly, err := sdf.Polygon2D(outline)
	if err != nil {
		return nil, fmt.Errorf("extrude: sdfx rejected outline: %w", err)
	}
	solid := sdf.Extrude3D(poly, height)

	renderer := render.NewMarchingCubesUniform(defaultMeshCells)
	triangles := render.ToTriangles(solid, renderer)

	numVerts := len(triangles) * 3
	mesh := &Mesh{
		Vertices: make([]float32, 0, numVerts*3),
		Normals:  make([]float32, 0, numVerts*3),
		Indices:  make([]uint32, 0, numVerts),
		PartName: s.Group,
	}
	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			mesh.Vertices = append(mesh.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			mesh.Normals = append(mesh.Normals, nx, ny, nz)
			mesh.Indices = append(mesh.Indices, uint32(i*3+j))
		}
	}
	return mesh, nil
}
