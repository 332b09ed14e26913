// Package sdfx implements the kernel.Extruder interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Regions are rebuilt as 2D
// signed distance fields, swept vertically, and tessellated with marching
// cubes into triangle meshes for 3D rendering and simulation export.
package sdfx

import (
	"fmt"

	"github.com/chazu/epitaxy/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Extruder = (*Extruder)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 100

// Extruder implements kernel.Extruder using sdfx.
type Extruder struct {
	cells int
}

// New returns an Extruder with the default tessellation resolution.
func New() *Extruder {
	return &Extruder{cells: defaultMeshCells}
}

// NewWithCells returns an Extruder with an explicit marching cubes cell
// count. Lower counts are faster and coarser.
func NewWithCells(cells int) *Extruder {
	if cells <= 0 {
		cells = defaultMeshCells
	}
	return &Extruder{cells: cells}
}

// Extrude sweeps the region over [zmin, zmax] and tessellates the result.
// An empty region or a zero-height span yields an empty mesh.
func (e *Extruder) Extrude(r kernel.Region, zmin, zmax float64) (*kernel.Mesh, error) {
	if r == nil || r.Empty() || zmin == zmax {
		return &kernel.Mesh{}, nil
	}
	if zmin > zmax {
		zmin, zmax = zmax, zmin
	}

	s2, err := regionToSDF2(r)
	if err != nil {
		return nil, err
	}
	if s2 == nil {
		return &kernel.Mesh{}, nil
	}

	// Extrude3D centers the solid about z=0; shift to the requested span.
	height := zmax - zmin
	s3 := sdf.Extrude3D(s2, height)
	m := sdf.Translate3d(v3.Vec{Z: zmin + height/2})
	s3 = sdf.Transform3D(s3, m)

	renderer := render.NewMarchingCubesUniform(e.cells)
	triangles := render.ToTriangles(s3, renderer)

	vertices := make([]float32, 0, len(triangles)*9)
	normals := make([]float32, 0, len(triangles)*9)
	indices := make([]uint32, 0, len(triangles)*3)

	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// regionToSDF2 rebuilds a region as a 2D SDF. Counter-clockwise rings are
// unioned as solids, clockwise rings subtracted as holes.
func regionToSDF2(r kernel.Region) (sdf.SDF2, error) {
	var solid sdf.SDF2
	var holes []sdf.SDF2

	for _, ring := range r.Rings() {
		if len(ring) < 3 {
			continue
		}
		pts := make([]v2.Vec, 0, len(ring))
		for _, p := range ring {
			pts = append(pts, v2.Vec{X: p[0], Y: p[1]})
		}
		s, err := sdf.Polygon2D(pts)
		if err != nil {
			return nil, fmt.Errorf("sdfx: polygon ring: %w", err)
		}
		if signedArea(ring) >= 0 {
			if solid == nil {
				solid = s
			} else {
				solid = sdf.Union2D(solid, s)
			}
		} else {
			holes = append(holes, s)
		}
	}

	if solid == nil {
		return nil, nil
	}
	for _, h := range holes {
		solid = sdf.Difference2D(solid, h)
	}
	return solid, nil
}

// signedArea returns twice the signed area of a ring. Positive means
// counter-clockwise winding.
func signedArea(ring [][2]float64) float64 {
	var sum float64
	for i, p := range ring {
		q := ring[(i+1)%len(ring)]
		sum += p[0]*q[1] - q[0]*p[1]
	}
	return sum
}
