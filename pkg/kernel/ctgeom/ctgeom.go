// Package ctgeom implements the kernel.Kernel interface using the
// github.com/ctessum/geom polygon clipping library.
package ctgeom

import (
	"math"

	"github.com/chazu/epitaxy/pkg/kernel"
	"github.com/ctessum/geom"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*Kernel)(nil)
var _ kernel.Region = (*region)(nil)

// region wraps a geom.Polygon to implement kernel.Region.
type region struct {
	p geom.Polygon
}

// Empty reports whether the region has no area.
func (r *region) Empty() bool {
	if len(r.p) == 0 {
		return true
	}
	return r.p.Area() == 0
}

// Area returns the enclosed area. Holes are subtracted.
func (r *region) Area() float64 {
	return r.p.Area()
}

// Bounds returns the axis-aligned bounding box. An empty region has a
// degenerate box at the origin.
func (r *region) Bounds() (min, max [2]float64) {
	if len(r.p) == 0 {
		return [2]float64{}, [2]float64{}
	}
	b := r.p.Bounds()
	return [2]float64{b.Min.X, b.Min.Y}, [2]float64{b.Max.X, b.Max.Y}
}

// Rings returns the polygon rings. Winding is preserved from the clipping
// library: counter-clockwise solids, clockwise holes.
func (r *region) Rings() [][][2]float64 {
	rings := make([][][2]float64, 0, len(r.p))
	for _, ring := range r.p {
		pts := make([][2]float64, 0, len(ring))
		for _, pt := range ring {
			pts = append(pts, [2]float64{pt.X, pt.Y})
		}
		rings = append(rings, pts)
	}
	return rings
}

// Kernel implements kernel.Kernel using ctessum/geom polygon booleans.
type Kernel struct{}

// New returns a new ctgeom Kernel.
func New() *Kernel {
	return &Kernel{}
}

// unwrap extracts the underlying geom.Polygon from a kernel.Region.
func unwrap(r kernel.Region) geom.Polygon {
	if r == nil {
		return nil
	}
	return r.(*region).p
}

// wrap creates a kernel.Region from a geom.Polygon.
func wrap(p geom.Polygon) kernel.Region {
	return &region{p: p}
}

// Rect creates a rectangular region. Corner order does not matter.
func (k *Kernel) Rect(x0, y0, x1, y1 float64) kernel.Region {
	xlo, xhi := math.Min(x0, x1), math.Max(x0, x1)
	ylo, yhi := math.Min(y0, y1), math.Max(y0, y1)
	return wrap(geom.Polygon{{
		{X: xlo, Y: ylo},
		{X: xhi, Y: ylo},
		{X: xhi, Y: yhi},
		{X: xlo, Y: yhi},
	}})
}

// Polygon creates a region from a single closed ring.
// Rings with fewer than 3 points yield an empty region.
func (k *Kernel) Polygon(ring [][2]float64) kernel.Region {
	if len(ring) < 3 {
		return k.EmptyRegion()
	}
	pts := make([]geom.Point, 0, len(ring))
	for _, p := range ring {
		pts = append(pts, geom.Point{X: p[0], Y: p[1]})
	}
	return wrap(geom.Polygon{pts})
}

// EmptyRegion returns a region with no polygons.
func (k *Kernel) EmptyRegion() kernel.Region {
	return wrap(geom.Polygon{})
}

// Union returns the boolean union of two regions.
func (k *Kernel) Union(a, b kernel.Region) kernel.Region {
	pa, pb := unwrap(a), unwrap(b)
	if len(pa) == 0 {
		return wrap(pb)
	}
	if len(pb) == 0 {
		return wrap(pa)
	}
	return wrap(pa.Union(pb).(geom.Polygon))
}

// Difference returns the boolean difference a minus b.
func (k *Kernel) Difference(a, b kernel.Region) kernel.Region {
	pa, pb := unwrap(a), unwrap(b)
	if len(pa) == 0 || len(pb) == 0 {
		return wrap(pa)
	}
	return wrap(pa.Difference(pb).(geom.Polygon))
}

// Intersection returns the boolean intersection of two regions.
func (k *Kernel) Intersection(a, b kernel.Region) kernel.Region {
	pa, pb := unwrap(a), unwrap(b)
	if len(pa) == 0 || len(pb) == 0 {
		return wrap(geom.Polygon{})
	}
	return wrap(pa.Intersection(pb).(geom.Polygon))
}
