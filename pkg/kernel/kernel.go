// Package kernel defines the abstract 2D region kernel interface.
// Implementations (ctgeom) provide polygon boolean operations behind this
// interface, and Extruder backends (sdfx) turn regions into triangle meshes.
// The kernel abstraction allows swapping backends without changing the rest
// of the system.
package kernel

// Region is an opaque handle to a kernel polygon set.
// Implementations wrap their internal representation.
type Region interface {
	// Empty reports whether the region contains no area.
	Empty() bool
	// Area returns the total enclosed area.
	Area() float64
	// Bounds returns the axis-aligned bounding box.
	Bounds() (min, max [2]float64)
	// Rings returns the region outline as closed rings. Counter-clockwise
	// rings are solids, clockwise rings are holes.
	Rings() [][][2]float64
}

// Kernel is the abstract 2D geometry kernel interface.
type Kernel interface {
	// Primitives
	Rect(x0, y0, x1, y1 float64) Region
	Polygon(ring [][2]float64) Region
	EmptyRegion() Region

	// Boolean operations
	Union(a, b Region) Region
	Difference(a, b Region) Region
	Intersection(a, b Region) Region
}

// Extruder turns a 2D region into a triangle mesh by sweeping it over a
// vertical span.
type Extruder interface {
	Extrude(r Region, zmin, zmax float64) (*Mesh, error)
}
