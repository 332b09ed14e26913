// Package stack models the fabrication layer stack of a photonic chip:
// named layer levels with z-extents, materials, and etch relationships.
// It captures design intent of the chip layers after fabrication, for 3D
// rendering and simulation export.
package stack

import "github.com/chazu/epitaxy/pkg/layout"

// LayerType classifies how a level participates in fabrication.
type LayerType int

const (
	Grow       LayerType = iota // deposited or grown material
	Etch                        // removes material from target levels
	Implant                     // doping, leaves geometry untouched
	Background                  // surrounding medium
)

func (t LayerType) String() string {
	switch t {
	case Grow:
		return "grow"
	case Etch:
		return "etch"
	case Implant:
		return "implant"
	case Background:
		return "background"
	default:
		return "unknown"
	}
}

// ParseLayerType converts a type name to a LayerType.
func ParseLayerType(s string) (LayerType, bool) {
	switch s {
	case "grow":
		return Grow, true
	case "etch":
		return Etch, true
	case "implant":
		return Implant, true
	case "background":
		return Background, true
	}
	return 0, false
}

// DefaultMeshOrder is the mesh priority assigned when none is given.
// Lower orders win where materials overlap.
const DefaultMeshOrder = 3

// LayerLevel describes a single level of the stack. Values are treated as
// immutable once added to a LayerStack, except for Zmin which the stack's
// z-mutation operations shift in place.
type LayerLevel struct {
	// Layer is the physical GDS id. Nil marks a derived-only level that
	// does not participate in geometry operations.
	Layer *layout.Layer
	// DerivedLayer optionally stores the etch-intersection (slab) result.
	// Only meaningful for Type == Etch.
	DerivedLayer *layout.Layer

	Thickness          float64 // um
	ThicknessTolerance float64 // um
	Zmin               float64 // um, where the material starts
	ZminTolerance      float64 // um

	Material               string
	SidewallAngle          float64 // degrees from normal
	SidewallAngleTolerance float64
	WidthToZ               float64 // relative z of the sidewall reference

	// MeshOrder: lower orders take priority where materials overlap.
	MeshOrder int
	Type      LayerType

	// Into lists the names of levels this level etches.
	// Only meaningful for Type == Etch.
	Into []string

	Resistivity float64
	Orientation string // wafer plane Miller indices, e.g. "100"
	Info        map[string]any
}

// Bounds returns the sorted z-extent (low, high) of the level.
func (l *LayerLevel) Bounds() (zlo, zhi float64) {
	a, b := l.Zmin, l.Zmin+l.Thickness
	if a > b {
		return b, a
	}
	return a, b
}

// copyLevel returns a deep copy of a level.
func copyLevel(l *LayerLevel) *LayerLevel {
	c := *l
	if l.Layer != nil {
		layer := *l.Layer
		c.Layer = &layer
	}
	if l.DerivedLayer != nil {
		layer := *l.DerivedLayer
		c.DerivedLayer = &layer
	}
	c.Into = append([]string(nil), l.Into...)
	if l.Info != nil {
		c.Info = make(map[string]any, len(l.Info))
		for k, v := range l.Info {
			c.Info[k] = v
		}
	}
	return &c
}
