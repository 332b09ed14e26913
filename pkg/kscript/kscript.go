// Package kscript emits the KLayout 2.5D view script for a layer stack:
// per-layer input declarations, boolean definitions for unetched residuals
// and etch slabs, and z-extrusion statements. The output can be embedded in
// a tech.lyt file.
package kscript

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/chazu/epitaxy/pkg/layout"
	"github.com/chazu/epitaxy/pkg/stack"
)

// DefaultDBU is the database unit quantum used for z-value rounding when
// none is supplied (1 nm).
const DefaultDBU = 0.001

// ColorLookup supplies display properties per physical layer, typically
// backed by a parsed .lyp file (package lyp).
type ColorLookup interface {
	// Color returns the fill and frame colors for a layer. ok is false
	// when the layer has no view properties.
	Color(l layout.Layer) (fill, frame string, ok bool)
}

// Option configures script generation.
type Option func(*options)

type options struct {
	views ColorLookup
	dbu   float64
}

// WithViews appends fill/frame color directives from the lookup.
func WithViews(v ColorLookup) Option {
	return func(o *options) { o.views = v }
}

// WithDBU sets the database unit quantum that decides z-value rounding.
// A zero quantum disables rounding.
func WithDBU(dbu float64) Option {
	return func(o *options) { o.dbu = dbu }
}

// Generate walks the stack and returns the 2.5D script text. Levels
// without a physical layer id are skipped silently.
func Generate(s *stack.LayerStack, opts ...Option) string {
	o := options{dbu: DefaultDBU}
	for _, opt := range opts {
		opt(&o)
	}
	digits := -1
	if o.dbu != 0 {
		digits = decimals(o.dbu)
	}

	res := s.Resolve()
	var b strings.Builder

	// Layer declarations.
	for _, name := range s.Names() {
		level := s.MustGet(name)
		if level.Layer == nil {
			continue
		}
		fmt.Fprintf(&b, "%s = input(%d, %d)\n", name, level.Layer.Number, level.Layer.Datatype)
	}
	b.WriteByte('\n')

	// Unetched residual definitions, declaration order preserved.
	for _, target := range res.Etched {
		fmt.Fprintf(&b, "unetched_%s = %s - %s\n",
			target, target, strings.Join(res.EtchedBy[target], " - "))
	}
	b.WriteByte('\n')

	// Slab intersection definitions.
	for _, name := range s.Names() {
		level := s.MustGet(name)
		if level.Type != stack.Etch {
			continue
		}
		for i, target := range level.Into {
			fmt.Fprintf(&b, "slab_%s_%s_%d = %s & %s\n", target, name, i, target, name)
		}
	}
	b.WriteByte('\n')

	unetched := make(map[string]bool, len(res.Unetched))
	for _, name := range res.Unetched {
		unetched[name] = true
	}

	// Extrusion statements in stack order: slabs for etch levels, own
	// bounds for pure-grow levels.
	for _, name := range s.Names() {
		level := s.MustGet(name)
		if level.Layer == nil {
			continue
		}

		switch {
		case level.Type == stack.Etch:
			for i, target := range level.Into {
				targetLevel, err := s.Get(target)
				if err != nil {
					// Dangling target: no z-extents to emit.
					continue
				}
				// The slab spans from the target's floor to its top
				// minus the etch depth.
				zstart := targetLevel.Zmin
				zstop := targetLevel.Zmin + targetLevel.Thickness - level.Thickness
				slabName := fmt.Sprintf("slab_%s_%s_%d", target, name, i)
				label := fmt.Sprintf("%s: %s %s", slabName, level.Material, level.Layer)
				b.WriteString(zStatement(slabName, zstart, zstop, label, digits, o.views, *level.Layer))
			}

		case unetched[name]:
			label := fmt.Sprintf("%s: %s %s", name, level.Material, level.Layer)
			b.WriteString(zStatement(name, level.Zmin, level.Zmin+level.Thickness, label, digits, o.views, *level.Layer))
		}
	}
	b.WriteByte('\n')

	// Trailing extrusions for the unetched residuals, using the target's
	// own bounds.
	for _, target := range res.Etched {
		level, err := s.Get(target)
		if err != nil || level.Layer == nil {
			continue
		}
		derivedName := "unetched_" + target
		label := fmt.Sprintf("%s: %s %s", derivedName, level.Material, level.Layer)
		b.WriteString(zStatement(derivedName, level.Zmin, level.Zmin+level.Thickness, label, digits, o.views, *level.Layer))
	}

	return b.String()
}

// zStatement formats one z() extrusion line, with optional color directives.
func zStatement(name string, zstart, zstop float64, label string, digits int, views ColorLookup, l layout.Layer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "z(%s, zstart: %s, zstop: %s, name: '%s'",
		name, formatZ(zstart, digits), formatZ(zstop, digits), label)
	if views != nil {
		if fill, frame, ok := views.Color(l); ok {
			if fill == frame {
				fmt.Fprintf(&b, ", color: %s", fill)
			} else {
				fmt.Fprintf(&b, ", fill: %s, frame: %s", fill, frame)
			}
		}
	}
	b.WriteString(")\n")
	return b.String()
}

// formatZ rounds a z-value to the given decimal digits and formats it with
// the shortest representation. Negative digits disable rounding.
func formatZ(v float64, digits int) string {
	if digits >= 0 {
		p := math.Pow10(digits)
		v = math.Round(v*p) / p
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// decimals returns the number of decimal digits implied by a quantum's
// decimal representation: 0.001 -> 3, 0.05 -> 2, 1 -> 0.
func decimals(dbu float64) int {
	s := strconv.FormatFloat(dbu, 'f', -1, 64)
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 0
	}
	return len(s) - i - 1
}
