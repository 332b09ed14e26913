package stack

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/chazu/epitaxy/pkg/layout"
)

// KeyNotFoundError reports access to a layer name that is not in the stack.
// The message enumerates all valid names.
type KeyNotFoundError struct {
	Key   string
	Names []string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("layer %q not in stack, valid names: %v", e.Key, e.Names)
}

// LayerStack is an ordered mapping from layer name to LayerLevel.
// Insertion order is preserved for deterministic derived output.
type LayerStack struct {
	names  []string
	levels map[string]*LayerLevel
}

// New creates an empty LayerStack.
func New() *LayerStack {
	return &LayerStack{levels: make(map[string]*LayerLevel)}
}

// Add inserts a level under the given name. Re-adding an existing name
// replaces the level but keeps its position in the stack order.
func (s *LayerStack) Add(name string, level *LayerLevel) *LayerStack {
	if _, ok := s.levels[name]; !ok {
		s.names = append(s.names, name)
	}
	s.levels[name] = level
	return s
}

// Get returns the level with the given name, or a KeyNotFoundError
// listing all valid names.
func (s *LayerStack) Get(name string) (*LayerLevel, error) {
	level, ok := s.levels[name]
	if !ok {
		return nil, &KeyNotFoundError{Key: name, Names: s.Names()}
	}
	return level, nil
}

// MustGet returns the level with the given name, or panics.
func (s *LayerStack) MustGet(name string) *LayerLevel {
	level, err := s.Get(name)
	if err != nil {
		panic(err)
	}
	return level
}

// Names returns the layer names in stack order.
func (s *LayerStack) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of levels.
func (s *LayerStack) Len() int {
	return len(s.names)
}

// Copy returns a deep copy of the stack.
func (s *LayerStack) Copy() *LayerStack {
	out := New()
	for _, name := range s.names {
		out.Add(name, copyLevel(s.levels[name]))
	}
	return out
}

// LayerToThickness returns physical layer id to thickness (um).
// Levels without an id or with zero thickness are excluded.
func (s *LayerStack) LayerToThickness() map[layout.Layer]float64 {
	out := make(map[layout.Layer]float64)
	for _, name := range s.names {
		if l := s.levels[name]; l.Layer != nil && l.Thickness != 0 {
			out[*l.Layer] = l.Thickness
		}
	}
	return out
}

// LayerToZmin returns physical layer id to z-min position (um).
func (s *LayerStack) LayerToZmin() map[layout.Layer]float64 {
	out := make(map[layout.Layer]float64)
	for _, name := range s.names {
		if l := s.levels[name]; l.Layer != nil && l.Thickness != 0 {
			out[*l.Layer] = l.Zmin
		}
	}
	return out
}

// LayerToMaterial returns physical layer id to material name.
func (s *LayerStack) LayerToMaterial() map[layout.Layer]string {
	out := make(map[layout.Layer]string)
	for _, name := range s.names {
		if l := s.levels[name]; l.Layer != nil && l.Thickness != 0 {
			out[*l.Layer] = l.Material
		}
	}
	return out
}

// LayerToSidewallAngle returns physical layer id to sidewall angle (degrees).
func (s *LayerStack) LayerToSidewallAngle() map[layout.Layer]float64 {
	out := make(map[layout.Layer]float64)
	for _, name := range s.names {
		if l := s.levels[name]; l.Layer != nil && l.Thickness != 0 {
			out[*l.Layer] = l.SidewallAngle
		}
	}
	return out
}

// LayerToInfo returns physical layer id to the info map, with no
// thickness filter.
func (s *LayerStack) LayerToInfo() map[layout.Layer]map[string]any {
	out := make(map[layout.Layer]map[string]any)
	for _, name := range s.names {
		if l := s.levels[name]; l.Layer != nil {
			out[*l.Layer] = l.Info
		}
	}
	return out
}

// LayerToLayername returns physical layer id to the names that share it.
// Several levels may map to one physical layer.
func (s *LayerStack) LayerToLayername() map[layout.Layer][]string {
	out := make(map[layout.Layer][]string)
	for _, name := range s.names {
		if l := s.levels[name]; l.Layer != nil {
			out[*l.Layer] = append(out[*l.Layer], name)
		}
	}
	return out
}

// Filtered returns a sub-stack containing only the requested names that
// exist, in the requested order. Unknown names are silently dropped.
func (s *LayerStack) Filtered(names []string) *LayerStack {
	out := New()
	for _, name := range names {
		if level, ok := s.levels[name]; ok {
			out.Add(name, level)
		}
	}
	return out
}

// ZOffset shifts the z-coordinates of every level by dz, in place.
// Returns the receiver for chaining.
func (s *LayerStack) ZOffset(dz float64) *LayerStack {
	for _, level := range s.levels {
		level.Zmin += dz
	}
	return s
}

// InvertZAxis flips every level's zmin about the origin, in place.
// Returns the receiver for chaining.
func (s *LayerStack) InvertZAxis() *LayerStack {
	for _, level := range s.levels {
		level.Zmin = -level.Zmin
	}
	return s
}

// Table writes a human-readable summary of the stack.
func (s *LayerStack) Table(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "name\tlayer\tthickness\tzmin\tmaterial\ttype\tsidewall_angle")
	for _, name := range s.names {
		l := s.levels[name]
		layerStr := "-"
		if l.Layer != nil {
			layerStr = l.Layer.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%s\t%s\t%g\n",
			name, layerStr, l.Thickness, l.Zmin, l.Material, l.Type, l.SidewallAngle)
	}
	return tw.Flush()
}
