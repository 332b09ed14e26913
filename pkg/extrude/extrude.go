// Package extrude walks a layer stack and a component and produces triangle
// meshes, one per populated layer. Feed it the output of package derive to
// get the post-fabrication 3D view.
package extrude

import (
	"fmt"

	"github.com/chazu/epitaxy/pkg/kernel"
	"github.com/chazu/epitaxy/pkg/layout"
	"github.com/chazu/epitaxy/pkg/stack"
)

// Meshes extrudes each stack level's geometry over its z-bounds. Levels
// without a physical id, with zero thickness, or without shapes in the
// component are skipped. Results follow stack order. The component and
// stack are read-only during the call.
func Meshes(c *layout.Component, s *stack.LayerStack, k kernel.Kernel, ext kernel.Extruder) ([]*kernel.Mesh, error) {
	if c == nil || s == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	for _, name := range s.Names() {
		level := s.MustGet(name)
		if level.Layer == nil || level.Thickness == 0 {
			continue
		}
		if !c.HasLayer(*level.Layer) {
			continue
		}

		merged := k.EmptyRegion()
		for _, r := range c.Shapes(*level.Layer) {
			merged = k.Union(merged, r)
		}
		if merged.Empty() {
			continue
		}

		zlo, zhi := level.Bounds()
		m, err := ext.Extrude(merged, zlo, zhi)
		if err != nil {
			return nil, fmt.Errorf("extrude: level %q: %w", name, err)
		}
		if m.IsEmpty() {
			continue
		}
		m.LayerName = name
		meshes = append(meshes, m)
	}
	return meshes, nil
}
