// Package derive applies a layer stack's etch resolution to component
// geometry, producing the physically realized polygon set per layer.
package derive

import (
	"fmt"

	"github.com/chazu/epitaxy/pkg/kernel"
	"github.com/chazu/epitaxy/pkg/layout"
	"github.com/chazu/epitaxy/pkg/stack"
)

// Option configures a derivation.
type Option func(*options)

type options struct {
	strict   bool
	resolver layout.LayerResolver
}

// Strict upgrades missing snapshot geometry from a silent empty region to a
// hard error. By default a referenced layer absent from the component is
// treated as empty.
func Strict() Option {
	return func(o *options) { o.strict = true }
}

// WithResolver substitutes the layer-id resolver used to map stack layer
// ids to the ids of the geometry snapshot.
func WithResolver(r layout.LayerResolver) Option {
	return func(o *options) { o.resolver = r }
}

// Derived returns a new component holding the post-fabrication geometry:
// pure-grow layers pass through unchanged, etched grow layers are replaced
// by their unetched residual (base minus the union of all etch regions, in
// resolution order), and etch levels with a derived layer produce a slab
// (base intersected with that etch region) under the etch level's own id.
// Ports are attached unchanged. The input component is not mutated.
func Derived(c *layout.Component, s *stack.LayerStack, k kernel.Kernel, opts ...Option) (*layout.Component, error) {
	o := options{resolver: layout.IdentityResolver{}}
	for _, opt := range opts {
		opt(&o)
	}

	res := s.Resolve()
	snapshot := c.Polygons(k)

	// Pure-grow layers present in the snapshot pass through as-is.
	var pure []layout.Layer
	for _, name := range res.Unetched {
		level := s.MustGet(name) // Unetched names come from the stack itself
		id := o.resolver.Resolve(*level.Layer)
		if _, ok := snapshot[id]; ok {
			pure = append(pure, id)
		}
	}
	derived := c.Extract(pure)

	for _, target := range res.Etched {
		level, err := s.Get(target)
		if err != nil {
			// Dangling etch target: the resolution records it, the
			// geometry step is where the lookup fails.
			return nil, fmt.Errorf("derive: etch target: %w", err)
		}
		if level.Layer == nil {
			continue
		}
		targetID := o.resolver.Resolve(*level.Layer)

		base, ok := snapshot[targetID]
		if !ok {
			if o.strict {
				return nil, fmt.Errorf("derive: no geometry on layer %s for level %q", targetID, target)
			}
			base = k.EmptyRegion()
		}

		toRemove := k.EmptyRegion()
		for _, etchName := range res.EtchedBy[target] {
			etchLevel, err := s.Get(etchName)
			if err != nil {
				return nil, fmt.Errorf("derive: etch level: %w", err)
			}
			etchID := o.resolver.Resolve(*etchLevel.Layer)
			etchRegion, ok := snapshot[etchID]
			if !ok {
				if o.strict {
					return nil, fmt.Errorf("derive: no geometry on layer %s for etch %q", etchID, etchName)
				}
				continue
			}
			toRemove = k.Union(toRemove, etchRegion)

			if etchLevel.DerivedLayer != nil {
				derived.Insert(etchID, k.Intersection(base, etchRegion))
			}
		}

		derived.Insert(targetID, k.Difference(base, toRemove))
	}

	derived.AddPorts(c.Ports)
	return derived, nil
}
