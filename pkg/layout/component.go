package layout

import (
	"github.com/chazu/epitaxy/pkg/kernel"
)

// Port is an optical or electrical connection point on a component.
// Ports carry no geometry; they are attached unchanged to derived components.
type Port struct {
	Name        string     `json:"name"`
	Center      [2]float64 `json:"center"`      // um
	Width       float64    `json:"width"`       // um
	Orientation float64    `json:"orientation"` // degrees
	Layer       Layer      `json:"layer"`
}

// Component holds polygon regions grouped by physical layer, plus ports.
// Layer insertion order is preserved so that derived output is deterministic.
type Component struct {
	Name  string
	Ports []Port

	shapes map[Layer][]kernel.Region
	order  []Layer
}

// NewComponent creates an empty component.
func NewComponent(name string) *Component {
	return &Component{
		Name:   name,
		shapes: make(map[Layer][]kernel.Region),
	}
}

// Insert adds a region to the given layer. Empty or nil regions are dropped.
func (c *Component) Insert(l Layer, r kernel.Region) {
	if r == nil || r.Empty() {
		return
	}
	if _, ok := c.shapes[l]; !ok {
		c.order = append(c.order, l)
	}
	c.shapes[l] = append(c.shapes[l], r)
}

// Layers returns the layers that hold shapes, in insertion order.
func (c *Component) Layers() []Layer {
	out := make([]Layer, len(c.order))
	copy(out, c.order)
	return out
}

// Shapes returns the raw shape list for a layer. The slice is shared with
// the component; callers must not mutate it.
func (c *Component) Shapes(l Layer) []kernel.Region {
	return c.shapes[l]
}

// HasLayer reports whether the component holds any shapes on the layer.
func (c *Component) HasLayer(l Layer) bool {
	return len(c.shapes[l]) > 0
}

// Polygons returns a per-layer snapshot of the component geometry, with the
// shapes of each layer merged into a single region.
func (c *Component) Polygons(k kernel.Kernel) map[Layer]kernel.Region {
	out := make(map[Layer]kernel.Region, len(c.order))
	for _, l := range c.order {
		merged := k.EmptyRegion()
		for _, r := range c.shapes[l] {
			merged = k.Union(merged, r)
		}
		out[l] = merged
	}
	return out
}

// Extract returns a new component containing only the requested layers.
// Layers absent from the component are skipped. Ports are not copied;
// the caller decides which ports the extracted component keeps.
func (c *Component) Extract(layers []Layer) *Component {
	out := NewComponent(c.Name)
	for _, l := range layers {
		for _, r := range c.shapes[l] {
			out.Insert(l, r)
		}
	}
	return out
}

// AddPorts appends ports to the component.
func (c *Component) AddPorts(ports []Port) {
	c.Ports = append(c.Ports, ports...)
}
