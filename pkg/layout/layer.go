// Package layout defines the physical layer identifiers and the component
// container that holds polygon regions per layer. It is the data side of the
// toolkit; boolean geometry is delegated to a kernel backend.
package layout

import "fmt"

// Layer is a GDS-style physical layer identifier (layer number, datatype).
type Layer struct {
	Number   int `json:"number"`
	Datatype int `json:"datatype"`
}

// L is shorthand for constructing a Layer.
func L(number, datatype int) Layer {
	return Layer{Number: number, Datatype: datatype}
}

func (l Layer) String() string {
	return fmt.Sprintf("%d/%d", l.Number, l.Datatype)
}

// LayerResolver maps an abstract layer identifier to the concrete id used by
// a geometry snapshot. PDK-aware callers substitute their own mapping.
type LayerResolver interface {
	Resolve(l Layer) Layer
}

// IdentityResolver is the default resolver: abstract and physical ids coincide.
type IdentityResolver struct{}

func (IdentityResolver) Resolve(l Layer) Layer { return l }
