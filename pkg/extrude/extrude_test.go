package extrude

import (
	"errors"
	"testing"

	"github.com/chazu/epitaxy/pkg/kernel"
	"github.com/chazu/epitaxy/pkg/kernel/ctgeom"
	sdfext "github.com/chazu/epitaxy/pkg/kernel/sdfx"
	"github.com/chazu/epitaxy/pkg/layout"
	"github.com/chazu/epitaxy/pkg/stack"
)

func lp(n, d int) *layout.Layer {
	l := layout.L(n, d)
	return &l
}

func TestMeshesStackOrder(t *testing.T) {
	k := ctgeom.New()
	s := stack.New()
	s.Add("core", &stack.LayerLevel{Layer: lp(1, 0), Thickness: 0.5, Type: stack.Grow})
	s.Add("clad", &stack.LayerLevel{Layer: lp(111, 0), Thickness: 1, Zmin: 0.5, Type: stack.Grow})

	c := layout.NewComponent("wg")
	// Insert out of stack order; mesh output still follows the stack.
	c.Insert(layout.L(111, 0), k.Rect(0, 0, 2, 2))
	c.Insert(layout.L(1, 0), k.Rect(0, 0, 1, 1))

	meshes, err := Meshes(c, s, k, sdfext.NewWithCells(24))
	if err != nil {
		t.Fatalf("Meshes: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("mesh count = %d, want 2", len(meshes))
	}
	if meshes[0].LayerName != "core" || meshes[1].LayerName != "clad" {
		t.Errorf("layer names = %q, %q", meshes[0].LayerName, meshes[1].LayerName)
	}
	for _, m := range meshes {
		if m.IsEmpty() {
			t.Errorf("mesh %q is empty", m.LayerName)
		}
	}
}

func TestMeshesSkips(t *testing.T) {
	k := ctgeom.New()
	s := stack.New()
	s.Add("core", &stack.LayerLevel{Layer: lp(1, 0), Thickness: 0.5, Type: stack.Grow})
	s.Add("doping", &stack.LayerLevel{Thickness: 0.5, Type: stack.Implant})
	s.Add("marker", &stack.LayerLevel{Layer: lp(66, 0), Thickness: 0, Type: stack.Grow})
	s.Add("unused", &stack.LayerLevel{Layer: lp(77, 0), Thickness: 0.5, Type: stack.Grow})

	c := layout.NewComponent("wg")
	c.Insert(layout.L(1, 0), k.Rect(0, 0, 1, 1))
	c.Insert(layout.L(66, 0), k.Rect(0, 0, 1, 1))

	meshes, err := Meshes(c, s, k, sdfext.NewWithCells(24))
	if err != nil {
		t.Fatalf("Meshes: %v", err)
	}
	if len(meshes) != 1 || meshes[0].LayerName != "core" {
		t.Errorf("meshes = %v", layerNames(meshes))
	}
}

func TestMeshesNilInputs(t *testing.T) {
	k := ctgeom.New()
	meshes, err := Meshes(nil, nil, k, sdfext.New())
	if err != nil {
		t.Fatalf("Meshes: %v", err)
	}
	if meshes != nil {
		t.Errorf("meshes = %v, want nil", meshes)
	}
}

// failExtruder always errors, to exercise error propagation.
type failExtruder struct{}

func (failExtruder) Extrude(kernel.Region, float64, float64) (*kernel.Mesh, error) {
	return nil, errors.New("boom")
}

func TestMeshesExtruderError(t *testing.T) {
	k := ctgeom.New()
	s := stack.New()
	s.Add("core", &stack.LayerLevel{Layer: lp(1, 0), Thickness: 0.5, Type: stack.Grow})

	c := layout.NewComponent("wg")
	c.Insert(layout.L(1, 0), k.Rect(0, 0, 1, 1))

	_, err := Meshes(c, s, k, failExtruder{})
	if err == nil {
		t.Fatal("extruder error should propagate")
	}
	if got := err.Error(); got != `extrude: level "core": boom` {
		t.Errorf("error = %q", got)
	}
}

func layerNames(meshes []*kernel.Mesh) []string {
	out := make([]string, len(meshes))
	for i, m := range meshes {
		out[i] = m.LayerName
	}
	return out
}
