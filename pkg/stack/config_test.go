package stack

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/epitaxy/pkg/layout"
)

const soiTech = `
layers:
  core:
    layer: [1, 0]
    thickness: 0.22
    zmin: 0.0
    material: si
    type: grow
    mesh_order: 2
    sidewall_angle: 10
    info:
      refractive_index: 3.47
  slab_etch:
    layer: [2, 6]
    derived_layer: [3, 0]
    thickness: 0.13
    zmin: 0.0
    material: si
    type: etch
    into: [core]
  clad:
    layer: [111, 0]
    thickness: 3.0
    zmin: 0.22
    material: sio2
`

func TestParseOrderAndFields(t *testing.T) {
	s, err := Parse([]byte(soiTech))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if diff := cmp.Diff([]string{"core", "slab_etch", "clad"}, s.Names()); diff != "" {
		t.Errorf("declaration order not preserved (-want +got):\n%s", diff)
	}

	core := s.MustGet("core")
	if *core.Layer != layout.L(1, 0) {
		t.Errorf("core layer = %v", core.Layer)
	}
	if core.Thickness != 0.22 || core.Material != "si" || core.MeshOrder != 2 {
		t.Errorf("core fields = %+v", core)
	}
	if core.SidewallAngle != 10 {
		t.Errorf("core sidewall = %g", core.SidewallAngle)
	}
	if core.Info["refractive_index"] != 3.47 {
		t.Errorf("core info = %v", core.Info)
	}

	etch := s.MustGet("slab_etch")
	if etch.Type != Etch {
		t.Errorf("slab_etch type = %v, want etch", etch.Type)
	}
	if *etch.DerivedLayer != layout.L(3, 0) {
		t.Errorf("slab_etch derived layer = %v", etch.DerivedLayer)
	}
	if diff := cmp.Diff([]string{"core"}, etch.Into); diff != "" {
		t.Errorf("slab_etch into (-want +got):\n%s", diff)
	}

	// Defaults apply where the file is silent.
	clad := s.MustGet("clad")
	if clad.Type != Grow {
		t.Errorf("clad type = %v, want grow default", clad.Type)
	}
	if clad.MeshOrder != DefaultMeshOrder {
		t.Errorf("clad mesh order = %d, want %d", clad.MeshOrder, DefaultMeshOrder)
	}
	if clad.Orientation != "100" {
		t.Errorf("clad orientation = %q, want 100 default", clad.Orientation)
	}
}

func TestParseRejectsUnknownType(t *testing.T) {
	_, err := Parse([]byte("layers:\n  x:\n    type: deposit\n"))
	if err == nil || !strings.Contains(err.Error(), "unknown layer type") {
		t.Errorf("Parse() error = %v, want unknown layer type", err)
	}
}

func TestParseRejectsBadLayerID(t *testing.T) {
	_, err := Parse([]byte("layers:\n  x:\n    layer: [1]\n"))
	if err == nil {
		t.Error("Parse() should reject one-element layer id")
	}
}

func TestParseMissingLayersMapping(t *testing.T) {
	_, err := Parse([]byte("stack: {}\n"))
	if err == nil || !strings.Contains(err.Error(), "no layers mapping") {
		t.Errorf("Parse() error = %v, want missing layers mapping", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "soi.yml")
	if err := os.WriteFile(path, []byte(soiTech), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}

	if _, err := Load(filepath.Join(dir, "missing.yml")); err == nil {
		t.Error("Load() of missing file should fail")
	}
}
