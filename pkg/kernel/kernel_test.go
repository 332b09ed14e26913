package kernel

import "testing"

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		if !(&Mesh{}).IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		if (&Mesh{Vertices: []float32{1, 2, 3}}).IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

// --- Compile-time interface check with a stub kernel ---

// stubRegion is a minimal Region implementation for testing.
type stubRegion struct {
	area float64
}

func (r *stubRegion) Empty() bool                       { return r.area == 0 }
func (r *stubRegion) Area() float64                     { return r.area }
func (r *stubRegion) Bounds() (min, max [2]float64)     { return [2]float64{}, [2]float64{} }
func (r *stubRegion) Rings() [][][2]float64             { return nil }

// stubKernel proves the Kernel interface is satisfiable. All methods
// return trivial results.
type stubKernel struct{}

func (k *stubKernel) Rect(x0, y0, x1, y1 float64) Region {
	return &stubRegion{area: (x1 - x0) * (y1 - y0)}
}
func (k *stubKernel) Polygon(_ [][2]float64) Region { return &stubRegion{} }
func (k *stubKernel) EmptyRegion() Region           { return &stubRegion{} }
func (k *stubKernel) Union(a, _ Region) Region        { return a }
func (k *stubKernel) Difference(a, _ Region) Region   { return a }
func (k *stubKernel) Intersection(a, _ Region) Region { return a }

var _ Region = (*stubRegion)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelRect(t *testing.T) {
	var k Kernel = &stubKernel{}
	r := k.Rect(0, 0, 10, 2)
	if r.Area() != 20 {
		t.Errorf("Rect area = %g, want 20", r.Area())
	}
	if r.Empty() {
		t.Error("non-zero rect should not be empty")
	}
}
