package lyp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/epitaxy/pkg/layout"
)

const sampleLyp = `<?xml version="1.0" encoding="utf-8"?>
<layer-properties>
 <properties>
  <frame-color>#ff9d9d</frame-color>
  <fill-color>#ff9d9d</fill-color>
  <name>WG</name>
  <source>1/0@1</source>
 </properties>
 <properties>
  <frame-color>#805000</frame-color>
  <fill-color>#ffb400</fill-color>
  <name>SLAB150</name>
  <source>2/6@1</source>
 </properties>
 <properties>
  <name>doping</name>
  <source>*/*@1</source>
  <group-members>
   <frame-color>#0000ff</frame-color>
   <fill-color>#0000ff</fill-color>
   <name>N</name>
   <source>20/0@1</source>
  </group-members>
  <group-members>
   <frame-color>#000080</frame-color>
   <fill-color>#000080</fill-color>
   <name>NP</name>
   <source>22/0@1</source>
  </group-members>
 </properties>
 <properties>
  <name>uncolored</name>
  <source>99/0@1</source>
 </properties>
</layer-properties>
`

func TestParse(t *testing.T) {
	v, err := Parse(strings.NewReader(sampleLyp))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	// Group members are flattened, the wildcard group header is skipped.
	want := []layout.Layer{
		layout.L(1, 0), layout.L(2, 6), layout.L(20, 0), layout.L(22, 0), layout.L(99, 0),
	}
	got := v.Layers()
	if len(got) != len(want) {
		t.Fatalf("Layers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Layers()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if v.Len() != 5 {
		t.Errorf("Len() = %d, want 5", v.Len())
	}
}

func TestViewsColor(t *testing.T) {
	v, err := Parse(strings.NewReader(sampleLyp))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	fill, frame, ok := v.Color(layout.L(2, 6))
	if !ok || fill != "#ffb400" || frame != "#805000" {
		t.Errorf("Color(2/6) = %q, %q, %v", fill, frame, ok)
	}

	fill, frame, ok = v.Color(layout.L(1, 0))
	if !ok || fill != "#ff9d9d" || frame != "#ff9d9d" {
		t.Errorf("Color(1/0) = %q, %q, %v", fill, frame, ok)
	}

	// Entry present but without colors reports no view.
	if _, _, ok := v.Color(layout.L(99, 0)); ok {
		t.Error("colorless entry should report ok == false")
	}
	// Absent layer.
	if _, _, ok := v.Color(layout.L(123, 45)); ok {
		t.Error("absent layer should report ok == false")
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		src  string
		want layout.Layer
		ok   bool
	}{
		{"1/0@1", layout.L(1, 0), true},
		{"111/0", layout.L(111, 0), true},
		{" 2 / 6 @1", layout.L(2, 6), true},
		{"*/*@1", layout.Layer{}, false},
		{"nonsense", layout.Layer{}, false},
		{"", layout.Layer{}, false},
	}
	for _, tt := range tests {
		got, ok := parseSource(tt.src)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseSource(%q) = %v, %v, want %v, %v", tt.src, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseBadXML(t *testing.T) {
	if _, err := Parse(strings.NewReader("<layer-properties><propert")); err == nil {
		t.Error("truncated XML should error")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tech.lyp")
	if err := os.WriteFile(path, []byte(sampleLyp), 0o644); err != nil {
		t.Fatal(err)
	}

	v, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v.Len() != 5 {
		t.Errorf("Len() = %d, want 5", v.Len())
	}

	if _, err := Load(filepath.Join(dir, "missing.lyp")); err == nil {
		t.Error("missing file should error")
	}
}
