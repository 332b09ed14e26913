// Package lyp reads KLayout layer-properties (.lyp) files and exposes the
// display colors per physical layer, for use in 2.5D script generation.
package lyp

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/epitaxy/pkg/layout"
)

// property is one <properties> entry in the XML file.
type property struct {
	Name       string     `xml:"name"`
	Source     string     `xml:"source"`
	FillColor  string     `xml:"fill-color"`
	FrameColor string     `xml:"frame-color"`
	Group      []property `xml:"group-members"`
}

// lypFile is the root <layer-properties> element.
type lypFile struct {
	XMLName    xml.Name   `xml:"layer-properties"`
	Properties []property `xml:"properties"`
}

// Color holds the display colors of a layer. Either field may be empty
// when the .lyp entry omits it.
type Color struct {
	Fill  string
	Frame string
}

// Views maps physical layers to display properties.
type Views struct {
	colors map[layout.Layer]Color
	order  []layout.Layer
}

// Load reads and parses a .lyp file.
func Load(path string) (*Views, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lyp: %w", err)
	}
	defer f.Close()
	v, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("lyp: %s: %w", path, err)
	}
	return v, nil
}

// Parse reads layer views from .lyp XML. Grouped entries are flattened.
// Entries without a parseable source are skipped.
func Parse(r io.Reader) (*Views, error) {
	var file lypFile
	if err := xml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	v := &Views{colors: make(map[layout.Layer]Color)}
	var walk func(props []property)
	walk = func(props []property) {
		for _, p := range props {
			if l, ok := parseSource(p.Source); ok {
				if _, seen := v.colors[l]; !seen {
					v.order = append(v.order, l)
				}
				v.colors[l] = Color{Fill: p.FillColor, Frame: p.FrameColor}
			}
			walk(p.Group)
		}
	}
	walk(file.Properties)
	return v, nil
}

// Color returns the fill and frame colors for a layer. It implements the
// kscript.ColorLookup interface. ok is false when the layer has no entry
// or the entry carries no colors.
func (v *Views) Color(l layout.Layer) (fill, frame string, ok bool) {
	c, found := v.colors[l]
	if !found || (c.Fill == "" && c.Frame == "") {
		return "", "", false
	}
	return c.Fill, c.Frame, true
}

// Layers returns the layers with view entries, in file order.
func (v *Views) Layers() []layout.Layer {
	out := make([]layout.Layer, len(v.order))
	copy(out, v.order)
	return out
}

// Len returns the number of view entries.
func (v *Views) Len() int {
	return len(v.colors)
}

// parseSource extracts the physical layer from a .lyp source string.
// The format is "number/datatype@layout", e.g. "1/0@1". Wildcard or
// malformed sources yield ok == false.
func parseSource(src string) (layout.Layer, bool) {
	if i := strings.IndexByte(src, '@'); i >= 0 {
		src = src[:i]
	}
	num, dt, found := strings.Cut(src, "/")
	if !found {
		return layout.Layer{}, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return layout.Layer{}, false
	}
	d, err := strconv.Atoi(strings.TrimSpace(dt))
	if err != nil {
		return layout.Layer{}, false
	}
	return layout.L(n, d), true
}
