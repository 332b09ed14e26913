package stack

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chazu/epitaxy/pkg/layout"
)

// levelConfig is the YAML shape of a single level in a tech file.
type levelConfig struct {
	Layer                  []int          `yaml:"layer"`
	DerivedLayer           []int          `yaml:"derived_layer"`
	Thickness              float64        `yaml:"thickness"`
	ThicknessTolerance     float64        `yaml:"thickness_tolerance"`
	Zmin                   float64        `yaml:"zmin"`
	ZminTolerance          float64        `yaml:"zmin_tolerance"`
	Material               string         `yaml:"material"`
	SidewallAngle          float64        `yaml:"sidewall_angle"`
	SidewallAngleTolerance float64        `yaml:"sidewall_angle_tolerance"`
	WidthToZ               float64        `yaml:"width_to_z"`
	MeshOrder              *int           `yaml:"mesh_order"`
	Type                   string         `yaml:"type"`
	Into                   []string       `yaml:"into"`
	Resistivity            float64        `yaml:"resistivity"`
	Orientation            *string        `yaml:"orientation"`
	Info                   map[string]any `yaml:"info"`
}

// Load reads a YAML tech file and builds a LayerStack.
func Load(path string) (*LayerStack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stack: read tech file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("stack: %s: %w", path, err)
	}
	return s, nil
}

// Parse builds a LayerStack from YAML tech-file bytes. The file holds a
// top-level "layers" mapping; declaration order becomes stack order, which
// is why decoding goes through yaml.Node instead of a plain map.
func Parse(data []byte) (*LayerStack, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse tech file: %w", err)
	}
	if len(doc.Content) == 0 {
		return New(), nil
	}

	root := doc.Content[0]
	layersNode := mappingValue(root, "layers")
	if layersNode == nil {
		return nil, fmt.Errorf("tech file has no layers mapping")
	}
	if layersNode.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("layers must be a mapping")
	}

	s := New()
	for i := 0; i+1 < len(layersNode.Content); i += 2 {
		name := layersNode.Content[i].Value
		var cfg levelConfig
		if err := layersNode.Content[i+1].Decode(&cfg); err != nil {
			return nil, fmt.Errorf("layer %q: %w", name, err)
		}
		level, err := cfg.toLevel()
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", name, err)
		}
		s.Add(name, level)
	}
	return s, nil
}

// mappingValue returns the value node for a key in a YAML mapping, or nil.
func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func (c *levelConfig) toLevel() (*LayerLevel, error) {
	level := &LayerLevel{
		Thickness:              c.Thickness,
		ThicknessTolerance:     c.ThicknessTolerance,
		Zmin:                   c.Zmin,
		ZminTolerance:          c.ZminTolerance,
		Material:               c.Material,
		SidewallAngle:          c.SidewallAngle,
		SidewallAngleTolerance: c.SidewallAngleTolerance,
		WidthToZ:               c.WidthToZ,
		MeshOrder:              DefaultMeshOrder,
		Into:                   c.Into,
		Resistivity:            c.Resistivity,
		Orientation:            "100",
		Info:                   c.Info,
	}

	if c.MeshOrder != nil {
		level.MeshOrder = *c.MeshOrder
	}
	if c.Orientation != nil {
		level.Orientation = *c.Orientation
	}

	if c.Type != "" {
		t, ok := ParseLayerType(c.Type)
		if !ok {
			return nil, fmt.Errorf("unknown layer type %q", c.Type)
		}
		level.Type = t
	}

	var err error
	if level.Layer, err = layerID(c.Layer); err != nil {
		return nil, fmt.Errorf("layer id: %w", err)
	}
	if level.DerivedLayer, err = layerID(c.DerivedLayer); err != nil {
		return nil, fmt.Errorf("derived_layer id: %w", err)
	}
	return level, nil
}

// layerID converts a [number, datatype] pair to a physical id.
// An absent pair yields nil (derived-only level).
func layerID(pair []int) (*layout.Layer, error) {
	if len(pair) == 0 {
		return nil, nil
	}
	if len(pair) != 2 {
		return nil, fmt.Errorf("want [number, datatype], got %v", pair)
	}
	l := layout.L(pair[0], pair[1])
	return &l, nil
}
