package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/epitaxy/pkg/kernel"
	"github.com/chazu/epitaxy/pkg/layout"
	"github.com/chazu/epitaxy/pkg/stack"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource transforms tech Lisp source before it reaches zygomys:
//
//  1. :keyword -> "__kw_keyword" string literals, so keywords need no
//     global symbol registration.
//  2. kebab-case identifiers -> underscore form (z-offset -> z_offset),
//     since zygomys reads a bare hyphen as subtraction.
//  3. ; line comments -> // comments, the form zygomys understands.
//
// String literal contents pass through untouched.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)

	b := []byte(source)
	for i := 0; i < len(b); {
		c := b[i]

		// String literals pass through verbatim.
		if c == '"' || c == '`' {
			quote := c
			out.WriteByte(c)
			i++
			for i < len(b) {
				if quote == '"' && b[i] == '\\' && i+1 < len(b) {
					out.WriteByte(b[i])
					out.WriteByte(b[i+1])
					i += 2
					continue
				}
				out.WriteByte(b[i])
				if b[i] == quote {
					i++
					break
				}
				i++
			}
			continue
		}

		// Lisp ; comments become // comments.
		if c == ';' {
			for i < len(b) && b[i] == ';' {
				i++
			}
			out.WriteString("//")
			for i < len(b) && b[i] != '\n' {
				out.WriteByte(b[i])
				i++
			}
			continue
		}

		// :keyword -> "__kw_keyword". := assignment is left alone.
		if c == ':' && i+1 < len(b) && isLetter(b[i+1]) {
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out.WriteByte('"')
			out.WriteString(kwPrefix)
			out.Write(b[i+1 : j])
			out.WriteByte('"')
			i = j
			continue
		}

		// Identifier hyphen -> underscore; a minus operator keeps its
		// surrounding whitespace, so only ident-ident hyphens convert.
		if c == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			out.WriteByte('_')
			i++
			continue
		}

		out.WriteByte(c)
		i++
	}
	return out.String()
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpLayer wraps a physical layer id produced by (layer N D).
type sexpLayer struct {
	l layout.Layer
}

func (s *sexpLayer) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(layer %d %d)", s.l.Number, s.l.Datatype)
}
func (s *sexpLayer) Type() *zygo.RegisteredType { return nil }

// sexpLevel wraps a LayerLevel produced by (level ...) and consumed
// by (deflevel ...).
type sexpLevel struct {
	level *stack.LayerLevel
}

func (s *sexpLevel) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(level :type :%s :thickness %g :zmin %g)",
		s.level.Type, s.level.Thickness, s.level.Zmin)
}
func (s *sexpLevel) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwArgs holds a parsed mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. Keywords
// are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	res := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); {
		if name, ok := asKeyword(args[i]); ok {
			if i+1 < len(args) {
				res.kw[name] = args[i+1]
				i += 2
			} else {
				res.kw[name] = zygo.SexpNull
				i++
			}
			continue
		}
		res.positional = append(res.positional, args[i])
		i++
	}
	return res
}

// asKeyword reports whether a Sexp is a preprocessed keyword string and
// returns its name without the prefix.
func asKeyword(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toLayer(s zygo.Sexp) (layout.Layer, error) {
	if l, ok := s.(*sexpLayer); ok {
		return l.l, nil
	}
	return layout.Layer{}, fmt.Errorf("expected (layer N D), got %T (%s)", s, s.SexpString(nil))
}

// toLayerType converts a keyword or string to a stack.LayerType.
func toLayerType(s zygo.Sexp) (stack.LayerType, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return 0, fmt.Errorf("expected type keyword, got %T (%s)", s, s.SexpString(nil))
	}
	name := strings.TrimPrefix(str.S, kwPrefix)
	t, ok := stack.ParseLayerType(name)
	if !ok {
		return 0, fmt.Errorf("invalid layer type %q, expected grow/etch/implant/background", name)
	}
	return t, nil
}

// toStringSlice converts a Lisp list or array of strings to a Go slice.
func toStringSlice(s zygo.Sexp) ([]string, error) {
	var items []zygo.Sexp
	switch v := s.(type) {
	case *zygo.SexpPair:
		arr, err := zygo.ListToArray(v)
		if err != nil {
			return nil, err
		}
		items = arr
	case *zygo.SexpArray:
		items = v.Val
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
		return nil, fmt.Errorf("expected list of strings, got %s", s.SexpString(nil))
	default:
		return nil, fmt.Errorf("expected list of strings, got %T", s)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		str, err := toString(item)
		if err != nil {
			return nil, err
		}
		out = append(out, str)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the tech DSL builtins into a zygomys
// environment. The builtins populate the Result during evaluation.
//
// Source must run through preprocessSource first so :keyword tokens arrive
// as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, res *Result, k kernel.Kernel) {

	// -----------------------------------------------------------------------
	// (layer 1 0)
	// -----------------------------------------------------------------------
	env.AddFunction("layer", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("layer: want (layer number datatype)")
		}
		num, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("layer: number: %w", err)
		}
		dt, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("layer: datatype: %w", err)
		}
		return &sexpLayer{l: layout.L(num, dt)}, nil
	})

	// -----------------------------------------------------------------------
	// (level :layer (layer 1 0) :thickness 0.22 :zmin 0 :material "si"
	//        :type :etch :into ["core"] :derived-layer (layer 3 0)
	//        :mesh-order 2 :sidewall-angle 10)
	// -----------------------------------------------------------------------
	env.AddFunction("level", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		level := &stack.LayerLevel{
			MeshOrder:   stack.DefaultMeshOrder,
			Orientation: "100",
		}

		if v, ok := pa.kw["layer"]; ok {
			l, err := toLayer(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("level: layer: %w", err)
			}
			level.Layer = &l
		}
		if v, ok := pa.kw["derived-layer"]; ok {
			l, err := toLayer(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("level: derived-layer: %w", err)
			}
			level.DerivedLayer = &l
		}
		if v, ok := pa.kw["thickness"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("level: thickness: %w", err)
			}
			level.Thickness = f
		}
		if v, ok := pa.kw["zmin"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("level: zmin: %w", err)
			}
			level.Zmin = f
		}
		if v, ok := pa.kw["material"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("level: material: %w", err)
			}
			level.Material = s
		}
		if v, ok := pa.kw["type"]; ok {
			t, err := toLayerType(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("level: type: %w", err)
			}
			level.Type = t
		}
		if v, ok := pa.kw["into"]; ok {
			targets, err := toStringSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("level: into: %w", err)
			}
			level.Into = targets
		}
		if v, ok := pa.kw["mesh-order"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("level: mesh-order: %w", err)
			}
			level.MeshOrder = n
		}
		if v, ok := pa.kw["sidewall-angle"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("level: sidewall-angle: %w", err)
			}
			level.SidewallAngle = f
		}

		return &sexpLevel{level: level}, nil
	})

	// -----------------------------------------------------------------------
	// (deflevel "core" (level ...))
	// -----------------------------------------------------------------------
	env.AddFunction("deflevel", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("deflevel: want (deflevel name level)")
		}
		levelName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("deflevel: name: %w", err)
		}
		lv, ok := args[1].(*sexpLevel)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("deflevel: expected level, got %T", args[1])
		}
		res.Stack.Add(levelName, lv.level)
		return args[1], nil
	})

	// -----------------------------------------------------------------------
	// (z-offset 1.5)
	// -----------------------------------------------------------------------
	env.AddFunction("z_offset", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("z-offset: want (z-offset dz)")
		}
		dz, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("z-offset: %w", err)
		}
		res.Stack.ZOffset(dz)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (invert-z)
	// -----------------------------------------------------------------------
	env.AddFunction("invert_z", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		res.Stack.InvertZAxis()
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (rect "core" 0 0 10 2) draws demo geometry on a declared level
	// -----------------------------------------------------------------------
	env.AddFunction("rect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 5 {
			return zygo.SexpNull, fmt.Errorf("rect: want (rect level-name x0 y0 x1 y1)")
		}
		levelName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rect: name: %w", err)
		}
		var coords [4]float64
		for i := 0; i < 4; i++ {
			coords[i], err = toFloat64(args[i+1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rect: coordinate %d: %w", i, err)
			}
		}

		level, err := res.Stack.Get(levelName)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rect: %w", err)
		}
		if level.Layer == nil {
			return zygo.SexpNull, fmt.Errorf("rect: level %q has no physical layer", levelName)
		}
		res.Component.Insert(*level.Layer, k.Rect(coords[0], coords[1], coords[2], coords[3]))
		return zygo.SexpNull, nil
	})
}
