package main

import (
	"context"
	"log"
	"strings"

	"github.com/chazu/epitaxy/pkg/derive"
	"github.com/chazu/epitaxy/pkg/engine"
	"github.com/chazu/epitaxy/pkg/extrude"
	"github.com/chazu/epitaxy/pkg/kernel"
	"github.com/chazu/epitaxy/pkg/kernel/ctgeom"
	"github.com/chazu/epitaxy/pkg/kernel/sdfx"
	"github.com/chazu/epitaxy/pkg/kscript"
	"github.com/chazu/epitaxy/pkg/stack"
)

// colorPalette assigns distinct colors to stack levels in the viewer.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx      context.Context
	engine   *engine.Engine
	kernel   kernel.Kernel
	extruder kernel.Extruder
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices  []float32 `json:"vertices"`
	Normals   []float32 `json:"normals"`
	Indices   []uint32  `json:"indices"`
	LayerName string    `json:"layerName"`
	Color     string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Script   string          `json:"script"`
	Table    string          `json:"table"`
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []string        `json:"warnings"`
}

// NewApp creates a new App with the ctgeom region kernel and the sdfx
// extruder.
func NewApp() *App {
	k := ctgeom.New()
	return &App{
		engine:   engine.New(k),
		kernel:   k,
		extruder: sdfx.New(),
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// Evaluate takes tech Lisp source and returns the 2.5D script, a stack
// summary, and extruded meshes of the derived geometry. This is the
// primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []string{},
	}

	res, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	blocked := false
	for _, f := range stack.Validate(res.Stack) {
		if f.Severity == stack.SeverityError {
			result.Errors = append(result.Errors, EvalErrorData{Message: f.Error()})
			blocked = true
		} else {
			result.Warnings = append(result.Warnings, f.Error())
		}
	}
	if blocked {
		return result
	}

	result.Script = kscript.Generate(res.Stack)

	var table strings.Builder
	if err := res.Stack.Table(&table); err == nil {
		result.Table = table.String()
	}

	derived, err := derive.Derived(res.Component, res.Stack, a.kernel)
	if err != nil {
		log.Printf("Derive error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "derivation failed: " + err.Error(),
		})
		return result
	}

	meshes, err := extrude.Meshes(derived, res.Stack, a.kernel, a.extruder)
	if err != nil {
		log.Printf("Extrude error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "extrusion failed: " + err.Error(),
		})
		return result
	}

	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices:  m.Vertices,
			Normals:   m.Normals,
			Indices:   m.Indices,
			LayerName: m.LayerName,
			Color:     colorPalette[i%len(colorPalette)],
		})
	}

	return result
}
