// Package engine provides the Lisp configuration engine for epitaxy.
// It wraps zygomys in a sandboxed environment and evaluates tech
// definitions: layer levels, stack mutations, and demo geometry.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/epitaxy/pkg/kernel"
	"github.com/chazu/epitaxy/pkg/layout"
	"github.com/chazu/epitaxy/pkg/stack"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Result bundles the output of an evaluation: the declared layer stack and
// any demo geometry the source inserted.
type Result struct {
	Stack     *stack.LayerStack
	Component *layout.Component
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// each call to Evaluate creates a fresh sandboxed environment for
// determinism.
type Engine struct {
	kernel kernel.Kernel

	mu         sync.Mutex
	generation uint64
}

// New creates an Engine. The kernel backs the geometry builtins.
func New(k kernel.Kernel) *Engine {
	return &Engine{kernel: k}
}

// Evaluate takes Lisp source and produces a Result.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: result + nil errors + nil error
//   - On parse/eval failure: nil result + eval errors + nil error
//   - On fatal failure (timeout, panic): nil + nil + error
func (e *Engine) Evaluate(source string) (*Result, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalOutcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalOutcome{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, evalErrs, err := e.evaluate(source)
		ch <- evalOutcome{result: res, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Result, []EvalError, error) {
	result := &Result{
		Stack:     stack.New(),
		Component: layout.NewComponent("session"),
	}

	// Empty source is a valid program that yields an empty stack.
	if strings.TrimSpace(source) == "" {
		return result, nil, nil
	}

	// Sandbox mode prevents user code from touching the filesystem or
	// syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, result, e.kernel)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, extractEvalErrors(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, extractEvalErrors(err), nil
	}

	return result, nil, nil
}

// lineInfo matches zygomys error messages carrying line numbers, both the
// "Error on line N: ..." and the bare "line N: ..." forms.
var lineInfo = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)|^line (\d+):\s*(.*)`)

// extractEvalErrors converts a zygomys error into EvalError values,
// pulling line numbers out of the message when present.
func extractEvalErrors(err error) []EvalError {
	msg := strings.TrimSpace(err.Error())
	if m := lineInfo.FindStringSubmatch(msg); m != nil {
		numStr, detail := m[1], m[2]
		if numStr == "" {
			numStr, detail = m[3], m[4]
		}
		line, _ := strconv.Atoi(numStr)
		return []EvalError{{Line: line, Message: strings.TrimSpace(detail)}}
	}
	return []EvalError{{Message: msg}}
}
