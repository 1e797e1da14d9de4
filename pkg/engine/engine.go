// Package engine evaluates scene scripts. It wraps zygomys in a sandboxed
// environment, builds a scene.Scene from user source and runs registered
// commands (such as snap-origin) against it.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/rapidorigin/pkg/command"
	"github.com/chazu/rapidorigin/pkg/kernel"
	"github.com/chazu/rapidorigin/pkg/mesh"
	"github.com/chazu/rapidorigin/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// DefaultEvalTimeout is the hard limit for a single evaluation.
const DefaultEvalTimeout = 5 * time.Second

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

// Engine evaluates scripts against a geometry kernel and command registry.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandbox and a fresh scene.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	kernel        kernel.Kernel
	registry      *command.Registry
	timeout       time.Duration
	weldTolerance float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout overrides DefaultEvalTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithWeldTolerance sets the tolerance used when welding primitive meshes.
func WithWeldTolerance(tol float64) Option {
	return func(e *Engine) { e.weldTolerance = tol }
}

// NewEngine creates an Engine. A nil registry selects command.DefaultRegistry.
func NewEngine(k kernel.Kernel, r *command.Registry, opts ...Option) *Engine {
	if r == nil {
		r = command.DefaultRegistry()
	}
	e := &Engine{
		kernel:        k,
		registry:      r,
		timeout:       DefaultEvalTimeout,
		weldTolerance: mesh.DefaultWeldTolerance,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs source and returns the scene it built.
//
// Return semantics:
//   - On success: returns scene + nil errors + nil error
//   - On parse/eval failure: returns nil scene + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*scene.Scene, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		sc, evalErrs, err := e.evaluate(source)
		ch <- evalResult{scene: sc, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout)
}

// evaluate performs the zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*scene.Scene, []EvalError, error) {
	sc := scene.New()

	// Empty source is a valid program that produces an empty scene.
	if strings.TrimSpace(source) == "" {
		return sc, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, &builtinContext{
		scene:    sc,
		kernel:   e.kernel,
		registry: e.registry,
		weldTol:  e.weldTolerance,
	})

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return sc, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
