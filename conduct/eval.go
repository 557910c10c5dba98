package conduct

import (
	"context"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"

	"github.com/reggeenr/openwhisk-composer/compose"
)

// Evaluator runs a `function` node's inline source against an input value
// and the variables currently visible through the runtime stack, returning
// whatever the source computes.
type Evaluator interface {
	Eval(ctx context.Context, spec *compose.FunctionSpec, input any, env map[string]any) (any, error)
}

// GojaEvaluator runs inline function source with Goja, an ECMAScript 5.1+
// interpreter. Source must evaluate to a function, which is called with
// the step's input as its single argument; bindings declared by enclosing let scopes are exposed
// as free variables rather than object properties, matching how the source
// language's own closures see them.
type GojaEvaluator struct {
	// Timeout bounds how long a single Exec call may run before it's
	// interrupted. Zero means no timeout.
	Timeout time.Duration
}

// InterruptedMessage is the value Goja reports when an evaluation is
// interrupted for running past its Timeout.
var InterruptedMessage = "composer: function evaluation timeout"

// NoReturn is the sentinel Eval returns when a function body falls off the
// end without an explicit return. Per §4.4 that's "no change": the
// conductor keeps the current params rather than boxing the JS `undefined`
// this would otherwise export as into {"value": nil}.
var NoReturn = &struct{}{}

func (e *GojaEvaluator) Eval(ctx context.Context, spec *compose.FunctionSpec, input any, env map[string]any) (any, error) {
	if spec == nil {
		return input, nil
	}

	program, err := goja.Compile("", wrapFunctionSource(spec.Exec.Code), false)
	if err != nil {
		return nil, &EvalError{Cause: err}
	}

	rt := goja.New()
	for name, value := range env {
		rt.Set(name, value)
	}
	rt.Set("cronNext", cronNext(rt))

	deadline := e.Timeout
	var cancel context.CancelFunc
	runCtx := ctx
	if deadline > 0 {
		runCtx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-runCtx.Done():
			rt.Interrupt(InterruptedMessage)
		case <-done:
		}
	}()

	fn, err := rt.RunProgram(program)
	if err != nil {
		close(done)
		return nil, &EvalError{Cause: err}
	}
	call, ok := goja.AssertFunction(fn)
	if !ok {
		close(done)
		return nil, &EvalError{Cause: fmt.Errorf("function source did not evaluate to a callable")}
	}

	result, err := call(goja.Undefined(), rt.ToValue(input))
	close(done)
	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, &EvalError{Cause: err, TimedOut: true}
		}
		return nil, &EvalError{Cause: err}
	}
	if _, isFunc := goja.AssertFunction(result); isFunc {
		return nil, &EvalError{Cause: fmt.Errorf("function returned a function, not a value")}
	}

	for name := range env {
		env[name] = normalizeNumber(rt.Get(name).Export())
	}

	if result.StrictEquals(goja.Undefined()) {
		return NoReturn, nil
	}
	return normalizeNumber(result.Export()), nil
}

// normalizeNumber converts Goja's int64 export of whole-valued JS numbers
// to float64, matching the float64-for-every-JSON-number convention the
// rest of this module uses (compose.Composition's Args, encoding/json).
func normalizeNumber(v any) any {
	switch n := v.(type) {
	case int64:
		return float64(n)
	default:
		return v
	}
}

// wrapFunctionSource parenthesizes source so a function literal parses as
// an expression. Source that doesn't evaluate to a function (a bare
// expression such as `1 + 2`) is rejected by Eval as not callable.
func wrapFunctionSource(src string) string {
	return "(" + src + ")"
}

// cronNext exposes gorhill/cronexpr to function source as a single helper,
// the same surface the interpreter this package is modeled on provides.
func cronNext(rt *goja.Runtime) func(string) string {
	return func(expr string) string {
		c, err := cronexpr.Parse(expr)
		if err != nil {
			panic(rt.ToValue(err.Error()))
		}
		return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
	}
}
