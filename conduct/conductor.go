// Package conduct executes a compiled fsm.Program step by step, suspending
// at each action invocation and resuming from a $resume continuation token
// handed back by the host, per §4.4.
package conduct

import (
	"context"

	"github.com/reggeenr/openwhisk-composer/compose"
	"github.com/reggeenr/openwhisk-composer/fsm"
)

// Result is what Run/Resume produce: either the composition is done
// (Err set on a thrown failure, Value otherwise) or it's suspended waiting
// on a remote action invocation.
type Result struct {
	Done    bool
	Value   any
	Err     error
	Pending bool

	ActionName string
	Options    *compose.ActionOptions
	Input      any
	Resume     map[string]any
}

// Conductor runs one Program. It holds no history beyond the current
// program counter, frame stack, and pending-restore markers, all of which
// round-trip through a $resume token - the conductor itself can be thrown
// away and rebuilt between steps.
type Conductor struct {
	Program   *fsm.Program
	Evaluator Evaluator
	Invoker   ActionInvoker

	pc       int
	stack    []*Frame
	restores []restoreEntry
}

// New builds a Conductor for prog, defaulting to a GojaEvaluator and no
// ActionInvoker (every sync action suspends for the host to invoke; an
// async action fails with ErrNoInvoker).
func New(prog *fsm.Program) *Conductor {
	return &Conductor{Program: prog, Evaluator: &GojaEvaluator{}}
}

// Run starts a fresh execution of the Conductor's Program with the given
// input.
func (c *Conductor) Run(ctx context.Context, input any) (*Result, error) {
	c.pc = 0
	c.stack = nil
	c.restores = nil
	return c.run(ctx, input)
}

// Resume continues a previously suspended execution. token is the value
// decoded from the "$resume" key the host received when this Conductor
// (or an equivalent one built from the same Program) last suspended, and
// input is the result of the action invocation the host performed.
func (c *Conductor) Resume(ctx context.Context, token *Resume, input any) (*Result, error) {
	if token == nil {
		return nil, ErrBadResume
	}
	if token.PC < 0 || token.PC >= len(c.Program.States) {
		return nil, ErrBadResume
	}
	c.pc = token.PC
	c.stack = resumeToFrames(token.Stack)
	c.restores = resumeToRestores(token.Restores)

	s := c.Program.States[c.pc]
	res, nextInput, unwound := c.inspect(ctx, input)
	if res != nil {
		return res, nil
	}
	if !unwound {
		c.pc += s.Next
	}
	return c.run(ctx, nextInput)
}

func (c *Conductor) run(ctx context.Context, input any) (*Result, error) {
	states := c.Program.States

	for {
		if n := len(c.restores); n > 0 && c.restores[n-1].AfterPC == c.pc {
			r := c.restores[n-1]
			c.restores = c.restores[:n-1]
			if r.Err != nil {
				res, nextInput, unwound := c.inspect(ctx, r.Err.Value)
				if res != nil {
					return res, nil
				}
				input = nextInput
				if unwound {
					continue
				}
			} else {
				input = r.Value
			}
		}

		if c.pc >= len(states) {
			return &Result{Done: true, Value: input}, nil
		}

		s := states[c.pc]
		switch s.Kind {
		case fsm.Pass:
			c.pc += s.Next

		case fsm.Let:
			c.stack = append(c.stack, &Frame{Kind: "let", Vars: copyVars(s.Declarations)})
			c.pc += s.Next

		case fsm.Exit:
			if len(c.stack) == 0 {
				return nil, ErrBadResume
			}
			top := c.stack[len(c.stack)-1]
			c.stack = c.stack[:len(c.stack)-1]
			if s.Pop == "finally" {
				c.restores = append(c.restores, restoreEntry{AfterPC: top.AfterPC, Value: input})
			}
			c.pc += s.Next

		case fsm.Try:
			c.stack = append(c.stack, &Frame{
				Kind:      "try",
				HandlerPC: c.pc + s.Catch,
				AfterPC:   c.pc + s.After,
			})
			c.pc += s.Next

		case fsm.Finally:
			c.stack = append(c.stack, &Frame{
				Kind:      "finally",
				HandlerPC: c.pc + s.Catch,
				AfterPC:   c.pc + s.After,
			})
			c.pc += s.Next

		case fsm.Choice:
			if truthy(input) {
				c.pc += s.Then
			} else {
				c.pc += s.Else
			}

		case fsm.Function:
			env := visible(c.stack)
			result, err := c.Evaluator.Eval(ctx, s.Function, input, env)
			var val any
			switch {
			case err != nil:
				val = errorValue(err)
			case result == NoReturn:
				// Falling off the end without a `return` is "no change":
				// keep the params the step was called with instead of
				// boxing the JS `undefined` this would otherwise export
				// as into {"value": nil}, clobbering them.
				writeBack(c.stack, env)
				val = input
			default:
				writeBack(c.stack, env)
				val = result
			}
			res, nextInput, unwound := c.inspect(ctx, val)
			if res != nil {
				return res, nil
			}
			input = nextInput
			if unwound {
				continue
			}
			c.pc += s.Next

		case fsm.Action:
			result, pending, err := c.doAction(ctx, s, input)
			if pending != nil {
				return pending, nil
			}
			var val any
			if err != nil {
				val = errorValue(err)
			} else {
				val = result
			}
			res, nextInput, unwound := c.inspect(ctx, val)
			if res != nil {
				return res, nil
			}
			input = nextInput
			if unwound {
				continue
			}
			c.pc += s.Next

		default:
			return nil, ErrBadResume
		}
	}
}

// doAction dispatches a sync or async action state. A sync action either
// suspends (returning a non-nil pending Result when there's no
// ActionInvoker) or, when one is configured, invokes and awaits it
// in-process. An async action never suspends: it always goes through the
// ActionInvoker, folding a failure into the normal {error: ...} channel
// instead of handing control back to the host.
func (c *Conductor) doAction(ctx context.Context, s *fsm.State, input any) (result any, pending *Result, err error) {
	if s.Async {
		return c.doAsyncAction(ctx, s, input)
	}

	if c.Invoker == nil {
		token := &Resume{PC: c.pc, Stack: framesToResume(c.stack), Restores: restoresToResume(c.restores)}
		encoded, encErr := token.Encode()
		if encErr != nil {
			return nil, nil, encErr
		}
		return nil, &Result{
			Pending:    true,
			ActionName: s.ActionName,
			Options:    s.Options,
			Input:      input,
			Resume:     encoded,
		}, nil
	}

	future, err := c.Invoker.Invoke(ctx, s.ActionName, s.Options, input)
	if err != nil {
		return nil, nil, err
	}
	value, err := future.Await(ctx)
	if err != nil {
		return nil, nil, err
	}
	return value, nil, nil
}

// doAsyncAction invokes a fire-and-forget action. There is no host
// round-trip for an async action to suspend into, so it requires an
// ActionInvoker up front rather than falling back to $resume.
func (c *Conductor) doAsyncAction(ctx context.Context, s *fsm.State, input any) (result any, pending *Result, err error) {
	if c.Invoker == nil {
		return nil, nil, ErrNoInvoker
	}
	future, err := c.Invoker.Invoke(ctx, s.ActionName, s.Options, input)
	if err != nil {
		return nil, nil, err
	}
	value, err := future.Await(ctx)
	if err != nil {
		return nil, nil, err
	}
	return value, nil, nil
}

func copyVars(v map[string]any) map[string]any {
	if v == nil {
		return nil
	}
	out := make(map[string]any, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// truthy mirrors the source language's notion of falsy: nil, false, 0, "",
// and empty slices/maps are falsy; everything else is truthy. A test
// function's scalar result reaches a Choice state already boxed by inspect
// into {"value": ...} (every Function result is, per §4.4.1), so a solitary
// "value" field is unwrapped first - otherwise a boxed `false` would read
// as a non-empty, and therefore truthy, map.
func truthy(v any) bool {
	if m, ok := v.(map[string]any); ok {
		if boxed, ok := m["value"]; ok && len(m) == 1 {
			return truthy(boxed)
		}
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) != 0
	case map[string]any:
		return len(t) != 0
	default:
		return true
	}
}
