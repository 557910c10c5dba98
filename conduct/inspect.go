package conduct

import "context"

// inspect implements the box-and-unwind pass from §4.4.1, run after every
// state that may change params: a function or action result (success or a
// boxed Go error alike), and the value a host hands back to Resume.
//
// A non-object value is boxed into {"value": v}. If the boxed params carry
// no "error" field, inspect returns it unchanged as the next input and the
// caller advances past the current state as usual. If they do, inspect
// unwinds the frame stack looking for a handler: a try's catch or a
// finally's finalizer sets c.pc itself and the caller resumes stepping from
// there without advancing past the current state; an empty stack means the
// composition as a whole has failed.
func (c *Conductor) inspect(ctx context.Context, v any) (res *Result, nextInput any, unwound bool) {
	boxed := boxParams(v)
	errVal, hasErr := boxed["error"]
	if !hasErr || errVal == nil {
		return nil, boxed, false
	}
	thrown := map[string]any{"error": errVal}

	for len(c.stack) > 0 {
		f := c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]

		switch f.Kind {
		case "let":
			continue

		case "try":
			c.pc = f.HandlerPC
			return nil, thrown, true

		case "finally":
			c.pc = f.HandlerPC
			c.restores = append(c.restores, restoreEntry{AfterPC: f.AfterPC, Err: &ThrownError{Value: thrown}})
			return nil, thrown, true
		}
	}

	return &Result{Done: true, Err: &ThrownError{Value: thrown}}, nil, true
}

// boxParams wraps a non-object params value as {"value": v}, per §4.4.1 and
// §8: only a function/action result that's already an object can carry an
// "error" field through to the next state untouched.
func boxParams(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{"value": v}
}
