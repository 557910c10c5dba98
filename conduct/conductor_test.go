package conduct

import (
	"context"
	"errors"
	"testing"

	"github.com/reggeenr/openwhisk-composer/compose"
	"github.com/reggeenr/openwhisk-composer/fsm"
	"github.com/reggeenr/openwhisk-composer/lower"
)

func mustCompile(t *testing.T, tree *compose.Composition) *fsm.Program {
	t.Helper()
	lowered, err := lower.Lower(tree, nil)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	prog, err := fsm.Compile(lowered)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return prog
}

// valueField asserts v is a boxed {"value": ...} object (per §4.4.1's rule
// that a non-object result gets boxed before it can terminate or propagate)
// and returns the boxed payload.
func valueField(t *testing.T, v any) any {
	t.Helper()
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected a boxed {value: ...} result, got %#v", v)
	}
	return m["value"]
}

// stringValue reads a string out of either a raw string or a boxed
// {"value": ...} object, since inspect boxes an action's scalar result
// before the next action in a sequence sees it.
func stringValue(input any) string {
	switch v := input.(type) {
	case string:
		return v
	case map[string]any:
		s, _ := v["value"].(string)
		return s
	default:
		return ""
	}
}

func TestRunSuspendsOnAction(t *testing.T) {
	a, _ := compose.Action("double", nil)
	prog := mustCompile(t, a)

	c := New(prog)
	res, err := c.Run(context.Background(), 21.0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Pending {
		t.Fatalf("expected a pending result, got %+v", res)
	}
	if res.ActionName != "/_/double" {
		t.Errorf("ActionName = %q, want /_/double", res.ActionName)
	}

	token, err := DecodeResume(res.Resume)
	if err != nil {
		t.Fatalf("DecodeResume failed: %v", err)
	}
	final, err := c.Resume(context.Background(), token, 42.0)
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if !final.Done || valueField(t, final.Value) != 42.0 {
		t.Errorf("final = %+v, want Done with a boxed 42.0", final)
	}
}

func TestRunWithSyncInvoker(t *testing.T) {
	a, _ := compose.Action("greet", nil)
	b, _ := compose.Action("shout", nil)
	seq, _ := compose.Sequence(a, b)
	prog := mustCompile(t, seq)

	c := New(prog)
	c.Invoker = SyncInvoker(func(ctx context.Context, name string, opts *compose.ActionOptions, input any) (any, error) {
		return stringValue(input) + "!", nil
	})

	res, err := c.Run(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Done || valueField(t, res.Value) != "hi!!" {
		t.Errorf("Value = %v, want a boxed hi!!", res.Value)
	}
}

func TestTryCatchesThrownError(t *testing.T) {
	body, _ := compose.Action("risky", nil)
	handler, _ := compose.Function(compose.FuncSource("e => 'recovered'"))
	tryNode, _ := compose.Try(body, handler)
	prog := mustCompile(t, tryNode)

	c := New(prog)
	c.Invoker = SyncInvoker(func(ctx context.Context, name string, opts *compose.ActionOptions, input any) (any, error) {
		return nil, errors.New("boom")
	})

	res, err := c.Run(context.Background(), "in")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Done {
		t.Fatalf("expected Done, got %+v", res)
	}
	if valueField(t, res.Value) != "recovered" {
		t.Errorf("Value = %v, want a boxed recovered", res.Value)
	}
}

func TestFinallyAlwaysRunsAndPreservesResult(t *testing.T) {
	body, _ := compose.Action("work", nil)
	finalizer, _ := compose.Function(compose.FuncSource("x => { sideEffect = true; return x; }"))
	finallyNode, _ := compose.Finally(body, finalizer)
	prog := mustCompile(t, finallyNode)

	c := New(prog)
	c.Invoker = SyncInvoker(func(ctx context.Context, name string, opts *compose.ActionOptions, input any) (any, error) {
		return "original", nil
	})

	res, err := c.Run(context.Background(), "in")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Done || valueField(t, res.Value) != "original" {
		t.Errorf("finally must preserve the body's result, got %+v", res)
	}
}

func TestLetScopesVariablesAndWriteBack(t *testing.T) {
	inc, _ := compose.Function(compose.FuncSource("x => { count = count + 1; return count; }"))
	letNode, _ := compose.Let(map[string]any{"count": 0.0}, inc, inc)
	prog, err := fsm.Compile(lowerOrFatal(t, letNode))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	c := New(prog)
	res, err := c.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Done || valueField(t, res.Value) != 2.0 {
		t.Errorf("Value = %v, want a boxed 2 (count incremented twice via write-back)", res.Value)
	}
}

func TestIfPreservesParamsAroundTest(t *testing.T) {
	test, _ := compose.Function(compose.FuncSource("() => true"))
	consequent, _ := compose.Function(compose.FuncSource("p => p.n"))
	ifNode, _ := compose.If(test, consequent)
	prog := mustCompile(t, ifNode)

	c := New(prog)
	res, err := c.Run(context.Background(), map[string]any{"n": 5.0})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Done || valueField(t, res.Value) != 5.0 {
		t.Errorf("consequent must see the caller's original params, not the test's own return value; got %+v", res)
	}
}

func TestWhilePreservesParamsAcrossIterations(t *testing.T) {
	test, _ := compose.Function(compose.FuncSource("() => i-- > 0"))
	body, _ := compose.Function(compose.FuncSource("() => 'mutated'"))
	whileNode, _ := compose.While(test, body)
	tree, _ := compose.Let(map[string]any{"i": 2.0}, whileNode)
	prog := mustCompile(t, tree)

	c := New(prog)
	res, err := c.Run(context.Background(), map[string]any{"x": 1.0})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Done {
		t.Fatalf("expected Done, got %+v", res)
	}
	m, ok := res.Value.(map[string]any)
	if !ok {
		t.Fatalf("expected the original params object to survive the loop, got %#v", res.Value)
	}
	if m["x"] != 1.0 {
		t.Errorf("params.x = %v, want 1 (while must not leak the test/body's own return value into params)", m["x"])
	}
	if _, leaked := m["value"]; leaked {
		t.Errorf("params leaked a boxed test/body result: %#v", m)
	}
}

func TestRetainCapturesParamsAndResult(t *testing.T) {
	action, _ := compose.Function(compose.FuncSource("x => 2"))
	retain, _ := compose.Retain(action)
	prog := mustCompile(t, retain)

	c := New(prog)
	res, err := c.Run(context.Background(), 21.0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Done {
		t.Fatalf("expected Done, got %+v", res)
	}
	m, ok := res.Value.(map[string]any)
	if !ok {
		t.Fatalf("expected a {params, result} object, got %#v", res.Value)
	}
	if _, ok := m["params"]; !ok {
		t.Errorf("retain result missing params field: %#v", m)
	}
	if _, ok := m["result"]; !ok {
		t.Errorf("retain result missing result field: %#v", m)
	}
}

func TestRetryRunsWithoutEvalErrors(t *testing.T) {
	body, _ := compose.Function(compose.FuncSource("x => 42"))
	retry, _ := compose.Retry(2, body)
	prog := mustCompile(t, retry)

	c := New(prog)
	res, err := c.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Err != nil {
		t.Fatalf("expected no error, got %v", res.Err)
	}
	if !res.Done {
		t.Fatalf("expected Done, got %+v", res)
	}
}

// TestRetryAttemptsCountMatchesSpec pins retry(n, ...) to n+1 total
// attempts - the initial try plus n retries - by counting actual
// invocations rather than just checking the final result.
func TestRetryAttemptsCountMatchesSpec(t *testing.T) {
	attempts := 0
	action, _ := compose.Action("flaky", nil)
	retry, _ := compose.Retry(2, action)
	prog := mustCompile(t, retry)

	c := New(prog)
	c.Invoker = SyncInvoker(func(ctx context.Context, name string, opts *compose.ActionOptions, input any) (any, error) {
		attempts++
		return nil, errors.New("boom")
	})

	res, err := c.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Done {
		t.Fatalf("expected Done, got %+v", res)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3 (retry(2, ...) is the initial attempt plus 2 retries)", attempts)
	}
}

// TestFunctionWithNoReturnKeepsParamsUnchanged covers the function-state
// handler's "undefined is no change" rule: a body that falls off the end
// without a `return` must leave the caller's params exactly as they were,
// not clobber them with a boxed nil.
func TestFunctionWithNoReturnKeepsParamsUnchanged(t *testing.T) {
	fn, _ := compose.Function(compose.FuncSource("x => { sideEffectOnly = true; }"))
	prog := mustCompile(t, fn)

	c := New(prog)
	res, err := c.Run(context.Background(), map[string]any{"n": 5.0})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Done {
		t.Fatalf("expected Done, got %+v", res)
	}
	m, ok := res.Value.(map[string]any)
	if !ok {
		t.Fatalf("expected the original params to survive untouched, got %#v", res.Value)
	}
	if m["n"] != 5.0 {
		t.Errorf("params.n = %v, want 5 (falling off the end without a return must not clobber params)", m["n"])
	}
	if _, leaked := m["value"]; leaked {
		t.Errorf("params got boxed to {value: nil} despite no explicit return: %#v", m)
	}
}

func lowerOrFatal(t *testing.T, tree *compose.Composition) *compose.Composition {
	t.Helper()
	lowered, err := lower.Lower(tree, nil)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	return lowered
}
