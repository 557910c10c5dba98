package conduct

import (
	"context"
	"testing"

	"github.com/reggeenr/openwhisk-composer/compose"
)

func spec(t *testing.T, src string) *compose.FunctionSpec {
	t.Helper()
	n, err := compose.Function(compose.FuncSource(src))
	if err != nil {
		t.Fatalf("Function failed: %v", err)
	}
	return n.FunctionSpec()
}

func TestGojaEvaluatorEvaluatesExpressions(t *testing.T) {
	e := &GojaEvaluator{}
	result, err := e.Eval(context.Background(), spec(t, "x => x + 1"), 41.0, nil)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result != 42.0 {
		t.Errorf("result = %v, want 42", result)
	}
}

func TestGojaEvaluatorRejectsFunctionValuedResults(t *testing.T) {
	e := &GojaEvaluator{}
	_, err := e.Eval(context.Background(), spec(t, "() => (() => 1)"), nil, nil)
	if err == nil {
		t.Fatal("expected an error for a function-valued result, got nil")
	}
}

func TestGojaEvaluatorReportsNoReturnAsSentinel(t *testing.T) {
	e := &GojaEvaluator{}
	env := map[string]any{"count": 1.0}
	result, err := e.Eval(context.Background(), spec(t, "x => { count = count + 1; }"), 41.0, env)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result != NoReturn {
		t.Errorf("result = %#v, want the NoReturn sentinel", result)
	}
	if env["count"] != 2.0 {
		t.Errorf("env[\"count\"] = %v, want 2 (side effect should still write back)", env["count"])
	}
}

func TestGojaEvaluatorNormalizesWholeNumberEnvWriteback(t *testing.T) {
	e := &GojaEvaluator{}
	env := map[string]any{"count": 1.0}
	result, err := e.Eval(context.Background(), spec(t, "() => { count = count + 1; return count; }"), nil, env)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if _, isInt64 := result.(int64); isInt64 {
		t.Errorf("result kept Goja's int64 export instead of normalizing to float64: %#v", result)
	}
	if _, isInt64 := env["count"].(int64); isInt64 {
		t.Errorf("env write-back kept Goja's int64 export instead of normalizing to float64: %#v", env["count"])
	}
}
