package lower

import (
	"github.com/reggeenr/openwhisk-composer/compose"
)

// rewriters holds one rewrite function per non-primitive combinator type.
// Each rewriter receives the original node and returns an equivalent tree
// built entirely from compose.Primitives (or other combinators still
// pending their own rewrite - Lower keeps applying rewriters bottom-up
// until the tree is clean down to its rewrite target).
var rewriters = map[string]func(*compose.Composition) (*compose.Composition, error){
	"seq":          rewriteSeq,
	"value":        rewriteValue,
	"literal":      rewriteValue,
	"if":           rewriteIf,
	"while":        rewriteWhile,
	"dowhile":      rewriteDowhile,
	"retain":       rewriteRetain,
	"retain_catch": rewriteRetainCatch,
	"repeat":       rewriteRepeat,
	"retry":        rewriteRetry,
}

func rewriteSeq(n *compose.Composition) (*compose.Composition, error) {
	return compose.Sequence(tasksOf(n.Components)...)
}

func rewriteValue(n *compose.Composition) (*compose.Composition, error) {
	return compose.Let(
		map[string]any{"value": n.Value()},
		compose.FuncSource("() => value"),
	)
}

// captureParams returns the glue step every `if`/`while`/`dowhile` rewrite
// opens with: capture whatever params the caller handed in under the
// synthetic "params" variable, so it can be re-injected around the test and
// each branch even though the primitive _nosave forms don't write their own
// result back to the caller's scope. It also passes its argument straight
// through, since the masked test runs directly off this step's result with
// no intervening restore step of its own.
func captureParams() (*compose.Composition, error) {
	return compose.Function(compose.FuncSource("a0 => { params = a0; return a0; }"))
}

// restoreParams re-injects the captured params ahead of a masked branch or
// loop body, per the canonical rewrite in §4.2: `seq(() => params, mask(c))`.
func restoreParams(body *compose.Composition) (*compose.Composition, error) {
	restore, err := compose.Function(compose.FuncSource("() => params"))
	if err != nil {
		return nil, err
	}
	return compose.Seq(restore, maskOf(body))
}

// rewriteIf turns the enhanced `if`, which preserves the caller's params
// around the test, into if_nosave over a captured/re-injected params
// variable, per the canonical rewrite in §4.2. Without the capture and
// re-injection, whatever the test itself returns becomes the chosen
// branch's input, making `if` runtime-identical to `if_nosave` - exactly
// the distinction this combinator exists to avoid.
func rewriteIf(n *compose.Composition) (*compose.Composition, error) {
	capture, err := captureParams()
	if err != nil {
		return nil, err
	}
	consequent, err := restoreParams(n.Consequent())
	if err != nil {
		return nil, err
	}
	alternate, err := restoreParams(n.Alternate())
	if err != nil {
		return nil, err
	}
	body, err := compose.IfNosave(maskOf(n.Test()), consequent, alternate)
	if err != nil {
		return nil, err
	}
	return compose.Let(map[string]any{"params": nil}, capture, body)
}

// rewriteWhile is rewriteIf's analogue for `while`: params are captured
// once before the loop and re-injected ahead of the body on every
// iteration, and the loop's final result is the preserved params rather
// than whatever the last test evaluation returned. The test itself is not
// preceded by a restore step: on the first iteration it receives the
// captured params, on later ones the body's result.
func rewriteWhile(n *compose.Composition) (*compose.Composition, error) {
	capture, err := captureParams()
	if err != nil {
		return nil, err
	}
	body, err := restoreParams(n.Body())
	if err != nil {
		return nil, err
	}
	loop, err := compose.WhileNosave(maskOf(n.Test()), body)
	if err != nil {
		return nil, err
	}
	final, err := compose.Function(compose.FuncSource("() => params"))
	if err != nil {
		return nil, err
	}
	return compose.Let(map[string]any{"params": nil}, capture, loop, final)
}

// rewriteDowhile is rewriteWhile's dowhile counterpart.
func rewriteDowhile(n *compose.Composition) (*compose.Composition, error) {
	capture, err := captureParams()
	if err != nil {
		return nil, err
	}
	body, err := restoreParams(n.Body())
	if err != nil {
		return nil, err
	}
	loop, err := compose.DowhileNosave(body, maskOf(n.Test()))
	if err != nil {
		return nil, err
	}
	final, err := compose.Function(compose.FuncSource("() => params"))
	if err != nil {
		return nil, err
	}
	return compose.Let(map[string]any{"params": nil}, capture, loop, final)
}

// rewriteRetain captures the input under "params" with an arrow-function
// prelude, runs the masked body, then returns { params, result } by reading
// the captured value back out in a trailing function step, per the
// canonical rewrite in §4.2: `let({params: nil}, a => { params = a },
// mask(xs…), r => ({params, result: r}))`.
func rewriteRetain(n *compose.Composition) (*compose.Composition, error) {
	capture, err := compose.Function(compose.FuncSource("a => { params = a; return a; }"))
	if err != nil {
		return nil, err
	}
	body, err := compose.Sequence(tasksOf(n.Components)...)
	if err != nil {
		return nil, err
	}
	masked, err := compose.Mask(body)
	if err != nil {
		return nil, err
	}
	combine, err := compose.Function(compose.FuncSource("result => ({ params: params, result: result })"))
	if err != nil {
		return nil, err
	}
	return compose.Let(
		map[string]any{"params": nil},
		capture, masked, combine,
	)
}

// rewriteRetainCatch is retain, but the body runs under try so a thrown
// error is captured as part of the retained result rather than propagated:
// the output is { params, result }, where result is either the body's
// result or the thrown { error: ... } value. Both outcomes are wrapped as
// { result: ... } inside the try so the handler's value carries no
// top-level "error" field for inspect to rethrow, then unwrapped after.
func rewriteRetainCatch(n *compose.Composition) (*compose.Composition, error) {
	inner, err := compose.Sequence(tasksOf(n.Components)...)
	if err != nil {
		return nil, err
	}
	wrap, err := compose.Function(compose.FuncSource("result => ({ result: result })"))
	if err != nil {
		return nil, err
	}
	body, err := compose.Seq(inner, wrap)
	if err != nil {
		return nil, err
	}
	handler, err := compose.Function(compose.FuncSource("error => ({ result: error })"))
	if err != nil {
		return nil, err
	}
	trapped, err := compose.Try(body, handler)
	if err != nil {
		return nil, err
	}
	retained, err := compose.Retain(trapped)
	if err != nil {
		return nil, err
	}
	unwrap, err := compose.Function(compose.FuncSource("x => ({ params: x.params, result: x.result.result })"))
	if err != nil {
		return nil, err
	}
	return compose.Seq(retained, unwrap)
}

func rewriteRepeat(n *compose.Composition) (*compose.Composition, error) {
	count := n.Count()
	body, err := compose.Sequence(tasksOf(n.Components)...)
	if err != nil {
		return nil, err
	}
	test, err := compose.Function(compose.FuncSource("() => count-- > 0"))
	if err != nil {
		return nil, err
	}
	loop, err := compose.While(test, body)
	if err != nil {
		return nil, err
	}
	return compose.Let(map[string]any{"count": count}, loop)
}

func rewriteRetry(n *compose.Composition) (*compose.Composition, error) {
	count := n.Count()
	body, err := compose.Sequence(tasksOf(n.Components)...)
	if err != nil {
		return nil, err
	}
	wrapped, err := compose.RetainCatch(body)
	if err != nil {
		return nil, err
	}
	record, err := compose.Function(compose.FuncSource("r => { last = r; return r; }"))
	if err != nil {
		return nil, err
	}
	attempt, err := compose.Seq(wrapped, record)
	if err != nil {
		return nil, err
	}
	test, err := compose.Function(compose.FuncSource("r => r.result.error !== undefined && count-- > 0"))
	if err != nil {
		return nil, err
	}
	loop, err := compose.Dowhile(attempt, test)
	if err != nil {
		return nil, err
	}
	finisher, err := compose.Function(compose.FuncSource(
		"() => last.result.error !== undefined ? { error: last.result.error } : last.result",
	))
	if err != nil {
		return nil, err
	}
	seq, err := compose.Seq(loop, finisher)
	if err != nil {
		return nil, err
	}
	return compose.Let(map[string]any{"count": count, "last": nil}, seq)
}

func tasksOf(components []*compose.Composition) []any {
	out := make([]any, len(components))
	for i, c := range components {
		out[i] = c
	}
	return out
}

func maskOf(body *compose.Composition) any {
	if body == nil {
		return nil
	}
	masked, err := compose.Mask(body)
	if err != nil {
		return body
	}
	return masked
}
