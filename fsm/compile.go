package fsm

import (
	"github.com/reggeenr/openwhisk-composer/compose"
)

// Compile lowers an already-primitive composition tree into a Program. The
// caller is responsible for running it through lower.Lower first; Compile
// rejects any node type outside compose.Primitives so a half-lowered tree
// fails loudly instead of producing a silently wrong Program.
func Compile(tree *compose.Composition) (*Program, error) {
	states, err := compileNode(tree)
	if err != nil {
		return nil, err
	}
	prog := &Program{States: states}
	if err := Validate(prog); err != nil {
		return nil, err
	}
	return prog, nil
}

func compileNode(node *compose.Composition) ([]*State, error) {
	if node == nil {
		return nil, nil
	}
	if !compose.Primitives[node.Type] {
		return nil, &NotLowered{Type: node.Type, Path: node.Path}
	}

	switch node.Type {
	case "empty":
		return nil, nil
	case "sequence", "seq":
		return compileSequence(node.Components)
	case "action":
		return compileAction(node)
	case "function":
		return []*State{{Kind: Function, Next: 1, Function: node.FunctionSpec(), Path: node.Path}}, nil
	case "let":
		return compileFrame(node, node.Declarations())
	case "mask":
		return compileFrame(node, nil)
	case "try":
		return compileTry(node)
	case "finally":
		return compileFinally(node)
	case "if_nosave":
		return compileChoiceIf(node)
	case "while_nosave":
		return compileWhile(node)
	case "dowhile_nosave":
		return compileDowhile(node)
	default:
		return nil, &NotLowered{Type: node.Type, Path: node.Path}
	}
}

func compileSequence(components []*compose.Composition) ([]*State, error) {
	var out []*State
	for _, c := range components {
		states, err := compileNode(c)
		if err != nil {
			return nil, err
		}
		out = append(out, states...)
	}
	return out, nil
}

func compileAction(node *compose.Composition) ([]*State, error) {
	return []*State{{
		Kind:       Action,
		Next:       1,
		ActionName: node.Name(),
		Options:    node.Options(),
		Async:      node.Async(),
		Path:       node.Path,
	}}, nil
}

// compileFrame compiles a `let` or `mask` node: push, body, exit. Both
// combinator types share this shape; only whether decls is nil (mask) or a
// (possibly empty) map (let) differs.
func compileFrame(node *compose.Composition, decls map[string]any) ([]*State, error) {
	body, err := compileSequence(node.Components)
	if err != nil {
		return nil, err
	}
	push := &State{Kind: Let, Next: 1, Declarations: decls, Path: node.Path}
	pop := &State{Kind: Exit, Next: 1, Pop: "let", Path: node.Path}
	out := make([]*State, 0, len(body)+2)
	out = append(out, push)
	out = append(out, body...)
	out = append(out, pop)
	return out, nil
}

func compileTry(node *compose.Composition) ([]*State, error) {
	body, err := compileNode(node.Body())
	if err != nil {
		return nil, err
	}
	handler, err := compileNode(node.Handler())
	if err != nil {
		return nil, err
	}

	push := &State{Kind: Try, Next: 1, Catch: len(body) + 2, After: 2 + len(body) + len(handler), Path: node.Path}
	exit := &State{Kind: Exit, Next: len(handler) + 1, Pop: "try", Path: node.Path}

	out := make([]*State, 0, len(body)+len(handler)+2)
	out = append(out, push)
	out = append(out, body...)
	out = append(out, exit)
	out = append(out, handler...)
	return out, nil
}

func compileFinally(node *compose.Composition) ([]*State, error) {
	body, err := compileNode(node.Body())
	if err != nil {
		return nil, err
	}
	finalizer, err := compileNode(node.Finalizer())
	if err != nil {
		return nil, err
	}

	push := &State{Kind: Finally, Next: 1, Catch: len(body) + 2, After: 2 + len(body) + len(finalizer), Path: node.Path}
	exit := &State{Kind: Exit, Next: 1, Pop: "finally", Path: node.Path}

	out := make([]*State, 0, len(body)+len(finalizer)+2)
	out = append(out, push)
	out = append(out, body...)
	out = append(out, exit)
	out = append(out, finalizer...)
	return out, nil
}

func compileChoiceIf(node *compose.Composition) ([]*State, error) {
	test, err := compileNode(node.Test())
	if err != nil {
		return nil, err
	}
	consequent, err := compileNode(node.Consequent())
	if err != nil {
		return nil, err
	}
	alternate, err := compileNode(node.Alternate())
	if err != nil {
		return nil, err
	}

	// An empty consequent (e.g. a nil branch coerced to `empty()`) compiles
	// to zero states; without one of its own for Then to land on, Then and
	// Else converge on the same place - the alternate's first state -
	// running it unconditionally on a truthy test. A synthetic pass state
	// gives Then somewhere to land and fall through past the alternate,
	// mirroring how compileWhile's loopback Pass handles an empty body.
	if len(consequent) == 0 {
		consequent = []*State{{Kind: Pass, Next: 1, Path: node.Path}}
	}

	choice := &State{Kind: Choice, Then: 1, Else: 1 + len(consequent), Path: node.Path}
	consequent[len(consequent)-1].Next = len(alternate) + 1

	out := make([]*State, 0, len(test)+1+len(consequent)+len(alternate))
	out = append(out, test...)
	out = append(out, choice)
	out = append(out, consequent...)
	out = append(out, alternate...)
	return out, nil
}

func compileWhile(node *compose.Composition) ([]*State, error) {
	test, err := compileNode(node.Test())
	if err != nil {
		return nil, err
	}
	body, err := compileNode(node.Body())
	if err != nil {
		return nil, err
	}

	choiceIdx := len(test)
	loopback := &State{Kind: Pass, Next: -(choiceIdx + 1 + len(body)), Path: node.Path}
	choice := &State{Kind: Choice, Then: 1, Else: 1 + len(body) + 1, Path: node.Path}

	out := make([]*State, 0, len(test)+1+len(body)+1)
	out = append(out, test...)
	out = append(out, choice)
	out = append(out, body...)
	out = append(out, loopback)
	return out, nil
}

func compileDowhile(node *compose.Composition) ([]*State, error) {
	body, err := compileNode(node.Body())
	if err != nil {
		return nil, err
	}
	test, err := compileNode(node.Test())
	if err != nil {
		return nil, err
	}

	choiceIdx := len(body) + len(test)
	choice := &State{Kind: Choice, Then: -choiceIdx, Else: 1, Path: node.Path}

	out := make([]*State, 0, len(body)+len(test)+1)
	out = append(out, body...)
	out = append(out, test...)
	out = append(out, choice)
	return out, nil
}
