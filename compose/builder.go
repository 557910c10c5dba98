package compose

// Build constructs a node of the given combinator type from positional
// arguments, per the coercion and arity rules in §4.1. It is the generic
// entry point the exported factories below delegate to; plugins that add
// combinators via Register can also drive their own nodes through it.
func Build(typ string, args ...any) (*Composition, error) {
	d, ok := Describe(typ)
	if !ok {
		return nil, &UnknownCombinator{Type: typ}
	}
	if !d.Variadic && len(args) > len(d.Args) {
		return nil, &TooManyArguments{Type: typ, Got: len(args), Max: len(d.Args)}
	}

	switch typ {
	case "empty":
		return newNode("empty"), nil

	case "sequence", "seq", "mask":
		return buildVariadic(typ, args)

	case "if_nosave", "if":
		return buildIf(typ, args)

	case "while_nosave", "while":
		return buildWhile(typ, args)

	case "dowhile_nosave", "dowhile":
		return buildDowhile(typ, args)

	case "try":
		return buildTry(args)

	case "finally":
		return buildFinally(args)

	case "let":
		return buildLet(args)

	case "action":
		name, _ := singleString(typ, args, 0)
		var opts *ActionOptions
		if len(args) > 1 {
			opts, _ = args[1].(*ActionOptions)
		}
		return Action(name, opts)

	case "function":
		if len(args) == 0 {
			return nil, &InvalidArgument{Type: typ, Arg: "function"}
		}
		return Function(args[0])

	case "composition":
		return buildNamed(args)

	case "retain", "retain_catch":
		return buildVariadic(typ, args)

	case "repeat", "retry":
		return buildCountedVariadic(typ, args)

	case "value", "literal":
		var v any
		if len(args) > 0 {
			v = args[0]
		}
		if _, isFunc := v.(FuncSource); isFunc {
			return nil, &InvalidArgument{Type: typ, Arg: "value"}
		}
		if v == nil {
			v = map[string]any{}
		}
		n := newNode(typ)
		n.setArg("value", v)
		return n, nil

	default:
		// A plugin-registered combinator with no builder-level semantics of
		// its own: expose it as a bare variadic node so callers can still
		// compose with it.
		_ = d
		return buildVariadic(typ, args)
	}
}

func buildVariadic(typ string, args []any) (*Composition, error) {
	n := newNode(typ)
	comps := make([]*Composition, 0, len(args))
	for _, a := range args {
		c, err := Task(a)
		if err != nil {
			return nil, err
		}
		comps = append(comps, c)
	}
	n.Components = comps
	return n, nil
}

func buildCountedVariadic(typ string, args []any) (*Composition, error) {
	if len(args) == 0 {
		return nil, &InvalidArgument{Type: typ, Arg: "count"}
	}
	count, ok := toNumber(args[0])
	if !ok {
		return nil, &InvalidArgument{Type: typ, Arg: "count", Want: "number"}
	}
	n, err := buildVariadic(typ, args[1:])
	if err != nil {
		return nil, err
	}
	n.setArg("count", count)
	return n, nil
}

func buildIf(typ string, args []any) (*Composition, error) {
	if len(args) < 2 {
		return nil, &InvalidArgument{Type: typ, Arg: "consequent"}
	}
	test, err := Task(args[0])
	if err != nil {
		return nil, err
	}
	consequent, err := Task(args[1])
	if err != nil {
		return nil, err
	}
	n := newNode(typ)
	n.setArg("test", test)
	n.setArg("consequent", consequent)
	if len(args) > 2 {
		alternate, err := Task(args[2])
		if err != nil {
			return nil, err
		}
		n.setArg("alternate", alternate)
	}
	return n, nil
}

func buildWhile(typ string, args []any) (*Composition, error) {
	if len(args) < 1 {
		return nil, &InvalidArgument{Type: typ, Arg: "test"}
	}
	test, err := Task(args[0])
	if err != nil {
		return nil, err
	}
	var body *Composition
	if len(args) > 1 {
		body, err = Task(args[1])
		if err != nil {
			return nil, err
		}
	} else {
		body, _ = Empty()
	}
	n := newNode(typ)
	n.setArg("test", test)
	n.setArg("body", body)
	return n, nil
}

func buildDowhile(typ string, args []any) (*Composition, error) {
	if len(args) < 1 {
		return nil, &InvalidArgument{Type: typ, Arg: "body"}
	}
	body, err := Task(args[0])
	if err != nil {
		return nil, err
	}
	var test *Composition
	if len(args) > 1 {
		test, err = Task(args[1])
		if err != nil {
			return nil, err
		}
	} else {
		test, _ = Empty()
	}
	n := newNode(typ)
	n.setArg("body", body)
	n.setArg("test", test)
	return n, nil
}

func buildTry(args []any) (*Composition, error) {
	if len(args) < 1 {
		return nil, &InvalidArgument{Type: "try", Arg: "body"}
	}
	body, err := Task(args[0])
	if err != nil {
		return nil, err
	}
	var handler *Composition
	if len(args) > 1 {
		handler, err = Task(args[1])
		if err != nil {
			return nil, err
		}
	} else {
		handler, _ = Empty()
	}
	n := newNode("try")
	n.setArg("body", body)
	n.setArg("handler", handler)
	return n, nil
}

func buildFinally(args []any) (*Composition, error) {
	if len(args) < 1 {
		return nil, &InvalidArgument{Type: "finally", Arg: "body"}
	}
	body, err := Task(args[0])
	if err != nil {
		return nil, err
	}
	var finalizer *Composition
	if len(args) > 1 {
		finalizer, err = Task(args[1])
		if err != nil {
			return nil, err
		}
	} else {
		finalizer, _ = Empty()
	}
	n := newNode("finally")
	n.setArg("body", body)
	n.setArg("finalizer", finalizer)
	return n, nil
}

func buildLet(args []any) (*Composition, error) {
	if len(args) < 1 {
		return nil, &InvalidArgument{Type: "let", Arg: "declarations"}
	}
	decls, ok := args[0].(map[string]any)
	if !ok || decls == nil {
		return nil, &InvalidArgument{Type: "let", Arg: "declarations", Want: "object"}
	}
	n, err := buildVariadic("let", args[1:])
	if err != nil {
		return nil, err
	}
	n.setArg("declarations", decls)
	return n, nil
}

func buildNamed(args []any) (*Composition, error) {
	name, err := singleString("composition", args, 0)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, &AnonymousCompositionDeploy{}
	}
	if len(args) < 2 {
		return nil, &InvalidArgument{Type: "composition", Arg: "composition"}
	}
	body, err := Task(args[1])
	if err != nil {
		return nil, err
	}
	n := newNode("composition")
	n.setArg("name", name)
	n.setArg("composition", body)
	if len(args) > 2 {
		n.setArg("options", args[2])
	}
	return n, nil
}

func singleString(typ string, args []any, i int) (string, error) {
	if i >= len(args) {
		return "", &InvalidArgument{Type: typ, Arg: "name"}
	}
	s, ok := args[i].(string)
	if !ok {
		return "", &InvalidArgument{Type: typ, Arg: "name", Want: "string"}
	}
	return s, nil
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// Exported factories. Each one with optional trailing arguments caps their
// number with capArgs before delegating to Build, so a caller gets a
// TooManyArguments error rather than a silently-ignored extra argument.

func capArgs(typ string, args []any, max int) error {
	if max < 0 {
		return nil
	}
	if len(args) > max {
		return &TooManyArguments{Type: typ, Got: len(args), Max: max}
	}
	return nil
}

// Empty builds the `empty` combinator: a no-op task.
func Empty() (*Composition, error) { return Build("empty") }

// Sequence builds a `sequence` combinator from its variadic tasks.
func Sequence(tasks ...any) (*Composition, error) { return Build("sequence", tasks...) }

// Seq is an alias for Sequence.
func Seq(tasks ...any) (*Composition, error) { return Build("seq", tasks...) }

// IfNosave builds the primitive `if_nosave` combinator: test/consequent with
// an optional alternate, where the chosen branch receives the test's own
// result rather than the caller's params (see the primitive-vs-enhanced
// distinction in §4.1/§4.2).
func IfNosave(test, consequent any, alternate ...any) (*Composition, error) {
	if err := capArgs("if_nosave", alternate, 1); err != nil {
		return nil, err
	}
	args := []any{test, consequent}
	if len(alternate) > 0 {
		args = append(args, alternate[0])
	}
	return Build("if_nosave", args...)
}

// If builds the enhanced `if` combinator.
func If(test, consequent any, alternate ...any) (*Composition, error) {
	if err := capArgs("if", alternate, 1); err != nil {
		return nil, err
	}
	args := []any{test, consequent}
	if len(alternate) > 0 {
		args = append(args, alternate[0])
	}
	return Build("if", args...)
}

// WhileNosave builds the primitive `while_nosave` combinator.
func WhileNosave(test any, body ...any) (*Composition, error) {
	if err := capArgs("while_nosave", body, 1); err != nil {
		return nil, err
	}
	args := []any{test}
	if len(body) > 0 {
		args = append(args, body[0])
	}
	return Build("while_nosave", args...)
}

// While builds the enhanced `while` combinator.
func While(test any, body ...any) (*Composition, error) {
	if err := capArgs("while", body, 1); err != nil {
		return nil, err
	}
	args := []any{test}
	if len(body) > 0 {
		args = append(args, body[0])
	}
	return Build("while", args...)
}

// DowhileNosave builds the primitive `dowhile_nosave` combinator.
func DowhileNosave(body any, test ...any) (*Composition, error) {
	if err := capArgs("dowhile_nosave", test, 1); err != nil {
		return nil, err
	}
	args := []any{body}
	if len(test) > 0 {
		args = append(args, test[0])
	}
	return Build("dowhile_nosave", args...)
}

// Dowhile builds the enhanced `dowhile` combinator.
func Dowhile(body any, test ...any) (*Composition, error) {
	if err := capArgs("dowhile", test, 1); err != nil {
		return nil, err
	}
	args := []any{body}
	if len(test) > 0 {
		args = append(args, test[0])
	}
	return Build("dowhile", args...)
}

// Try builds the `try` combinator: body with an optional error handler.
func Try(body any, handler ...any) (*Composition, error) {
	if err := capArgs("try", handler, 1); err != nil {
		return nil, err
	}
	args := []any{body}
	if len(handler) > 0 {
		args = append(args, handler[0])
	}
	return Build("try", args...)
}

// Finally builds the `finally` combinator: body with a finalizer that always
// runs.
func Finally(body any, finalizer ...any) (*Composition, error) {
	if err := capArgs("finally", finalizer, 1); err != nil {
		return nil, err
	}
	args := []any{body}
	if len(finalizer) > 0 {
		args = append(args, finalizer[0])
	}
	return Build("finally", args...)
}

// Let builds the `let` combinator: declarations followed by the tasks that
// see them.
func Let(declarations map[string]any, tasks ...any) (*Composition, error) {
	args := append([]any{declarations}, tasks...)
	return Build("let", args...)
}

// Mask builds the `mask` combinator: tasks run with the enclosing let-scope
// hidden from their variable lookups.
func Mask(tasks ...any) (*Composition, error) { return Build("mask", tasks...) }

// Named builds the `composition` combinator: a deployable, named sub-tree.
// It's called Named rather than Composition to avoid colliding with the
// Composition type.
func Named(name string, body any, options ...any) (*Composition, error) {
	if err := capArgs("composition", options, 1); err != nil {
		return nil, err
	}
	args := []any{name, body}
	if len(options) > 0 {
		args = append(args, options[0])
	}
	return Build("composition", args...)
}

// Retain builds the `retain` combinator: runs tasks, then merges their
// result back with the original input under a `params`/`result` envelope.
func Retain(tasks ...any) (*Composition, error) { return Build("retain", tasks...) }

// RetainCatch builds the `retain_catch` combinator: like Retain, but also
// retains a thrown error instead of propagating it.
func RetainCatch(tasks ...any) (*Composition, error) { return Build("retain_catch", tasks...) }

// Repeat builds the `repeat` combinator: runs tasks count times in sequence.
func Repeat(count float64, tasks ...any) (*Composition, error) {
	args := append([]any{count}, tasks...)
	return Build("repeat", args...)
}

// Retry builds the `retry` combinator: runs tasks, retrying up to count
// times while they throw.
func Retry(count float64, tasks ...any) (*Composition, error) {
	args := append([]any{count}, tasks...)
	return Build("retry", args...)
}

// ValueNode builds the `value` combinator: a constant substituted for
// whatever input it receives.
func ValueNode(v any) (*Composition, error) { return Build("value", v) }

// Literal is an alias for ValueNode.
func Literal(v any) (*Composition, error) { return Build("literal", v) }
