package compose

// FuncSource is the Go stand-in for the source language's "callable"
// argument: the source evaluates user functions by stringifying a closure
// and re-evaluating the text later, which Go has no analogue for. Callers
// that want Task or Function to build a `function` node instead pass the
// source text directly, wrapped in FuncSource, per the design note in §9 of
// the specification.
type FuncSource string

// Task coerces an arbitrary positional argument into a *Composition, per
// the coercion table in §4.1/§8.2:
//
//	nil              -> Empty()
//	*Composition     -> itself
//	FuncSource       -> Function(x)
//	string           -> Action(x)
//	anything else    -> InvalidArgument
func Task(x any) (*Composition, error) {
	switch v := x.(type) {
	case nil:
		return Empty()
	case *Composition:
		return v, nil
	case FuncSource:
		return Function(v)
	case string:
		return Action(v, nil)
	default:
		return nil, &InvalidArgument{Want: "nil, *Composition, FuncSource, or string"}
	}
}
