package compose

// These are build-time, user-facing errors. They're raised synchronously
// while a composition tree is being built, deserialized, or labeled, and are
// opaque to the conductor: the conductor only ever sees a tree that already
// passed through here successfully.

import "errors"

// UnknownCombinator occurs when Build is asked for a combinator type that
// isn't in the active registry.
type UnknownCombinator struct {
	Type string
}

func (e *UnknownCombinator) Error() string {
	return `unknown combinator "` + e.Type + `"`
}

// TooManyArguments occurs when a combinator factory is given more positional
// arguments than its descriptor allows.
type TooManyArguments struct {
	Type string
	Got  int
	Max  int
}

func (e *TooManyArguments) Error() string {
	return `too many arguments for "` + e.Type + `"`
}

// InvalidArgument occurs when a positional argument can't be coerced to its
// declared type, or a required argument is missing.
type InvalidArgument struct {
	Type string
	Arg  string
	Want string
}

func (e *InvalidArgument) Error() string {
	msg := `invalid argument`
	if e.Type != "" {
		msg += ` for "` + e.Type + `"`
	}
	if e.Arg != "" {
		msg += ` (` + e.Arg + `)`
	}
	if e.Want != "" {
		msg += `: expected ` + e.Want
	}
	return msg
}

// InvalidName occurs when an action or composition name fails the grammar in
// §6.2.
type InvalidName struct {
	Name string
}

func (e *InvalidName) Error() string {
	return `invalid name "` + e.Name + `"`
}

// NativeFunctionCapture occurs when Function is given source text carrying
// the native-code marker, the Go stand-in for the source's
// "reject a stringified native function" check.
type NativeFunctionCapture struct{}

func (e *NativeFunctionCapture) Error() string {
	return "cannot capture native code as a function"
}

// AnonymousCompositionDeploy occurs when a `composition` node is built
// without a name.
type AnonymousCompositionDeploy struct{}

func (e *AnonymousCompositionDeploy) Error() string {
	return "cannot deploy an anonymous composition"
}

// ErrNotComposed is returned by Deserialize when the input JSON/YAML value
// isn't a composition object at all.
var ErrNotComposed = errors.New("value is not a composition")
