// Package fsm compiles a fully lowered composition tree (every node a
// member of compose.Primitives) into a flat Program: an array of States
// connected only by relative jump offsets, per §4.3.
package fsm

import "github.com/reggeenr/openwhisk-composer/compose"

// Kind identifies what a State does when the conductor steps onto it.
type Kind int

const (
	// Pass is a no-op used only to carry a jump: a while loop's loop-back
	// edge, or the stand-in for an empty if_nosave consequent.
	Pass Kind = iota
	// Action invokes a (possibly remote) action by name.
	Action
	// Function evaluates inline source against the current input.
	Function
	// Let pushes a variable scope frame. A nil Declarations means a mask
	// frame: it hides the enclosing scope without declaring anything of its
	// own.
	Let
	// Exit pops the most recently pushed frame; Pop names the kind of frame
	// it closes ("let", "try", or "finally").
	Exit
	// Try pushes a catch frame whose handler starts Catch states away, then
	// falls into its body.
	Try
	// Finally pushes a frame whose finalizer starts Catch states away and
	// always runs on the way out of its body, error or not.
	Finally
	// Choice evaluates the boolean result of the state just before it and
	// jumps to Then or Else.
	Choice
)

// State is one instruction of a compiled Program. Next, Then, Else, and
// Catch are all offsets relative to the State's own index. Compile sets
// Next on every non-Choice State; a Next of 1 means "fall through to
// whatever immediately follows this State".
type State struct {
	Kind Kind
	Next int

	// Action
	ActionName string
	Options    *compose.ActionOptions
	// Async marks an action invoked fire-and-forget: the conductor never
	// suspends for it, invoking it through the ActionInvoker and folding a
	// failure into {error: ...} instead of handing control back to the host.
	Async bool

	// Function
	Function *compose.FunctionSpec

	// Let
	Declarations map[string]any

	// Exit
	Pop string

	// Try / Finally
	Catch int
	// After is the offset to the first state past the entire construct
	// (push, body, exit, and handler/finalizer), the position both the
	// success path and an error unwind converge on.
	After int

	// Choice
	Then int
	Else int

	// Path is the originating node's diagnostic path, carried through from
	// Label for error messages and traces.
	Path string
}

// Program is a fully compiled composition: a flat array of States stepped
// by index, plus an optional Name a caller may set (Compile leaves it
// empty).
type Program struct {
	Name   string
	States []*State
}
