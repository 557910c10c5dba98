package fsm

import "errors"

// NotLowered occurs when Compile is handed a tree that still contains a
// non-primitive combinator, which means it wasn't run through lower.Lower
// first, or a plugin registered a combinator without ever reducing it to
// something this package knows how to compile.
type NotLowered struct {
	Type string
	Path string
}

func (e *NotLowered) Error() string {
	msg := `combinator "` + e.Type + `" is not a primitive`
	if e.Path != "" {
		msg += ` at ` + e.Path
	}
	return msg
}

// ErrDanglingJump is returned by Validate when a State's offset lands
// outside the Program's bounds.
var ErrDanglingJump = errors.New("fsm: jump target out of range")

// ErrUnbalancedFrame is returned by Validate when the number of let/mask,
// try, or finally pushes differs from the number of matching pops.
var ErrUnbalancedFrame = errors.New("fsm: unbalanced frame push")
