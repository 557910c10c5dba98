package compose

import "strings"

// ActionOptions carries the optional named-argument payload accepted by the
// `action` combinator: an inline sequence of actions to synthesize into a
// single deployable step, a filename the host should resolve to source, or
// ready-made action code, plus an async hint for invocation.
type ActionOptions struct {
	Sequence   []string `json:"sequence,omitempty"`
	Filename   string   `json:"filename,omitempty"`
	ActionCode any      `json:"action,omitempty"`
	Async      bool     `json:"async,omitempty"`
}

// Action builds an `action` node for the named (possibly unqualified) action.
// options may be nil.
func Action(name string, options *ActionOptions) (*Composition, error) {
	qualified, err := ParseName(name)
	if err != nil {
		return nil, err
	}

	n := newNode("action")
	n.setArg("name", qualified)

	if options == nil {
		return n, nil
	}

	if code, ok := options.ActionCode.(string); ok && strings.Contains(code, nativeCodeMarker) {
		return nil, &NativeFunctionCapture{}
	}

	n.setArg("options", options)
	if options.Async {
		n.setArg("async", true)
	}
	return n, nil
}
