package conduct

// Frame is one entry of the conductor's runtime stack, pushed by a Let or
// Try/Finally state and popped by its matching Exit.
type Frame struct {
	Kind string // "let", "try", or "finally"

	// Let frame fields. A nil Vars means a mask frame: it still hides the
	// enclosing scope's variables from lookups underneath it, but declares
	// none of its own and write-back on pop is a no-op.
	Vars map[string]any

	// Try/finally frame fields: the absolute program index of the
	// handler/finalizer this frame's push state pointed at, and the
	// absolute index of the first state past the entire construct.
	HandlerPC int
	AfterPC   int
}

// visibleIndices returns the stack indices of the let frames currently
// visible to a function running at the top of stack, per §4.4.2's
// skip-counter rule: walking from the innermost frame outward, each mask
// increments a skip counter and each let frame is hidden - and the counter
// decremented - while the counter is positive. A mask therefore hides
// exactly the next `n` enclosing let frames it's nested inside, not every
// frame beyond it; this is what lets a rewrite's synthetic let (masked
// immediately around it) stay invisible while a further-out, user-declared
// let (an outer loop counter, say) remains visible.
//
// The result is ordered outermost to innermost, ready for a shallow merge
// where later entries shadow earlier ones.
func visibleIndices(stack []*Frame) []int {
	n := 0
	var idx []int
	for i := len(stack) - 1; i >= 0; i-- {
		f := stack[i]
		if f.Kind != "let" {
			continue
		}
		if f.Vars == nil {
			n++
			continue
		}
		if n == 0 {
			idx = append(idx, i)
		} else {
			n--
		}
	}
	for l, r := 0, len(idx)-1; l < r; l, r = l+1, r-1 {
		idx[l], idx[r] = idx[r], idx[l]
	}
	return idx
}

// visible collapses the visible let frames into the single variable
// environment a Function or action invocation at the current program
// counter should see, per §4.4.2: the included frames are merged outermost
// to innermost, so an inner declaration shadows an outer one of the same
// name.
func visible(stack []*Frame) map[string]any {
	env := map[string]any{}
	for _, i := range visibleIndices(stack) {
		for k, v := range stack[i].Vars {
			env[k] = v
		}
	}
	return env
}

// writeBack updates the visible let frames' variables from an updated
// environment, per §4.4.2's write-back rule: only the innermost visible
// frame declaring a symbol is updated, so a write never leaks into a
// same-named binding a closer frame shadows.
func writeBack(stack []*Frame, env map[string]any) {
	idx := visibleIndices(stack)
	written := map[string]bool{}
	for i := len(idx) - 1; i >= 0; i-- {
		f := stack[idx[i]]
		for k := range f.Vars {
			if written[k] {
				continue
			}
			if v, ok := env[k]; ok {
				f.Vars[k] = v
				written[k] = true
			}
		}
	}
}
