package conduct

import "fmt"

// ThrownError is a composition-level error: a value propagating through
// try/catch and finally frames, as opposed to a Go error returned by the
// evaluator or an invoker. The conductor turns an ordinary error into an
// {"error": message} value (errorValue) and unwinds with that; a
// ThrownError holds such a value while a finalizer runs, and is what Run
// or Resume reports when unwinding runs out of frames, per §4.4.1.
type ThrownError struct {
	Value any
}

func (e *ThrownError) Error() string {
	return fmt.Sprintf("composition threw: %v", e.Value)
}

// errorValue turns a Go error into the {"error": message} value the
// thrown-value convention uses, so it can be handed to inspect the same way
// a composition-level {error: ...} result is.
func errorValue(err error) any {
	return map[string]any{"error": err.Error()}
}

// restoreEntry is a pending "undo the finalizer's own input/output" marker,
// pushed whenever execution enters a finally's finalizer region (on either
// the success path or an error unwind) and popped once AfterPC is reached.
type restoreEntry struct {
	AfterPC int
	Value   any
	Err     *ThrownError
}
