package fsm

// Validate checks the well-formedness properties a compiled Program must
// hold: every jump lands in bounds (including the one-past-the-end
// "complete" index), and every frame push has a matching pop, per §8.5.
func Validate(prog *Program) error {
	n := len(prog.States)

	inRange := func(target int) bool { return target >= 0 && target <= n }

	var letPushes, letPops, tryPushes, tryPops, finallyPushes, finallyPops int

	for i, s := range prog.States {
		switch s.Kind {
		case Choice:
			if !inRange(i+s.Then) || !inRange(i+s.Else) {
				return ErrDanglingJump
			}
		case Try:
			if !inRange(i+s.Catch) || !inRange(i+s.Next) {
				return ErrDanglingJump
			}
			tryPushes++
		case Finally:
			if !inRange(i+s.Catch) || !inRange(i+s.Next) {
				return ErrDanglingJump
			}
			finallyPushes++
		case Let:
			if !inRange(i + s.Next) {
				return ErrDanglingJump
			}
			letPushes++
		case Exit:
			if !inRange(i + s.Next) {
				return ErrDanglingJump
			}
			switch s.Pop {
			case "let":
				letPops++
			case "try":
				tryPops++
			case "finally":
				finallyPops++
			}
		default:
			if !inRange(i + s.Next) {
				return ErrDanglingJump
			}
		}
	}

	if letPushes != letPops || tryPushes != tryPops || finallyPushes != finallyPops {
		return ErrUnbalancedFrame
	}
	return nil
}
