package fsm

import (
	"testing"

	"github.com/reggeenr/openwhisk-composer/compose"
	"github.com/reggeenr/openwhisk-composer/lower"
)

func compileSpec(t *testing.T, tree *compose.Composition) *Program {
	t.Helper()
	lowered, err := lower.Lower(tree, nil)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	prog, err := Compile(lowered)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return prog
}

func TestCompileSequenceIsLinear(t *testing.T) {
	a, _ := compose.Action("a", nil)
	b, _ := compose.Action("b", nil)
	seq, _ := compose.Sequence(a, b)
	prog := compileSpec(t, seq)
	if len(prog.States) != 2 {
		t.Fatalf("expected 2 states, got %d", len(prog.States))
	}
	if prog.States[0].Kind != Action || prog.States[1].Kind != Action {
		t.Errorf("expected two Action states, got %v %v", prog.States[0].Kind, prog.States[1].Kind)
	}
}

func TestCompileIfBalancesBranches(t *testing.T) {
	test, _ := compose.Action("test", nil)
	yes, _ := compose.Action("yes", nil)
	no, _ := compose.Action("no", nil)
	ifNode, _ := compose.If(test, yes, no)
	prog := compileSpec(t, ifNode)
	if err := Validate(prog); err != nil {
		t.Errorf("Validate failed on compiled if: %v", err)
	}
}

func TestCompileTryHasReachableCatch(t *testing.T) {
	body, _ := compose.Action("risky", nil)
	handler, _ := compose.Action("onError", nil)
	tryNode, _ := compose.Try(body, handler)
	prog := compileSpec(t, tryNode)
	if err := Validate(prog); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	var foundTry bool
	for i, s := range prog.States {
		if s.Kind == Try {
			foundTry = true
			target := i + s.Catch
			if target < 0 || target > len(prog.States) {
				t.Errorf("try's catch offset out of range: %d", target)
			}
		}
	}
	if !foundTry {
		t.Error("expected a Try state in the compiled program")
	}
}

func TestCompileRejectsUnlowered(t *testing.T) {
	ifNode, _ := compose.If("test", "consequent", nil)
	if _, err := Compile(ifNode); err == nil {
		t.Error("Compile should reject a tree that wasn't lowered first")
	}
}

// TestCompileIfNosaveWithEmptyConsequentSkipsAlternate pins the synthetic
// pass state compileChoiceIf inserts when the consequent compiles to zero
// states (e.g. a nil branch coerced to `empty()`). Without it, Then and
// Else land on the same state - the alternate's first one - so a truthy
// test would run the alternate unconditionally.
func TestCompileIfNosaveWithEmptyConsequentSkipsAlternate(t *testing.T) {
	test, _ := compose.Action("test", nil)
	alt, _ := compose.Action("alt", nil)
	ifNode, _ := compose.IfNosave(test, nil, alt)
	prog, err := Compile(ifNode)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if err := Validate(prog); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	var choice *State
	var choiceIdx int
	for i, s := range prog.States {
		if s.Kind == Choice {
			choice, choiceIdx = s, i
		}
	}
	if choice == nil {
		t.Fatal("expected a Choice state in the compiled program")
	}
	thenIdx := choiceIdx + choice.Then
	elseIdx := choiceIdx + choice.Else
	if thenIdx == elseIdx {
		t.Fatalf("Then (%d) and Else (%d) converge on the same state with an empty consequent", thenIdx, elseIdx)
	}
	if prog.States[elseIdx].Kind != Action || prog.States[elseIdx].ActionName != "/_/alt" {
		t.Errorf("Else should land on the alternate's action, got %+v", prog.States[elseIdx])
	}
}

func TestCompileWhileLoopsBack(t *testing.T) {
	test, _ := compose.Action("more", nil)
	body, _ := compose.Action("step", nil)
	whileNode, _ := compose.While(test, body)
	prog := compileSpec(t, whileNode)
	if err := Validate(prog); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	var foundBackEdge bool
	for i, s := range prog.States {
		if s.Kind == Pass && i+s.Next < i {
			foundBackEdge = true
		}
	}
	if !foundBackEdge {
		t.Error("expected a backward jump implementing the while loop")
	}
}
