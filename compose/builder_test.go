package compose

import "testing"

func TestIfArity(t *testing.T) {
	if _, err := If("t", "c", "a"); err != nil {
		t.Errorf("If with 3 args should succeed, got %v", err)
	}
	if _, err := If("t", "c", "a", "extra"); err == nil {
		t.Error("If with 4 args should fail with TooManyArguments")
	}
}

func TestSequenceBuildsComponents(t *testing.T) {
	s, err := Sequence("a", "b", nil)
	if err != nil {
		t.Fatalf("Sequence failed: %v", err)
	}
	if len(s.Components) != 3 {
		t.Fatalf("Sequence should have 3 components, got %d", len(s.Components))
	}
	if s.Components[2].Type != "empty" {
		t.Errorf("nil should coerce to empty, got %s", s.Components[2].Type)
	}
}

func TestLetRequiresObjectDeclarations(t *testing.T) {
	if _, err := Build("let", "not-a-map"); err == nil {
		t.Error("let should reject non-object declarations")
	}
	l, err := Let(map[string]any{"x": 1.0}, "foo")
	if err != nil {
		t.Fatalf("Let failed: %v", err)
	}
	if l.Declarations()["x"] != 1.0 {
		t.Errorf("Declarations() = %v, want x=1.0", l.Declarations())
	}
}

func TestNamedRejectsAnonymous(t *testing.T) {
	if _, err := Named("", "body"); err == nil {
		t.Error("Named with empty name should fail")
	}
}

func TestUnknownCombinator(t *testing.T) {
	if _, err := Build("not-a-real-combinator"); err == nil {
		t.Error("Build with unregistered type should fail")
	}
}
