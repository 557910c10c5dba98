package devtools

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/reggeenr/openwhisk-composer/compose"
	"github.com/reggeenr/openwhisk-composer/fsm"
	"github.com/reggeenr/openwhisk-composer/lower"
	"github.com/reggeenr/openwhisk-composer/registry"
)

func buildProgram(t *testing.T) *fsm.Program {
	t.Helper()
	test, _ := compose.Action("test", nil)
	yes, _ := compose.Action("yes", nil)
	ifNode, _ := compose.If(test, yes)
	lowered, err := lower.Lower(ifNode, nil)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	prog, err := fsm.Compile(lowered)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return prog
}

func TestDotRendersEveryState(t *testing.T) {
	prog := buildProgram(t)
	var buf bytes.Buffer
	if err := Dot(prog, &buf); err != nil {
		t.Fatalf("Dot failed: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "digraph G {") {
		t.Errorf("expected a digraph header, got %q", out[:20])
	}
	for i := range prog.States {
		if !strings.Contains(out, "n"+strconv.Itoa(i)) {
			t.Errorf("missing node n%d in dot output", i)
		}
	}
}

func TestMermaidRenders(t *testing.T) {
	prog := buildProgram(t)
	var buf bytes.Buffer
	if err := Mermaid(prog, &buf, nil); err != nil {
		t.Fatalf("Mermaid failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "flowchart TD") {
		t.Error("expected a flowchart header")
	}
}

func TestRenderDoc(t *testing.T) {
	body, _ := compose.Action("greet", nil)
	src := &registry.Source{Name: "/_/pipeline", Composition: body, Doc: "# Greeting pipeline"}
	var buf bytes.Buffer
	if err := RenderDoc(src, &buf); err != nil {
		t.Fatalf("RenderDoc failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Greeting pipeline") {
		t.Error("expected the markdown heading to render")
	}
	if !strings.Contains(buf.String(), "/_/greet") {
		t.Error("expected the action name to appear in the tree")
	}
}
