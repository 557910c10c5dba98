package devtools

import (
	"fmt"
	"io"

	"github.com/reggeenr/openwhisk-composer/fsm"
)

// MermaidOpts controls Mermaid's cosmetic choices.
type MermaidOpts struct {
	ActionFill string
}

// Mermaid writes a Mermaid flowchart rendering of prog to w.
func Mermaid(prog *fsm.Program, w io.Writer, opts *MermaidOpts) error {
	if opts == nil {
		opts = &MermaidOpts{ActionFill: "#bcf2db"}
	}

	fmt.Fprintf(w, "flowchart TD\n")
	n := len(prog.States)

	for i, s := range prog.States {
		label := kindLabel(s.Kind)
		if s.Kind == fsm.Action {
			label += ": " + s.ActionName
		}
		shape := "(%s)"
		if s.Kind == fsm.Choice {
			shape = "{%s}"
		}
		fmt.Fprintf(w, "  n%d"+wrap(shape, label)+"\n", i)
	}
	if opts.ActionFill != "" {
		fmt.Fprintf(w, "  classDef action fill:%s\n", opts.ActionFill)
		for i, s := range prog.States {
			if s.Kind == fsm.Action {
				fmt.Fprintf(w, "  class n%d action\n", i)
			}
		}
	}

	for i, s := range prog.States {
		switch s.Kind {
		case fsm.Choice:
			mermaidEdge(w, n, i, i+s.Then, "then")
			mermaidEdge(w, n, i, i+s.Else, "else")
		case fsm.Try, fsm.Finally:
			mermaidEdge(w, n, i, i+s.Next, "")
			mermaidEdge(w, n, i, i+s.Catch, "handler")
		default:
			mermaidEdge(w, n, i, i+s.Next, "")
		}
	}
	return nil
}

func wrap(shape, label string) string {
	return fmt.Sprintf(shape, "\""+label+"\"")
}

func mermaidEdge(w io.Writer, n, from, to int, label string) {
	arrow := "-->"
	if label != "" {
		arrow = "-- " + label + " -->"
	}
	if to < 0 || to >= n {
		fmt.Fprintf(w, "  n%d %s done([done])\n", from, arrow)
		return
	}
	fmt.Fprintf(w, "  n%d %s n%d\n", from, arrow, to)
}
