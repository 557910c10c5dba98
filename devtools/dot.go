// Package devtools renders a compiled fsm.Program as Graphviz dot or
// Mermaid source for visualization, and turns a composition's Markdown
// documentation into HTML.
package devtools

import (
	"fmt"
	"io"
	"strings"

	"github.com/reggeenr/openwhisk-composer/fsm"
)

func kindLabel(k fsm.Kind) string {
	switch k {
	case fsm.Pass:
		return "pass"
	case fsm.Action:
		return "action"
	case fsm.Function:
		return "function"
	case fsm.Let:
		return "let"
	case fsm.Exit:
		return "exit"
	case fsm.Try:
		return "try"
	case fsm.Finally:
		return "finally"
	case fsm.Choice:
		return "choice"
	default:
		return "?"
	}
}

// Dot writes a Graphviz dot rendering of prog to w: one node per State,
// with Next/Then/Else/Catch edges, labeled by kind and, for action states,
// the action name.
func Dot(prog *fsm.Program, w io.Writer) error {
	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, "  graph [rankdir=TB]\n  node [shape=\"record\" style=\"rounded,filled\" fillcolor=\"#99ddc8\"]\n")

	for i, s := range prog.States {
		label := fmt.Sprintf("%d: %s", i, kindLabel(s.Kind))
		if s.Kind == fsm.Action {
			label += "\\n" + escape(s.ActionName)
		}
		fillcolor := "#99ddc8"
		if s.Kind == fsm.Choice {
			fillcolor = "#2d93ad"
		}
		if s.Kind == fsm.Try || s.Kind == fsm.Finally {
			fillcolor = "#f0a500"
		}
		fmt.Fprintf(w, "  n%d [label=\"%s\" fillcolor=\"%s\"]\n", i, label, fillcolor)
	}

	n := len(prog.States)
	for i, s := range prog.States {
		switch s.Kind {
		case fsm.Choice:
			edge(w, n, i, i+s.Then, "then")
			edge(w, n, i, i+s.Else, "else")
		case fsm.Try, fsm.Finally:
			edge(w, n, i, i+s.Next, "")
			edge(w, n, i, i+s.Catch, "handler")
		default:
			edge(w, n, i, i+s.Next, "")
		}
	}

	fmt.Fprintf(w, "}\n")
	return nil
}

func edge(w io.Writer, n, from, to int, label string) {
	if to < 0 || to >= n {
		fmt.Fprintf(w, "  n%d -> done [label=\"%s\" style=\"dashed\"]\n", from, label)
		return
	}
	fmt.Fprintf(w, "  n%d -> n%d [label=\"%s\"]\n", from, to, label)
}

func escape(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
