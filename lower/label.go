// Package lower rewrites enhanced combinators down to the primitive set
// compose.Primitives names, and assigns each node of a tree its JSON-pointer
// path for diagnostics, per §4.2.
package lower

import (
	"strconv"

	"github.com/reggeenr/openwhisk-composer/compose"
)

// compositionChildren lists, per combinator type, the named arguments that
// hold a single nested composition, in a fixed traversal order. It mirrors
// compose's own compositionArgNames table but lives here too since Label
// and the rewrites need to recurse through the same slots.
var compositionChildren = map[string][]string{
	"if_nosave":      {"test", "consequent", "alternate"},
	"if":             {"test", "consequent", "alternate"},
	"while_nosave":   {"test", "body"},
	"while":          {"test", "body"},
	"dowhile_nosave": {"body", "test"},
	"dowhile":        {"body", "test"},
	"try":            {"body", "handler"},
	"finally":        {"body", "finalizer"},
	"composition":    {"composition"},
}

// Label assigns every node of tree a JSON-pointer-like Path, rooted at "":
// a named child appends ".name" and the i-th component appends "[i]". It
// returns the same tree for chaining. Path is purely informational: it
// never affects compilation or execution, only diagnostics.
func Label(tree *compose.Composition) *compose.Composition {
	label(tree, "")
	return tree
}

func label(node *compose.Composition, path string) {
	if node == nil {
		return
	}
	node.Path = path

	for _, name := range compositionChildren[node.Type] {
		child := argComposition(node, name)
		if child != nil {
			label(child, path+"."+name)
		}
	}
	for i, c := range node.Components {
		label(c, path+"["+strconv.Itoa(i)+"]")
	}
}

func argComposition(node *compose.Composition, name string) *compose.Composition {
	switch name {
	case "test":
		return node.Test()
	case "body":
		return node.Body()
	case "consequent":
		return node.Consequent()
	case "alternate":
		return node.Alternate()
	case "handler":
		return node.Handler()
	case "finalizer":
		return node.Finalizer()
	case "composition":
		return node.Body2()
	default:
		return nil
	}
}
