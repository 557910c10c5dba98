package lower

import (
	"github.com/reggeenr/openwhisk-composer/compose"
)

// Target selects which non-primitive combinators Lower rewrites away. The
// zero value (nil) means "lower everything", matching the maximal target.
//
//   - nil, true, or ""       -> rewrite every non-primitive combinator
//   - false                  -> no-op, return the tree unchanged
//   - []string               -> the target set: rewrite every combinator
//     except the named types, which are kept as they are
//   - a version string       -> rewrite combinators introduced after that
//     version (Descriptor.Since > target); combinators already native at
//     that version are left alone
func resolveTargets(target any) map[string]bool {
	switch t := target.(type) {
	case nil:
		return allRewritable()
	case bool:
		if t {
			return allRewritable()
		}
		return map[string]bool{}
	case []string:
		keep := make(map[string]bool, len(t))
		for _, name := range t {
			keep[name] = true
		}
		out := map[string]bool{}
		for name := range rewriters {
			if !keep[name] {
				out[name] = true
			}
		}
		return out
	case string:
		if t == "" {
			return allRewritable()
		}
		out := map[string]bool{}
		for name := range rewriters {
			d, ok := compose.Describe(name)
			if !ok {
				continue
			}
			if d.Since == "" || d.Since > t {
				out[name] = true
			}
		}
		return out
	default:
		return allRewritable()
	}
}

func allRewritable() map[string]bool {
	out := make(map[string]bool, len(rewriters))
	for name := range rewriters {
		out[name] = true
	}
	return out
}

// Lower rewrites tree's enhanced combinators down to the primitive set
// selected by target, recursing into every nested composition including
// ones a rewrite just introduced, then labels the result. Lowering an
// already-lowered tree is a no-op: Label just reassigns the same paths.
func Lower(tree *compose.Composition, target any) (*compose.Composition, error) {
	targets := resolveTargets(target)
	out, err := lowerNode(tree, targets)
	if err != nil {
		return nil, err
	}
	return Label(out), nil
}

func lowerNode(node *compose.Composition, targets map[string]bool) (*compose.Composition, error) {
	if node == nil {
		return nil, nil
	}

	if targets[node.Type] {
		rewrite := rewriters[node.Type]
		rewritten, err := rewrite(node)
		if err != nil {
			return nil, err
		}
		return lowerNode(rewritten, targets)
	}

	cur := node
	changed := false

	for _, name := range compositionChildren[cur.Type] {
		child := argComposition(cur, name)
		if child == nil {
			continue
		}
		lowered, err := lowerNode(child, targets)
		if err != nil {
			return nil, err
		}
		if lowered != child {
			if !changed {
				cur = cur.Copy()
				changed = true
			}
			setCompositionChild(cur, name, lowered)
		}
	}

	if len(cur.Components) > 0 {
		newComponents := make([]*compose.Composition, len(cur.Components))
		anyChanged := false
		for i, c := range cur.Components {
			lowered, err := lowerNode(c, targets)
			if err != nil {
				return nil, err
			}
			newComponents[i] = lowered
			if lowered != c {
				anyChanged = true
			}
		}
		if anyChanged {
			if !changed {
				cur = cur.Copy()
				changed = true
			}
			cur.Components = newComponents
		}
	}

	return cur, nil
}

// setCompositionChild writes a lowered child composition back into node's
// named argument slot. It's the one place this package needs to mutate a
// node's Args directly, since compose's typed accessors are read-only.
func setCompositionChild(node *compose.Composition, name string, child *compose.Composition) {
	node.Args[name] = child
}
