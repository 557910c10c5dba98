// Package compose implements the combinator registry and builder: the
// canonical table of combinator shapes, the factories that build AST nodes
// with argument validation, and JSON/YAML deserialization back into that
// AST.
package compose

import (
	"encoding/json"
	"fmt"
)

// Composition is a single node of the composition AST: a tagged record keyed
// by Type, carrying whatever named arguments that combinator declares plus,
// for variadic combinators, an ordered list of child Components.
//
// Named arguments are kept in a generic map rather than one struct field per
// combinator so that the registry-driven builder (see Build) can place
// values by name without knowing every combinator ahead of time; the typed
// accessor methods below give callers of a built tree a concrete view.
type Composition struct {
	Type       string         `json:"type"`
	Components []*Composition `json:"components,omitempty"`
	Args       map[string]any `json:"-"`

	// Path is an informational JSON-pointer-like location assigned by the
	// lowerer's Label pass. Empty until labeling has run.
	Path string `json:"path,omitempty"`
}

// MarshalJSON flattens Args alongside Type/Components/Path so a composition
// round-trips the same shape it was built or deserialized from, rather than
// nesting the named arguments under a separate "args" key.
func (c *Composition) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Args)+3)
	for k, v := range c.Args {
		out[k] = v
	}
	out["type"] = c.Type
	if c.Components != nil {
		out["components"] = c.Components
	}
	if c.Path != "" {
		out["path"] = c.Path
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON: everything but
// type/components/path is collected back into Args. Composition-typed
// argument values stay as generic maps here; Deserialize walks them into
// *Composition values once the combinator's shape is known.
func (c *Composition) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if t, ok := raw["type"]; ok {
		if err := json.Unmarshal(t, &c.Type); err != nil {
			return err
		}
		delete(raw, "type")
	}
	if comps, ok := raw["components"]; ok {
		if err := json.Unmarshal(comps, &c.Components); err != nil {
			return err
		}
		delete(raw, "components")
	}
	if p, ok := raw["path"]; ok {
		if err := json.Unmarshal(p, &c.Path); err != nil {
			return err
		}
		delete(raw, "path")
	}

	c.Args = make(map[string]any, len(raw))
	for k, v := range raw {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		c.Args[k] = val
	}
	return nil
}

// MarshalYAML delegates to the same flattened shape MarshalJSON produces,
// via a generic map, so a composition round-trips identically whether it's
// exchanged as JSON or YAML.
func (c *Composition) MarshalYAML() (any, error) {
	js, err := c.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var generic map[string]any
	if err := json.Unmarshal(js, &generic); err != nil {
		return nil, err
	}
	return generic, nil
}

// UnmarshalYAML is MarshalYAML's inverse. unmarshal is called with a value
// that decodes into a generic map; it's re-encoded through UnmarshalJSON so
// both formats share one parsing path.
func (c *Composition) UnmarshalYAML(unmarshal func(any) error) error {
	var generic any
	if err := unmarshal(&generic); err != nil {
		return err
	}
	js, err := json.Marshal(stringifyKeys(generic))
	if err != nil {
		return err
	}
	return c.UnmarshalJSON(js)
}

// stringifyKeys converts the map[interface{}]interface{} nodes
// gopkg.in/yaml.v2 produces for mappings into map[string]interface{}, which
// is the only shape encoding/json knows how to marshal.
func stringifyKeys(v any) any {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = stringifyKeys(val)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = stringifyKeys(val)
		}
		return out
	case []interface{}:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = stringifyKeys(val)
		}
		return out
	default:
		return v
	}
}

func newNode(typ string) *Composition {
	return &Composition{Type: typ, Args: map[string]any{}}
}

func (c *Composition) arg(name string) any {
	if c == nil || c.Args == nil {
		return nil
	}
	return c.Args[name]
}

func (c *Composition) setArg(name string, v any) {
	if c.Args == nil {
		c.Args = map[string]any{}
	}
	c.Args[name] = v
}

// Composition-typed accessors. Any of these may return nil if the slot was
// optional and not populated.

func (c *Composition) Test() *Composition       { return asComposition(c.arg("test")) }
func (c *Composition) Body() *Composition       { return asComposition(c.arg("body")) }
func (c *Composition) Consequent() *Composition { return asComposition(c.arg("consequent")) }
func (c *Composition) Alternate() *Composition  { return asComposition(c.arg("alternate")) }
func (c *Composition) Handler() *Composition    { return asComposition(c.arg("handler")) }
func (c *Composition) Finalizer() *Composition  { return asComposition(c.arg("finalizer")) }
func (c *Composition) Body2() *Composition      { return asComposition(c.arg("composition")) }

func asComposition(v any) *Composition {
	if v == nil {
		return nil
	}
	c, _ := v.(*Composition)
	return c
}

// Declarations returns the `let` combinator's variable-name-to-initial-value
// mapping. A nil return with Type == "let" or "mask" means a mask frame; a
// non-nil, possibly empty, map means a let frame.
func (c *Composition) Declarations() map[string]any {
	v := c.arg("declarations")
	if v == nil {
		return nil
	}
	m, _ := v.(map[string]any)
	return m
}

// Name returns the `action`/`composition` combinator's qualified or
// unqualified action/composition name.
func (c *Composition) Name() string {
	s, _ := c.arg("name").(string)
	return s
}

// Options returns the `action`/`composition` combinator's options object, if
// any.
func (c *Composition) Options() *ActionOptions {
	o, _ := c.arg("options").(*ActionOptions)
	return o
}

// FunctionSpec returns the `function` combinator's compiled-from-source
// payload.
func (c *Composition) FunctionSpec() *FunctionSpec {
	f, _ := c.arg("function").(*FunctionSpec)
	return f
}

// Count returns the `repeat`/`retry` combinator's iteration count.
func (c *Composition) Count() float64 {
	f, _ := c.arg("count").(float64)
	return f
}

// Value returns the `value`/`literal` combinator's constant payload.
func (c *Composition) Value() any {
	return c.arg("value")
}

// Async reports whether an `action`/`composition` node was built with
// Async: true.
func (c *Composition) Async() bool {
	b, _ := c.arg("async").(bool)
	return b
}

// Copy makes a deep-enough copy of c for the lowerer's rewrite passes: the
// Args map and Components slice are fresh, but composition-typed argument
// values and leaf values are not independently cloned since the AST is
// treated as immutable once built.
func (c *Composition) Copy() *Composition {
	if c == nil {
		return nil
	}
	args := make(map[string]any, len(c.Args))
	for k, v := range c.Args {
		args[k] = v
	}
	var components []*Composition
	if c.Components != nil {
		components = make([]*Composition, len(c.Components))
		copy(components, c.Components)
	}
	return &Composition{
		Type:       c.Type,
		Components: components,
		Args:       args,
		Path:       c.Path,
	}
}
