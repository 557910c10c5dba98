package compose

// compositionArgNames lists, per combinator type, which named arguments hold
// nested compositions rather than plain values. Deserialize walks these so
// that a tree decoded from JSON/YAML ends up with real *Composition values
// in the same slots Build would have placed them in.
var compositionArgNames = map[string][]string{
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

// Deserialize reconstructs a *Composition tree from a decoded JSON/YAML
// value (maps, slices, and scalars as produced by encoding/json or
// gopkg.in/yaml.v2 unmarshaling into interface{}), per §6.3. It is
// idempotent: handing it a tree that's already built returns it unchanged.
func Deserialize(v any) (*Composition, error) {
	switch t := v.(type) {
	case *Composition:
		return t, nil
	case map[string]any:
		return deserializeMap(t)
	default:
		return nil, ErrNotComposed
	}
}

func deserializeMap(m map[string]any) (*Composition, error) {
	typ, ok := m["type"].(string)
	if !ok {
		return nil, ErrNotComposed
	}
	if !Registered(typ) {
		return nil, &UnknownCombinator{Type: typ}
	}

	n := newNode(typ)
	for k, v := range m {
		switch k {
		case "type":
			continue
		case "components":
			comps, err := deserializeComponents(v)
			if err != nil {
				return nil, err
			}
			n.Components = comps
		case "path":
			if s, ok := v.(string); ok {
				n.Path = s
			}
		default:
			n.Args[k] = v
		}
	}

	for _, name := range compositionArgNames[typ] {
		raw, ok := n.Args[name]
		if !ok || raw == nil {
			continue
		}
		child, err := Deserialize(raw)
		if err != nil {
			return nil, err
		}
		n.Args[name] = child
	}

	switch typ {
	case "action":
		if raw, ok := n.Args["options"]; ok {
			opts, err := deserializeActionOptions(raw)
			if err != nil {
				return nil, err
			}
			n.Args["options"] = opts
		}
	case "function":
		raw, ok := n.Args["function"]
		if !ok {
			return nil, &InvalidArgument{Type: typ, Arg: "function"}
		}
		spec, err := deserializeFunctionSpec(raw)
		if err != nil {
			return nil, err
		}
		n.Args["function"] = spec
	}

	return n, nil
}

func deserializeComponents(v any) ([]*Composition, error) {
	raw, ok := v.([]any)
	if !ok {
		return nil, &InvalidArgument{Arg: "components", Want: "array"}
	}
	out := make([]*Composition, 0, len(raw))
	for _, item := range raw {
		c, err := Deserialize(item)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func deserializeActionOptions(v any) (*ActionOptions, error) {
	switch t := v.(type) {
	case *ActionOptions:
		return t, nil
	case map[string]any:
		opts := &ActionOptions{}
		if seq, ok := t["sequence"].([]any); ok {
			for _, s := range seq {
				if str, ok := s.(string); ok {
					opts.Sequence = append(opts.Sequence, str)
				}
			}
		}
		if f, ok := t["filename"].(string); ok {
			opts.Filename = f
		}
		if code, ok := t["action"]; ok {
			opts.ActionCode = code
		}
		if async, ok := t["async"].(bool); ok {
			opts.Async = async
		}
		return opts, nil
	default:
		return nil, &InvalidArgument{Type: "action", Arg: "options", Want: "object"}
	}
}

func deserializeFunctionSpec(v any) (*FunctionSpec, error) {
	switch t := v.(type) {
	case *FunctionSpec:
		return t, nil
	case map[string]any:
		exec, _ := t["exec"].(map[string]any)
		kind, _ := exec["kind"].(string)
		code, _ := exec["code"].(string)
		if code == "" {
			if c, ok := t["code"].(string); ok {
				code = c
			}
			if k, ok := t["kind"].(string); ok {
				kind = k
			}
		}
		built, err := Function(CodeSpec{Kind: kind, Code: code})
		if err != nil {
			return nil, err
		}
		return built.FunctionSpec(), nil
	default:
		return nil, &InvalidArgument{Type: "function", Arg: "function", Want: "object"}
	}
}
