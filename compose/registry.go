package compose

import "sync"

// ArgType is the declared type of a combinator's named argument.
type ArgType int

const (
	// ArgComposition coerces its positional argument via Task.
	ArgComposition ArgType = iota
	ArgString
	ArgNumber
	ArgObject
	// ArgValue accepts any JSON value except a function.
	ArgValue
)

// ArgSpec describes one named argument slot of a combinator.
type ArgSpec struct {
	Name     string
	Type     ArgType
	Optional bool
}

// Descriptor is the combinator table entry: whether the combinator takes a
// variadic Components slot, its ordered named arguments, and the minimum
// spec version ("since") at which it was introduced, used for
// version-targeted lowering.
type Descriptor struct {
	Variadic bool
	Args     []ArgSpec
	Since    string
}

// registry is the canonical, mutable combinator table. It starts out with
// the primitive and enhanced combinators from DefaultCombinators and can be
// grown (never overridden) by plugins via Register.
var (
	registryMu sync.RWMutex
	registry   = cloneDescriptors(DefaultCombinators)
)

func cloneDescriptors(in map[string]Descriptor) map[string]Descriptor {
	out := make(map[string]Descriptor, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// DefaultCombinators is the canonical primitive-plus-enhanced combinator
// table, laid out the way §4.1 of the specification describes it.
var DefaultCombinators = map[string]Descriptor{
	"empty": {},
	"sequence": {
		Variadic: true,
	},
	"seq": {
		Variadic: true,
	},
	"if_nosave": {
		Args: []ArgSpec{
			{Name: "test", Type: ArgComposition},
			{Name: "consequent", Type: ArgComposition},
			{Name: "alternate", Type: ArgComposition, Optional: true},
		},
	},
	"while_nosave": {
		Args: []ArgSpec{
			{Name: "test", Type: ArgComposition},
			{Name: "body", Type: ArgComposition},
		},
	},
	"dowhile_nosave": {
		Args: []ArgSpec{
			{Name: "body", Type: ArgComposition},
			{Name: "test", Type: ArgComposition},
		},
	},
	"if": {
		Since: "1.0",
		Args: []ArgSpec{
			{Name: "test", Type: ArgComposition},
			{Name: "consequent", Type: ArgComposition},
			{Name: "alternate", Type: ArgComposition, Optional: true},
		},
	},
	"while": {
		Since: "1.0",
		Args: []ArgSpec{
			{Name: "test", Type: ArgComposition},
			{Name: "body", Type: ArgComposition},
		},
	},
	"dowhile": {
		Since: "1.0",
		Args: []ArgSpec{
			{Name: "body", Type: ArgComposition},
			{Name: "test", Type: ArgComposition},
		},
	},
	"try": {
		Args: []ArgSpec{
			{Name: "body", Type: ArgComposition},
			{Name: "handler", Type: ArgComposition},
		},
	},
	"finally": {
		Args: []ArgSpec{
			{Name: "body", Type: ArgComposition},
			{Name: "finalizer", Type: ArgComposition},
		},
	},
	"let": {
		Variadic: true,
		Args: []ArgSpec{
			{Name: "declarations", Type: ArgObject},
		},
	},
	"mask": {
		Variadic: true,
	},
	"action": {
		Args: []ArgSpec{
			{Name: "name", Type: ArgString},
			{Name: "options", Type: ArgObject, Optional: true},
		},
	},
	"function": {
		Args: []ArgSpec{
			{Name: "function", Type: ArgObject},
		},
	},
	"composition": {
		Since: "1.0",
		Args: []ArgSpec{
			{Name: "name", Type: ArgString},
			{Name: "composition", Type: ArgComposition},
			{Name: "options", Type: ArgObject, Optional: true},
		},
	},
	"retain": {
		Since:    "1.0",
		Variadic: true,
	},
	"retain_catch": {
		Since:    "1.0",
		Variadic: true,
	},
	"repeat": {
		Since:    "1.0",
		Variadic: true,
		Args: []ArgSpec{
			{Name: "count", Type: ArgNumber},
		},
	},
	"retry": {
		Since:    "1.0",
		Variadic: true,
		Args: []ArgSpec{
			{Name: "count", Type: ArgNumber},
		},
	},
	"value": {
		Since: "1.0",
		Args: []ArgSpec{
			{Name: "value", Type: ArgValue},
		},
	},
	"literal": {
		Since: "1.0",
		Args: []ArgSpec{
			{Name: "value", Type: ArgValue},
		},
	},
}

// Primitives is the minimal target set a maximal lowering pass reduces to.
var Primitives = map[string]bool{
	"empty":          true,
	"sequence":       true,
	"if_nosave":      true,
	"while_nosave":   true,
	"dowhile_nosave": true,
	"try":            true,
	"finally":        true,
	"let":            true,
	"mask":           true,
	"action":         true,
	"function":       true,
}

// Describe looks up a combinator's descriptor.
func Describe(typ string) (Descriptor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[typ]
	return d, ok
}

// Registered reports whether typ is a key in the active combinator
// registry, per the data-model invariant in §3.1.
func Registered(typ string) bool {
	_, ok := Describe(typ)
	return ok
}

// Register adds combinator descriptors supplied by a plugin. Per §6.4, a
// plugin's new names are merged in; it can never override an existing
// combinator.
func Register(combinators map[string]Descriptor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for name, d := range combinators {
		if _, exists := registry[name]; exists {
			continue
		}
		registry[name] = d
	}
}
