package compose

// Plugin extends the system with additional combinators per §6.4. A
// plugin's combinator names are merged additively into the registry:
// Register never lets a plugin override a name that already exists.
//
// §6.4 also describes a plugin supplying builder methods, extra lowering
// rewrites, compiler rules, and conductor state handlers. That registration
// machinery - beyond the interface this package itself consumes - is out of
// scope here; Plugin only covers the combinator-registry half. A plugin
// wanting compiler- or conductor-facing behavior has to build it directly
// against the fsm and conduct packages rather than through this interface.
type Plugin interface {
	// Combinators returns the descriptors this plugin contributes to the
	// registry.
	Combinators() map[string]Descriptor
}

// Install registers every combinator a plugin contributes. It's a thin
// wrapper over Register kept in this package so callers only need to know
// about compose.Plugin, not the registry's internal shape.
func Install(p Plugin) {
	Register(p.Combinators())
}
