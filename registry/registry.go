// Package registry is a directory of named, deployable compositions,
// resolved by qualified action name. The conductor does not consult it.
// Deploying the resolved action (pushing it to a host) is outside this package's scope;
// it only tracks sources.
package registry

import (
	"sync"

	"github.com/reggeenr/openwhisk-composer/compose"
)

// Source is a named composition as it's tracked by the registry: its
// qualified name, the built tree, and an optional Markdown Doc string.
type Source struct {
	Name        string             `json:"name" yaml:"name"`
	Composition *compose.Composition `json:"composition" yaml:"composition"`
	Doc         string             `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// Registry is an in-memory directory of Sources, keyed by their fully
// qualified name. It's safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]*Source
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{sources: map[string]*Source{}}
}

// Put registers src under its qualified name, overwriting any existing
// entry of the same name.
func (r *Registry) Put(src *Source) error {
	qualified, err := compose.ParseName(src.Name)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *src
	clone.Name = qualified
	r.sources[qualified] = &clone
	return nil
}

// Get resolves name (qualified or not) to its registered Source.
func (r *Registry) Get(name string) (*Source, bool) {
	qualified, err := compose.ParseName(name)
	if err != nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.sources[qualified]
	return src, ok
}

// Delete removes name from the registry, if present.
func (r *Registry) Delete(name string) {
	qualified, err := compose.ParseName(name)
	if err != nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sources, qualified)
}

// List returns every registered Source, in no particular order.
func (r *Registry) List() []*Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Source, 0, len(r.sources))
	for _, src := range r.sources {
		out = append(out, src)
	}
	return out
}
