package replicated

import (
	"fmt"
	"sort"
	"sync"
)

// Registry resolves environment names to single-agent factories. It is the
// external name-resolution boundary of the adapter; nothing else in the core
// consults it.
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register binds a name to a factory, replacing any previous binding.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Resolve looks up the factory registered under name.
func (r *Registry) Resolve(name string) (Factory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("no environment registered under %q (have %v)", name, r.names())
	}
	return factory, nil
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the process-wide registry consulted by FromName sources.
var DefaultRegistry = NewRegistry()

// Register binds a name in the default registry.
func Register(name string, factory Factory) {
	DefaultRegistry.Register(name, factory)
}
