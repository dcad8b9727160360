package task

import (
	"fmt"
	"slices"
	"sync"
)

// Registry maps task names to their specs.
type Registry struct {
	mu    sync.RWMutex
	specs map[Name]Spec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[Name]Spec)}
}

// Register adds spec. Names are unique.
func (r *Registry) Register(spec Spec) error {
	if spec.Name == "" || spec.Run == nil {
		return fmt.Errorf("%w: %q needs a name and a body", ErrInvalidTask, spec.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.specs[spec.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, spec.Name)
	}
	spec.Targets = slices.Clone(spec.Targets)
	r.specs[spec.Name] = spec
	return nil
}

// Lookup returns the spec registered under name.
func (r *Registry) Lookup(name Name) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[name]
	return spec, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []Name {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]Name, 0, len(r.specs))
	for n := range r.specs {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Specs returns the registered specs sorted by name.
func (r *Registry) Specs() []Spec {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	specs := make([]Spec, 0, len(names))
	for _, n := range names {
		specs = append(specs, r.specs[n])
	}
	return specs
}

// Validate checks that every declared target is registered.
func (r *Registry) Validate() error {
	for _, spec := range r.Specs() {
		for _, target := range spec.Targets {
			if _, ok := r.Lookup(target); !ok {
				return &EngineError{Kind: ErrUnknownTask, Task: target, Chain: []Name{spec.Name, target}}
			}
		}
	}
	return nil
}
