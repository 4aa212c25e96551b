// Package registry holds the declared set of pipeline targets.
//
// The registry is rebuilt fresh each run from declarations; insertion order
// is preserved for stable manifest listing and deterministic scheduling
// tie-breaks.
package registry

import (
	"fmt"
	"sync"

	"github.com/aretw0/cairn/pkg/domain"
)

// Registry manages the declared targets of a pipeline.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	targets map[string]domain.Target
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		targets: make(map[string]domain.Target),
	}
}

// Register adds a fully specified target.
// Fails with domain.DuplicateTargetError if the name is already taken.
func (r *Registry) Register(t domain.Target) error {
	if err := domain.ValidateName(t.Name); err != nil {
		return err
	}
	if t.Command == nil {
		return fmt.Errorf("target %s has no command", t.Name)
	}
	if t.Definition == "" {
		// Without a definition there is nothing to fingerprint. Fall back
		// to the name so the target is at least stable across runs.
		t.Definition = t.Name
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.targets[t.Name]; exists {
		return &domain.DuplicateTargetError{Name: t.Name}
	}

	r.targets[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Add is a convenience wrapper for Go-defined commands.
func (r *Registry) Add(name string, cmd domain.Command, deps ...string) error {
	return r.Register(domain.Target{
		Name:      name,
		Command:   cmd,
		DependsOn: deps,
	})
}

// Get returns the target with the given name.
func (r *Registry) Get(name string) (domain.Target, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.targets[name]
	return t, ok
}

// All returns the targets in registration order.
func (r *Registry) All() []domain.Target {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Target, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.targets[name])
	}
	return out
}

// Len returns the number of registered targets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
