package dsl

import (
	"fmt"
	"time"

	"github.com/aretw0/cairn/pkg/domain"
	"github.com/aretw0/cairn/pkg/registry"
)

// Builder manages pipeline construction.
type Builder struct {
	order   []string
	targets map[string]*TargetBuilder
}

// New creates a new pipeline builder.
func New() *Builder {
	return &Builder{
		targets: make(map[string]*TargetBuilder),
	}
}

// Target declares a target with the given name.
// If the target was already declared, it returns the existing builder.
func (b *Builder) Target(name string) *TargetBuilder {
	if tb, ok := b.targets[name]; ok {
		return tb
	}
	tb := &TargetBuilder{
		target: domain.Target{Name: name},
	}
	b.targets[name] = tb
	b.order = append(b.order, name)
	return tb
}

// Build compiles the declarations into a validated target list.
// Declaration order is preserved.
func (b *Builder) Build() ([]domain.Target, error) {
	reg := registry.New()
	for _, name := range b.order {
		tb := b.targets[name]
		if err := reg.Register(tb.target); err != nil {
			return nil, fmt.Errorf("dsl: %w", err)
		}
	}
	return reg.All(), nil
}

// TargetBuilder provides a fluent API for configuring a target.
type TargetBuilder struct {
	target domain.Target
}

// Define sets the staleness signal for the target. Change the definition to
// force recomputation on the next run. Defaults to the target name.
func (t *TargetBuilder) Define(definition string) *TargetBuilder {
	t.target.Definition = definition
	return t
}

// Do sets the command to execute.
func (t *TargetBuilder) Do(cmd domain.Command) *TargetBuilder {
	t.target.Command = cmd
	return t
}

// After declares dependencies; their results are passed to the command.
func (t *TargetBuilder) After(deps ...string) *TargetBuilder {
	t.target.DependsOn = append(t.target.DependsOn, deps...)
	return t
}

// Timeout bounds a single invocation of the command.
func (t *TargetBuilder) Timeout(d time.Duration) *TargetBuilder {
	t.target.Timeout = d
	return t
}

// Describe attaches free-form documentation.
func (t *TargetBuilder) Describe(description string) *TargetBuilder {
	t.target.Description = description
	return t
}

// Meta attaches an annotation the engine never interprets.
func (t *TargetBuilder) Meta(key, value string) *TargetBuilder {
	if t.target.Metadata == nil {
		t.target.Metadata = make(map[string]string)
	}
	t.target.Metadata[key] = value
	return t
}
