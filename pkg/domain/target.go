package domain

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// Target names double as file names, Redis key parts and env var suffixes,
// so the charset is restricted up front.
var nameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// ValidateName checks that a target name is safe to use as a store key.
// Every path that introduces targets (registry, manifest, DSL) and every
// store keyed by name enforces it.
func ValidateName(name string) error {
	if !nameRe.MatchString(name) {
		return fmt.Errorf("invalid target name %q: must match %s", name, nameRe.String())
	}
	return nil
}

// Command is the unit of work behind a target. It receives the results of
// the target's direct dependencies keyed by target name, and returns the
// value to store.
//
// Commands must honor ctx cancellation: the scheduler cancels it on timeout
// and, in halt-on-error mode, when another target fails.
type Command func(ctx context.Context, inputs map[string]any) (any, error)

// Target is a named, cacheable computation step.
type Target struct {
	// Name uniquely identifies the target within a pipeline.
	Name string

	// Definition is the staleness signal: a stable textual description of
	// what the command computes (for manifest targets, the command text).
	// Two runs with equal Definition and equal upstream fingerprints reuse
	// the stored result. Defaults to Name when empty.
	Definition string

	// DependsOn lists the names of direct dependencies. Results of these
	// targets are passed to Command as inputs.
	DependsOn []string

	// Command performs the computation. Required.
	Command Command

	// Timeout bounds a single invocation, overriding the pipeline default.
	// Zero means use the default.
	Timeout time.Duration

	// Description is free-form documentation surfaced in manifests.
	Description string

	// Metadata carries arbitrary declaration-time annotations. The engine
	// never interprets it.
	Metadata map[string]string
}

// Summary is the introspection view of a single target, safe to serialize.
type Summary struct {
	Name        string            `json:"name"`
	Definition  string            `json:"definition"`
	DependsOn   []string          `json:"depends_on,omitempty"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Edge is a single dependency arrow: To depends on From.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// GraphManifest is the serializable shape of a validated dependency graph.
// Targets appear in registration order, Order in topological order.
type GraphManifest struct {
	Targets []Summary `json:"targets"`
	Edges   []Edge    `json:"edges,omitempty"`
	Order   []string  `json:"order"`
}
