// Package manifest loads target declarations from a YAML pipeline file.
//
// A manifest declares two kinds of targets: exec targets carrying an inline
// shell script ("run"), and tool targets referencing a Go command registered
// by the host program ("tool"). Exec scripts may reference other targets
// with ${target:NAME}, which both substitutes the upstream result and
// declares the dependency.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/cairn/pkg/adapters/process"
	"github.com/aretw0/cairn/pkg/domain"
)

// file is the raw manifest shape.
type file struct {
	Version int          `mapstructure:"version"`
	Targets []targetDecl `mapstructure:"targets"`
}

type targetDecl struct {
	Name        string            `mapstructure:"name"`
	Run         string            `mapstructure:"run"`
	Tool        string            `mapstructure:"tool"`
	Args        map[string]any    `mapstructure:"args"`
	DependsOn   []string          `mapstructure:"depends_on"`
	Timeout     time.Duration     `mapstructure:"timeout"`
	Description string            `mapstructure:"description"`
	Metadata    map[string]string `mapstructure:"metadata"`
}

// Option configures the loader.
type Option func(*Loader)

// WithRunner overrides the process runner used for exec targets.
func WithRunner(runner *process.Runner) Option {
	return func(l *Loader) {
		if runner != nil {
			l.runner = runner
		}
	}
}

// WithTool registers a Go command that manifest targets can reference by
// name via the "tool" field.
func WithTool(name string, cmd domain.Command) Option {
	return func(l *Loader) {
		l.tools[name] = cmd
	}
}

// Loader reads a pipeline manifest from disk. Implements ports.TargetSource.
type Loader struct {
	path   string
	runner *process.Runner
	tools  map[string]domain.Command
}

// NewLoader creates a loader for the manifest at path.
func NewLoader(path string, opts ...Option) *Loader {
	l := &Loader{
		path:   path,
		runner: process.NewRunner(),
		tools:  make(map[string]domain.Command),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load parses the manifest and returns its targets in declaration order.
func (l *Loader) Load(ctx context.Context) ([]domain.Target, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return l.parse(data)
}

func (l *Loader) parse(data []byte) ([]domain.Target, error) {
	// Two-stage decode: YAML into a generic tree, then a strict, typed
	// mapstructure pass so "30s" timeouts and unknown keys are handled.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid manifest YAML: %w", err)
	}

	var m file
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &m,
		ErrorUnused: true,
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	if m.Version != 1 {
		return nil, fmt.Errorf("unsupported manifest version %d", m.Version)
	}

	targets := make([]domain.Target, 0, len(m.Targets))
	for _, decl := range m.Targets {
		target, err := l.toTarget(decl)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, nil
}

func (l *Loader) toTarget(decl targetDecl) (domain.Target, error) {
	if decl.Name == "" {
		return domain.Target{}, fmt.Errorf("manifest target without a name")
	}
	if err := domain.ValidateName(decl.Name); err != nil {
		return domain.Target{}, err
	}

	target := domain.Target{
		Name:        decl.Name,
		DependsOn:   decl.DependsOn,
		Timeout:     decl.Timeout,
		Description: decl.Description,
		Metadata:    decl.Metadata,
	}

	switch {
	case decl.Run != "" && decl.Tool != "":
		return domain.Target{}, fmt.Errorf("target %s: run and tool are mutually exclusive", decl.Name)
	case decl.Run != "":
		if len(decl.Args) > 0 {
			return domain.Target{}, fmt.Errorf("target %s: args are only valid for tool targets", decl.Name)
		}
		target.Definition = decl.Run
		target.Command = l.runner.Command(decl.Run)
	case decl.Tool != "":
		cmd, ok := l.tools[decl.Tool]
		if !ok {
			return domain.Target{}, fmt.Errorf("target %s references unregistered tool %s", decl.Name, decl.Tool)
		}
		definition, wrapped, err := bindArgs(decl.Tool, cmd, decl.Args)
		if err != nil {
			return domain.Target{}, fmt.Errorf("target %s: %w", decl.Name, err)
		}
		target.Definition = definition
		target.Command = wrapped
	default:
		return domain.Target{}, fmt.Errorf("target %s declares neither run nor tool", decl.Name)
	}

	return target, nil
}

// bindArgs folds declaration args into a tool command. The args become part
// of the definition, so editing them in the manifest makes the target stale.
// They reach the command under the reserved "args" input key.
func bindArgs(tool string, cmd domain.Command, args map[string]any) (string, domain.Command, error) {
	if len(args) == 0 {
		return "tool:" + tool, cmd, nil
	}

	// json.Marshal sorts map keys, giving a stable definition.
	encoded, err := json.Marshal(args)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode tool args: %w", err)
	}

	wrapped := func(ctx context.Context, inputs map[string]any) (any, error) {
		merged := make(map[string]any, len(inputs)+1)
		for k, v := range inputs {
			merged[k] = v
		}
		merged["args"] = args
		return cmd(ctx, merged)
	}
	return "tool:" + tool + " " + string(encoded), wrapped, nil
}
