// Package process turns shell scripts into pipeline commands.
//
// Scripts receive upstream results both by textual substitution of
// ${target:NAME} references and as CAIRN_DEP_* environment variables.
// Because the script text doubles as the target definition, editing a
// script is what makes its target stale.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/aretw0/cairn/pkg/domain"
)

var refRe = regexp.MustCompile(`\$\{target:([a-zA-Z0-9][a-zA-Z0-9_.-]*)\}`)

// Option configures the runner.
type Option func(*Runner)

// WithShell overrides the interpreter invocation. The script is appended as
// the final argument. Default is "/bin/sh -c".
func WithShell(shell ...string) Option {
	return func(r *Runner) {
		if len(shell) > 0 {
			r.shell = shell
		}
	}
}

// WithBaseDir sets the working directory for executed scripts.
func WithBaseDir(dir string) Option {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithEnv appends extra environment entries ("KEY=value") to every script.
func WithEnv(env ...string) Option {
	return func(r *Runner) {
		r.env = append(r.env, env...)
	}
}

// Runner builds commands that execute local shell scripts.
type Runner struct {
	shell   []string
	baseDir string
	env     []string
}

// NewRunner creates a new process runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		shell: []string{"/bin/sh", "-c"},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Target declares a target backed by the given script. The script text is
// the target definition, so ${target:NAME} references become dependencies
// without an explicit DependsOn entry.
func (r *Runner) Target(name, script string, deps ...string) domain.Target {
	return domain.Target{
		Name:       name,
		Definition: script,
		DependsOn:  deps,
		Command:    r.Command(script),
	}
}

// Command returns a domain.Command that executes the script via the
// configured shell, substituting ${target:NAME} references with the
// corresponding input values.
func (r *Runner) Command(script string) domain.Command {
	return func(ctx context.Context, inputs map[string]any) (any, error) {
		rendered := refRe.ReplaceAllStringFunc(script, func(ref string) string {
			name := refRe.FindStringSubmatch(ref)[1]
			if v, ok := inputs[name]; ok {
				return stringify(v)
			}
			return ref
		})

		args := append(r.shell[1:len(r.shell):len(r.shell)], rendered)
		cmd := exec.CommandContext(ctx, r.shell[0], args...)
		cmd.Dir = r.baseDir

		// Inputs are also passed as env vars. This avoids quoting hazards
		// for values the script wants verbatim.
		env := cmd.Environ()
		env = append(env, r.env...)
		for name, v := range inputs {
			env = append(env, fmt.Sprintf("CAIRN_DEP_%s=%s", envKey(name), stringify(v)))
		}
		cmd.Env = env

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				return nil, fmt.Errorf("script failed: %w", err)
			}
			return nil, fmt.Errorf("script failed: %w: %s", err, msg)
		}

		return parseOutput(stdout.String()), nil
	}
}

// stringify renders an input value for substitution: primitives verbatim,
// structured values as JSON.
func stringify(v any) string {
	switch v.(type) {
	case string, int, int64, float64, bool:
		return fmt.Sprintf("%v", v)
	case nil:
		return ""
	default:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", v)
	}
}

// envKey maps a target name onto the env var charset.
func envKey(name string) string {
	upper := strings.ToUpper(name)
	return strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, upper)
}

// parseOutput auto-detects JSON stdout so scripts can hand structured
// results to downstream targets. Anything else is a trimmed string.
func parseOutput(output string) any {
	trimmed := strings.TrimSpace(output)
	if (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) {
		var parsed any
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			return parsed
		}
	}
	return trimmed
}
