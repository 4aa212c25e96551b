package process_test

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/cairn/pkg/adapters/process"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests use /bin/sh")
	}
}

func TestCommand_CapturesStdout(t *testing.T) {
	skipOnWindows(t)

	cmd := process.NewRunner().Command("echo hello")
	out, err := cmd(context.Background(), nil)
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if out != "hello" {
		t.Errorf("expected %q, got %q", "hello", out)
	}
}

func TestCommand_SubstitutesReferences(t *testing.T) {
	skipOnWindows(t)

	cmd := process.NewRunner().Command("echo ${target:greeting} world")
	out, err := cmd(context.Background(), map[string]any{"greeting": "hello"})
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if out != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", out)
	}
}

func TestCommand_ExposesInputsAsEnv(t *testing.T) {
	skipOnWindows(t)

	cmd := process.NewRunner().Command(`echo "$CAIRN_DEP_TRAIN_SET"`)
	out, err := cmd(context.Background(), map[string]any{"train-set": "42"})
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if out != "42" {
		t.Errorf("expected %q, got %q", "42", out)
	}
}

func TestCommand_ParsesJSONOutput(t *testing.T) {
	skipOnWindows(t)

	cmd := process.NewRunner().Command(`echo '{"rows": 3}'`)
	out, err := cmd(context.Background(), nil)
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	m, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("expected map output, got %T", out)
	}
	if m["rows"] != float64(3) {
		t.Errorf("expected rows=3, got %v", m["rows"])
	}
}

func TestCommand_FailureIncludesStderr(t *testing.T) {
	skipOnWindows(t)

	cmd := process.NewRunner().Command("echo nope >&2; exit 3")
	if _, err := cmd(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	} else if !strings.Contains(err.Error(), "nope") {
		t.Errorf("expected stderr in error, got %v", err)
	}
}

func TestCommand_HonorsCancellation(t *testing.T) {
	skipOnWindows(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	cmd := process.NewRunner().Command("sleep 10")
	if _, err := cmd(ctx, nil); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestTarget_ReferencesBecomeDefinition(t *testing.T) {
	target := process.NewRunner().Target("report", "cat ${target:data}")
	if target.Definition != "cat ${target:data}" {
		t.Errorf("definition should be the script, got %q", target.Definition)
	}
	if target.Command == nil {
		t.Error("target has no command")
	}
}
