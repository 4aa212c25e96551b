package cairn_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/cairn"
	"github.com/aretw0/cairn/pkg/adapters/file"
	"github.com/aretw0/cairn/pkg/domain"
)

func TestPipeline_IncrementalRuns(t *testing.T) {
	p, err := cairn.New(cairn.WithName("incremental"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var aCalls, bCalls atomic.Int32
	if err := p.Register(domain.Target{
		Name:       "a",
		Definition: "constant 5",
		Command: func(ctx context.Context, _ map[string]any) (any, error) {
			aCalls.Add(1)
			return 5, nil
		},
	}); err != nil {
		t.Fatal(err)
	}
	if err := p.Add("b", func(ctx context.Context, inputs map[string]any) (any, error) {
		bCalls.Add(1)
		return inputs["a"].(int) + 1, nil
	}, "a"); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()

	// First run computes everything.
	report, err := p.Run(ctx)
	if err != nil {
		t.Fatalf("run 1 failed: %v", err)
	}
	if report.Count(domain.StatusOK) != 2 {
		t.Errorf("expected 2 ok targets, got %d", report.Count(domain.StatusOK))
	}
	if v, _ := p.Read(ctx, "b"); v != 6 {
		t.Errorf("expected b=6, got %v", v)
	}

	// Second run skips everything; commands do not execute again.
	report, err = p.Run(ctx)
	if err != nil {
		t.Fatalf("run 2 failed: %v", err)
	}
	if report.Count(domain.StatusSkipped) != 2 {
		t.Errorf("expected 2 skipped targets, got %+v", report.Targets)
	}
	if aCalls.Load() != 1 || bCalls.Load() != 1 {
		t.Errorf("commands re-executed: a=%d b=%d", aCalls.Load(), bCalls.Load())
	}
	if v, _ := p.Read(ctx, "b"); v != 6 {
		t.Errorf("expected b=6 after skip, got %v", v)
	}

	// Invalidation forces recomputation.
	if err := p.Invalidate(ctx, "a"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	report, err = p.Run(ctx)
	if err != nil {
		t.Fatalf("run 3 failed: %v", err)
	}
	if got := report.Target("a").Status; got != domain.StatusOK {
		t.Errorf("expected a recomputed, got %s", got)
	}
}

func TestPipeline_ErrorBlocksDownstream(t *testing.T) {
	p, _ := cairn.New()
	boom := errors.New("boom")

	_ = p.Add("a", func(ctx context.Context, _ map[string]any) (any, error) {
		return nil, boom
	})
	_ = p.Add("c", func(ctx context.Context, inputs map[string]any) (any, error) {
		return nil, nil
	}, "a")

	ctx := context.Background()
	report, err := p.Run(ctx)
	if err == nil {
		t.Fatal("expected run error")
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped root cause, got %v", err)
	}
	if got := report.Target("a").Status; got != domain.StatusError {
		t.Errorf("expected a=error, got %s", got)
	}
	if got := report.Target("c").Status; got != domain.StatusBlocked {
		t.Errorf("expected c=blocked, got %s", got)
	}

	if _, err := p.Read(ctx, "c"); !errors.Is(err, domain.ErrResultNotFound) {
		t.Errorf("expected ErrResultNotFound for blocked target, got %v", err)
	}
}

func TestPipeline_GraphValidation(t *testing.T) {
	t.Run("UnknownDependency", func(t *testing.T) {
		p, _ := cairn.New()
		_ = p.Add("a", func(ctx context.Context, _ map[string]any) (any, error) { return nil, nil }, "ghost")

		_, err := p.Run(context.Background())
		var unknownErr *domain.UnknownDependencyError
		if !errors.As(err, &unknownErr) {
			t.Fatalf("expected UnknownDependencyError, got %v", err)
		}
	})

	t.Run("Cycle", func(t *testing.T) {
		p, _ := cairn.New()
		noop := func(ctx context.Context, _ map[string]any) (any, error) { return nil, nil }
		_ = p.Add("a", noop, "b")
		_ = p.Add("b", noop, "a")

		_, err := p.Run(context.Background())
		var cycleErr *domain.CyclicDependencyError
		if !errors.As(err, &cycleErr) {
			t.Fatalf("expected CyclicDependencyError, got %v", err)
		}
		if len(cycleErr.Cycle) < 3 {
			t.Errorf("expected a closed witness path, got %v", cycleErr.Cycle)
		}
	})
}

func TestPipeline_RunInProgress(t *testing.T) {
	p, _ := cairn.New()

	release := make(chan struct{})
	started := make(chan struct{})
	_ = p.Add("slow", func(ctx context.Context, _ map[string]any) (any, error) {
		close(started)
		<-release
		return 1, nil
	})

	go func() {
		_, _ = p.Run(context.Background())
	}()
	<-started

	_, err := p.Run(context.Background())
	if !errors.Is(err, domain.ErrRunInProgress) {
		t.Errorf("expected ErrRunInProgress, got %v", err)
	}
	close(release)
}

func TestPipeline_DurableStores(t *testing.T) {
	dir := t.TempDir()
	build := func() *cairn.Pipeline {
		p, err := cairn.New(
			cairn.WithRecordStore(file.NewRecordStore(dir+"/records")),
			cairn.WithResultStore(file.NewResultStore(dir+"/results")),
		)
		if err != nil {
			t.Fatal(err)
		}
		_ = p.Register(domain.Target{
			Name:       "a",
			Definition: "constant 5",
			Command: func(ctx context.Context, _ map[string]any) (any, error) {
				return 5, nil
			},
		})
		return p
	}

	ctx := context.Background()
	if _, err := build().Run(ctx); err != nil {
		t.Fatalf("run 1 failed: %v", err)
	}

	// A fresh process reuses state from disk.
	report, err := build().Run(ctx)
	if err != nil {
		t.Fatalf("run 2 failed: %v", err)
	}
	if got := report.Target("a").Status; got != domain.StatusSkipped {
		t.Errorf("expected skip across restarts, got %s", got)
	}
}

func TestPipeline_ManifestAndMermaid(t *testing.T) {
	p, _ := cairn.New()
	noop := func(ctx context.Context, _ map[string]any) (any, error) { return nil, nil }
	_ = p.Add("a", noop)
	_ = p.Add("b", noop, "a")

	ctx := context.Background()
	manifest, err := p.Manifest(ctx)
	if err != nil {
		t.Fatalf("Manifest failed: %v", err)
	}
	if len(manifest.Targets) != 2 {
		t.Errorf("expected 2 targets, got %d", len(manifest.Targets))
	}
	if len(manifest.Edges) != 1 || manifest.Edges[0].From != "a" {
		t.Errorf("unexpected edges: %v", manifest.Edges)
	}
	if manifest.Order[0] != "a" || manifest.Order[1] != "b" {
		t.Errorf("unexpected topo order: %v", manifest.Order)
	}

	mermaid, err := p.Mermaid(ctx)
	if err != nil {
		t.Fatalf("Mermaid failed: %v", err)
	}
	if !strings.Contains(mermaid, "a --> b") {
		t.Errorf("mermaid missing edge:\n%s", mermaid)
	}
}

func TestPipeline_Timeout(t *testing.T) {
	p, _ := cairn.New(cairn.WithTargetTimeout(20 * time.Millisecond))
	_ = p.Add("hang", func(ctx context.Context, _ map[string]any) (any, error) {
		select {
		case <-time.After(5 * time.Second):
			return nil, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})

	report, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if got := report.Target("hang").Status; got != domain.StatusError {
		t.Errorf("expected error status, got %s", got)
	}
}
