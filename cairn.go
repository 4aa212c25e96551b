package cairn

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/cairn/internal/graph"
	"github.com/aretw0/cairn/internal/logging"
	pgraph "github.com/aretw0/cairn/internal/presentation/graph"
	"github.com/aretw0/cairn/internal/scheduler"
	"github.com/aretw0/cairn/pkg/adapters/memory"
	"github.com/aretw0/cairn/pkg/domain"
	"github.com/aretw0/cairn/pkg/ports"
	"github.com/aretw0/cairn/pkg/registry"
)

// Pipeline is the high-level entry point for the Cairn library.
// It ties together the target registry, the dependency graph, the stores and
// the scheduler behind a simplified API.
type Pipeline struct {
	name     string
	registry *registry.Registry
	source   ports.TargetSource
	records  ports.RecordStore
	results  ports.ResultStore
	locker   ports.RunLocker
	lockTTL  time.Duration

	workers   int
	keepGoing bool
	timeout   time.Duration
	hooks     domain.LifecycleHooks
	logger    *slog.Logger

	running atomic.Bool
	mu      sync.RWMutex
	last    *domain.RunReport
}

// Option defines a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithName labels the pipeline. The name scopes the run lock and log lines.
func WithName(name string) Option {
	return func(p *Pipeline) {
		p.name = name
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRecordStore injects a custom record store. Defaults to in-memory.
func WithRecordStore(store ports.RecordStore) Option {
	return func(p *Pipeline) {
		p.records = store
	}
}

// WithResultStore injects a custom result store. Defaults to in-memory.
func WithResultStore(store ports.ResultStore) Option {
	return func(p *Pipeline) {
		p.results = store
	}
}

// WithSource loads target declarations from an external source (e.g. a YAML
// manifest) in addition to programmatic registrations. The source is
// re-loaded on every run so declaration edits take effect without restarts.
func WithSource(source ports.TargetSource) Option {
	return func(p *Pipeline) {
		p.source = source
	}
}

// WithWorkers sets the scheduler worker pool size.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		p.workers = n
	}
}

// WithKeepGoing switches the failure policy to best-effort: independent
// branches keep running after a failure. Default is halt-on-first-error.
func WithKeepGoing(keepGoing bool) Option {
	return func(p *Pipeline) {
		p.keepGoing = keepGoing
	}
}

// WithTargetTimeout sets the default per-target timeout. Individual targets
// may override it.
func WithTargetTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.timeout = d
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Pipeline) {
		p.hooks = hooks
	}
}

// WithRunLock guards runs with a distributed lock, so multiple processes
// sharing durable stores cannot run the same pipeline concurrently.
func WithRunLock(locker ports.RunLocker, ttl time.Duration) Option {
	return func(p *Pipeline) {
		p.locker = locker
		p.lockTTL = ttl
	}
}

// New initializes a new Pipeline.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		name:     "pipeline",
		registry: registry.New(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.records == nil {
		p.records = memory.NewRecordStore()
	}
	if p.results == nil {
		p.results = memory.NewResultStore()
	}
	p.logger = p.logger.With("pipeline", p.name)

	return p, nil
}

// Register adds a fully specified target.
func (p *Pipeline) Register(t domain.Target) error {
	return p.registry.Register(t)
}

// Add registers a Go command under the given name.
func (p *Pipeline) Add(name string, cmd domain.Command, deps ...string) error {
	return p.registry.Add(name, cmd, deps...)
}

// targets collects the declared targets: programmatic registrations first,
// then the external source.
func (p *Pipeline) targets(ctx context.Context) ([]domain.Target, error) {
	targets := p.registry.All()
	if p.source != nil {
		loaded, err := p.source.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load target source: %w", err)
		}
		targets = append(targets, loaded...)
	}
	return targets, nil
}

func (p *Pipeline) build(ctx context.Context) (*graph.Graph, error) {
	targets, err := p.targets(ctx)
	if err != nil {
		return nil, err
	}
	return graph.Build(targets)
}

// Run validates the graph and executes every stale target, reusing stored
// results for unchanged ones. Concurrent calls on the same Pipeline return
// domain.ErrRunInProgress.
//
// The returned report lists every target with a terminal status; the error
// is the first command failure in dependency order, if any.
func (p *Pipeline) Run(ctx context.Context) (*domain.RunReport, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, domain.ErrRunInProgress
	}
	defer p.running.Store(false)

	if p.locker != nil {
		ttl := p.lockTTL
		if ttl <= 0 {
			ttl = time.Minute
		}
		unlock, err := p.locker.Lock(ctx, p.name, ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire run lock: %w", err)
		}
		defer func() {
			if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
				p.logger.Warn("failed to release run lock", "err", uerr)
			}
		}()
	}

	g, err := p.build(ctx)
	if err != nil {
		return nil, err
	}

	s := scheduler.New(p.records, p.results,
		scheduler.WithWorkers(p.workers),
		scheduler.WithKeepGoing(p.keepGoing),
		scheduler.WithTimeout(p.timeout),
		scheduler.WithHooks(p.hooks),
		scheduler.WithLogger(p.logger),
	)

	report, err := s.Run(ctx, g)
	if report != nil {
		p.mu.Lock()
		p.last = report
		p.mu.Unlock()
	}
	return report, err
}

// Read returns the stored result of a target.
// Returns domain.ErrResultNotFound if the target was never computed or its
// last run errored.
func (p *Pipeline) Read(ctx context.Context, name string) (any, error) {
	return p.results.Get(ctx, name)
}

// Report returns the report of the most recent run, or nil before any run.
func (p *Pipeline) Report() *domain.RunReport {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// Manifest validates the declarations and returns the serializable graph
// view: targets in registration order, edges, and topological order.
func (p *Pipeline) Manifest(ctx context.Context) (*domain.GraphManifest, error) {
	g, err := p.build(ctx)
	if err != nil {
		return nil, err
	}

	manifest := &domain.GraphManifest{
		Edges: g.Edges(),
		Order: g.TopoOrder(),
	}
	for _, name := range g.Nodes() {
		t, _ := g.Target(name)
		manifest.Targets = append(manifest.Targets, domain.Summary{
			Name:        t.Name,
			Definition:  t.Definition,
			DependsOn:   g.Dependencies(name),
			Description: t.Description,
			Metadata:    t.Metadata,
		})
	}
	return manifest, nil
}

// Graph validates the declarations and returns the dependency edges and
// the topological execution order.
func (p *Pipeline) Graph(ctx context.Context) ([]domain.Edge, []string, error) {
	g, err := p.build(ctx)
	if err != nil {
		return nil, nil, err
	}
	return g.Edges(), g.TopoOrder(), nil
}

// Mermaid renders the graph as a Mermaid flowchart. If a run has completed,
// nodes are styled with its outcomes.
func (p *Pipeline) Mermaid(ctx context.Context) (string, error) {
	manifest, err := p.Manifest(ctx)
	if err != nil {
		return "", err
	}
	return pgraph.GenerateMermaid(manifest, pgraph.OverlayFromReport(p.Report())), nil
}

// Invalidate drops persisted state for the given targets, forcing them to
// recompute on the next run. With no arguments, all state is dropped.
func (p *Pipeline) Invalidate(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		recorded, err := p.records.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}
		names = recorded
		if err := p.results.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear results: %w", err)
		}
	}

	for _, name := range names {
		if err := p.records.Delete(ctx, name); err != nil {
			return fmt.Errorf("failed to delete record for %s: %w", name, err)
		}
		if err := p.results.Delete(ctx, name); err != nil {
			return fmt.Errorf("failed to delete result for %s: %w", name, err)
		}
	}
	return nil
}
