// Package scheduler walks the dependency DAG and executes stale targets.
//
// Independent branches run concurrently on a worker pool; targets sharing an
// edge are strictly ordered. A target executes at most once per run, only
// after all its upstream targets reached a terminal status. The DAG itself
// enforces the write/read order on the shared stores, so no global lock is
// needed.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/cairn/internal/fingerprint"
	"github.com/aretw0/cairn/internal/graph"
	"github.com/aretw0/cairn/internal/logging"
	"github.com/aretw0/cairn/pkg/domain"
	"github.com/aretw0/cairn/pkg/ports"
)

const defaultWorkers = 4

// Option configures the scheduler.
type Option func(*Scheduler)

// WithWorkers sets the size of the worker pool.
func WithWorkers(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithKeepGoing switches the failure policy from halt-on-first-error to
// best-effort: independent branches keep running, downstream consumers of a
// failed target become blocked.
func WithKeepGoing(keepGoing bool) Option {
	return func(s *Scheduler) {
		s.keepGoing = keepGoing
	}
}

// WithTimeout sets the default per-target invocation timeout.
// Individual targets may override it.
func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.timeout = d
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Scheduler) {
		s.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Scheduler executes a validated target graph against a record store and a
// result store.
type Scheduler struct {
	records   ports.RecordStore
	results   ports.ResultStore
	workers   int
	keepGoing bool
	timeout   time.Duration
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
}

// New creates a scheduler over the given stores.
func New(records ports.RecordStore, results ports.ResultStore, opts ...Option) *Scheduler {
	s := &Scheduler{
		records: records,
		results: results,
		workers: defaultWorkers,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// node states guarding execution. A node moves pending -> running -> done,
// or pending -> blocked (exactly once, via CAS).
const (
	statePending int32 = iota
	stateRunning
	stateDone
	stateBlocked
)

type node struct {
	target     domain.Target
	deps       []*node
	dependents []*node
	depCount   atomic.Int32
	state      atomic.Int32

	// Written by the owning worker before the terminal state transition;
	// read by dependents only after it.
	fp       domain.Fingerprint
	result   any
	status   domain.Status
	errMsg   string
	err      error
	warnings []string
	duration time.Duration
}

type run struct {
	*Scheduler
	wg        sync.WaitGroup
	readyChan chan *node
	cancel    context.CancelFunc
}

// Run executes the graph and returns a report listing every target with an
// explicit terminal status, in topological order. The returned error is the
// first command failure in topological order, if any.
func (s *Scheduler) Run(ctx context.Context, g *graph.Graph) (*domain.RunReport, error) {
	started := time.Now()

	order := g.TopoOrder()
	nodes := make(map[string]*node, len(order))
	for _, name := range order {
		t, _ := g.Target(name)
		nodes[name] = &node{target: t}
	}
	for _, name := range order {
		n := nodes[name]
		for _, dep := range g.Dependencies(name) {
			n.deps = append(n.deps, nodes[dep])
		}
		for _, dependent := range g.Dependents(name) {
			n.dependents = append(n.dependents, nodes[dependent])
		}
		n.depCount.Store(int32(len(n.deps)))
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r := &run{
		Scheduler: s,
		readyChan: make(chan *node, len(order)),
		cancel:    cancel,
	}

	s.emitRunEvent(ctx, domain.EventRunStart, len(order), nil)
	s.logger.Debug("starting run", "targets", len(order), "workers", s.workers)

	for _, name := range order {
		if n := nodes[name]; n.depCount.Load() == 0 {
			r.readyChan <- n
		}
	}

	r.wg.Add(len(order))
	workers := s.workers
	if workers > len(order) {
		workers = len(order)
	}
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		go r.worker(runCtx, i)
	}

	r.wg.Wait()
	close(r.readyChan)

	report := &domain.RunReport{
		StartedAt: started,
		Duration:  time.Since(started),
		Targets:   make([]domain.TargetReport, 0, len(order)),
	}
	var firstErr error
	for _, name := range order {
		n := nodes[name]
		report.Targets = append(report.Targets, domain.TargetReport{
			Name:     name,
			Status:   n.status,
			Duration: n.duration,
			Error:    n.errMsg,
			Warnings: n.warnings,
		})
		if firstErr == nil && n.status == domain.StatusError {
			firstErr = fmt.Errorf("target %s failed: %w", name, n.err)
		}
	}

	s.emitRunEvent(ctx, domain.EventRunFinish, len(order), report)
	s.logger.Info("run finished",
		"ok", report.Count(domain.StatusOK),
		"skipped", report.Count(domain.StatusSkipped),
		"errors", report.Count(domain.StatusError),
		"blocked", report.Count(domain.StatusBlocked),
		"duration", report.Duration,
	)

	if firstErr == nil && ctx.Err() != nil {
		firstErr = ctx.Err()
	}
	return report, firstErr
}

// worker is the processing loop for a single concurrent worker.
func (r *run) worker(ctx context.Context, id int) {
	for n := range r.readyChan {
		if ctx.Err() != nil {
			r.block(ctx, n, "run canceled")
			continue
		}
		if !n.state.CompareAndSwap(statePending, stateRunning) {
			// Blocked between scheduling and pickup.
			continue
		}

		r.logger.Debug("executing target", "worker", id, "target", n.target.Name)
		r.execute(ctx, n)
		n.state.Store(stateDone)

		switch n.status {
		case domain.StatusOK, domain.StatusSkipped:
			for _, dependent := range n.dependents {
				if dependent.depCount.Add(-1) == 0 {
					r.readyChan <- dependent
				}
			}
			r.wg.Done()
		case domain.StatusError:
			if !r.keepGoing {
				r.cancel()
			}
			r.wg.Done()
			for _, dependent := range n.dependents {
				r.block(ctx, dependent, fmt.Sprintf("blocked by upstream failure of %s", n.target.Name))
			}
		}
	}
}

// block marks a never-executed node (and transitively its dependents) as
// BLOCKED. Safe to call multiple times; only the first wins.
func (r *run) block(ctx context.Context, n *node, reason string) {
	if !n.state.CompareAndSwap(statePending, stateBlocked) {
		return
	}
	r.logger.Debug("blocking target", "target", n.target.Name, "reason", reason)
	n.status = domain.StatusBlocked
	n.errMsg = reason
	r.emitTargetEvent(ctx, domain.EventTargetFinish, n)
	r.wg.Done()
	for _, dependent := range n.dependents {
		r.block(ctx, dependent, fmt.Sprintf("blocked by upstream %s", n.target.Name))
	}
}

// execute computes the fingerprint of a single target, then either reuses
// the stored result or invokes the command and persists the outcome.
func (r *run) execute(ctx context.Context, n *node) {
	start := time.Now()
	name := n.target.Name
	r.emitTargetEvent(ctx, domain.EventTargetStart, n)

	upstream := make([]domain.Fingerprint, 0, len(n.deps))
	inputs := make(map[string]any, len(n.deps))
	for _, dep := range n.deps {
		upstream = append(upstream, dep.fp)
		inputs[dep.target.Name] = dep.result
	}
	n.fp = fingerprint.Compute(n.target.Definition, upstream)

	if r.trySkip(ctx, n) {
		n.status = domain.StatusSkipped
		n.duration = time.Since(start)
		r.logger.Debug("target unchanged, reusing stored result", "target", name)
		r.emitTargetEvent(ctx, domain.EventTargetFinish, n)
		return
	}

	runCtx := ctx
	timeout := n.target.Timeout
	if timeout == 0 {
		timeout = r.timeout
	}
	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(ctx, timeout)
		defer cancelTimeout()
	}

	value, err := n.target.Command(runCtx, inputs)
	n.duration = time.Since(start)

	if err != nil {
		n.status = domain.StatusError
		n.err = err
		n.errMsg = err.Error()
		r.logger.Debug("target failed", "target", name, "err", err)

		record := &domain.RunRecord{
			Fingerprint: n.fp,
			Status:      domain.StatusError,
			Error:       n.errMsg,
			UpdatedAt:   time.Now().UTC(),
		}
		if serr := r.records.Save(ctx, name, record); serr != nil {
			n.warnings = append(n.warnings, fmt.Sprintf("record store write failed: %v", serr))
		}
		// Drop any stale result so reads fail instead of serving old data.
		if derr := r.results.Delete(ctx, name); derr != nil {
			n.warnings = append(n.warnings, fmt.Sprintf("stale result cleanup failed: %v", derr))
		}
		r.emitTargetEvent(ctx, domain.EventTargetFinish, n)
		return
	}

	n.result = value
	n.status = domain.StatusOK

	// Persistence failures after a successful computation are warnings, not
	// errors: the run made forward progress and the next run will recompute.
	if perr := r.results.Put(ctx, name, value); perr != nil {
		n.warnings = append(n.warnings, fmt.Sprintf("result store write failed: %v", perr))
	}
	record := &domain.RunRecord{
		Fingerprint: n.fp,
		Status:      domain.StatusOK,
		UpdatedAt:   time.Now().UTC(),
	}
	if serr := r.records.Save(ctx, name, record); serr != nil {
		n.warnings = append(n.warnings, fmt.Sprintf("record store write failed: %v", serr))
	}

	r.emitTargetEvent(ctx, domain.EventTargetFinish, n)
}

// trySkip reports whether the target is fresh: persisted fingerprint equals
// the current one, prior status was OK, and the prior result is loadable.
// Store corruption or load failures force recomputation, never abort.
func (r *run) trySkip(ctx context.Context, n *node) bool {
	name := n.target.Name

	record, err := r.records.Load(ctx, name)
	if err != nil {
		if !errors.Is(err, domain.ErrRecordNotFound) {
			n.warnings = append(n.warnings, fmt.Sprintf("record load failed, forcing recompute: %v", err))
			r.logger.Warn("record load failed, treating target as stale", "target", name, "err", err)
		}
		return false
	}
	if record.Fingerprint != n.fp || record.Status != domain.StatusOK {
		return false
	}

	value, err := r.results.Get(ctx, name)
	if err != nil {
		if !errors.Is(err, domain.ErrResultNotFound) {
			n.warnings = append(n.warnings, fmt.Sprintf("result load failed, forcing recompute: %v", err))
		}
		return false
	}

	n.result = value
	return true
}

func (s *Scheduler) emitTargetEvent(ctx context.Context, eventType domain.EventType, n *node) {
	var hook func(context.Context, *domain.TargetEvent)
	switch eventType {
	case domain.EventTargetStart:
		hook = s.hooks.OnTargetStart
	case domain.EventTargetFinish:
		hook = s.hooks.OnTargetFinish
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.TargetEvent{
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		Name:      n.target.Name,
		Status:    n.status,
		Duration:  n.duration,
		Error:     n.errMsg,
	})
}

func (s *Scheduler) emitRunEvent(ctx context.Context, eventType domain.EventType, count int, report *domain.RunReport) {
	var hook func(context.Context, *domain.RunEvent)
	switch eventType {
	case domain.EventRunStart:
		hook = s.hooks.OnRunStart
	case domain.EventRunFinish:
		hook = s.hooks.OnRunFinish
	}
	if hook == nil {
		return
	}
	hook(ctx, &domain.RunEvent{
		Timestamp:   time.Now().UTC(),
		Type:        eventType,
		TargetCount: count,
		Report:      report,
	})
}
