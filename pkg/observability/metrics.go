// Package observability exposes run telemetry as Prometheus metrics.
//
// Metrics plug into the engine through lifecycle hooks, so the scheduler
// stays free of any metrics dependency.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/cairn/pkg/domain"
)

// Metrics bundles the Prometheus collectors for a pipeline.
type Metrics struct {
	runsTotal      *prometheus.CounterVec
	runDuration    prometheus.Histogram
	targetsTotal   *prometheus.CounterVec
	targetDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to use the global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cairn_runs_total",
				Help: "Total number of pipeline runs",
			},
			[]string{"outcome"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "cairn_run_duration_seconds",
				Help: "Duration of whole pipeline runs",
			},
		),
		targetsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cairn_targets_total",
				Help: "Total number of target outcomes by status",
			},
			[]string{"status"},
		),
		targetDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "cairn_target_duration_seconds",
				Help: "Duration of individual target executions",
			},
			[]string{"target"},
		),
	}
	reg.MustRegister(m.runsTotal, m.runDuration, m.targetsTotal, m.targetDuration)
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunFinish: func(ctx context.Context, e *domain.RunEvent) {
			outcome := "ok"
			if e.Report != nil && e.Report.Failed() {
				outcome = "failed"
			}
			m.runsTotal.WithLabelValues(outcome).Inc()
			if e.Report != nil {
				m.runDuration.Observe(e.Report.Duration.Seconds())
			}
		},
		OnTargetFinish: func(ctx context.Context, e *domain.TargetEvent) {
			m.targetsTotal.WithLabelValues(string(e.Status)).Inc()
			// Skips finish in microseconds and would drown the histogram.
			if e.Status == domain.StatusOK || e.Status == domain.StatusError {
				m.targetDuration.WithLabelValues(e.Name).Observe(e.Duration.Seconds())
			}
		},
	}
}

// MergeHooks composes hook sets; every non-nil callback fires.
func MergeHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var merged domain.LifecycleHooks
	for _, hooks := range sets {
		hooks := hooks
		if hooks.OnRunStart != nil {
			prev := merged.OnRunStart
			merged.OnRunStart = func(ctx context.Context, e *domain.RunEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				hooks.OnRunStart(ctx, e)
			}
		}
		if hooks.OnRunFinish != nil {
			prev := merged.OnRunFinish
			merged.OnRunFinish = func(ctx context.Context, e *domain.RunEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				hooks.OnRunFinish(ctx, e)
			}
		}
		if hooks.OnTargetStart != nil {
			prev := merged.OnTargetStart
			merged.OnTargetStart = func(ctx context.Context, e *domain.TargetEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				hooks.OnTargetStart(ctx, e)
			}
		}
		if hooks.OnTargetFinish != nil {
			prev := merged.OnTargetFinish
			merged.OnTargetFinish = func(ctx context.Context, e *domain.TargetEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				hooks.OnTargetFinish(ctx, e)
			}
		}
	}
	return merged
}
