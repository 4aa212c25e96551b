package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart     EventType = "run_start"
	EventRunFinish    EventType = "run_finish"
	EventTargetStart  EventType = "target_start"
	EventTargetFinish EventType = "target_finish"
)

// TargetEvent describes the start or end of a single target.
type TargetEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Type      EventType     `json:"type"`
	Name      string        `json:"name"`
	Status    Status        `json:"status,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// RunEvent describes the start or end of a whole run.
type RunEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Type        EventType `json:"type"`
	TargetCount int       `json:"target_count"`
	Report      *RunReport
}

// LifecycleHooks defines callbacks for scheduler observability.
// Nil hooks are skipped. Hooks run synchronously on the worker goroutine,
// so they must be cheap and must not block.
type LifecycleHooks struct {
	OnRunStart     func(context.Context, *RunEvent)
	OnRunFinish    func(context.Context, *RunEvent)
	OnTargetStart  func(context.Context, *TargetEvent)
	OnTargetFinish func(context.Context, *TargetEvent)
}
