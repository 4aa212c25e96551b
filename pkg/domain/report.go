package domain

import "time"

// TargetReport is one target's outcome within a run.
type TargetReport struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// RunReport lists every target of a run with an explicit terminal status,
// in topological order.
type RunReport struct {
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
	Targets   []TargetReport `json:"targets"`
}

// Target returns the report entry for the named target, or nil.
func (r *RunReport) Target(name string) *TargetReport {
	for i := range r.Targets {
		if r.Targets[i].Name == name {
			return &r.Targets[i]
		}
	}
	return nil
}

// Count returns how many targets finished with the given status.
func (r *RunReport) Count(status Status) int {
	n := 0
	for i := range r.Targets {
		if r.Targets[i].Status == status {
			n++
		}
	}
	return n
}

// Failed reports whether any target errored or was blocked.
func (r *RunReport) Failed() bool {
	return r.Count(StatusError) > 0 || r.Count(StatusBlocked) > 0
}
