package domain

import "time"

// Fingerprint is a deterministic hash over a target's definition and the
// fingerprints of its dependencies. Equal fingerprints mean the target's
// stored result is still valid.
type Fingerprint string

// Status is the terminal outcome of a target within one run.
type Status string

const (
	// StatusOK means the command executed and its result was stored.
	StatusOK Status = "ok"
	// StatusSkipped means the stored result was reused unchanged.
	StatusSkipped Status = "skipped"
	// StatusError means the command executed and failed.
	StatusError Status = "error"
	// StatusBlocked means the target never executed because an upstream
	// target failed, or the run was torn down before it started.
	StatusBlocked Status = "blocked"
)

// RunRecord is the durable per-target record consulted on the next run to
// decide staleness.
type RunRecord struct {
	Fingerprint Fingerprint `json:"fingerprint"`
	Status      Status      `json:"status"`
	Error       string      `json:"error,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
