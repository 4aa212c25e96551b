package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrResultNotFound is returned when a result is read for a target that was
// never computed, or whose last run errored.
var ErrResultNotFound = errors.New("result not found")

// ErrRecordNotFound is returned when no run record exists for a target.
var ErrRecordNotFound = errors.New("run record not found")

// ErrRecordCorrupt is returned when a persisted run record cannot be
// deserialized. The scheduler treats it as a cache miss, not a fatal error.
var ErrRecordCorrupt = errors.New("run record corrupt")

// ErrRunInProgress is returned when Run is called while another run on the
// same pipeline has not finished.
var ErrRunInProgress = errors.New("run already in progress")

// DuplicateTargetError indicates a target name registered twice.
type DuplicateTargetError struct {
	Name string
}

func (e *DuplicateTargetError) Error() string {
	return fmt.Sprintf("target already registered: %s", e.Name)
}

// UnknownDependencyError indicates a target referencing a name that is not
// in the registry.
type UnknownDependencyError struct {
	Target     string
	Dependency string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("target %s depends on unknown target %s", e.Target, e.Dependency)
}

// CyclicDependencyError indicates the dependency graph is not acyclic.
// Cycle holds one witness path, closed (first element repeated last).
type CyclicDependencyError struct {
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	if len(e.Cycle) == 0 {
		return "cyclic dependency detected"
	}
	return "cyclic dependency detected: " + strings.Join(e.Cycle, " -> ")
}
