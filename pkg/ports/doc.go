/*
Package ports defines the driven ports (interfaces) for the Cairn engine.

These interfaces decouple the core scheduler from external implementations,
allowing the engine to work with various storage backends and declaration
sources.

# Key Interfaces

  - RecordStore: persists per-target run records (fingerprint + status).
  - ResultStore: persists computed target values.
  - TargetSource: supplies target declarations (Go code, YAML manifest).
  - RunLocker: coordinates runs over shared state across processes.
*/
package ports
