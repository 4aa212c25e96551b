/*
Package domain contains the core domain models for the Cairn engine.

It defines the fundamental entities of the pipeline runner, such as Targets,
Fingerprints, RunRecords and RunReports. This package is kept pure and free
of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Target: a named, cacheable computation step with declared dependencies.
  - Fingerprint: deterministic hash detecting staleness across runs.
  - RunRecord: the durable per-target record (fingerprint, status).
  - RunReport: per-run listing of every target with a terminal status.
*/
package domain
