package ports

import (
	"context"

	"github.com/aretw0/cairn/pkg/domain"
)

// RecordStore defines the interface for persisting per-target run records.
// Records survive process restarts so incremental runs stay cheap: each
// record can be loaded and saved independently of the others.
type RecordStore interface {
	// Load retrieves the record for a target.
	// Returns domain.ErrRecordNotFound if no record exists, and
	// domain.ErrRecordCorrupt (possibly wrapped) if persisted data cannot
	// be deserialized.
	Load(ctx context.Context, name string) (*domain.RunRecord, error)

	// Save persists the record for a target.
	Save(ctx context.Context, name string, record *domain.RunRecord) error

	// Delete removes the record for a target.
	Delete(ctx context.Context, name string) error

	// List returns the names of all targets with a persisted record.
	List(ctx context.Context) ([]string, error)
}

// ResultStore defines the interface for persisting computed target values.
// Durability (in-memory vs persisted) is a configuration choice; the
// contract does not mandate a specific medium.
type ResultStore interface {
	// Put stores the value produced by a target.
	Put(ctx context.Context, name string, value any) error

	// Get retrieves a stored value.
	// Returns domain.ErrResultNotFound if the target was never computed or
	// its last run errored.
	Get(ctx context.Context, name string) (any, error)

	// Delete removes a single stored value.
	Delete(ctx context.Context, name string) error

	// Clear removes all stored values. Used for cache invalidation and tests.
	Clear(ctx context.Context) error
}
