package ports

import (
	"context"

	"github.com/aretw0/cairn/pkg/domain"
)

// TargetSource defines how target declarations are obtained.
// This decouples the pipeline from its declaration medium (Go code, a YAML
// manifest, tests).
type TargetSource interface {
	// Load returns the declared targets in declaration order.
	Load(ctx context.Context) ([]domain.Target, error)
}
