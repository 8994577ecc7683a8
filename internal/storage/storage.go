package storage

import (
	"context"

	"github.com/dev-tams/sweepkit/internal/storage/object"
)

// ObjectStore is the backend capability the sweep pipeline consumes.
// List enumerates every object under prefix; pagination is handled inside
// the implementation. Delete removes exactly one object by key.
type ObjectStore interface {
	Name() string
	List(ctx context.Context, prefix string) ([]object.Info, error)
	Delete(ctx context.Context, key string) error
}
