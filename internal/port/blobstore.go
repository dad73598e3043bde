package port

import "context"

// BlobStore is the durable key-value object collaborator. Keys are flat
// strings; owner scoping is done by the caller through key prefixes.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error

	// Get returns domain.ErrNotFound for unknown keys.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns all keys starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	Delete(ctx context.Context, key string) error

	Close() error
}
