package port

import (
	"context"

	"docchat/internal/domain"
)

// DocumentStore mediates between the in-process cache and durable storage.
// owner is the opaque scoping identifier; "" selects the legacy/global scope.
type DocumentStore interface {
	// Put caches the document synchronously and persists it best-effort.
	Put(ctx context.Context, doc domain.Document, owner string) error

	// Get returns domain.ErrNotFound when the document is unknown.
	Get(ctx context.Context, id, owner string) (domain.Document, error)

	// ListIDs enumerates known document ids for the scope.
	ListIDs(ctx context.Context, owner string) ([]string, error)

	// ListDocs returns manifest entries for a scoped owner.
	ListDocs(ctx context.Context, owner string) ([]domain.DocInfo, error)

	Delete(ctx context.Context, id, owner string) error
}
