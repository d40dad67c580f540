package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// StoreBackend executes queries against one retailer's collection
type StoreBackend interface {
	// Execute runs a query specification and returns the matching documents
	Execute(ctx context.Context, spec *QuerySpec) ([]RawRecord, error)

	// FindByID returns the document with the given identifier, or ErrProductNotFound
	FindByID(ctx context.Context, id string) (*RawRecord, error)

	// Facets counts the distinct non-empty values of a field (category or brand)
	Facets(ctx context.Context, field string) ([]FacetCount, error)
}

// StoreHandle binds a store descriptor to its backend
type StoreHandle struct {
	Store   Store
	Backend StoreBackend
}

// StoreRegistry exposes the configured stores. Backends are long-lived and shared
// across requests.
type StoreRegistry interface {
	Stores() []StoreHandle
}

// ComparatifRepository looks up pre-merged cross-store records
type ComparatifRepository interface {
	// FindBySlug returns the record with the given slug, or ErrProductNotFound
	FindBySlug(ctx context.Context, slug string) (*ComparatifRecord, error)
}
