package domain

import "errors"

var (
	// ErrProductNotFound is returned when no store knows the requested product
	ErrProductNotFound = errors.New("product not found")

	// ErrCategoryNotFound is returned when a category has no products in any store
	ErrCategoryNotFound = errors.New("category not found")

	// ErrBrandNotFound is returned when a brand has no products in any store
	ErrBrandNotFound = errors.New("brand not found")

	// ErrInvalidIdentifier is returned when a product identifier cannot be decoded
	ErrInvalidIdentifier = errors.New("invalid product identifier")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrStoreUnavailable is returned when a store query fails after any fallback
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrSearchUnavailable is returned when a store cannot run the native text search stage
	ErrSearchUnavailable = errors.New("text search stage unavailable")

	// ErrComparatifUnavailable is returned when the comparatif collection cannot be queried
	ErrComparatifUnavailable = errors.New("comparatif collection unavailable")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
