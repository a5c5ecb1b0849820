package cache

import (
	"context"
	"errors"
)

// ErrInvalidResultType is returned by GetOrFetch when the cached value does not
// hold the requested type.
var ErrInvalidResultType = errors.New("cache: cached value has unexpected type")

// KeySerializer builds a cache key from a query name + its arguments.
// It is responsible for producing stable keys across calls and processes.
type KeySerializer interface {
	SerializeKey(name string, args ...any) string
}

// FetchFn is the function signature CacheService expects when fetching from the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// CacheService is the cached query result store. Results are populated read-through
// with GetOrFetch and removed by the invalidation pipeline with Delete/DeleteMulti.
// Deleting an absent key is not an error.
type CacheService interface {
	GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error)
	Delete(ctx context.Context, key string) error
	DeleteMulti(ctx context.Context, keys []string) error
}

// GetOrFetch is a type-safe wrapper function that provides generic support for CacheService.
func GetOrFetch[T any](ctx context.Context, service CacheService, key string, fetchFn FetchFn[T]) (T, error) {
	var zero T
	result, err := service.GetOrFetch(ctx, key, fetchFn)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, ErrInvalidResultType
	}
	return typed, nil
}
