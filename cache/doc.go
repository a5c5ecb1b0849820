// Package cache provides the cached query result store used by the read path and
// cleared by the write path.
//
// # Overview
//
// This package exports:
//
//   - CacheService: read-through GetOrFetch plus Delete and DeleteMulti
//   - KeySerializer: builds stable cache keys from query names and arguments
//   - Registry: routes operations to the CacheService of a namespace
//   - Config / NewCacheService: selects the sturdyc (in-process) or Redis backend
//
// # Basic Usage
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig(), nil)
//	if err != nil {
//		return err
//	}
//	key := cache.NewDefaultKeySerializer().SerializeKey("team_awards", "frc254")
//	awards, err := cache.GetOrFetch(ctx, svc, key, func(ctx context.Context) ([]Award, error) {
//		return loadAwards(ctx, "frc254")
//	})
//
// Population only happens through GetOrFetch. The invalidation pipeline never
// writes cache contents; it only deletes, and deleting an absent key is a no-op,
// which makes repeated invalidation safe.
//
// # Key Serialization
//
// The default serializer renders strings, integers, booleans and slices of those
// as plain text joined by KeySeparator. Keys are therefore stable across processes,
// a requirement for the Redis backend where the invalidating worker is not the
// process that populated the entry.
//
// # Backends
//
// BackendMemory wraps sturdyc. BackendRedis stores JSON-encoded results under
// RedisKeyPrefix; decoding uses the fetch function's result type.
package cache
