package testsupport

import (
	"context"
	"reflect"
	"sort"
	"sync"
)

// RecordingCache is an in-memory cache.CacheService that records deletions.
type RecordingCache struct {
	mu      sync.Mutex
	values  map[string]any
	deleted []string
	fetches int
	err     error
}

// NewRecordingCache returns an empty cache.
func NewRecordingCache() *RecordingCache {
	return &RecordingCache{values: map[string]any{}}
}

// Set stores value under key.
func (c *RecordingCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Has reports whether key is cached.
func (c *RecordingCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	return ok
}

// FailWith makes every later call return err. A nil err clears it.
func (c *RecordingCache) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Deleted returns every key passed to Delete or DeleteMulti, sorted.
func (c *RecordingCache) Deleted() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := append([]string(nil), c.deleted...)
	sort.Strings(out)
	return out
}

// Fetches counts the fetch functions GetOrFetch had to run.
func (c *RecordingCache) Fetches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}

// Reset forgets recorded deletions and fetches.
func (c *RecordingCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = nil
	c.fetches = 0
}

// GetOrFetch returns the cached value or runs fetchFn, which must have the
// shape func(context.Context) (T, error).
func (c *RecordingCache) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return nil, err
	}
	if v, ok := c.values[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.fetches++
	c.mu.Unlock()

	out := reflect.ValueOf(fetchFn).Call([]reflect.Value{reflect.ValueOf(ctx)})
	if errVal := out[1].Interface(); errVal != nil {
		return nil, errVal.(error)
	}
	value := out[0].Interface()
	c.Set(key, value)
	return value, nil
}

// Delete removes key.
func (c *RecordingCache) Delete(ctx context.Context, key string) error {
	return c.DeleteMulti(ctx, []string{key})
}

// DeleteMulti removes keys. Absent keys are not an error.
func (c *RecordingCache) DeleteMulti(_ context.Context, keys []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	for _, k := range keys {
		delete(c.values, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}
