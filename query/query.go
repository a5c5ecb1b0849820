package query

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/goliatone/go-tba-cache/cache"
)

// GlobalVersion is appended to every cache key.
const GlobalVersion = 3

var serializer = cache.NewDefaultKeySerializer()

// Type describes one cacheable query.
type Type struct {
	// Name is the cache key prefix, e.g. "team_year_awards".
	Name string
	// Params names the arguments, in order.
	Params []string
	// Version is bumped when the cached representation changes.
	Version int
	// Namespace selects the cache service; empty means cache.DefaultNamespace.
	Namespace string
}

func (t *Type) String() string {
	return t.Name
}

// CacheNamespace returns the namespace the query's results live in.
func (t *Type) CacheNamespace() string {
	if t.Namespace == "" {
		return cache.DefaultNamespace
	}
	return t.Namespace
}

// CacheKey renders the key for args. It panics when the argument count does not
// match Params, which is a wiring error in the caller.
func (t *Type) CacheKey(args ...any) string {
	if len(args) != len(t.Params) {
		panic(fmt.Sprintf("query: %s expects %d args, got %d", t.Name, len(t.Params), len(args)))
	}
	return serializer.SerializeKey(t.Name, args...) + ":" + strconv.Itoa(t.Version) + ":" + strconv.Itoa(GlobalVersion)
}

// Invalidate returns the Invalidation of the result for args.
func (t *Type) Invalidate(args ...any) Invalidation {
	return Invalidation{CacheKey: t.CacheKey(args...), Query: t}
}

// Invalidation pairs a cache key with the query type that produced it.
type Invalidation struct {
	CacheKey string
	Query    *Type
}

// Group deduplicates invalidations into sorted key lists per query type.
func Group(invs []Invalidation) map[*Type][]string {
	sets := make(map[*Type]map[string]struct{})
	for _, inv := range invs {
		set, ok := sets[inv.Query]
		if !ok {
			set = map[string]struct{}{}
			sets[inv.Query] = set
		}
		set[inv.CacheKey] = struct{}{}
	}
	out := make(map[*Type][]string, len(sets))
	for q, set := range sets {
		keys := make([]string, 0, len(set))
		for k := range set {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out[q] = keys
	}
	return out
}

// Keys returns the distinct cache keys of invs, sorted.
func Keys(invs []Invalidation) []string {
	set := make(map[string]struct{}, len(invs))
	for _, inv := range invs {
		set[inv.CacheKey] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Fetch reads the result of q(args...) through the namespace's cache, running
// fetch on a miss.
func Fetch[T any](ctx context.Context, caches *cache.Registry, q *Type, args []any, fetch cache.FetchFn[T]) (T, error) {
	svc, err := caches.Service(q.CacheNamespace())
	if err != nil {
		var zero T
		return zero, err
	}
	return cache.GetOrFetch(ctx, svc, q.CacheKey(args...), fetch)
}
