package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// DefaultNamespace is the namespace query types use unless they declare one.
const DefaultNamespace = "cached_query"

// Registry routes cache operations to the CacheService of a namespace.
type Registry struct {
	mu       sync.RWMutex
	services map[string]CacheService
	fallback CacheService
}

// NewRegistry creates a registry whose unknown namespaces resolve to fallback.
// A nil fallback makes unknown namespaces an error.
func NewRegistry(fallback CacheService) *Registry {
	return &Registry{services: map[string]CacheService{}, fallback: fallback}
}

// Register binds namespace to service.
func (r *Registry) Register(namespace string, service CacheService) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[namespace] = service
}

// Service returns the service bound to namespace.
func (r *Registry) Service(namespace string) (CacheService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if svc, ok := r.services[namespace]; ok {
		return svc, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("cache: no service registered for namespace %q", namespace)
}

// Namespaces lists the explicitly registered namespaces.
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.services))
	for ns := range r.services {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// DeleteMulti removes keys from namespace.
func (r *Registry) DeleteMulti(ctx context.Context, namespace string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	svc, err := r.Service(namespace)
	if err != nil {
		return err
	}
	return svc.DeleteMulti(ctx, keys)
}
