package manipulator

import (
	"log/slog"

	"github.com/goliatone/go-tba-cache/cache"
	"github.com/goliatone/go-tba-cache/model"
)

// Option configures a Manipulator at construction.
type Option[E model.Entity] func(*Manipulator[E])

// WithLogger sets the logger. A nil logger keeps slog.Default().
func WithLogger[E model.Entity](logger *slog.Logger) Option[E] {
	return func(m *Manipulator[E]) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithCaches sets the cache registry invalidations are applied to.
func WithCaches[E model.Entity](caches *cache.Registry) Option[E] {
	return func(m *Manipulator[E]) { m.caches = caches }
}

// WithQueues overrides the cache-clearing and hook queue names.
func WithQueues[E model.Entity](cacheQueue, hookQueue string) Option[E] {
	return func(m *Manipulator[E]) {
		if cacheQueue != "" {
			m.cacheQueue = cacheQueue
		}
		if hookQueue != "" {
			m.hookQueue = hookQueue
		}
	}
}

// WithPostUpdateHook registers fn at construction.
func WithPostUpdateHook[E model.Entity](fn PostUpdateHook[E]) Option[E] {
	return func(m *Manipulator[E]) { m.postUpdate = append(m.postUpdate, fn) }
}

// WithPostDeleteHook registers fn at construction.
func WithPostDeleteHook[E model.Entity](fn PostDeleteHook[E]) Option[E] {
	return func(m *Manipulator[E]) { m.postDelete = append(m.postDelete, fn) }
}

// WriteOption tunes a single CreateOrUpdate or Delete call.
type WriteOption func(*writeOptions)

type writeOptions struct {
	autoUnion bool
	runHook   bool
}

func applyWriteOptions(opts []WriteOption) writeOptions {
	wo := writeOptions{autoUnion: true, runHook: true}
	for _, opt := range opts {
		opt(&wo)
	}
	return wo
}

// AutoUnion toggles set-union merging of union and list fields. It is on by default.
func AutoUnion(enabled bool) WriteOption {
	return func(wo *writeOptions) { wo.autoUnion = enabled }
}

// RunHooks toggles deferring the post-update or post-delete hook task. It is on
// by default.
func RunHooks(enabled bool) WriteOption {
	return func(wo *writeOptions) { wo.runHook = enabled }
}
