package manipulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-tba-cache/cache"
	"github.com/goliatone/go-tba-cache/datastore"
	"github.com/goliatone/go-tba-cache/fanout"
	"github.com/goliatone/go-tba-cache/model"
	"github.com/goliatone/go-tba-cache/query"
	"github.com/goliatone/go-tba-cache/taskqueue"
)

// ErrNotImplemented marks a manipulator wired without a schema or resolver.
var ErrNotImplemented = errors.New("manipulator: kind is not fully implemented")

// Queue names used unless overridden with options.
const (
	CacheClearingQueue = "cache-clearing"
	PostUpdateQueue    = "post-update-hooks"
)

// UpdatedEntity is what post-update hooks receive for each written entity.
type UpdatedEntity[E model.Entity] struct {
	Entity       E
	UpdatedAttrs []string
	IsNew        bool
}

// PostUpdateHook runs after a batch was written.
type PostUpdateHook[E model.Entity] func(ctx context.Context, updated []UpdatedEntity[E]) error

// PostDeleteHook runs after a batch was deleted.
type PostDeleteHook[E model.Entity] func(ctx context.Context, deleted []E) error

// Manipulator owns merge, persistence and invalidation scheduling for kind E.
type Manipulator[E model.Entity] struct {
	schema     model.Schema[E]
	resolver   fanout.Resolver
	queue      taskqueue.Queue
	collection *datastore.Collection[E]
	caches     *cache.Registry
	logger     *slog.Logger

	cacheQueue string
	hookQueue  string

	mu         sync.RWMutex
	postUpdate []PostUpdateHook[E]
	postDelete []PostDeleteHook[E]
	clearTask  string
	updateTask string
	deleteTask string
}

// New wires a manipulator for schema and registers its task handlers on queue.
// It panics when the schema is incomplete, resolver is nil or no cache registry
// is given with WithCaches: a kind that cannot be invalidated must not be
// writable.
func New[E model.Entity](schema model.Schema[E], resolver fanout.Resolver, queue taskqueue.Queue, store datastore.Store, opts ...Option[E]) *Manipulator[E] {
	if err := schema.Validate(); err != nil {
		panic(goerrors.Wrap(errors.Join(ErrNotImplemented, err), goerrors.CategoryInternal, "manipulator: invalid schema"))
	}
	if resolver == nil {
		panic(goerrors.Wrap(ErrNotImplemented, goerrors.CategoryInternal,
			fmt.Sprintf("manipulator: %s has no cache resolver", schema.Kind)))
	}
	if queue == nil || store == nil {
		panic(fmt.Sprintf("manipulator: %s needs a task queue and a store", schema.Kind))
	}

	m := &Manipulator[E]{
		schema:     schema,
		resolver:   resolver,
		queue:      queue,
		collection: datastore.NewCollection(store, schema),
		logger:     slog.Default(),
		cacheQueue: CacheClearingQueue,
		hookQueue:  PostUpdateQueue,
		clearTask:  clearCacheTaskName(schema.Kind),
		updateTask: postUpdateTaskName(schema.Kind),
		deleteTask: postDeleteTaskName(schema.Kind),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.caches == nil {
		panic(goerrors.Wrap(ErrNotImplemented, goerrors.CategoryInternal,
			fmt.Sprintf("manipulator: %s has no cache registry", schema.Kind)))
	}
	m.logger = m.logger.With("kind", string(schema.Kind))

	queue.Register(m.clearTask, m.runClearCache)
	queue.Register(m.updateTask, m.runPostUpdate)
	queue.Register(m.deleteTask, m.runPostDelete)
	return m
}

// Kind returns the kind this manipulator writes.
func (m *Manipulator[E]) Kind() model.Kind {
	return m.schema.Kind
}

// Schema returns the schema driving merges.
func (m *Manipulator[E]) Schema() model.Schema[E] {
	return m.schema
}

// RegisterPostUpdateHook appends fn to this manipulator's post-update hooks.
func (m *Manipulator[E]) RegisterPostUpdateHook(fn PostUpdateHook[E]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postUpdate = append(m.postUpdate, fn)
}

// RegisterPostDeleteHook appends fn to this manipulator's post-delete hooks.
func (m *Manipulator[E]) RegisterPostDeleteHook(fn PostDeleteHook[E]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postDelete = append(m.postDelete, fn)
}

// CacheKeysAndQueries resolves an affected-reference map into invalidations.
func (m *Manipulator[E]) CacheKeysAndQueries(ctx context.Context, refs model.Refs) ([]query.Invalidation, error) {
	return m.resolver.CacheKeysAndQueries(ctx, refs)
}

// CreateOrUpdateOne is CreateOrUpdate for a single entity.
func (m *Manipulator[E]) CreateOrUpdateOne(ctx context.Context, e E, opts ...WriteOption) (E, error) {
	out, err := m.CreateOrUpdate(ctx, []E{e}, opts...)
	if err != nil || len(out) == 0 {
		var zero E
		return zero, err
	}
	return out[0], nil
}

// CreateOrUpdate merges entities into their stored versions, persists the ones
// that changed and schedules cache invalidation for them. It returns the merged
// entities in input order; nil inputs yield nil outputs. Entities sharing a key
// are merged in order into one result.
func (m *Manipulator[E]) CreateOrUpdate(ctx context.Context, entities []E, opts ...WriteOption) ([]E, error) {
	wo := applyWriteOptions(opts)
	out := make([]E, len(entities))

	var keys []string
	for _, e := range entities {
		if !isNil(e) {
			keys = append(keys, e.KeyName())
		}
	}
	if len(keys) == 0 {
		return out, nil
	}

	stored, err := m.collection.GetMulti(ctx, keys)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal,
			fmt.Sprintf("manipulator: read %s before merge", m.schema.Kind))
	}
	current := make(map[string]E, len(keys))
	for i, key := range keys {
		if !isNil(stored[i]) {
			if _, seen := current[key]; !seen {
				current[key] = stored[i]
			}
		}
	}

	var written []E
	for i, e := range entities {
		if isNil(e) {
			continue
		}
		key := e.KeyName()
		old, ok := current[key]
		if !ok {
			state := e.State()
			state.MarkNew()
			state.MarkDirty()
			model.CollectRefs(m.schema, e)
			current[key] = e
			out[i] = e
			written = appendOnce(written, e)
			continue
		}
		model.CollectRefs(m.schema, old, e)
		Merge(m.schema, old, e, wo.autoUnion)
		out[i] = old
		if old.State().Dirty() {
			written = appendOnce(written, old)
		}
	}

	if len(written) == 0 {
		m.logger.DebugContext(ctx, "write changed nothing", "keys", keys)
		return out, nil
	}
	refs := make([]map[string][]string, 0, len(written))
	hook := updatePayload{Entities: make([]entitySnapshot, 0, len(written))}
	for _, e := range written {
		state := e.State()
		snap, err := snapshot(e)
		if err != nil {
			return nil, err
		}
		snap.UpdatedAttrs = state.UpdatedAttrs()
		snap.IsNew = state.IsNew()
		hook.Entities = append(hook.Entities, snap)
		refs = append(refs, state.AffectedRefs().Wire())
	}

	if err := m.collection.PutMulti(ctx, written); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal,
			fmt.Sprintf("manipulator: persist %d %s entities", len(written), m.schema.Kind))
	}
	for _, e := range written {
		e.State().MarkClean()
	}
	m.logger.DebugContext(ctx, "persisted batch", "written", len(written), "keys", keys)

	if err := m.deferClearCache(ctx, refs); err != nil {
		return out, err
	}
	if wo.runHook {
		if err := m.deferTask(ctx, m.updateTask, m.hookQueue, hook); err != nil {
			return out, err
		}
	}
	return out, nil
}

// Delete removes entities and schedules invalidation of everything they were
// cached under. References are taken from the deleted instances alone.
func (m *Manipulator[E]) Delete(ctx context.Context, entities []E, opts ...WriteOption) error {
	wo := applyWriteOptions(opts)

	var (
		keys    []string
		refs    []map[string][]string
		deleted deletePayload
	)
	for _, e := range entities {
		if isNil(e) {
			continue
		}
		keys = append(keys, e.KeyName())
		refs = append(refs, model.CollectRefs(m.schema, e).Wire())
		snap, err := snapshot(e)
		if err != nil {
			return err
		}
		deleted.Entities = append(deleted.Entities, snap)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := m.collection.DeleteMulti(ctx, keys); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal,
			fmt.Sprintf("manipulator: delete %d %s entities", len(keys), m.schema.Kind))
	}
	m.logger.DebugContext(ctx, "deleted batch", "keys", keys)

	if err := m.deferClearCache(ctx, refs); err != nil {
		return err
	}
	if wo.runHook {
		return m.deferTask(ctx, m.deleteTask, m.hookQueue, deleted)
	}
	return nil
}

// DeleteKeys reads keys and deletes the entities that exist. Missing keys
// contribute nothing.
func (m *Manipulator[E]) DeleteKeys(ctx context.Context, keys []string, opts ...WriteOption) error {
	if len(keys) == 0 {
		return nil
	}
	found, err := m.collection.GetMulti(ctx, keys)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal,
			fmt.Sprintf("manipulator: read %s before delete", m.schema.Kind))
	}
	existing := make([]E, 0, len(found))
	for _, e := range found {
		if !isNil(e) {
			existing = append(existing, e)
		}
	}
	return m.Delete(ctx, existing, opts...)
}

func (m *Manipulator[E]) deferClearCache(ctx context.Context, refs []map[string][]string) error {
	return m.deferTask(ctx, m.clearTask, m.cacheQueue, clearCachePayload{Kind: string(m.schema.Kind), Refs: refs})
}

func (m *Manipulator[E]) deferTask(ctx context.Context, name, queue string, payload any) error {
	task, err := taskqueue.NewTask(name, payload, taskqueue.OnQueue(queue))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "manipulator: build task "+name)
	}
	if err := m.queue.Defer(ctx, task); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "manipulator: defer "+name)
	}
	m.logger.DebugContext(ctx, "deferred task", "task", name, "queue", queue, "fingerprint", task.FingerprintHex())
	return nil
}

func snapshot[E model.Entity](e E) (entitySnapshot, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return entitySnapshot{}, goerrors.Wrap(err, goerrors.CategoryInternal,
			fmt.Sprintf("manipulator: snapshot %s %q", e.Kind(), e.KeyName()))
	}
	return entitySnapshot{Body: body}, nil
}

func appendOnce[E model.Entity](list []E, e E) []E {
	for _, existing := range list {
		if any(existing) == any(e) {
			return list
		}
	}
	return append(list, e)
}

func isNil[E model.Entity](e E) bool {
	var zero E
	return any(e) == any(zero)
}
