package manipulator

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-tba-cache/datastore"
	"github.com/goliatone/go-tba-cache/model"
	"github.com/goliatone/go-tba-cache/query"
	"github.com/goliatone/go-tba-cache/taskqueue"
)

type clearCachePayload struct {
	Kind string                `json:"kind"`
	Refs []map[string][]string `json:"refs"`
}

type entitySnapshot struct {
	Body         []byte   `json:"body"`
	UpdatedAttrs []string `json:"updated_attrs,omitempty"`
	IsNew        bool     `json:"is_new,omitempty"`
}

type updatePayload struct {
	Entities []entitySnapshot `json:"entities"`
}

type deletePayload struct {
	Entities []entitySnapshot `json:"entities"`
}

// runClearCache resolves every reference map of the batch and deletes the
// resulting keys, one DeleteMulti per query type.
func (m *Manipulator[E]) runClearCache(ctx context.Context, task taskqueue.Task) error {
	var payload clearCachePayload
	if err := task.Decode(&payload); err != nil {
		return goerrors.WrapRetryable(err, goerrors.CategoryBadInput, "manipulator: clear cache payload").WithRetryable(false)
	}

	var invs []query.Invalidation
	for _, wire := range payload.Refs {
		found, err := m.resolver.CacheKeysAndQueries(ctx, model.RefsFromWire(wire))
		if err != nil {
			return err
		}
		invs = append(invs, found...)
	}

	for q, keys := range query.Group(invs) {
		if err := m.caches.DeleteMulti(ctx, q.CacheNamespace(), keys); err != nil {
			return goerrors.WrapRetryable(err, goerrors.CategoryExternal,
				fmt.Sprintf("manipulator: clear %s keys", q.Name))
		}
	}
	m.logger.DebugContext(ctx, "cleared cache", "task", task.ID, "attempt", task.Attempt, "keys", len(query.Keys(invs)))
	return nil
}

func (m *Manipulator[E]) runPostUpdate(ctx context.Context, task taskqueue.Task) error {
	var payload updatePayload
	if err := task.Decode(&payload); err != nil {
		return goerrors.WrapRetryable(err, goerrors.CategoryBadInput, "manipulator: post update payload").WithRetryable(false)
	}
	m.mu.RLock()
	hooks := append([]PostUpdateHook[E](nil), m.postUpdate...)
	m.mu.RUnlock()
	if len(hooks) == 0 {
		return nil
	}

	updated := make([]UpdatedEntity[E], 0, len(payload.Entities))
	for _, snap := range payload.Entities {
		e, err := m.decode(snap)
		if err != nil {
			return err
		}
		updated = append(updated, UpdatedEntity[E]{Entity: e, UpdatedAttrs: snap.UpdatedAttrs, IsNew: snap.IsNew})
	}
	for _, hook := range hooks {
		if err := hook(ctx, updated); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manipulator[E]) runPostDelete(ctx context.Context, task taskqueue.Task) error {
	var payload deletePayload
	if err := task.Decode(&payload); err != nil {
		return goerrors.WrapRetryable(err, goerrors.CategoryBadInput, "manipulator: post delete payload").WithRetryable(false)
	}
	m.mu.RLock()
	hooks := append([]PostDeleteHook[E](nil), m.postDelete...)
	m.mu.RUnlock()
	if len(hooks) == 0 {
		return nil
	}

	deleted := make([]E, 0, len(payload.Entities))
	for _, snap := range payload.Entities {
		e, err := m.decode(snap)
		if err != nil {
			return err
		}
		deleted = append(deleted, e)
	}
	for _, hook := range hooks {
		if err := hook(ctx, deleted); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manipulator[E]) decode(snap entitySnapshot) (E, error) {
	e, err := datastore.Decode(m.schema, &datastore.Document{Kind: m.schema.Kind, Body: snap.Body})
	if err != nil {
		var zero E
		return zero, goerrors.WrapRetryable(err, goerrors.CategoryBadInput, "manipulator: hook snapshot").WithRetryable(false)
	}
	return e, nil
}
