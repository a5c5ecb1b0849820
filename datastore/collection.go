package datastore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-tba-cache/model"
)

// Collection is a typed view of one kind in a Store.
type Collection[E model.Entity] struct {
	store  Store
	schema model.Schema[E]
}

// NewCollection binds schema to store.
func NewCollection[E model.Entity](store Store, schema model.Schema[E]) *Collection[E] {
	return &Collection[E]{store: store, schema: schema}
}

// Kind returns the kind the collection stores.
func (c *Collection[E]) Kind() model.Kind {
	return c.schema.Kind
}

// GetMulti fetches keys in order; missing entries are the zero E.
func (c *Collection[E]) GetMulti(ctx context.Context, keys []string) ([]E, error) {
	out := make([]E, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	docs, err := c.store.GetMulti(ctx, c.schema.Kind, keys)
	if err != nil {
		return nil, err
	}
	for i, doc := range docs {
		if doc == nil {
			continue
		}
		e, err := c.decode(doc)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// Get fetches a single entity or returns ErrNotFound.
func (c *Collection[E]) Get(ctx context.Context, key string) (E, error) {
	var zero E
	found, err := c.GetMulti(ctx, []string{key})
	if err != nil {
		return zero, err
	}
	if isNil(found[0]) {
		return zero, fmt.Errorf("%w: %s %q", ErrNotFound, c.schema.Kind, key)
	}
	return found[0], nil
}

// PutMulti encodes and writes entities.
func (c *Collection[E]) PutMulti(ctx context.Context, entities []E) error {
	if len(entities) == 0 {
		return nil
	}
	docs := make([]*Document, 0, len(entities))
	for _, e := range entities {
		body, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("datastore: encode %s %q: %w", c.schema.Kind, e.KeyName(), err)
		}
		docs = append(docs, &Document{
			Kind:  c.schema.Kind,
			Key:   e.KeyName(),
			Body:  body,
			Index: c.schema.IndexValues(e),
		})
	}
	return c.store.PutMulti(ctx, docs)
}

// DeleteMulti removes keys.
func (c *Collection[E]) DeleteMulti(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.store.DeleteMulti(ctx, c.schema.Kind, keys)
}

// QueryKeys returns the keys whose index field holds any of values.
func (c *Collection[E]) QueryKeys(ctx context.Context, field string, values []string) ([]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	return c.store.QueryKeys(ctx, c.schema.Kind, field, values)
}

func (c *Collection[E]) decode(doc *Document) (E, error) {
	e := c.schema.New()
	if err := json.Unmarshal(doc.Body, e); err != nil {
		var zero E
		return zero, fmt.Errorf("datastore: decode %s %q: %w", doc.Kind, doc.Key, err)
	}
	return e, nil
}

// Decode turns a stored document body into an entity of schema's kind.
func Decode[E model.Entity](schema model.Schema[E], doc *Document) (E, error) {
	return (&Collection[E]{schema: schema}).decode(doc)
}

func isNil[E model.Entity](e E) bool {
	var zero E
	return any(e) == any(zero)
}
