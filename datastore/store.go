package datastore

import (
	"context"
	"errors"
	"slices"

	"github.com/goliatone/go-tba-cache/model"
)

// ErrNotFound is returned by single-entity reads of a missing key.
var ErrNotFound = errors.New("datastore: entity not found")

// Document is the stored form of one entity.
type Document struct {
	Kind  model.Kind
	Key   string
	Body  []byte
	Index map[string][]string
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Kind:  d.Kind,
		Key:   d.Key,
		Body:  slices.Clone(d.Body),
		Index: make(map[string][]string, len(d.Index)),
	}
	for field, values := range d.Index {
		out.Index[field] = slices.Clone(values)
	}
	return out
}

// Store is the get/put/delete/query primitive set the write path consumes.
type Store interface {
	// GetMulti returns one entry per key, in order, with nil for missing keys.
	GetMulti(ctx context.Context, kind model.Kind, keys []string) ([]*Document, error)
	// PutMulti writes every document or returns an error.
	PutMulti(ctx context.Context, docs []*Document) error
	// DeleteMulti removes keys; missing keys are not an error.
	DeleteMulti(ctx context.Context, kind model.Kind, keys []string) error
	// QueryKeys returns the keys of kind whose index field holds any of values.
	QueryKeys(ctx context.Context, kind model.Kind, field string, values []string) ([]string, error)
}
