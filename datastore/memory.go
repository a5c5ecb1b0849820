package datastore

import (
	"context"
	"sort"

	"github.com/goliatone/go-tba-cache/model"
	"github.com/puzpuzpuz/xsync/v3"
)

type documentID struct {
	kind model.Kind
	key  string
}

// MemoryStore is an in-process Store. Documents are copied on the way in and out
// so callers never share mutable state with the store.
type MemoryStore struct {
	docs *xsync.MapOf[documentID, *Document]
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: xsync.NewMapOf[documentID, *Document]()}
}

func (s *MemoryStore) GetMulti(ctx context.Context, kind model.Kind, keys []string) ([]*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]*Document, len(keys))
	for i, key := range keys {
		if doc, ok := s.docs.Load(documentID{kind: kind, key: key}); ok {
			out[i] = doc.Clone()
		}
	}
	return out, nil
}

func (s *MemoryStore) PutMulti(ctx context.Context, docs []*Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, doc := range docs {
		s.docs.Store(documentID{kind: doc.Kind, key: doc.Key}, doc.Clone())
	}
	return nil
}

func (s *MemoryStore) DeleteMulti(ctx context.Context, kind model.Kind, keys []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, key := range keys {
		s.docs.Delete(documentID{kind: kind, key: key})
	}
	return nil
}

func (s *MemoryStore) QueryKeys(ctx context.Context, kind model.Kind, field string, values []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want := make(map[string]struct{}, len(values))
	for _, v := range values {
		want[v] = struct{}{}
	}
	var keys []string
	s.docs.Range(func(id documentID, doc *Document) bool {
		if id.kind != kind {
			return true
		}
		for _, v := range doc.Index[field] {
			if _, ok := want[v]; ok {
				keys = append(keys, id.key)
				break
			}
		}
		return true
	})
	sort.Strings(keys)
	return keys, nil
}

// Len returns the number of stored documents.
func (s *MemoryStore) Len() int {
	return s.docs.Size()
}
