package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-tba-cache/model"
)

// documentNamespace seeds the deterministic document and index row IDs.
var documentNamespace = uuid.MustParse("5b1c9a52-3f0e-4d6b-9a51-2f1f6f0c7a10")

// DocumentRecord is the bun model of a stored entity.
type DocumentRecord struct {
	bun.BaseModel `bun:"table:tba_documents,alias:d"`

	ID        uuid.UUID       `bun:"id,pk,type:uuid"`
	Kind      string          `bun:"kind,notnull"`
	Key       string          `bun:"key,notnull"`
	Body      json.RawMessage `bun:"body,type:jsonb"`
	UpdatedAt time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// IndexRecord is one secondary index entry of a stored entity.
type IndexRecord struct {
	bun.BaseModel `bun:"table:tba_document_index,alias:i"`

	ID         uuid.UUID `bun:"id,pk,type:uuid"`
	DocumentID uuid.UUID `bun:"document_id,type:uuid,notnull"`
	Kind       string    `bun:"kind,notnull"`
	Key        string    `bun:"key,notnull"`
	Field      string    `bun:"field,notnull"`
	Value      string    `bun:"value,notnull"`
}

// DocumentID returns the deterministic primary key of a document.
func DocumentID(kind model.Kind, key string) uuid.UUID {
	return uuid.NewSHA1(documentNamespace, []byte(string(kind)+"/"+key))
}

func indexID(doc uuid.UUID, field, value string) uuid.UUID {
	return uuid.NewSHA1(doc, []byte(field+"="+value))
}

// DocumentRepository is the subset of repository.Repository[*DocumentRecord] the
// store uses.
type DocumentRepository interface {
	List(ctx context.Context, criteria ...repository.SelectCriteria) ([]*DocumentRecord, int, error)
	UpsertManyTx(ctx context.Context, tx bun.IDB, records []*DocumentRecord, criteria ...repository.UpdateCriteria) ([]*DocumentRecord, error)
	DeleteWhereTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error
}

// IndexRepository is the subset of repository.Repository[*IndexRecord] the store uses.
type IndexRepository interface {
	List(ctx context.Context, criteria ...repository.SelectCriteria) ([]*IndexRecord, int, error)
	CreateManyTx(ctx context.Context, tx bun.IDB, records []*IndexRecord, criteria ...repository.InsertCriteria) ([]*IndexRecord, error)
	DeleteWhereTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error
}

// TxRunner runs fn inside a transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context, tx bun.IDB) error) error

// BunTx returns a TxRunner backed by db.RunInTx.
func BunTx(db *bun.DB) TxRunner {
	return func(ctx context.Context, fn func(ctx context.Context, tx bun.IDB) error) error {
		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			return fn(ctx, tx)
		})
	}
}

// RepositoryStore is a Store persisted through go-repository-bun repositories.
type RepositoryStore struct {
	docs  DocumentRepository
	index IndexRepository
	tx    TxRunner
}

// NewRepositoryStore wires the document and index repositories.
func NewRepositoryStore(docs DocumentRepository, index IndexRepository, tx TxRunner) *RepositoryStore {
	return &RepositoryStore{docs: docs, index: index, tx: tx}
}

// NewBunStore builds a RepositoryStore on db using the default repositories.
func NewBunStore(db *bun.DB) *RepositoryStore {
	docs := repository.NewRepository[*DocumentRecord](db, repository.ModelHandlers[*DocumentRecord]{
		NewRecord:     func() *DocumentRecord { return &DocumentRecord{} },
		GetID:         func(r *DocumentRecord) uuid.UUID { return r.ID },
		SetID:         func(r *DocumentRecord, id uuid.UUID) { r.ID = id },
		GetIdentifier: func() string { return "key" },
	})
	index := repository.NewRepository[*IndexRecord](db, repository.ModelHandlers[*IndexRecord]{
		NewRecord:     func() *IndexRecord { return &IndexRecord{} },
		GetID:         func(r *IndexRecord) uuid.UUID { return r.ID },
		SetID:         func(r *IndexRecord, id uuid.UUID) { r.ID = id },
		GetIdentifier: func() string { return "id" },
	})
	return NewRepositoryStore(docs, index, BunTx(db))
}

func (s *RepositoryStore) GetMulti(ctx context.Context, kind model.Kind, keys []string) ([]*Document, error) {
	out := make([]*Document, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, len(keys))
	for i, key := range keys {
		ids[i] = DocumentID(kind, key)
	}
	records, _, err := s.docs.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("id IN (?)", bun.In(ids))
	})
	if err != nil {
		return nil, fmt.Errorf("datastore: get %s: %w", kind, err)
	}
	byKey := make(map[string]*DocumentRecord, len(records))
	for _, r := range records {
		byKey[r.Key] = r
	}
	for i, key := range keys {
		if r, ok := byKey[key]; ok {
			out[i] = &Document{Kind: model.Kind(r.Kind), Key: r.Key, Body: []byte(r.Body)}
		}
	}
	return out, nil
}

func (s *RepositoryStore) PutMulti(ctx context.Context, docs []*Document) error {
	if len(docs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	records := make([]*DocumentRecord, 0, len(docs))
	ids := make([]uuid.UUID, 0, len(docs))
	var rows []*IndexRecord
	for _, doc := range docs {
		id := DocumentID(doc.Kind, doc.Key)
		ids = append(ids, id)
		records = append(records, &DocumentRecord{
			ID:        id,
			Kind:      string(doc.Kind),
			Key:       doc.Key,
			Body:      json.RawMessage(doc.Body),
			UpdatedAt: now,
		})
		for field, values := range doc.Index {
			for _, value := range values {
				rows = append(rows, &IndexRecord{
					ID:         indexID(id, field, value),
					DocumentID: id,
					Kind:       string(doc.Kind),
					Key:        doc.Key,
					Field:      field,
					Value:      value,
				})
			}
		}
	}

	return s.tx(ctx, func(ctx context.Context, tx bun.IDB) error {
		if _, err := s.docs.UpsertManyTx(ctx, tx, records); err != nil {
			return fmt.Errorf("datastore: upsert documents: %w", err)
		}
		if err := s.index.DeleteWhereTx(ctx, tx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
			return q.Where("document_id IN (?)", bun.In(ids))
		}); err != nil {
			return fmt.Errorf("datastore: clear index: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := s.index.CreateManyTx(ctx, tx, rows); err != nil {
			return fmt.Errorf("datastore: write index: %w", err)
		}
		return nil
	})
}

func (s *RepositoryStore) DeleteMulti(ctx context.Context, kind model.Kind, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(keys))
	for i, key := range keys {
		ids[i] = DocumentID(kind, key)
	}
	return s.tx(ctx, func(ctx context.Context, tx bun.IDB) error {
		if err := s.index.DeleteWhereTx(ctx, tx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
			return q.Where("document_id IN (?)", bun.In(ids))
		}); err != nil {
			return fmt.Errorf("datastore: clear index: %w", err)
		}
		if err := s.docs.DeleteWhereTx(ctx, tx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
			return q.Where("id IN (?)", bun.In(ids))
		}); err != nil {
			return fmt.Errorf("datastore: delete %s: %w", kind, err)
		}
		return nil
	})
}

func (s *RepositoryStore) QueryKeys(ctx context.Context, kind model.Kind, field string, values []string) ([]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	rows, _, err := s.index.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Where("kind = ?", string(kind)).
			Where("field = ?", field).
			Where("value IN (?)", bun.In(values)).
			Order("key ASC")
	})
	if err != nil {
		return nil, fmt.Errorf("datastore: query %s.%s: %w", kind, field, err)
	}
	keys := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.Key]; ok {
			continue
		}
		seen[r.Key] = struct{}{}
		keys = append(keys, r.Key)
	}
	return keys, nil
}

// CreateSchema creates the document and index tables when they do not exist.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	for _, m := range []any{(*DocumentRecord)(nil), (*IndexRecord)(nil)} {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("datastore: create table: %w", err)
		}
	}
	_, err := db.NewCreateIndex().
		Model((*IndexRecord)(nil)).
		Index("tba_document_index_lookup_idx").
		IfNotExists().
		Column("kind", "field", "value").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("datastore: create index: %w", err)
	}
	return nil
}
