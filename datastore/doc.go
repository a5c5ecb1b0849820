// Package datastore is the storage collaborator of the write path.
//
// Store is an untyped keyed document store with batch get, put and delete plus a
// keys-only secondary index query. Reads through Store always hit committed state;
// there is no read-through cache at this layer.
//
// Collection[E] layers a model.Schema on top of a Store: it encodes entities to JSON
// document bodies, extracts their secondary index values, and decodes fetched
// documents into fresh entity values.
//
// Two Store implementations are provided:
//
//   - MemoryStore keeps documents in process; it backs tests and local runs.
//   - RepositoryStore persists documents and index rows through go-repository-bun
//     repositories, one for documents and one for index entries.
package datastore
