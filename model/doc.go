// Package model defines the entity kinds written through the manipulators and the
// declarative schema that drives merging and cache fan-out.
//
// # Overview
//
// Every entity kind is a plain struct with JSON tags plus an embedded Meta value
// that carries in-memory write state:
//
//   - dirty flag: the persisted copy is stale and must be written
//   - new flag: no stored version existed when the write started
//   - updated attrs: names of the attributes a merge changed
//   - affected references: the accumulator consumed by cache fan-out
//
// None of the Meta state is serialized.
//
// # Schemas
//
// A Schema[E] lists the kind's attributes and the merge policy for each one:
//
//	var TeamSchema = Schema[*Team]{
//		Kind: KindTeam,
//		New:  func() *Team { return &Team{} },
//		Fields: []Field[*Team]{
//			Optional("nickname", func(t *Team) **string { return &t.Nickname }),
//			Nullable("website", func(t *Team) **string { return &t.Website }),
//		},
//		References: []Attr[*Team]{
//			StringAttr("key", func(t *Team) string { return t.Key }),
//		},
//	}
//
// The policies are:
//
//   - Mutable: new value overwrites unless absent (nil pointer or zero value)
//   - AllowNone: new value always overwrites, nil included
//   - List: replaced wholesale when the new list is non-empty or union is off
//   - JSON: replaced when the decoded documents differ; derived state is dropped
//   - AutoUnion: set union of old and new when union is on, replaced when off
//
// # Affected references
//
// Refs maps a reference attribute name to the set of values observed on the old and
// new versions of an entity. Values are stored as strings; integer references (years,
// enums) are formatted in base 10 and read back with Refs.Ints, which drops zero.
package model
