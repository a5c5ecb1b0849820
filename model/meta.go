package model

// Meta is the in-memory write state every entity embeds. It is never persisted.
type Meta struct {
	dirty   bool
	isNew   bool
	updated []string
	refs    Refs
}

// Dirty reports whether the entity must be written.
func (m *Meta) Dirty() bool { return m.dirty }

// MarkDirty flags the entity for persistence.
func (m *Meta) MarkDirty() { m.dirty = true }

// MarkClean clears the dirty flag once the entity has been persisted.
func (m *Meta) MarkClean() { m.dirty = false }

// IsNew reports whether no stored version existed when the write started.
func (m *Meta) IsNew() bool { return m.isNew }

// MarkNew flags the entity as brand new.
func (m *Meta) MarkNew() { m.isNew = true }

// UpdatedAttrs returns the attribute names changed by merges, in order of change.
func (m *Meta) UpdatedAttrs() []string {
	return append([]string(nil), m.updated...)
}

// AddUpdated records changed attribute names, ignoring ones already recorded.
func (m *Meta) AddUpdated(names ...string) {
	for _, name := range names {
		seen := false
		for _, existing := range m.updated {
			if existing == name {
				seen = true
				break
			}
		}
		if !seen {
			m.updated = append(m.updated, name)
		}
	}
}

// AffectedRefs returns the accumulator, creating it on first use.
func (m *Meta) AffectedRefs() Refs {
	if m.refs == nil {
		m.refs = Refs{}
	}
	return m.refs
}

// Entity is implemented by every kind written through a manipulator.
type Entity interface {
	Kind() Kind
	KeyName() string
	State() *Meta
}
