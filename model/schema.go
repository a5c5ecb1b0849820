package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"time"
)

// Policy selects how a field is merged.
type Policy int

const (
	Mutable Policy = iota
	AllowNone
	List
	JSON
	AutoUnion
)

func (p Policy) String() string {
	switch p {
	case Mutable:
		return "mutable"
	case AllowNone:
		return "allow_none"
	case List:
		return "list"
	case JSON:
		return "json"
	case AutoUnion:
		return "auto_union"
	default:
		return "policy(" + strconv.Itoa(int(p)) + ")"
	}
}

// Field is one mergeable attribute of E.
type Field[E any] struct {
	Name   string
	Policy Policy
	merge  func(old, new E, autoUnion bool) bool
}

// Merge applies new's value onto old and reports whether old changed.
func (f Field[E]) Merge(old, new E, autoUnion bool) bool {
	return f.merge(old, new, autoUnion)
}

// Value declares a Mutable attribute whose zero value means absent.
func Value[E any, V comparable](name string, ref func(E) *V) Field[E] {
	return Field[E]{
		Name:   name,
		Policy: Mutable,
		merge: func(old, new E, _ bool) bool {
			var zero V
			o, n := ref(old), ref(new)
			if *n == zero || *o == *n {
				return false
			}
			*o = *n
			return true
		},
	}
}

// Optional declares a Mutable attribute held behind a pointer; nil means absent
// and never overwrites.
func Optional[E any, V comparable](name string, ref func(E) **V) Field[E] {
	return Field[E]{
		Name:   name,
		Policy: Mutable,
		merge: func(old, new E, _ bool) bool {
			o, n := ref(old), ref(new)
			if *n == nil {
				return false
			}
			return setPtr(o, *n)
		},
	}
}

// Nullable declares an AllowNone attribute: a nil new value clears the old one.
func Nullable[E any, V comparable](name string, ref func(E) **V) Field[E] {
	return Field[E]{
		Name:   name,
		Policy: AllowNone,
		merge: func(old, new E, _ bool) bool {
			o, n := ref(old), ref(new)
			if *n == nil {
				if *o == nil {
					return false
				}
				*o = nil
				return true
			}
			return setPtr(o, *n)
		},
	}
}

// OptionalTime is Optional for timestamps, compared with time.Time.Equal so a
// round trip through storage does not read as a change.
func OptionalTime[E any](name string, ref func(E) **time.Time) Field[E] {
	return Field[E]{
		Name:   name,
		Policy: Mutable,
		merge: func(old, new E, _ bool) bool {
			o, n := ref(old), ref(new)
			if *n == nil {
				return false
			}
			if *o != nil && (*o).Equal(**n) {
				return false
			}
			v := **n
			*o = &v
			return true
		},
	}
}

func setPtr[V comparable](dst **V, src *V) bool {
	if *dst != nil && **dst == *src {
		return false
	}
	v := *src
	*dst = &v
	return true
}

// ListOf declares a List attribute. An empty new list leaves the old one alone
// while union mode is on.
func ListOf[E any, V comparable](name string, ref func(E) *[]V) Field[E] {
	return Field[E]{
		Name:   name,
		Policy: List,
		merge: func(old, new E, autoUnion bool) bool {
			o, n := ref(old), ref(new)
			if len(*n) == 0 && autoUnion {
				return false
			}
			if slices.Equal(*o, *n) {
				return false
			}
			*o = slices.Clone(*n)
			if *o == nil {
				*o = []V{}
			}
			return true
		},
	}
}

// UnionOf declares an AutoUnion attribute. With union on the result keeps the old
// order and appends unseen new values; with union off the new list replaces the old
// one verbatim, as a List attribute does.
func UnionOf[E any, V comparable](name string, ref func(E) *[]V) Field[E] {
	return Field[E]{
		Name:   name,
		Policy: AutoUnion,
		merge: func(old, new E, autoUnion bool) bool {
			o, n := ref(old), ref(new)
			merged := slices.Clone(*n)
			if autoUnion {
				merged = dedupe(append(slices.Clone(*o), *n...))
			}
			if slices.Equal(*o, merged) {
				return false
			}
			if merged == nil {
				merged = []V{}
			}
			*o = merged
			return true
		},
	}
}

func dedupe[V comparable](values []V) []V {
	if values == nil {
		return nil
	}
	seen := make(map[V]struct{}, len(values))
	out := make([]V, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// JSONText declares a JSON attribute holding a serialized document. The new text
// replaces the old one only when the decoded documents differ; drop is then called
// on old to discard any deserialization cached on the entity.
func JSONText[E any](name string, ref func(E) **string, drop func(E)) Field[E] {
	return Field[E]{
		Name:   name,
		Policy: JSON,
		merge: func(old, new E, _ bool) bool {
			o, n := ref(old), ref(new)
			if *n == nil {
				return false
			}
			if *o != nil && sameJSON(**o, **n) {
				return false
			}
			v := **n
			*o = &v
			if drop != nil {
				drop(old)
			}
			return true
		},
	}
}

func sameJSON(a, b string) bool {
	var left, right any
	if err := json.Unmarshal([]byte(a), &left); err != nil {
		return a == b
	}
	if err := json.Unmarshal([]byte(b), &right); err != nil {
		return false
	}
	return reflect.DeepEqual(left, right)
}

// Attr extracts the string values of one attribute, used for affected references
// and secondary indexes.
type Attr[E any] struct {
	Name   string
	Values func(E) []string
}

// StringAttr reads a single string attribute.
func StringAttr[E any](name string, get func(E) string) Attr[E] {
	return Attr[E]{Name: name, Values: func(e E) []string { return []string{get(e)} }}
}

// OptionalStringAttr reads a pointer attribute; nil reads as the empty string.
func OptionalStringAttr[E any](name string, get func(E) *string) Attr[E] {
	return Attr[E]{Name: name, Values: func(e E) []string {
		if v := get(e); v != nil {
			return []string{*v}
		}
		return []string{""}
	}}
}

// StringsAttr reads a list attribute.
func StringsAttr[E any](name string, get func(E) []string) Attr[E] {
	return Attr[E]{Name: name, Values: func(e E) []string { return slices.Clone(get(e)) }}
}

// IntAttr reads a single integer attribute.
func IntAttr[E any](name string, get func(E) int) Attr[E] {
	return Attr[E]{Name: name, Values: func(e E) []string { return []string{strconv.Itoa(get(e))} }}
}

// OptionalIntAttr reads a pointer integer attribute; nil reads as 0.
func OptionalIntAttr[E any](name string, get func(E) *int) Attr[E] {
	return Attr[E]{Name: name, Values: func(e E) []string {
		if v := get(e); v != nil {
			return []string{strconv.Itoa(*v)}
		}
		return []string{"0"}
	}}
}

// IntsAttr reads an integer list attribute.
func IntsAttr[E any](name string, get func(E) []int) Attr[E] {
	return Attr[E]{Name: name, Values: func(e E) []string {
		values := get(e)
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = strconv.Itoa(v)
		}
		return out
	}}
}

// Schema describes how one entity kind is merged, indexed and fanned out.
type Schema[E Entity] struct {
	Kind Kind
	New  func() E

	// Fields are merged in declaration order.
	Fields []Field[E]

	// References are collected from old and new versions on every write.
	References []Attr[E]

	// Indexes are stored alongside the entity for secondary lookups.
	Indexes []Attr[E]
}

// ErrIncompleteSchema is returned by Validate for a schema that cannot drive a
// manipulator.
var ErrIncompleteSchema = errors.New("model: incomplete schema")

// Validate checks the schema is wired completely.
func (s Schema[E]) Validate() error {
	if s.Kind == "" {
		return fmt.Errorf("%w: missing kind", ErrIncompleteSchema)
	}
	if s.New == nil {
		return fmt.Errorf("%w: %s has no constructor", ErrIncompleteSchema, s.Kind)
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: %s declares no mergeable fields", ErrIncompleteSchema, s.Kind)
	}
	if len(s.References) == 0 {
		return fmt.Errorf("%w: %s declares no affected references", ErrIncompleteSchema, s.Kind)
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if f.merge == nil {
			return fmt.Errorf("%w: %s.%s has no merge rule", ErrIncompleteSchema, s.Kind, f.Name)
		}
		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("%w: %s.%s declared twice", ErrIncompleteSchema, s.Kind, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// FieldNames returns the names of the fields using policy p.
func (s Schema[E]) FieldNames(p Policy) []string {
	var out []string
	for _, f := range s.Fields {
		if f.Policy == p {
			out = append(out, f.Name)
		}
	}
	return out
}

// ReferenceNames returns the declared affected-reference attribute names.
func (s Schema[E]) ReferenceNames() []string {
	out := make([]string, len(s.References))
	for i, a := range s.References {
		out[i] = a.Name
	}
	return out
}

// IndexValues returns the secondary index entries of e.
func (s Schema[E]) IndexValues(e E) map[string][]string {
	if len(s.Indexes) == 0 {
		return nil
	}
	out := make(map[string][]string, len(s.Indexes))
	for _, idx := range s.Indexes {
		var values []string
		for _, v := range idx.Values(e) {
			if v != "" && v != "0" {
				values = append(values, v)
			}
		}
		out[idx.Name] = values
	}
	return out
}

// CollectRefs accumulates the declared reference values of every version into the
// first entity's accumulator and returns it. The accumulator is never narrowed.
func CollectRefs[E Entity](s Schema[E], target E, others ...E) Refs {
	refs := target.State().AffectedRefs()
	for _, attr := range s.References {
		refs.Add(attr.Name, attr.Values(target)...)
		for _, other := range others {
			refs.Add(attr.Name, attr.Values(other)...)
		}
	}
	return refs
}
