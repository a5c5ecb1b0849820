package model

import (
	"sort"
	"strconv"
)

// Refs is an affected-reference map: attribute name to the set of observed values.
// It only ever grows.
type Refs map[string]map[string]struct{}

// NewRefs returns a Refs with an empty set for each name.
func NewRefs(names ...string) Refs {
	r := make(Refs, len(names))
	for _, name := range names {
		r[name] = map[string]struct{}{}
	}
	return r
}

// RefsFromWire rebuilds Refs from the map produced by Wire.
func RefsFromWire(w map[string][]string) Refs {
	r := make(Refs, len(w))
	for name, values := range w {
		r.Add(name, values...)
	}
	return r
}

// Add records values under name. Empty strings are kept: filtering happens on read.
func (r Refs) Add(name string, values ...string) {
	set, ok := r[name]
	if !ok {
		set = map[string]struct{}{}
		r[name] = set
	}
	for _, v := range values {
		set[v] = struct{}{}
	}
}

// AddInts records integer values under name.
func (r Refs) AddInts(name string, values ...int) {
	for _, v := range values {
		r.Add(name, strconv.Itoa(v))
	}
}

// Union adds every value of other into r.
func (r Refs) Union(other Refs) {
	for name, set := range other {
		r.Add(name)
		for v := range set {
			r[name][v] = struct{}{}
		}
	}
}

// Has reports whether value was observed under name.
func (r Refs) Has(name, value string) bool {
	_, ok := r[name][value]
	return ok
}

// Values returns every raw value under name, sorted.
func (r Refs) Values(name string) []string {
	out := make([]string, 0, len(r[name]))
	for v := range r[name] {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Keys returns the non-empty values under name, sorted.
func (r Refs) Keys(name string) []string {
	out := make([]string, 0, len(r[name]))
	for v := range r[name] {
		if v != "" {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// Ints returns the non-zero integer values under name, sorted. Values that do not
// parse are treated like zero.
func (r Refs) Ints(name string) []int {
	out := make([]int, 0, len(r[name]))
	for v := range r[name] {
		n, err := strconv.Atoi(v)
		if err != nil || n == 0 {
			continue
		}
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Empty reports whether no attribute holds a value.
func (r Refs) Empty() bool {
	for _, set := range r {
		if len(set) > 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (r Refs) Clone() Refs {
	out := make(Refs, len(r))
	out.Union(r)
	return out
}

// Wire flattens the sets for encoding in task payloads.
func (r Refs) Wire() map[string][]string {
	out := make(map[string][]string, len(r))
	for name := range r {
		out[name] = r.Values(name)
	}
	return out
}
