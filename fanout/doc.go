// Package fanout expands an affected-reference map into the cached queries it
// may have made stale.
//
// There is one resolver per writable kind. Each reads the filtered reference
// values (empty keys and zero numbers are dropped) and emits query.Invalidation
// values. Some kinds need secondary reads through a Lookup, for example the
// EventTeam keys at an event, to reach indirect dependents. Direct invalidations
// never depend on those reads; when a read fails the resolver returns the error
// and the deferred task is retried as a whole.
//
// DistrictUpdated composes EventUpdated for every event in the affected
// districts, because an event's cached representation embeds its district.
package fanout
