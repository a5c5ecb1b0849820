// Package query is the registry of cacheable queries and their cache-key scheme.
//
// Every cacheable query is a *Type: a name, an argument list and a version. A
// Type renders a deterministic cache key for a concrete argument list:
//
//	query.TeamYearAwards.CacheKey("frc254", 2024) // "team_year_awards_frc254_2024:1:3"
//
// The suffix carries the query version and GlobalVersion so a deploy can orphan
// every existing entry by bumping either number.
//
// The fan-out resolvers produce Invalidation values through Type.Invalidate; Group
// folds a list of them into deduplicated key sets per Type, ready for DeleteMulti on
// the Type's cache namespace. Fetch is the read-through counterpart used by
// request handlers, populating exactly the keys the resolvers delete.
package query
