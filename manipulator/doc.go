// Package manipulator is the single write path for cached entity kinds.
//
// A Manipulator[E] fetches the stored version of each incoming entity, merges the
// new data into it field by field according to the kind's model.Schema, writes the
// entities the merge dirtied and then defers two tasks per batch:
//
//   - a cache-clearing task carrying the affected-reference map of every dirty
//     entity. The handler resolves the maps through the kind's fanout.Resolver and
//     deletes the resulting keys from each query's cache namespace;
//   - a post-update (or post-delete) hook task carrying snapshots of the entities.
//
// Nothing is deferred unless persistence succeeded, and nothing is deferred for a
// write that changed no field. Both task handlers are safe to run more than once.
//
// Concurrent writes to the same key are last-persist-wins: two writers that read
// the same stored version each merge independently and the later put overwrites
// the earlier one.
//
// Each Manipulator owns its hook lists; registering a hook on the team manipulator
// never affects the event manipulator.
package manipulator
