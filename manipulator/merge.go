package manipulator

import "github.com/goliatone/go-tba-cache/model"

// Merge folds new into old using the field policies of schema and returns the
// names of the fields that changed. A non-empty result marks old dirty and
// records the names as updated attributes. The result depends only on old, new
// and autoUnion, and applying the same new twice changes nothing the second time.
func Merge[E model.Entity](schema model.Schema[E], old, new E, autoUnion bool) []string {
	var updated []string
	for _, f := range schema.Fields {
		if f.Merge(old, new, autoUnion) {
			updated = append(updated, f.Name)
		}
	}
	if len(updated) > 0 {
		state := old.State()
		state.MarkDirty()
		state.AddUpdated(updated...)
	}
	return updated
}
