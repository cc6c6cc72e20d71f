// Package tagset implements the append-or-replace merge used to update the
// mutable tag overlay on a stored object. The store has no partial-tag-update
// primitive, so callers read the full tag set, merge, and write the whole set
// back. That read-modify-write is not transactional: concurrent writers to the
// same object race and the last full write wins.
package tagset

// Tag is a single key/value update. Updates are ordered so that duplicate keys
// apply last-wins.
type Tag struct {
	Key   string
	Value string
}

// Merge applies updates to existing and returns the merged set. The input map
// is not mutated. Keys absent from updates are preserved untouched; keys
// present in both are replaced; new keys are appended. Updates are applied
// sequentially, so a duplicated key takes its last value.
func Merge(existing map[string]string, updates []Tag) map[string]string {
	merged := make(map[string]string, len(existing)+len(updates))
	for k, v := range existing {
		merged[k] = v
	}
	for _, t := range updates {
		merged[t.Key] = t.Value
	}
	return merged
}
