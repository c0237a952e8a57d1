package liberty

// MergeFragments combines fragments into one group under a disjoint-key
// guarantee. Characterization splits a document across files; no two files
// may define the same top-level key, so any overlap is a KEY_COLLISION
// error naming the key rather than a silent overwrite.
func MergeFragments(frags ...*Group) (*Group, error) {
	merged := NewGroup()
	for _, f := range frags {
		for _, k := range f.Keys() {
			v, _ := f.Get(k)
			if err := merged.Set(k, v); err != nil {
				return nil, err
			}
		}
	}
	return merged, nil
}
