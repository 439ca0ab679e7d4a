package calinga

import "sort"

// DiffResult lists the keys that differ between two translation maps.
// All key slices are sorted.
type DiffResult struct {
	Added     []string // Keys only in the new map
	Removed   []string // Keys only in the old map
	Changed   []string // Keys in both maps with different values
	Unchanged []string // Keys in both maps with equal values
}

// DiffStats contains summary statistics for a diff.
type DiffStats struct {
	Added     int
	Removed   int
	Changed   int
	Unchanged int
}

// Stats returns summary statistics for the diff.
func (d *DiffResult) Stats() DiffStats {
	return DiffStats{
		Added:     len(d.Added),
		Removed:   len(d.Removed),
		Changed:   len(d.Changed),
		Unchanged: len(d.Unchanged),
	}
}

// HasChanges returns true if there are any differences.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Changed) > 0
}

// DiffTranslations compares two translation maps key by key.
func DiffTranslations(oldMap, newMap TranslationMap) *DiffResult {
	result := &DiffResult{}

	for key, oldValue := range oldMap {
		newValue, exists := newMap[key]
		switch {
		case !exists:
			result.Removed = append(result.Removed, key)
		case newValue != oldValue:
			result.Changed = append(result.Changed, key)
		default:
			result.Unchanged = append(result.Unchanged, key)
		}
	}

	for key := range newMap {
		if _, exists := oldMap[key]; !exists {
			result.Added = append(result.Added, key)
		}
	}

	sort.Strings(result.Added)
	sort.Strings(result.Removed)
	sort.Strings(result.Changed)
	sort.Strings(result.Unchanged)

	return result
}
