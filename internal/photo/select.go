package photo

import "sort"

// Earlier orders locations for report selection: earliest capture time first,
// images without a capture time after all timed ones, ties by file name.
func Earlier(a, b Location) bool {
	switch {
	case a.TakenAt != nil && b.TakenAt == nil:
		return true
	case a.TakenAt == nil && b.TakenAt != nil:
		return false
	case a.TakenAt != nil && !a.TakenAt.Equal(*b.TakenAt):
		return a.TakenAt.Before(*b.TakenAt)
	}
	return a.Image.Name < b.Image.Name
}

// Earliest returns the location a report should be built from.
// ok is false when locs is empty.
func Earliest(locs []Location) (Location, bool) {
	if len(locs) == 0 {
		return Location{}, false
	}
	sorted := make([]Location, len(locs))
	copy(sorted, locs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Earlier(sorted[i], sorted[j])
	})
	return sorted[0], true
}
