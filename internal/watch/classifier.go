package watch

// IsRelevant reports whether ev plausibly changed the file at target.
//
// Content writes, renames and creations count when one of the event paths
// equals target exactly. Paths are compared by value; neither symlinks nor
// relative forms are resolved. Metadata changes, removals and unknown kinds
// never count; the recreate of a delete-then-write save arrives as its own
// create event.
func IsRelevant(ev Event, target string) bool {
	switch ev.Kind {
	case KindModifyData, KindModifyName, KindCreate:
	default:
		return false
	}

	for _, p := range ev.Paths {
		if p == target {
			return true
		}
	}

	return false
}
