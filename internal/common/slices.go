package common

// IsEmpty reports whether s has no elements. A nil slice is empty.
func IsEmpty[S ~[]E, E any](s S) bool { return len(s) == 0 }

// IsSingle reports whether s holds exactly one element, as for a scalar
// written where a list is also accepted.
func IsSingle[S ~[]E, E any](s S) bool { return len(s) == 1 }

// First returns s[0]. ok is false for an empty s.
func First[S ~[]E, E any](s S) (first E, ok bool) {
	if len(s) > 0 {
		first, ok = s[0], true
	}

	return first, ok
}
