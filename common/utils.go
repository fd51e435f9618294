package common

// Coalesce returns the first non-zero value, or the zero value if all are zero.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// InBounds reports whether i indexes an element of s. Indices read from a document may be negative.
//
// Parameters:
//   - s: the table
//   - i: the candidate index, possibly negative
//
// Returns:
//   - bool: true if 0 <= i < len(s)
func InBounds[T any](s []T, i int) bool {
	return i >= 0 && i < len(s)
}
