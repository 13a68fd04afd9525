// Package common holds small generic helpers shared by the other packages.
package common

// Unique returns the elements of s with duplicates removed, keeping the
// position of each first occurrence.
func Unique[S ~[]E, E comparable](s S) S {
	if s == nil {
		return nil
	}
	seen := make(map[E]struct{}, len(s))
	out := make(S, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// IsEmpty returns true if the slice is empty.
func IsEmpty[S ~[]E, E any](s S) bool {
	return len(s) == 0
}
