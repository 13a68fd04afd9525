package common

// Merge returns a new map holding the entries of x overlaid with those of y.
// Neither input is modified.
func Merge[M ~map[K]V, K comparable, V any](x, y M) M {
	out := make(M, len(x)+len(y))
	for k, v := range x {
		out[k] = v
	}
	for k, v := range y {
		out[k] = v
	}
	return out
}
