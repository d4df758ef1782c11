package utils

// All reports whether every element of slice is true.
func All(slice []bool) bool {
	for _, v := range slice {
		if !v {
			return false
		}
	}
	return true
}

// Clone2D deep-copies a slice of slices.
func Clone2D[T any](src [][]T) [][]T {
	dst := make([][]T, len(src))
	for i, row := range src {
		dst[i] = make([]T, len(row))
		copy(dst[i], row)
	}
	return dst
}
