package vars

// FirstNonZero picks the first value that is not the zero value of T.
// Settings resolve flag > config file > default by listing them in that order.
func FirstNonZero[T comparable](values ...T) T {
	var zero T
	for _, value := range values {
		if value != zero {
			return value
		}
	}
	return zero
}
