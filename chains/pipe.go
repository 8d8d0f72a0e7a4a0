package chains

// Pipe composes steps in the calling goroutine. Calling the result blocks until every step returns.
func Pipe[T any](steps ...func(T) T) func(T) T {
	return func(x T) T {
		for _, step := range steps {
			x = step(x)
		}
		return x
	}
}
