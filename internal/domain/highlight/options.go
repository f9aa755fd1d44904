package highlight

// Option applies a configuration option to a Set.
type Option func(*orderedSet)

// WithCapacity presizes the set's index.
func WithCapacity(n int) Option {
	return func(s *orderedSet) {
		if n > 0 {
			s.capacity = n
		}
	}
}
