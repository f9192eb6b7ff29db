package engine

// seriesStore keeps a bounded, append-only history per entity key. Series are
// created lazily on first append and never deleted; once a series exceeds
// maxLen the oldest samples are evicted front-first.
type seriesStore[T any] struct {
	maxLen int
	series map[string][]T
}

func newSeriesStore[T any](maxLen int) *seriesStore[T] {
	if maxLen <= 0 {
		maxLen = defaultStoreMaxLen
	}
	return &seriesStore[T]{
		maxLen: maxLen,
		series: make(map[string][]T),
	}
}

// Append inserts item at the end of the series for key, evicting from the
// front while the bound is exceeded.
func (s *seriesStore[T]) Append(key string, item T) {
	arr := append(s.series[key], item)
	if len(arr) > s.maxLen {
		// shift down in place so the backing array stays bounded
		n := copy(arr, arr[len(arr)-s.maxLen:])
		arr = arr[:n]
	}
	s.series[key] = arr
}

// Recent returns a copy of the last min(n, len) items in arrival order.
// Unknown keys yield an empty slice.
func (s *seriesStore[T]) Recent(key string, n int) []T {
	arr := s.series[key]
	if n > len(arr) {
		n = len(arr)
	}
	if n <= 0 {
		return []T{}
	}
	out := make([]T, n)
	copy(out, arr[len(arr)-n:])
	return out
}

// Len reports how many samples key currently holds.
func (s *seriesStore[T]) Len(key string) int {
	return len(s.series[key])
}

// All returns a deep copy of every series, keyed by entity.
func (s *seriesStore[T]) All() map[string][]T {
	out := make(map[string][]T, len(s.series))
	for key, arr := range s.series {
		cp := make([]T, len(arr))
		copy(cp, arr)
		out[key] = cp
	}
	return out
}
