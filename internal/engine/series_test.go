package engine

import "testing"

func TestSeriesAppendAndRecent(t *testing.T) {
	s := newSeriesStore[int](10)
	for i := 1; i <= 4; i++ {
		s.Append("k", i)
	}

	got := s.Recent("k", 3)
	want := []int{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("recent mismatch at %d: got %v want %v", i, got, want)
		}
	}
}

func TestSeriesEvictionKeepsNewestContent(t *testing.T) {
	s := newSeriesStore[int](5)
	for i := 1; i <= 8; i++ {
		s.Append("k", i)
	}

	if s.Len("k") != 5 {
		t.Fatalf("series should be bounded to 5, got %d", s.Len("k"))
	}

	got := s.Recent("k", 5)
	for i, want := range []int{4, 5, 6, 7, 8} {
		if got[i] != want {
			t.Fatalf("eviction should drop the oldest first: got %v", got)
		}
	}
}

func TestSeriesUnknownKey(t *testing.T) {
	s := newSeriesStore[int](5)
	if got := s.Recent("missing", 10); len(got) != 0 {
		t.Fatalf("unknown key should yield empty slice, got %v", got)
	}
	if s.Len("missing") != 0 {
		t.Fatal("unknown key should have zero length")
	}
}

func TestSeriesRecentClampsToLength(t *testing.T) {
	s := newSeriesStore[int](5)
	s.Append("k", 1)
	s.Append("k", 2)
	if got := s.Recent("k", 100); len(got) != 2 {
		t.Fatalf("recent should clamp to stored length, got %d", len(got))
	}
}

func TestSeriesAllIsDeepCopy(t *testing.T) {
	s := newSeriesStore[int](5)
	s.Append("k", 1)

	all := s.All()
	all["k"][0] = 99
	if got := s.Recent("k", 1)[0]; got != 1 {
		t.Fatalf("mutating the copy must not touch the store, got %d", got)
	}
}
