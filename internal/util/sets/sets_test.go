package sets

import "testing"

func TestSet(t *testing.T) {
	s := New("b", "a")
	s.Add("c")
	if !s.Has("a") || !s.Has("c") || s.Has("d") {
		t.Fatalf("unexpected membership: %v", s)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 elements, got %d", s.Len())
	}
	got := Sorted(s)
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Fatalf("unexpected order: %v", got)
	}
	var empty Set[string]
	if empty.Has("a") {
		t.Fatal("nil set must be empty")
	}
}
