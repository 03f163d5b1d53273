// v0
// internal/model/ring_test.go
package model

import "testing"

func TestRingNeverExceedsCapacity(t *testing.T) {
	r := NewRing[int](1000)
	for i := 0; i < 1500; i++ {
		r.Append(i)
	}
	if r.Len() != 1000 {
		t.Fatalf("expected len 1000 after 1500 appends, got %d", r.Len())
	}
	items := r.Items()
	if items[0] != 500 {
		t.Fatalf("expected oldest surviving entry 500, got %d", items[0])
	}
	if items[len(items)-1] != 1499 {
		t.Fatalf("expected newest entry 1499, got %d", items[len(items)-1])
	}
}

func TestRingOrderBeforeWrap(t *testing.T) {
	r := NewRing[string](4)
	r.Append("a")
	r.Append("b")
	if r.Len() != 2 {
		t.Fatalf("expected len 2, got %d", r.Len())
	}
	items := r.Items()
	if items[0] != "a" || items[1] != "b" {
		t.Fatalf("unexpected order: %v", items)
	}
	latest, ok := r.Latest()
	if !ok || latest != "b" {
		t.Fatalf("expected latest b, got %q ok=%v", latest, ok)
	}
}

func TestRingLatestEmpty(t *testing.T) {
	r := NewRing[int](3)
	if _, ok := r.Latest(); ok {
		t.Fatal("expected no latest on empty ring")
	}
}
