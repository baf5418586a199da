package cache

import (
	"testing"
	"time"
)

func TestSeen_Mark(t *testing.T) {
	s := NewSeen[string](10, time.Minute)

	if !s.Mark("a") {
		t.Error("first Mark should report a new key")
	}
	if s.Mark("a") {
		t.Error("second Mark should report a duplicate")
	}
	s.Forget("a")
	if !s.Mark("a") {
		t.Error("Mark after Forget should report a new key")
	}
}

func TestSeen_Expiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewSeen[int](10, time.Minute)
	s.now = func() time.Time { return now }

	s.Mark(1)
	s.Mark(2)

	now = now.Add(30 * time.Second)
	if s.Mark(1) {
		t.Error("key should still be remembered within its ttl")
	}

	now = now.Add(31 * time.Second)
	if n := s.CleanExpired(); n != 2 {
		t.Errorf("CleanExpired() = %d, want 2", n)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if !s.Mark(1) {
		t.Error("expired key should count as new")
	}
}

func TestSeen_EvictsLeastRecentlyMarked(t *testing.T) {
	s := NewSeen[int](2, time.Hour)
	s.Mark(1)
	s.Mark(2)
	s.Mark(1) // refresh 1
	s.Mark(3) // evicts 2

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if s.Mark(1) {
		t.Error("recently marked key should survive eviction")
	}
	if !s.Mark(2) {
		t.Error("least recently marked key should have been evicted")
	}
}
