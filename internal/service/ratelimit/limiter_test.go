package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterBurstAndRefill(t *testing.T) {
	l := New(2, 3)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("a") {
			t.Fatalf("request %d within burst rejected", i)
		}
	}
	if l.Allow("a") {
		t.Fatalf("expected burst exhausted")
	}
	if !l.Allow("b") {
		t.Fatalf("keys must be independent")
	}

	now = now.Add(500 * time.Millisecond)
	if !l.Allow("a") {
		t.Fatalf("expected one token after 500ms at 2 rps")
	}
	if l.Allow("a") {
		t.Fatalf("expected bucket empty again")
	}
}

func TestLimiterPrune(t *testing.T) {
	l := New(1, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.Allow("old")
	now = now.Add(time.Hour)
	l.Allow("new")

	if n := l.Prune(time.Minute); n != 1 {
		t.Fatalf("pruned %d buckets, want 1", n)
	}
}
