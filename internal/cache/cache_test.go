package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestCache_ExpiresAfterTTL(t *testing.T) {
	clock := &fakeClock{t: time.UnixMilli(1_700_000_000_000)}
	c := NewWithClock[string](30*time.Second, clock.now)

	c.Set("k", "v")

	clock.advance(29999 * time.Millisecond)
	if got, ok := c.Get("k"); !ok || got != "v" {
		t.Fatalf("Get at 29999ms = (%q, %v), want (v, true)", got, ok)
	}

	clock.advance(2 * time.Millisecond)
	if got, ok := c.Get("k"); ok {
		t.Fatalf("Get at 30001ms = (%q, %v), want absent", got, ok)
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after expired read, want 0 (lazy purge)", c.Len())
	}
}

func TestCache_ReadDoesNotRenew(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	c := NewWithClock[int](10*time.Second, clock.now)
	c.Set("k", 1)

	for i := 0; i < 9; i++ {
		clock.advance(time.Second)
		if _, ok := c.Get("k"); !ok {
			t.Fatalf("entry missing after %ds", i+1)
		}
	}
	clock.advance(1500 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry still present after ttl despite reads; expiry must not slide")
	}
}

func TestCache_SetOverwrites(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	c := NewWithClock[int](time.Minute, clock.now)
	c.Set("k", 1)
	clock.advance(50 * time.Second)
	c.Set("k", 2)
	clock.advance(50 * time.Second)

	got, ok := c.Get("k")
	if !ok || got != 2 {
		t.Fatalf("Get = (%d, %v), want (2, true)", got, ok)
	}
}

func TestCache_Invalidate(t *testing.T) {
	c := New[string](time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("a should be invalidated")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatal("b should survive single-key invalidation")
	}

	c.Invalidate()
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after full invalidation, want 0", c.Len())
	}
}

func TestCache_DefaultTTL(t *testing.T) {
	c := New[int](0)
	if c.TTL() != DefaultTTL {
		t.Fatalf("TTL() = %s, want %s", c.TTL(), DefaultTTL)
	}
}
