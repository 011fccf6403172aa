package cache

import (
	"context"
	"testing"
	"time"
)

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[uint64, string](2, 0)
	c.Set(1, "one")
	c.Set(2, "two")
	if _, ok := c.Get(1); !ok {
		t.Fatal("expected hit for key 1")
	}
	c.Set(3, "three")

	if _, ok := c.Get(2); ok {
		t.Fatal("key 2 should have been evicted")
	}
	if v, ok := c.Get(1); !ok || v != "one" {
		t.Fatalf("key 1 = %q, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d, want 2", c.Size())
	}
}

func TestLRUCacheTTL(t *testing.T) {
	c := NewLRUCache[string, int](10, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	c.Set("b", 2)
	now = now.Add(2 * time.Minute)
	c.Set("c", 3)

	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("CleanExpired() = %d, want 2", n)
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("fresh entry should survive")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("c"); ok {
		t.Fatal("expired entry should miss")
	}
}

func TestGetOrComputeRunsOncePerKey(t *testing.T) {
	c := NewLRUCache[uint64, int](4, 0)
	calls := 0
	compute := func() int { calls++; return 42 }

	for i := 0; i < 3; i++ {
		if v := c.GetOrCompute(7, compute); v != 42 {
			t.Fatalf("value = %d", v)
		}
	}
	if calls != 1 {
		t.Fatalf("compute ran %d times, want 1", calls)
	}
	st := c.Stats()
	if st.Hits != 2 || st.Misses != 1 || st.Size != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}

	c.Delete(7)
	c.GetOrCompute(7, compute)
	if calls != 2 {
		t.Fatalf("compute should rerun after delete, calls=%d", calls)
	}
}

func TestManagerSweepAndStop(t *testing.T) {
	c := NewLRUCache[string, int](4, time.Millisecond)
	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set("x", 1)
	now = now.Add(time.Second)

	m := NewManager(nil)
	m.Register(c)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("Sweep() = %d, want 1", n)
	}

	m.Start(context.Background(), time.Hour)
	m.Stop()
	m.Stop()
}
