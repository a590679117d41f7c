package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestSharded_SetGet(t *testing.T) {
	c := NewSharded[string, int](8, StringHasher)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() found a value in an empty cache")
	}
	c.Set("a", 1)
	c.Set("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v, want 1, true", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	// Overwrite keeps a single entry.
	c.Set("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Get(a) = %d after overwrite, want 10", v)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d after overwrite, want 2", c.Len())
	}
}

func TestSharded_EvictsLeastRecentlyUsed(t *testing.T) {
	// Keys sharing the low shard bits land in the same shard, so the
	// per-shard capacity applies to all of them.
	c := NewSharded[uint64, string](2, Uint64Hasher)
	c.Set(0, "zero")
	c.Set(16, "sixteen")
	if _, ok := c.Get(0); !ok {
		t.Fatal("Get(0) missed before eviction")
	}
	c.Set(32, "thirty-two")

	if _, ok := c.Get(16); ok {
		t.Error("least recently used entry survived eviction")
	}
	if _, ok := c.Get(0); !ok {
		t.Error("recently used entry was evicted")
	}
	if _, ok := c.Get(32); !ok {
		t.Error("new entry missing after eviction")
	}
	if evicted := c.Stats().Evictions; evicted != 1 {
		t.Errorf("Evictions = %d, want 1", evicted)
	}
}

func TestSharded_GetOrCreate(t *testing.T) {
	c := NewSharded[string, int](8, StringHasher)

	calls := 0
	create := func() int {
		calls++
		return 42
	}
	if v := c.GetOrCreate("k", create); v != 42 {
		t.Errorf("GetOrCreate() = %d, want 42", v)
	}
	if v := c.GetOrCreate("k", create); v != 42 {
		t.Errorf("GetOrCreate() = %d on hit, want 42", v)
	}
	if calls != 1 {
		t.Errorf("create ran %d times, want 1", calls)
	}
}

func TestSharded_GetOrCreateConcurrent(t *testing.T) {
	c := NewSharded[string, *[256]uint8](8, StringHasher)

	var wg sync.WaitGroup
	results := make([]*[256]uint8, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.GetOrCreate("table", func() *[256]uint8 {
				return new([256]uint8)
			})
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent GetOrCreate returned distinct values")
		}
	}
}

func TestSharded_Delete(t *testing.T) {
	c := NewSharded[string, int](8, StringHasher)
	c.Set("a", 1)
	if !c.Delete("a") {
		t.Error("Delete(a) = false for present key")
	}
	if c.Delete("a") {
		t.Error("Delete(a) = true for absent key")
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) found a deleted entry")
	}
}

func TestSharded_Clear(t *testing.T) {
	c := NewSharded[string, int](8, StringHasher)
	for i := 0; i < 20; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i)
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", c.Len())
	}
}

func TestSharded_Stats(t *testing.T) {
	c := NewSharded[string, int](8, StringHasher)
	c.Set("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("Stats = %d hits %d misses, want 2 and 1", s.Hits, s.Misses)
	}
	if want := 2.0 / 3.0; s.HitRate != want {
		t.Errorf("HitRate = %v, want %v", s.HitRate, want)
	}
	if s.Capacity != 8 || s.TotalCapacity != 8*DefaultShardCount {
		t.Errorf("Capacity = %d/%d, want 8/%d", s.Capacity, s.TotalCapacity, 8*DefaultShardCount)
	}

	c.ResetStats()
	if s := c.Stats(); s.Hits != 0 || s.Misses != 0 || s.Evictions != 0 {
		t.Errorf("Stats after reset = %+v, want zero counters", s)
	}
}

func TestSharded_DefaultCapacity(t *testing.T) {
	c := NewSharded[string, int](0, StringHasher)
	if c.Capacity() != DefaultCapacity {
		t.Errorf("Capacity() = %d, want %d", c.Capacity(), DefaultCapacity)
	}
}

func TestLRUList_Ordering(t *testing.T) {
	l := newLRUList[int]()
	n1 := l.PushFront(1)
	l.PushFront(2)
	n3 := l.PushFront(3)

	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}

	// Order is 3, 2, 1; oldest is 1.
	l.MoveToFront(n1)
	if key, ok := l.RemoveOldest(); !ok || key != 2 {
		t.Errorf("RemoveOldest() = %d, %v, want 2, true", key, ok)
	}
	l.Remove(n3)
	if key, ok := l.RemoveOldest(); !ok || key != 1 {
		t.Errorf("RemoveOldest() = %d, %v, want 1, true", key, ok)
	}
	if _, ok := l.RemoveOldest(); ok {
		t.Error("RemoveOldest() = true on empty list")
	}
}

func TestLRUList_MoveToFrontHead(t *testing.T) {
	l := newLRUList[int]()
	n := l.PushFront(1)
	l.MoveToFront(n)
	if l.Len() != 1 {
		t.Errorf("Len() = %d after moving the head, want 1", l.Len())
	}
	if key, ok := l.RemoveOldest(); !ok || key != 1 {
		t.Errorf("RemoveOldest() = %d, %v, want 1, true", key, ok)
	}
}

func TestLRUList_Clear(t *testing.T) {
	l := newLRUList[int]()
	l.PushFront(1)
	l.PushFront(2)
	l.Clear()
	if l.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", l.Len())
	}
	if _, ok := l.RemoveOldest(); ok {
		t.Error("RemoveOldest() = true after Clear")
	}
}
