// Questlog - Game Library and Recommendation Service
// Copyright 2026 Questlog Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/questlog/questlog

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRUGetAdd(t *testing.T) {
	c := NewLRU(10, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss on empty cache")
	}

	c.Add("a", 1)
	v, ok := c.Get("a")
	if !ok {
		t.Fatal("expected hit after Add")
	}
	if v.(int) != 1 {
		t.Errorf("Get() = %v, want 1", v)
	}

	c.Add("a", 2)
	if v, _ := c.Get("a"); v.(int) != 2 {
		t.Errorf("Get() after update = %v, want 2", v)
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewLRU(3, time.Minute)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	// Touch "a" so "b" becomes the least recently used.
	c.Get("a")

	c.Add("d", 4)

	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
	if _, ok := c.Get("b"); ok {
		t.Error("expected least recently used key b to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("expected key %q to survive eviction", key)
		}
	}
}

func TestLRUExpiration(t *testing.T) {
	c := NewLRU(10, 10*time.Millisecond)

	c.Add("a", 1)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expected miss after expiry")
	}
	if c.Contains("a") {
		t.Error("Contains() = true for expired key")
	}
}

func TestLRURemove(t *testing.T) {
	c := NewLRU(10, time.Minute)

	c.Add("a", 1)
	if !c.Remove("a") {
		t.Error("Remove() = false for present key")
	}
	if c.Remove("a") {
		t.Error("Remove() = true for absent key")
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected miss after Remove")
	}
}

func TestLRUClear(t *testing.T) {
	c := NewLRU(10, time.Minute)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected miss after Clear")
	}
}

func TestLRUCleanupExpired(t *testing.T) {
	c := NewLRU(10, 10*time.Millisecond)

	c.Add("a", 1)
	c.Add("b", 2)
	time.Sleep(20 * time.Millisecond)
	c.Add("c", 3)

	if removed := c.CleanupExpired(); removed != 2 {
		t.Errorf("CleanupExpired() = %d, want 2", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRUStats(t *testing.T) {
	c := NewLRU(10, time.Minute)

	c.Add("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	hits, misses, size := c.Stats()
	if hits != 2 {
		t.Errorf("hits = %d, want 2", hits)
	}
	if misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}
	if size != 1 {
		t.Errorf("size = %d, want 1", size)
	}
}

func TestLRUDefaults(t *testing.T) {
	c := NewLRU(0, 0)
	c.Add("a", 1)
	if _, ok := c.Get("a"); !ok {
		t.Error("cache with default capacity and TTL should store entries")
	}
}

func TestLRUConcurrency(t *testing.T) {
	c := NewLRU(100, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key-%d", j%20)
				c.Add(key, n)
				c.Get(key)
				c.Contains(key)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 100 {
		t.Errorf("Len() = %d, exceeds capacity", c.Len())
	}
}
