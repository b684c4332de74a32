package cache

import (
	"context"
	"testing"
	"time"
)

func TestLRUCache(t *testing.T) {
	c := NewLRUCache(100)
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		if err := c.Set(ctx, "key1", []byte("value1"), time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		val, err := c.Get(ctx, "key1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(val) != "value1" {
			t.Errorf("expected 'value1', got '%s'", string(val))
		}
	})

	t.Run("GetMiss", func(t *testing.T) {
		val, err := c.Get(ctx, "nonexistent")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if val != nil {
			t.Errorf("expected nil for cache miss, got: %v", val)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		_ = c.Set(ctx, "key2", []byte("value2"), time.Minute)

		if err := c.Delete(ctx, "key2"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		val, _ := c.Get(ctx, "key2")
		if val != nil {
			t.Error("expected nil after delete")
		}
	})

	t.Run("TTLExpiration", func(t *testing.T) {
		_ = c.Set(ctx, "expiring", []byte("temp"), 10*time.Millisecond)

		val, _ := c.Get(ctx, "expiring")
		if val == nil {
			t.Error("expected value before expiration")
		}

		time.Sleep(20 * time.Millisecond)

		val, _ = c.Get(ctx, "expiring")
		if val != nil {
			t.Error("expected nil after expiration")
		}
	})

	t.Run("LRUEviction", func(t *testing.T) {
		small := NewLRUCache(3)

		_ = small.Set(ctx, "a", []byte("1"), time.Minute)
		_ = small.Set(ctx, "b", []byte("2"), time.Minute)
		_ = small.Set(ctx, "c", []byte("3"), time.Minute)

		// touch "a" so "b" becomes the oldest
		_, _ = small.Get(ctx, "a")

		_ = small.Set(ctx, "d", []byte("4"), time.Minute)

		if val, _ := small.Get(ctx, "b"); val != nil {
			t.Error("expected 'b' to be evicted")
		}
		if val, _ := small.Get(ctx, "a"); val == nil {
			t.Error("expected 'a' to survive eviction")
		}

		size, capacity := small.Stats()
		if size != 3 || capacity != 3 {
			t.Errorf("Stats = (%d, %d), want (3, 3)", size, capacity)
		}
	})

	t.Run("UpdateExisting", func(t *testing.T) {
		_ = c.Set(ctx, "key3", []byte("old"), time.Minute)
		_ = c.Set(ctx, "key3", []byte("new"), time.Minute)

		val, _ := c.Get(ctx, "key3")
		if string(val) != "new" {
			t.Errorf("expected 'new', got '%s'", string(val))
		}
	})
}

func TestNewDefaultsToMemory(t *testing.T) {
	c, err := New(Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Close()

	if _, ok := c.(*LRUCache); !ok {
		t.Errorf("zero config should yield *LRUCache, got %T", c)
	}
}

func TestNewUnsupportedType(t *testing.T) {
	if _, err := New(Config{Type: "memcached"}); err == nil {
		t.Error("expected error for unsupported cache type")
	}
}
