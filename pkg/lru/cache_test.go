package lru

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/jmurray2011/lexicon/pkg/linked"
)

type item struct {
	key string
	val int
}

func itemKey(i item) string { return i.key }

func newCache(t testing.TB, capacity int, opts ...Option[item]) *Cache[string, item] {
	t.Helper()
	c, err := New(capacity, itemKey, opts...)
	if err != nil {
		t.Fatalf("New(%d) error = %v", capacity, err)
	}
	return c
}

func insertAll(t testing.TB, c *Cache[string, item], keys ...string) {
	t.Helper()
	for i, k := range keys {
		if err := c.Insert(item{key: k, val: i}); err != nil {
			t.Fatalf("Insert(%q) error = %v", k, err)
		}
	}
}

func TestNew(t *testing.T) {
	cache := newCache(t, 100)
	if cache.Cap() != 100 {
		t.Errorf("Cap() = %d, want 100", cache.Cap())
	}
	if cache.Len() != 0 {
		t.Errorf("initial Len() = %d, want 0", cache.Len())
	}
}

func TestNew_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		t.Run(fmt.Sprint(capacity), func(t *testing.T) {
			c, err := New(capacity, itemKey)
			if !errors.Is(err, ErrInvalidCapacity) {
				t.Errorf("New(%d) error = %v, want ErrInvalidCapacity", capacity, err)
			}
			if c != nil {
				t.Errorf("New(%d) returned non-nil cache", capacity)
			}
		})
	}
}

func TestCache_Insert(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		adds     []string
		wantKeys []string
	}{
		{
			name:     "add within capacity",
			capacity: 5,
			adds:     []string{"a", "b", "c"},
			wantKeys: []string{"c", "b", "a"},
		},
		{
			name:     "add up to capacity",
			capacity: 3,
			adds:     []string{"a", "b", "c"},
			wantKeys: []string{"c", "b", "a"},
		},
		{
			name:     "add exceeds capacity",
			capacity: 3,
			adds:     []string{"a", "b", "c", "d", "e"},
			wantKeys: []string{"e", "d", "c"},
		},
		{
			name:     "single capacity",
			capacity: 1,
			adds:     []string{"a", "b"},
			wantKeys: []string{"b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := newCache(t, tt.capacity)
			insertAll(t, cache, tt.adds...)
			if got := cache.Keys(); !slices.Equal(got, tt.wantKeys) {
				t.Errorf("Keys() = %v, want %v", got, tt.wantKeys)
			}
			if cache.Len() != len(tt.wantKeys) {
				t.Errorf("Len() = %d, want %d", cache.Len(), len(tt.wantKeys))
			}
		})
	}
}

func TestCache_CapacityInvariant(t *testing.T) {
	for capacity := 1; capacity <= 4; capacity++ {
		cache := newCache(t, capacity)
		for i := 0; i < 10; i++ {
			insertAll(t, cache, fmt.Sprintf("k%d", i))
			if cache.Len() > capacity {
				t.Fatalf("capacity %d: Len() = %d after %d inserts", capacity, cache.Len(), i+1)
			}
			if cache.Len() != len(cache.Keys()) {
				t.Fatalf("Len() = %d but %d keys resident", cache.Len(), len(cache.Keys()))
			}
		}
	}
}

func TestCache_EvictionOrder(t *testing.T) {
	var evicted []string
	cache := newCache(t, 3, WithOnEvict(func(i item) { evicted = append(evicted, i.key) }))

	insertAll(t, cache, "a", "b", "c", "d")

	if cache.Contains("a") {
		t.Error("'a' should have been evicted")
	}
	if !slices.Equal(evicted, []string{"a"}) {
		t.Errorf("evicted = %v, want [a]", evicted)
	}

	insertAll(t, cache, "e")
	if !slices.Equal(evicted, []string{"a", "b"}) {
		t.Errorf("evicted = %v, want [a b]", evicted)
	}
}

func TestCache_FindPromotes(t *testing.T) {
	cache := newCache(t, 3)
	insertAll(t, cache, "a", "b", "c")

	got, err := cache.Find("a")
	if err != nil {
		t.Fatalf("Find(a) error = %v", err)
	}
	if got.key != "a" || got.val != 0 {
		t.Errorf("Find(a) = %+v, want {a 0}", got)
	}
	if want := []string{"a", "c", "b"}; !slices.Equal(cache.Keys(), want) {
		t.Errorf("Keys() = %v, want %v", cache.Keys(), want)
	}
	if cache.Len() != 3 {
		t.Errorf("Len() = %d, want 3", cache.Len())
	}

	// "b" is now least recently touched
	insertAll(t, cache, "d")
	if cache.Contains("b") {
		t.Error("'b' should have been evicted after 'a' was promoted")
	}
	if !cache.Contains("a") {
		t.Error("'a' should survive eviction after promotion")
	}
}

func TestCache_FindHeadIsStable(t *testing.T) {
	cache := newCache(t, 2)
	insertAll(t, cache, "a", "b")

	if _, err := cache.Find("b"); err != nil {
		t.Fatalf("Find(b) error = %v", err)
	}
	if want := []string{"b", "a"}; !slices.Equal(cache.Keys(), want) {
		t.Errorf("Keys() = %v, want %v", cache.Keys(), want)
	}
}

func TestCache_FindMissing(t *testing.T) {
	cache := newCache(t, 2)
	insertAll(t, cache, "a", "b")

	_, err := cache.Find("z")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Find(z) error = %v, want ErrNotFound", err)
	}
	if want := []string{"b", "a"}; !slices.Equal(cache.Keys(), want) {
		t.Errorf("Keys() = %v, want %v (miss must not reorder)", cache.Keys(), want)
	}
}

func TestCache_Validator(t *testing.T) {
	errNegative := errors.New("negative")
	cache := newCache(t, 2, WithValidator(func(i item) error {
		if i.val < 0 {
			return errNegative
		}
		return nil
	}))

	err := cache.Insert(item{key: "bad", val: -1})
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Insert() error = %v, want ErrInvalidValue", err)
	}
	if !errors.Is(err, errNegative) {
		t.Errorf("Insert() error = %v, want wrapped validator error", err)
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after rejected insert", cache.Len())
	}
}

func TestCache_ContainsDoesNotPromote(t *testing.T) {
	cache := newCache(t, 2)
	insertAll(t, cache, "a", "b")

	if !cache.Contains("a") {
		t.Fatal("Contains(a) = false, want true")
	}
	if want := []string{"b", "a"}; !slices.Equal(cache.Keys(), want) {
		t.Errorf("Keys() = %v, want %v", cache.Keys(), want)
	}
}

func TestCache_RemoveTailInvariant(t *testing.T) {
	cache := newCache(t, 1)
	insertAll(t, cache, "a")

	// Force the broken state the public API never produces
	err := cache.removeTail()
	if !errors.Is(err, linked.ErrInvariant) {
		t.Errorf("removeTail() error = %v, want ErrInvariant", err)
	}
}

func BenchmarkCache_Insert(b *testing.B) {
	cache := newCache(b, 64)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cache.Insert(item{key: fmt.Sprintf("key%d", i), val: i})
	}
}

func BenchmarkCache_Find(b *testing.B) {
	cache := newCache(b, 64)
	for i := 0; i < 64; i++ {
		_ = cache.Insert(item{key: fmt.Sprintf("key%d", i), val: i})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = cache.Find(fmt.Sprintf("key%d", i%64))
	}
}
