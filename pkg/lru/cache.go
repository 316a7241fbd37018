// Package lru provides a fixed-capacity recency cache built on a linked list.
package lru

import (
	"errors"
	"fmt"

	"github.com/jmurray2011/lexicon/pkg/linked"
)

var (
	// ErrInvalidCapacity is returned by New when capacity is less than 1.
	ErrInvalidCapacity = errors.New("capacity should be at least 1")

	// ErrNotFound is returned by Find when no entry has the key.
	ErrNotFound = errors.New("key not found in cache")

	// ErrInvalidValue wraps a validator failure on Insert.
	ErrInvalidValue = errors.New("invalid cache value")
)

// Option configures a Cache.
type Option[V comparable] func(*options[V])

type options[V comparable] struct {
	validate func(V) error
	onEvict  func(V)
}

// WithValidator rejects values for which fn returns an error.
func WithValidator[V comparable](fn func(V) error) Option[V] {
	return func(o *options[V]) {
		o.validate = fn
	}
}

// WithOnEvict registers fn to be called with every evicted value.
func WithOnEvict[V comparable](fn func(V)) Option[V] {
	return func(o *options[V]) {
		o.onEvict = fn
	}
}

// Cache keeps at most capacity values, ordered from most recently
// touched (head) to least recently touched (tail). Inserting beyond
// capacity evicts the tail; a successful Find moves the entry to the head.
//
// Cache is not safe for concurrent use.
type Cache[K comparable, V comparable] struct {
	capacity int
	count    int
	key      func(V) K
	order    *linked.List[V] // head = newest, tail = oldest
	opts     options[V]
}

// New creates a cache holding at most capacity values. key extracts the
// lookup key from a value.
func New[K comparable, V comparable](capacity int, key func(V) K, opts ...Option[V]) (*Cache[K, V], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	c := &Cache[K, V]{
		capacity: capacity,
		key:      key,
		order:    linked.New[V](),
	}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return c, nil
}

// Insert adds v at the head. If the cache is then over capacity, the
// least recently touched entry is evicted.
func (c *Cache[K, V]) Insert(v V) error {
	if c.opts.validate != nil {
		if err := c.opts.validate(v); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
	}

	c.order.AddToHead(v)
	c.count++
	if c.count > c.capacity {
		return c.removeTail()
	}
	return nil
}

// removeTail evicts the last node. It walks to the second-to-last node
// and unlinks its successor, so the list must hold at least two nodes.
func (c *Cache[K, V]) removeTail() error {
	cur := c.order.Cursor()
	for n, ok := cur.Next(); ok; n, ok = cur.Next() {
		if n.Next() == nil {
			// Only one node: Insert never calls us in that state
			return fmt.Errorf("%w: eviction with %d resident entries", linked.ErrInvariant, c.count)
		}
		if n.Next().Next() != nil {
			continue
		}
		evicted, err := c.order.RemoveAfter(n)
		if err != nil {
			return err
		}
		c.count--
		if c.opts.onEvict != nil {
			c.opts.onEvict(evicted)
		}
		return nil
	}
	return fmt.Errorf("%w: eviction on empty cache", linked.ErrInvariant)
}

// Find returns the value stored under k and promotes it to the head.
func (c *Cache[K, V]) Find(k K) (V, error) {
	cur := c.order.Cursor()
	for n, ok := cur.Next(); ok; n, ok = cur.Next() {
		v := n.Value()
		if c.key(v) != k {
			continue
		}
		if err := c.order.Remove(v); err != nil {
			var zero V
			return zero, fmt.Errorf("%w: promoting %v: %w", linked.ErrInvariant, k, err)
		}
		c.order.AddToHead(v)
		return v, nil
	}

	var zero V
	return zero, fmt.Errorf("%w: %v", ErrNotFound, k)
}

// Contains reports whether k is resident without changing its recency.
func (c *Cache[K, V]) Contains(k K) bool {
	for v := range c.order.All() {
		if c.key(v) == k {
			return true
		}
	}
	return false
}

// Keys returns resident keys from most to least recently touched.
func (c *Cache[K, V]) Keys() []K {
	keys := make([]K, 0, c.count)
	for v := range c.order.All() {
		keys = append(keys, c.key(v))
	}
	return keys
}

// Len returns the current number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	return c.count
}

// Cap returns the configured capacity.
func (c *Cache[K, V]) Cap() int {
	return c.capacity
}
