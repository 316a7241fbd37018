// Package linked provides a singly linked list with head insertion,
// predecessor-based removal and independent cursors for traversal.
package linked

import (
	"errors"
	"iter"
)

var (
	// ErrNotFound is returned by Remove when no node holds the value.
	ErrNotFound = errors.New("value not found in list")

	// ErrInvariant reports a structural inconsistency, such as removing
	// the successor of a node that has none.
	ErrInvariant = errors.New("list invariant violated")
)

// Node holds one value and a link to the next node in the list.
type Node[T comparable] struct {
	value T
	next  *Node[T]
}

// Value returns the value stored in the node.
func (n *Node[T]) Value() T { return n.value }

// Next returns the following node, or nil at the tail.
func (n *Node[T]) Next() *Node[T] { return n.next }

// List owns a chain of nodes starting at head. The zero value is an
// empty list ready to use.
type List[T comparable] struct {
	head *Node[T]
	len  int
}

// New returns an empty list.
func New[T comparable]() *List[T] {
	return &List[T]{}
}

// Len returns the number of nodes in the list.
func (l *List[T]) Len() int { return l.len }

// Head returns the first node, or nil if the list is empty.
func (l *List[T]) Head() *Node[T] { return l.head }

// AddToHead inserts v as the new first node.
func (l *List[T]) AddToHead(v T) *Node[T] {
	n := &Node[T]{value: v, next: l.head}
	l.head = n
	l.len++
	return n
}

// RemoveAfter unlinks the node following n and returns its value.
func (l *List[T]) RemoveAfter(n *Node[T]) (T, error) {
	var zero T
	if n == nil || n.next == nil {
		return zero, ErrInvariant
	}
	victim := n.next
	n.next = victim.next
	victim.next = nil
	l.len--
	return victim.value, nil
}

// Remove unlinks the first node whose value equals v.
func (l *List[T]) Remove(v T) error {
	var prev *Node[T]
	for cur := l.head; cur != nil; cur = cur.next {
		if cur.value != v {
			prev = cur
			continue
		}
		if prev == nil {
			l.head = cur.next
		} else {
			prev.next = cur.next
		}
		cur.next = nil
		l.len--
		return nil
	}
	return ErrNotFound
}

// Cursor returns a new cursor positioned before the first node.
func (l *List[T]) Cursor() *Cursor[T] {
	return &Cursor[T]{list: l}
}

// All returns the values from head to tail. Each call to the returned
// sequence starts a fresh traversal.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.head; n != nil; n = n.next {
			if !yield(n.value) {
				return
			}
		}
	}
}

// Cursor walks a list one node at a time. Cursors do not share state,
// so two traversals of the same list never interfere.
type Cursor[T comparable] struct {
	list    *List[T]
	current *Node[T]
	started bool
}

// Reset moves the cursor back before the first node.
func (c *Cursor[T]) Reset() {
	c.current = nil
	c.started = false
}

// Next advances the cursor and returns the node it now points at.
// It returns false once the list is exhausted.
func (c *Cursor[T]) Next() (*Node[T], bool) {
	if !c.started {
		c.started = true
		c.current = c.list.head
	} else if c.current != nil {
		c.current = c.current.next
	}
	return c.current, c.current != nil
}
