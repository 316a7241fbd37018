package dictionary

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Synchronized makes a Dictionary safe for concurrent searches.
//
// The cache is guarded by a mutex held only for the find and for the
// insert, never across the source call. Concurrent misses for the same
// word share one source call through a singleflight group.
type Synchronized struct {
	mu    sync.Mutex
	d     *Dictionary
	group singleflight.Group
}

// NewSynchronized wraps d. d must not be used directly afterwards.
func NewSynchronized(d *Dictionary) *Synchronized {
	return &Synchronized{d: d}
}

// Search behaves like Dictionary.Search.
func (s *Synchronized) Search(ctx context.Context, word string) (Record, Tier, error) {
	s.mu.Lock()
	rec, ok, err := s.d.fromCache(word)
	s.mu.Unlock()
	if err != nil {
		return Record{}, "", err
	}
	if ok {
		return rec, TierCache, nil
	}

	v, err, _ := s.group.Do(word, func() (interface{}, error) {
		rec, err := s.d.fromSource(ctx, word)
		if err != nil {
			return Record{}, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.d.store(rec); err != nil {
			return Record{}, err
		}
		return rec, nil
	})
	if err != nil {
		return Record{}, "", err
	}
	return v.(Record), s.d.source.Tier(), nil
}

// Len returns the number of cached records.
func (s *Synchronized) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.Len()
}

// Cached returns the cached words from most to least recently used.
func (s *Synchronized) Cached() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.Cached()
}

// Close closes the underlying dictionary's source.
func (s *Synchronized) Close() error {
	return s.d.Close()
}
