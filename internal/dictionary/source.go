package dictionary

import "context"

// Source is the authoritative resolver consulted on a cache miss.
type Source interface {
	// Resolve returns the record for word. A missing word yields an
	// error matching ErrNotFound.
	Resolve(ctx context.Context, word string) (Record, error)

	// Tier reports which tier this source represents in search results.
	Tier() Tier

	// Close releases any resources held by the source.
	Close() error
}
