package dictionary

import (
	"errors"
	"fmt"

	"github.com/jmurray2011/lexicon/pkg/linked"
	"github.com/jmurray2011/lexicon/pkg/lru"
)

// Capacity and invariant errors are shared with pkg/lru and pkg/linked
// so errors.Is works across the layers without translation.
var (
	// ErrNotFound means a source has no entry for the word.
	ErrNotFound = errors.New("word not found")

	// ErrInvalidCapacity is returned when a cache is built with capacity < 1.
	ErrInvalidCapacity = lru.ErrInvalidCapacity

	// ErrInvariant reports a corrupted cache structure. It indicates a bug.
	ErrInvariant = linked.ErrInvariant

	// ErrInvalidRecord is returned for records missing a required field.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrSourceUnavailable means the backing source could not answer,
	// for example a transport failure or an unexpected status code.
	ErrSourceUnavailable = errors.New("source unavailable")
)

// SourceError describes a backing-source failure. It matches both
// ErrSourceUnavailable and ErrNotFound, so callers that only care about
// "no definition" can treat it like any other miss.
type SourceError struct {
	Tier   Tier
	Word   string
	Status int // HTTP status, zero for transport errors
	Err    error
}

func (e *SourceError) Error() string {
	msg := fmt.Sprintf("%s lookup of %q failed", e.Tier, e.Word)
	if e.Status != 0 {
		msg += fmt.Sprintf(": code %d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrSourceUnavailable or ErrNotFound.
func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnavailable || target == ErrNotFound
}

// NotFoundError returns the error a source reports for a missing word.
func NotFoundError(tier Tier, word string) error {
	return fmt.Errorf("cannot find %q in %s: %w", word, tier, ErrNotFound)
}
