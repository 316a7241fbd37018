// Package dictionary resolves words to definition records through a
// small recency cache in front of an authoritative Source.
//
// A search consults the cache first. A hit is promoted to most recently
// used and returned with TierCache. A miss falls through to the Source;
// a successful resolution is inserted into the cache (evicting the least
// recently used record when full) and returned with the Source's tier.
// Source failures are returned unchanged and leave the cache untouched.
package dictionary

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmurray2011/lexicon/internal/logging"
	"github.com/jmurray2011/lexicon/pkg/lru"
	"github.com/jmurray2011/lexicon/pkg/timeutil"
)

// DefaultCapacity is the cache size used when WithCapacity is not given.
const DefaultCapacity = 1

// Cache is the recency cache of records keyed by word.
type Cache = lru.Cache[string, Record]

// NewCache builds a record cache. Inserting a record that fails Validate
// returns ErrInvalidRecord. onEvict may be nil.
func NewCache(capacity int, onEvict func(Record)) (*Cache, error) {
	opts := []lru.Option[Record]{lru.WithValidator(Record.Validate)}
	if onEvict != nil {
		opts = append(opts, lru.WithOnEvict(onEvict))
	}
	return lru.New(capacity, Record.Key, opts...)
}

// Option configures a Dictionary.
type Option func(*options)

type options struct {
	capacity int
	logger   logging.Logger
	metrics  Metrics
}

// WithCapacity sets the number of records kept in the cache.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithLogger sets the logger used for search tracing.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics sets the sink for hit/miss/eviction events.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// Dictionary is a read-through cache over a Source. It is not safe for
// concurrent use; wrap it with NewSynchronized for that.
type Dictionary struct {
	source  Source
	cache   *Cache
	logger  logging.Logger
	metrics Metrics
}

// New creates a Dictionary backed by src.
func New(src Source, opts ...Option) (*Dictionary, error) {
	if src == nil {
		return nil, errors.New("dictionary requires a source")
	}

	o := options{
		capacity: DefaultCapacity,
		logger:   logging.NopLogger{},
		metrics:  NoopMetrics{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	d := &Dictionary{
		source:  src,
		logger:  o.logger.WithField("source", src.Tier()),
		metrics: o.metrics,
	}

	cache, err := NewCache(o.capacity, d.evicted)
	if err != nil {
		return nil, err
	}
	d.cache = cache
	return d, nil
}

// Search returns the record for word and the tier that produced it.
func (d *Dictionary) Search(ctx context.Context, word string) (Record, Tier, error) {
	rec, ok, err := d.fromCache(word)
	if err != nil {
		return Record{}, "", err
	}
	if ok {
		return rec, TierCache, nil
	}

	rec, err = d.fromSource(ctx, word)
	if err != nil {
		return Record{}, "", err
	}
	if err := d.store(rec); err != nil {
		return Record{}, "", err
	}
	return rec, d.source.Tier(), nil
}

// fromCache looks word up in the cache. A miss is reported as ok=false;
// only structural failures come back as errors.
func (d *Dictionary) fromCache(word string) (Record, bool, error) {
	rec, err := d.cache.Find(word)
	if err == nil {
		d.metrics.Hit()
		d.logger.Debug("cache hit for %q", word)
		return rec, true, nil
	}
	if !errors.Is(err, lru.ErrNotFound) {
		return Record{}, false, fmt.Errorf("cache lookup of %q: %w", word, err)
	}
	d.metrics.Miss()
	d.logger.Debug("cache miss for %q", word)
	return Record{}, false, nil
}

func (d *Dictionary) fromSource(ctx context.Context, word string) (Record, error) {
	rec, elapsed, err := timeutil.Measure(func() (Record, error) {
		return d.source.Resolve(ctx, word)
	})
	d.metrics.SourceLatency(d.source.Tier(), elapsed, err)
	if err != nil {
		d.logger.Debug("source miss for %q: %v", word, err)
		return Record{}, err
	}
	if err := rec.Validate(); err != nil {
		return Record{}, fmt.Errorf("%s returned a bad record for %q: %w", d.source.Tier(), word, err)
	}
	return rec, nil
}

// store caches rec. A source may key a record differently from the
// query (the online dictionary lowercases words), so a record already
// resident under the same word is promoted rather than duplicated.
func (d *Dictionary) store(rec Record) error {
	if d.cache.Contains(rec.Key()) {
		if _, err := d.cache.Find(rec.Key()); err != nil {
			return fmt.Errorf("promoting %q: %w", rec.Word, err)
		}
		return nil
	}
	if err := d.cache.Insert(rec); err != nil {
		return fmt.Errorf("caching %q: %w", rec.Word, err)
	}
	d.metrics.Size(d.cache.Len())
	return nil
}

func (d *Dictionary) evicted(rec Record) {
	d.metrics.Evict()
	d.logger.Debug("evicted %q", rec.Word)
}

// Len returns the number of cached records.
func (d *Dictionary) Len() int {
	return d.cache.Len()
}

// Capacity returns the cache capacity.
func (d *Dictionary) Capacity() int {
	return d.cache.Cap()
}

// Cached returns the cached words from most to least recently used.
func (d *Dictionary) Cached() []string {
	return d.cache.Keys()
}

// Close closes the backing source.
func (d *Dictionary) Close() error {
	return d.source.Close()
}
