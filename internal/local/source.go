package local

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jmurray2011/lexicon/internal/dictionary"
	"github.com/jmurray2011/lexicon/internal/logging"
	"github.com/jmurray2011/lexicon/internal/source"
)

func init() {
	source.Register("file", openSource)
}

// Source implements dictionary.Source over a dataset file loaded into
// memory. Lookups are exact and case-sensitive.
type Source struct {
	path   string
	format Format
	logger logging.Logger

	mu      sync.RWMutex
	records map[string]dictionary.Record
	skipped int
}

// openSource opens a local dataset from a parsed URL.
func openSource(u *url.URL, opts source.OpenOptions) (dictionary.Source, error) {
	path := u.Path
	if path == "" {
		return nil, fmt.Errorf("file:// URI requires a path")
	}

	// Expand ~ to home directory
	if strings.HasPrefix(path, "/~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[3:])
		}
	}

	return NewSource(path, u.Query().Get("format"), opts.Log())
}

// NewSource loads the dataset at path. formatHint is "json", "yaml" or
// empty to detect from the file.
func NewSource(path, formatHint string, logger logging.Logger) (*Source, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	s := &Source{
		path:   path,
		format: parseFormat(formatHint),
		logger: logger.WithField("dataset", filepath.Base(path)),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSourceFromRecords builds a source from records already in memory.
func NewSourceFromRecords(records []dictionary.Record) *Source {
	m := make(map[string]dictionary.Record, len(records))
	for _, r := range records {
		m[r.Word] = r
	}
	return &Source{
		logger:  logging.NopLogger{},
		records: m,
	}
}

// Reload re-reads the dataset file. On failure the previous records
// stay in place.
func (s *Source) Reload() error {
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}

	format := s.format
	if format == FormatAuto {
		format = DetectFormat(s.path, data)
	}

	ds, err := Parse(bytes.NewReader(data), format)
	if err != nil {
		return fmt.Errorf("%s: %w", s.path, err)
	}

	s.mu.Lock()
	s.records = ds.Records
	s.skipped = ds.Skipped
	s.mu.Unlock()

	if ds.Skipped > 0 {
		s.logger.Warn("skipped %d malformed entries", ds.Skipped)
	}
	s.logger.Debug("loaded %d entries (%s)", len(ds.Records), format)
	return nil
}

// Resolve returns the record for word.
func (s *Source) Resolve(ctx context.Context, word string) (dictionary.Record, error) {
	if err := ctx.Err(); err != nil {
		return dictionary.Record{}, err
	}

	s.mu.RLock()
	rec, ok := s.records[word]
	s.mu.RUnlock()

	if !ok {
		return dictionary.Record{}, dictionary.NotFoundError(dictionary.TierLocal, word)
	}
	return rec, nil
}

// Tier returns dictionary.TierLocal.
func (s *Source) Tier() dictionary.Tier {
	return dictionary.TierLocal
}

// Close is a no-op; watchers stop with their context.
func (s *Source) Close() error {
	return nil
}

// Path returns the dataset file path, empty for in-memory sources.
func (s *Source) Path() string {
	return s.path
}

// Len returns the number of loaded entries.
func (s *Source) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Skipped returns how many entries the last load dropped.
func (s *Source) Skipped() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.skipped
}

// Words returns the loaded words in sorted order.
func (s *Source) Words() []string {
	s.mu.RLock()
	words := make([]string, 0, len(s.records))
	for w := range s.records {
		words = append(words, w)
	}
	s.mu.RUnlock()

	sort.Strings(words)
	return words
}
