package dictionary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmurray2011/lexicon/internal/logging"
	"golang.org/x/sync/errgroup"
)

// mapSource is an in-memory Source that counts Resolve calls.
type mapSource struct {
	records map[string]Record
	calls   atomic.Int64
	err     error // returned for every Resolve when set
}

func newMapSource(records ...Record) *mapSource {
	m := &mapSource{records: make(map[string]Record)}
	for _, r := range records {
		m.records[r.Word] = r
	}
	return m
}

func (m *mapSource) Resolve(_ context.Context, word string) (Record, error) {
	m.calls.Add(1)
	if m.err != nil {
		return Record{}, m.err
	}
	rec, ok := m.records[word]
	if !ok {
		return Record{}, NotFoundError(TierLocal, word)
	}
	return rec, nil
}

func (m *mapSource) Tier() Tier   { return TierLocal }
func (m *mapSource) Close() error { return nil }

// recordingMetrics counts events for assertions.
type recordingMetrics struct {
	mu                  sync.Mutex
	hits, misses, evict int
	size                int
	latencies           int
}

func (r *recordingMetrics) Hit()         { r.mu.Lock(); r.hits++; r.mu.Unlock() }
func (r *recordingMetrics) Miss()        { r.mu.Lock(); r.misses++; r.mu.Unlock() }
func (r *recordingMetrics) Evict()       { r.mu.Lock(); r.evict++; r.mu.Unlock() }
func (r *recordingMetrics) Size(n int)   { r.mu.Lock(); r.size = n; r.mu.Unlock() }
func (r *recordingMetrics) SourceLatency(Tier, time.Duration, error) {
	r.mu.Lock()
	r.latencies++
	r.mu.Unlock()
}

var (
	run  = Record{Word: "run", PartOfSpeech: "verb", Definition: "move at speed", Example: "he can run fast"}
	walk = Record{Word: "walk", PartOfSpeech: "verb", Definition: "move at a regular pace"}
	jump = Record{Word: "jump", PartOfSpeech: "verb", Definition: "push oneself off the ground"}
)

func newDictionary(t *testing.T, src Source, opts ...Option) *Dictionary {
	t.Helper()
	d, err := New(src, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return d
}

func mustSearch(t *testing.T, d *Dictionary, word string, wantTier Tier) Record {
	t.Helper()
	rec, tier, err := d.Search(context.Background(), word)
	if err != nil {
		t.Fatalf("Search(%q) error = %v", word, err)
	}
	if tier != wantTier {
		t.Fatalf("Search(%q) tier = %s, want %s", word, tier, wantTier)
	}
	return rec
}

func TestNew_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -5} {
		_, err := New(newMapSource(), WithCapacity(capacity))
		if !errors.Is(err, ErrInvalidCapacity) {
			t.Errorf("New(capacity=%d) error = %v, want ErrInvalidCapacity", capacity, err)
		}
	}
}

func TestNew_NilSource(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("New(nil) should fail")
	}
}

func TestNew_DefaultCapacity(t *testing.T) {
	d := newDictionary(t, newMapSource())
	if d.Capacity() != DefaultCapacity {
		t.Errorf("Capacity() = %d, want %d", d.Capacity(), DefaultCapacity)
	}
}

func TestSearch_CapacityOneScenario(t *testing.T) {
	src := newMapSource(run, walk)
	d := newDictionary(t, src, WithCapacity(1))

	got := mustSearch(t, d, "run", TierLocal)
	if got != run {
		t.Errorf("Search(run) = %+v, want %+v", got, run)
	}
	if d.Len() != 1 {
		t.Errorf("Len() = %d, want 1", d.Len())
	}

	got = mustSearch(t, d, "run", TierCache)
	if got != run {
		t.Errorf("second Search(run) = %+v, want %+v", got, run)
	}

	mustSearch(t, d, "walk", TierLocal)
	if want := []string{"walk"}; !slices.Equal(d.Cached(), want) {
		t.Errorf("Cached() = %v, want %v", d.Cached(), want)
	}
	if src.calls.Load() != 2 {
		t.Errorf("source calls = %d, want 2", src.calls.Load())
	}
}

func TestSearch_ReadThroughIdempotence(t *testing.T) {
	src := newMapSource(run)
	d := newDictionary(t, src, WithCapacity(3))

	mustSearch(t, d, "run", TierLocal)
	for i := 0; i < 5; i++ {
		mustSearch(t, d, "run", TierCache)
	}
	if src.calls.Load() != 1 {
		t.Errorf("source calls = %d, want 1", src.calls.Load())
	}
}

func TestSearch_MissPropagation(t *testing.T) {
	d := newDictionary(t, newMapSource(run, walk), WithCapacity(3))
	mustSearch(t, d, "run", TierLocal)
	mustSearch(t, d, "walk", TierLocal)
	before := d.Cached()

	_, tier, err := d.Search(context.Background(), "fly")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Search(fly) error = %v, want ErrNotFound", err)
	}
	if tier != "" {
		t.Errorf("Search(fly) tier = %q, want empty", tier)
	}
	if after := d.Cached(); !slices.Equal(before, after) {
		t.Errorf("Cached() = %v after miss, want %v", after, before)
	}
}

func TestSearch_SourceErrorUnchanged(t *testing.T) {
	srcErr := &SourceError{Tier: TierOxford, Word: "run", Status: 500}
	src := newMapSource(run)
	src.err = srcErr
	d := newDictionary(t, src)

	_, _, err := d.Search(context.Background(), "run")
	if err != srcErr {
		t.Errorf("Search() error = %v, want the source error unchanged", err)
	}
	if d.Len() != 0 {
		t.Errorf("Len() = %d, want 0", d.Len())
	}
}

func TestSearch_PromotionInvariant(t *testing.T) {
	d := newDictionary(t, newMapSource(run, walk, jump), WithCapacity(3))
	for _, w := range []string{"run", "walk", "jump"} {
		mustSearch(t, d, w, TierLocal)
	}

	for _, w := range []string{"run", "jump", "walk", "run"} {
		mustSearch(t, d, w, TierCache)
		if head := d.Cached()[0]; head != w {
			t.Errorf("after Search(%q) head = %q", w, head)
		}
	}
}

func TestSearch_EvictsLeastRecentlyUsed(t *testing.T) {
	m := &recordingMetrics{}
	d := newDictionary(t, newMapSource(run, walk, jump), WithCapacity(2), WithMetrics(m))

	mustSearch(t, d, "run", TierLocal)
	mustSearch(t, d, "walk", TierLocal)
	mustSearch(t, d, "run", TierCache) // walk is now least recently used
	mustSearch(t, d, "jump", TierLocal)

	if want := []string{"jump", "run"}; !slices.Equal(d.Cached(), want) {
		t.Errorf("Cached() = %v, want %v", d.Cached(), want)
	}
	if m.evict != 1 {
		t.Errorf("evictions = %d, want 1", m.evict)
	}
	if m.hits != 1 || m.misses != 3 {
		t.Errorf("hits/misses = %d/%d, want 1/3", m.hits, m.misses)
	}
	if m.latencies != 3 {
		t.Errorf("source latency observations = %d, want 3", m.latencies)
	}
	if m.size != 2 {
		t.Errorf("size = %d, want 2", m.size)
	}
}

func TestSearch_InvalidRecordFromSource(t *testing.T) {
	bad := Record{Word: "odd", PartOfSpeech: "noun"}
	d := newDictionary(t, newMapSource(bad))

	_, _, err := d.Search(context.Background(), "odd")
	if !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("Search() error = %v, want ErrInvalidRecord", err)
	}
	if d.Len() != 0 {
		t.Errorf("Len() = %d, want 0", d.Len())
	}
}

func TestSearch_SourceKeyDiffersFromQuery(t *testing.T) {
	// The source answers "Run" with the record keyed "run"
	src := newMapSource(run)
	src.records["Run"] = run
	d := newDictionary(t, src, WithCapacity(2))

	mustSearch(t, d, "run", TierLocal)
	mustSearch(t, d, "Run", TierLocal)

	if want := []string{"run"}; !slices.Equal(d.Cached(), want) {
		t.Errorf("Cached() = %v, want %v", d.Cached(), want)
	}
}

func TestSearch_LogsTiers(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithOutput(&buf)
	logger.SetLevel(logging.LevelDebug)
	d := newDictionary(t, newMapSource(run), WithLogger(logger))

	mustSearch(t, d, "run", TierLocal)
	mustSearch(t, d, "run", TierCache)

	out := buf.String()
	for _, want := range []string{"cache miss", "cache hit", "source=local"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestNewCache_RejectsInvalidRecord(t *testing.T) {
	c, err := NewCache(2, nil)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}

	err = c.Insert(Record{Word: "x"})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("Insert() error = %v, want ErrInvalidRecord", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestSynchronized_ConcurrentSearch(t *testing.T) {
	src := newMapSource(run, walk)
	s := NewSynchronized(newDictionary(t, src, WithCapacity(2)))

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		word := "run"
		if i%2 == 1 {
			word = "walk"
		}
		g.Go(func() error {
			rec, _, err := s.Search(context.Background(), word)
			if err != nil {
				return err
			}
			if rec.Word != word {
				return fmt.Errorf("Search(%q) returned %q", word, rec.Word)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	cached := s.Cached()
	slices.Sort(cached)
	if want := []string{"run", "walk"}; !slices.Equal(cached, want) {
		t.Errorf("Cached() = %v, want %v", cached, want)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if calls := src.calls.Load(); calls < 2 || calls > 32 {
		t.Errorf("source calls = %d, want between 2 and 32", calls)
	}
}

func TestSynchronized_MissPropagation(t *testing.T) {
	s := NewSynchronized(newDictionary(t, newMapSource()))

	_, _, err := s.Search(context.Background(), "nothing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Search() error = %v, want ErrNotFound", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}
