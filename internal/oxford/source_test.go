package oxford

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmurray2011/lexicon/internal/dictionary"
	"github.com/jmurray2011/lexicon/internal/source"
)

const pythonResponse = `{
  "id": "python",
  "results": [{
    "lexicalEntries": [{
      "lexicalCategory": {"id": "noun", "text": "Noun"},
      "entries": [{
        "senses": [{
          "definitions": ["a large heavy-bodied nonvenomous snake"],
          "examples": [{"text": "a python swallowed the goat"}]
        }]
      }]
    }]
  }]
}`

// newTestServer serves canned bodies by path. The returned func reports
// the headers of the most recent request.
func newTestServer(t *testing.T, routes map[string]struct {
	status int
	body   string
}) (*httptest.Server, func() http.Header) {
	t.Helper()
	var (
		mu          sync.Mutex
		lastHeaders http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		lastHeaders = r.Header.Clone()
		mu.Unlock()
		route, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(route.status)
		_, _ = w.Write([]byte(route.body))
	}))
	t.Cleanup(srv.Close)
	return srv, func() http.Header {
		mu.Lock()
		defer mu.Unlock()
		return lastHeaders
	}
}

func newTestSource(t *testing.T, endpoint string) *Source {
	t.Helper()
	s, err := New(Config{
		AppID:    "id-123",
		AppKey:   "key-456",
		Endpoint: endpoint,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestNew_RequiresCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no credentials", Config{}},
		{"no key", Config{AppID: "id"}},
		{"no id", Config{AppKey: "key"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), "app id and app key") {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	s := newTestSource(t, "")
	if s.endpoint != DefaultEndpoint {
		t.Errorf("endpoint = %q, want %q", s.endpoint, DefaultEndpoint)
	}
	if s.Language() != DefaultLanguage {
		t.Errorf("Language() = %q, want %q", s.Language(), DefaultLanguage)
	}
	if s.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", s.timeout, DefaultTimeout)
	}
	if s.Tier() != dictionary.TierOxford {
		t.Errorf("Tier() = %v, want %v", s.Tier(), dictionary.TierOxford)
	}
}

func TestEntryURL(t *testing.T) {
	s := newTestSource(t, "https://example.test/api/v2/")
	got := s.entryURL("Python")
	want := "https://example.test/api/v2/entries/en-gb/python"
	if got != want {
		t.Errorf("entryURL() = %q, want %q", got, want)
	}
}

func TestResolve_Success(t *testing.T) {
	srv, headers := newTestServer(t, map[string]struct {
		status int
		body   string
	}{
		"/entries/en-gb/python": {http.StatusOK, pythonResponse},
	})
	s := newTestSource(t, srv.URL)

	rec, err := s.Resolve(context.Background(), "Python")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := dictionary.Record{
		Word:         "python",
		PartOfSpeech: "noun",
		Definition:   "a large heavy-bodied nonvenomous snake",
		Example:      "a python swallowed the goat",
	}
	if rec != want {
		t.Errorf("Resolve() = %+v, want %+v", rec, want)
	}

	if got := headers().Get("app_id"); got != "id-123" {
		t.Errorf("app_id header = %q, want %q", got, "id-123")
	}
	if got := headers().Get("app_key"); got != "key-456" {
		t.Errorf("app_key header = %q, want %q", got, "key-456")
	}
}

func TestResolve_Failures(t *testing.T) {
	noExample := strings.Replace(pythonResponse, `,
          "examples": [{"text": "a python swallowed the goat"}]`, "", 1)

	srv, _ := newTestServer(t, map[string]struct {
		status int
		body   string
	}{
		"/entries/en-gb/forbidden":    {http.StatusForbidden, `{"error": "bad key"}`},
		"/entries/en-gb/broken":       {http.StatusInternalServerError, ``},
		"/entries/en-gb/noid":         {http.StatusOK, `{"results": []}`},
		"/entries/en-gb/nosenses":     {http.StatusOK, `{"id": "x", "results": [{"lexicalEntries": [{"lexicalCategory": {"id": "noun"}, "entries": [{"senses": []}]}]}]}`},
		"/entries/en-gb/garbage":      {http.StatusOK, `not json`},
		"/entries/en-gb/noexample":    {http.StatusOK, noExample},
		"/entries/en-gb/nocategory":   {http.StatusOK, `{"id": "x", "results": [{"lexicalEntries": [{"entries": [{"senses": [{"definitions": ["d"]}]}]}]}]}`},
		"/entries/en-gb/nodefinition": {http.StatusOK, `{"id": "x", "results": [{"lexicalEntries": [{"lexicalCategory": {"id": "noun"}, "entries": [{"senses": [{"definitions": []}]}]}]}]}`},
	})
	s := newTestSource(t, srv.URL)

	tests := []struct {
		word            string
		wantUnavailable bool
		wantStatus      int
	}{
		{word: "missing"},
		{word: "forbidden", wantUnavailable: true, wantStatus: 403},
		{word: "broken", wantUnavailable: true, wantStatus: 500},
		{word: "noid"},
		{word: "nosenses"},
		{word: "nocategory"},
		{word: "nodefinition"},
		{word: "garbage", wantUnavailable: true},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			_, err := s.Resolve(context.Background(), tt.word)
			if !errors.Is(err, dictionary.ErrNotFound) {
				t.Fatalf("Resolve(%q) error = %v, want ErrNotFound", tt.word, err)
			}
			if got := errors.Is(err, dictionary.ErrSourceUnavailable); got != tt.wantUnavailable {
				t.Errorf("Resolve(%q) unavailable = %v, want %v (err: %v)", tt.word, got, tt.wantUnavailable, err)
			}
			var srcErr *dictionary.SourceError
			if errors.As(err, &srcErr) && srcErr.Status != tt.wantStatus {
				t.Errorf("Resolve(%q) status = %d, want %d", tt.word, srcErr.Status, tt.wantStatus)
			}
		})
	}

	t.Run("optional example", func(t *testing.T) {
		rec, err := s.Resolve(context.Background(), "noexample")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if rec.HasExample() {
			t.Errorf("Example = %q, want empty", rec.Example)
		}
	})
}

func TestResolve_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	s := newTestSource(t, endpoint)
	_, err := s.Resolve(context.Background(), "run")
	if !errors.Is(err, dictionary.ErrSourceUnavailable) {
		t.Errorf("Resolve() error = %v, want ErrSourceUnavailable", err)
	}
}

func TestResolve_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	s, err := New(Config{AppID: "a", AppKey: "b", Endpoint: srv.URL, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = s.Resolve(context.Background(), "slow")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Resolve() error = %v, want context.DeadlineExceeded", err)
	}
	if !errors.Is(err, dictionary.ErrSourceUnavailable) {
		t.Errorf("Resolve() error = %v, want ErrSourceUnavailable", err)
	}
}

func TestOpenViaRegistry(t *testing.T) {
	srv, _ := newTestServer(t, map[string]struct {
		status int
		body   string
	}{
		"/entries/en-us/python": {http.StatusOK, pythonResponse},
	})

	src, err := source.Open("oxford:///en-us?endpoint="+srv.URL, source.OpenOptions{
		AppID:    "id",
		AppKey:   "key",
		Language: "en-gb",
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = src.Close() }()

	if _, err := src.Resolve(context.Background(), "python"); err != nil {
		t.Errorf("Resolve() error = %v", err)
	}
}

func TestOpenViaRegistry_DefaultLanguage(t *testing.T) {
	src, err := source.Open("oxford://", source.OpenOptions{AppID: "id", AppKey: "key", Language: "es"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := src.(*Source).Language(); got != "es" {
		t.Errorf("Language() = %q, want %q", got, "es")
	}
}
