// Package oxford resolves words against the Oxford Dictionaries API.
package oxford

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jmurray2011/lexicon/internal/dictionary"
	lxerrors "github.com/jmurray2011/lexicon/internal/errors"
	"github.com/jmurray2011/lexicon/internal/logging"
	"github.com/jmurray2011/lexicon/internal/source"
)

// Default configuration values
const (
	// DefaultEndpoint is the API base URL; entries live under /entries.
	DefaultEndpoint = "https://od-api.oxforddictionaries.com/api/v2"

	// DefaultLanguage is used when neither the URI nor config names one.
	DefaultLanguage = "en-gb"

	// DefaultTimeout bounds a single lookup request.
	DefaultTimeout = 10 * time.Second

	// maxBodySize caps how much of a response body is read (4MB).
	maxBodySize = 4 << 20
)

func init() {
	source.Register("oxford", openSource)
}

// Config holds the settings for a Source. AppID and AppKey are required.
type Config struct {
	AppID    string
	AppKey   string
	Endpoint string
	Language string
	Timeout  time.Duration

	// HTTPClient overrides the client used for requests.
	HTTPClient *http.Client
	Logger     logging.Logger
}

// Source implements dictionary.Source over the Oxford entries endpoint.
type Source struct {
	appID    string
	appKey   string
	endpoint string
	language string
	timeout  time.Duration
	client   *http.Client
	logger   logging.Logger
}

// New creates a Source from cfg, filling in defaults.
func New(cfg Config) (*Source, error) {
	if cfg.AppID == "" || cfg.AppKey == "" {
		return nil, lxerrors.MissingCredentialsError("oxford")
	}

	s := &Source{
		appID:    cfg.AppID,
		appKey:   cfg.AppKey,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		language: cfg.Language,
		timeout:  cfg.Timeout,
		client:   cfg.HTTPClient,
		logger:   cfg.Logger,
	}
	if s.endpoint == "" {
		s.endpoint = DefaultEndpoint
	}
	if s.language == "" {
		s.language = DefaultLanguage
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.client == nil {
		s.client = &http.Client{}
	}
	if s.logger == nil {
		s.logger = logging.NopLogger{}
	}
	s.logger = s.logger.WithField("language", s.language)

	if _, err := url.Parse(s.endpoint); err != nil {
		return nil, fmt.Errorf("invalid oxford endpoint %q: %w", s.endpoint, err)
	}
	return s, nil
}

// openSource is the source.Opener for the oxford scheme.
// URI format: oxford:///en-gb?endpoint=https://...
func openSource(u *url.URL, opts source.OpenOptions) (dictionary.Source, error) {
	lang := strings.Trim(u.Host+u.Path, "/")
	if lang == "" {
		lang = opts.Language
	}

	endpoint := opts.Endpoint
	if e := u.Query().Get("endpoint"); e != "" {
		endpoint = e
	}

	return New(Config{
		AppID:    opts.AppID,
		AppKey:   opts.AppKey,
		Endpoint: endpoint,
		Language: lang,
		Timeout:  opts.Timeout,
		Logger:   opts.Log(),
	})
}

// entryURL builds the lookup URL for word. Words are lowercased.
func (s *Source) entryURL(word string) string {
	return fmt.Sprintf("%s/entries/%s/%s",
		s.endpoint, url.PathEscape(s.language), url.PathEscape(strings.ToLower(word)))
}

// Resolve fetches word from the API. The returned record is keyed by the
// identifier the service reports, which is the lowercased word.
func (s *Source) Resolve(ctx context.Context, word string) (dictionary.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.entryURL(word), nil)
	if err != nil {
		return dictionary.Record{}, s.failure(word, 0, err)
	}
	req.Header.Set("app_id", s.appID)
	req.Header.Set("app_key", s.appKey)
	req.Header.Set("Accept", "application/json")

	s.logger.Debug("GET %s", req.URL)
	resp, err := s.client.Do(req)
	if err != nil {
		return dictionary.Record{}, s.failure(word, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return dictionary.Record{}, dictionary.NotFoundError(dictionary.TierOxford, word)
	case resp.StatusCode != http.StatusOK:
		return dictionary.Record{}, s.failure(word, resp.StatusCode, nil)
	}

	var body response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&body); err != nil {
		return dictionary.Record{}, s.failure(word, 0, fmt.Errorf("decoding response: %w", err))
	}

	rec, err := body.record()
	if err != nil {
		return dictionary.Record{}, fmt.Errorf("cannot find %q in %s: %w", word, dictionary.TierOxford, err)
	}
	return rec, nil
}

func (s *Source) failure(word string, status int, err error) error {
	return &dictionary.SourceError{
		Tier:   dictionary.TierOxford,
		Word:   word,
		Status: status,
		Err:    err,
	}
}

// Tier returns dictionary.TierOxford.
func (s *Source) Tier() dictionary.Tier {
	return dictionary.TierOxford
}

// Close releases idle connections.
func (s *Source) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// Language returns the language code used in lookups.
func (s *Source) Language() string {
	return s.language
}
