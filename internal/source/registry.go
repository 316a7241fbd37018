package source

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmurray2011/lexicon/internal/dictionary"
	lxerrors "github.com/jmurray2011/lexicon/internal/errors"
)

// Opener opens a backend from a parsed URI.
type Opener func(u *url.URL, opts OpenOptions) (dictionary.Source, error)

// registry holds registered openers by scheme.
var registry = make(map[string]Opener)

// Register adds an opener for the given URI scheme.
// This should be called during init() by each backend.
func Register(scheme string, opener Opener) {
	registry[scheme] = opener
}

// Open parses a URI and returns the matching backend.
// Supports:
//   - file:///path/to/dictionary.json (or bare paths like ./dictionary.json)
//   - oxford:///en-gb
//   - @alias (resolved from config)
func Open(uri string, opts OpenOptions) (dictionary.Source, error) {
	if uri == "" {
		return nil, fmt.Errorf("no source given (use --source or set default_source in %s)", ConfigPath())
	}

	if strings.HasPrefix(uri, "@") {
		return OpenAlias(uri[1:], opts)
	}

	parsed, opener, err := resolve(uri)
	if err != nil {
		return nil, err
	}
	return opener(parsed, opts)
}

// Normalize checks uri without opening it and returns its canonical
// form, with bare paths rewritten to file:// URIs. Aliases are rejected.
func Normalize(uri string) (string, error) {
	if strings.HasPrefix(uri, "@") {
		return "", fmt.Errorf("%s is an alias, not a source URI", uri)
	}
	parsed, _, err := resolve(uri)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

func resolve(uri string) (*url.URL, Opener, error) {
	// Handle bare paths as file://
	if strings.HasPrefix(uri, "/") || strings.HasPrefix(uri, "./") || strings.HasPrefix(uri, "../") || strings.HasPrefix(uri, "~") {
		uri = "file://" + expandPath(uri)
	}

	if err := validateURISyntax(uri); err != nil {
		return nil, nil, err
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid source URI %q: %w", uri, err)
	}

	opener, ok := registry[parsed.Scheme]
	if !ok {
		return nil, nil, lxerrors.UnknownSchemeError(parsed.Scheme, Schemes())
	}
	return parsed, opener, nil
}

// validateURISyntax checks for common URI mistakes and returns helpful errors.
func validateURISyntax(uri string) error {
	// Pattern: scheme:///path@key=value (should be scheme:///path?key=value)
	if idx := strings.Index(uri, "://"); idx > 0 {
		rest := uri[idx+3:]
		if atIdx := strings.Index(rest, "@"); atIdx > 0 {
			afterAt := rest[atIdx+1:]
			if strings.Contains(afterAt, "=") && !strings.Contains(rest[:atIdx], "?") {
				return fmt.Errorf("invalid URI %q: use '?' for query parameters, not '@'", uri)
			}
		}
	}

	if strings.HasPrefix(uri, "///") {
		return fmt.Errorf("invalid URI %q: missing scheme (e.g., oxford:///en-gb)", uri)
	}

	if !strings.Contains(uri, "://") {
		return fmt.Errorf("invalid URI %q: expected scheme://..., a path, or @alias", uri)
	}

	return nil
}

// OpenAlias resolves a config alias to a backend.
func OpenAlias(name string, opts OpenOptions) (dictionary.Source, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	alias, ok := cfg.Sources[name]
	if !ok {
		available := make([]string, 0, len(cfg.Sources))
		for k := range cfg.Sources {
			available = append(available, "@"+k)
		}
		return nil, lxerrors.SourceNotFoundError("@"+name, available)
	}
	if strings.HasPrefix(alias.URI, "@") {
		return nil, fmt.Errorf("alias @%s points at another alias (%s)", name, alias.URI)
	}

	if alias.Language != "" {
		opts.Language = alias.Language
	}
	return Open(alias.URI, opts)
}

// Schemes returns the registered schemes in sorted order.
func Schemes() []string {
	schemes := make([]string, 0, len(registry))
	for s := range registry {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}

// expandPath resolves ~ to home directory and converts relative paths to absolute.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}
