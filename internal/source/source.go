// Package source opens dictionary backends from URIs.
//
// Backends register an Opener for their URI scheme from init():
//
//	file:///path/to/dictionary.json   local dataset (also bare paths)
//	oxford:///en-gb                   Oxford Dictionaries API
//	@alias                            resolved from ~/.lexicon/config.yaml
package source

import (
	"time"

	"github.com/jmurray2011/lexicon/internal/logging"
)

// OpenOptions carries defaults for backends. URI query parameters take
// precedence over these values.
type OpenOptions struct {
	// Oxford API credentials. Never embedded; supplied by config or env.
	AppID  string
	AppKey string

	Endpoint string        // Oxford API base URL
	Language string        // default language code, e.g. "en-gb"
	Timeout  time.Duration // per-request timeout for remote backends

	Logger logging.Logger
}

// Log returns the configured logger or a no-op one.
func (o OpenOptions) Log() logging.Logger {
	if o.Logger == nil {
		return logging.NopLogger{}
	}
	return o.Logger
}
