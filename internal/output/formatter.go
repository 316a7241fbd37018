// Package output formats lookup results for the terminal or for other programs.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jmurray2011/lexicon/internal/dictionary"
	"github.com/jmurray2011/lexicon/internal/ui"
	"github.com/jmurray2011/lexicon/pkg/timeutil"
)

// Format specifies the output format type.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use text, json, or yaml)", s)
	}
}

// Result is the outcome of searching one word.
type Result struct {
	Query   string
	Record  dictionary.Record
	Tier    dictionary.Tier
	Elapsed time.Duration
	Err     error
}

// resultDoc is the machine-readable form of a Result.
type resultDoc struct {
	Query   string             `json:"query" yaml:"query"`
	Record  *dictionary.Record `json:"record,omitempty" yaml:"record,omitempty"`
	Tier    dictionary.Tier    `json:"tier,omitempty" yaml:"tier,omitempty"`
	Seconds string             `json:"seconds" yaml:"seconds"`
	Error   string             `json:"error,omitempty" yaml:"error,omitempty"`
}

func (r Result) doc() resultDoc {
	d := resultDoc{
		Query:   r.Query,
		Seconds: timeutil.FormatSeconds(r.Elapsed),
	}
	if r.Err != nil {
		d.Error = r.Err.Error()
		return d
	}
	rec := r.Record
	d.Record = &rec
	d.Tier = r.Tier
	return d
}

// Formatter handles output formatting for different formats.
type Formatter struct {
	format   Format
	writer   io.Writer
	renderer *ui.Renderer
}

// NewFormatter creates a new formatter with the specified format.
func NewFormatter(format Format, writer io.Writer, opts ...ui.Option) *Formatter {
	opts = append([]ui.Option{ui.WithOutput(writer)}, opts...)
	return &Formatter{
		format:   format,
		writer:   writer,
		renderer: ui.NewRendererWithOptions(opts...),
	}
}

// Format returns the configured format.
func (f *Formatter) Format() Format {
	return f.format
}

// FormatResults outputs results in the configured format. Text output
// separates results with a blank line; JSON and YAML emit one list.
func (f *Formatter) FormatResults(results []Result) error {
	switch f.format {
	case FormatJSON:
		docs := make([]resultDoc, len(results))
		for i, r := range results {
			docs[i] = r.doc()
		}
		enc := json.NewEncoder(f.writer)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	case FormatYAML:
		docs := make([]resultDoc, len(results))
		for i, r := range results {
			docs[i] = r.doc()
		}
		enc := yaml.NewEncoder(f.writer)
		enc.SetIndent(2)
		if err := enc.Encode(docs); err != nil {
			return err
		}
		return enc.Close()
	default:
		for i, r := range results {
			if i > 0 {
				f.renderer.Newline()
			}
			f.formatText(r)
		}
		return nil
	}
}

// FormatResult outputs a single result.
func (f *Formatter) FormatResult(r Result) error {
	switch f.format {
	case FormatJSON:
		enc := json.NewEncoder(f.writer)
		enc.SetIndent("", "  ")
		return enc.Encode(r.doc())
	case FormatYAML:
		enc := yaml.NewEncoder(f.writer)
		enc.SetIndent(2)
		if err := enc.Encode(r.doc()); err != nil {
			return err
		}
		return enc.Close()
	default:
		f.formatText(r)
		return nil
	}
}

func (f *Formatter) formatText(r Result) {
	if r.Err != nil {
		f.renderer.SearchError(r.Err)
		return
	}
	f.renderer.Record(r.Record)
	f.renderer.Found(r.Tier, r.Elapsed)
}
