package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmurray2011/lexicon/internal/dictionary"
	"github.com/jmurray2011/lexicon/pkg/timeutil"
)

// Renderer handles all terminal output with consistent styling.
type Renderer struct {
	out     io.Writer
	err     io.Writer
	noColor bool
	quiet   bool
}

// NewRenderer creates a new Renderer with default settings.
func NewRenderer() *Renderer {
	return &Renderer{
		out: os.Stdout,
		err: os.Stderr,
	}
}

// Option is a functional option for configuring the Renderer.
type Option func(*Renderer)

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(r *Renderer) {
		r.out = w
	}
}

// WithError sets the error writer.
func WithError(w io.Writer) Option {
	return func(r *Renderer) {
		r.err = w
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) Option {
	return func(r *Renderer) {
		r.noColor = noColor
	}
}

// WithQuiet enables quiet mode (suppresses status messages).
func WithQuiet(quiet bool) Option {
	return func(r *Renderer) {
		r.quiet = quiet
	}
}

// NewRendererWithOptions creates a new Renderer with the given options.
func NewRendererWithOptions(opts ...Option) *Renderer {
	r := NewRenderer()
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// render applies styling if color is enabled.
func (r *Renderer) render(style lipgloss.Style, text string) string {
	if r.noColor {
		return text
	}
	return style.Render(text)
}

// --- Status and Messages ---

// Status prints a status message (suppressed in quiet mode).
func (r *Renderer) Status(format string, args ...any) {
	if r.quiet {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.err, r.render(StatusStyle, msg))
}

// Info prints an informational message.
func (r *Renderer) Info(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.out, msg)
}

// Success prints a success message.
func (r *Renderer) Success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.out, r.render(SuccessStyle, msg))
}

// Warning prints a warning message.
func (r *Renderer) Warning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.err, r.render(WarningStyle, "Warning: "+msg))
}

// Error prints an error message.
func (r *Renderer) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.err, r.render(ErrorStyle, "Error: "+msg))
}

// Debug prints a debug message (only when verbose).
func (r *Renderer) Debug(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(r.err, r.render(MutedStyle, "[DEBUG] "+msg))
}

// --- Formatted Output ---

// KeyValue prints a key-value pair.
func (r *Renderer) KeyValue(key, value string) {
	label := r.render(LabelStyle, key+":")
	fmt.Fprintf(r.out, "%s %s\n", label, value)
}

// Newline prints a blank line.
func (r *Renderer) Newline() {
	fmt.Fprintln(r.out)
}

// --- Record Rendering ---

// Record renders a dictionary record as an aligned block.
func (r *Renderer) Record(rec dictionary.Record) {
	example := r.render(MutedStyle, "None")
	if rec.HasExample() {
		example = r.render(ExampleStyle, rec.Example)
	}
	r.recordLine("Word", r.render(WordStyle, rec.Word))
	r.recordLine("Part of speech", r.render(PartOfSpeechStyle, rec.PartOfSpeech))
	r.recordLine("Definition", r.render(ValueStyle, rec.Definition))
	r.recordLine("Example", example)
}

func (r *Renderer) recordLine(label, value string) {
	fmt.Fprintf(r.out, "%s: %s\n", r.render(LabelStyle, fmt.Sprintf("%-14s", label)), value)
}

// Found prints where a record came from and how long the search took.
func (r *Renderer) Found(tier dictionary.Tier, elapsed time.Duration) {
	fmt.Fprintf(r.out, "(Found in %s in %s seconds)\n",
		r.render(TierStyle(tier), string(tier)), timeutil.FormatSeconds(elapsed))
}

// SearchError prints a failed search in the interactive loop's wording.
func (r *Renderer) SearchError(err error) {
	fmt.Fprintln(r.out, r.render(ErrorStyle, "Error when searching:")+" "+err.Error())
}

// Prompt prints text without a trailing newline.
func (r *Renderer) Prompt(text string) {
	fmt.Fprint(r.out, r.render(PromptStyle, text))
}

// TierStyle returns the style used to render tier.
func TierStyle(tier dictionary.Tier) lipgloss.Style {
	switch tier {
	case dictionary.TierCache:
		return CacheTierStyle
	case dictionary.TierLocal:
		return LocalTierStyle
	default:
		return RemoteTierStyle
	}
}

// --- Table Rendering ---

// Table renders a simple table.
func (r *Renderer) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	// Print header
	headerParts := make([]string, len(headers))
	for i, h := range headers {
		headerParts[i] = r.render(LabelStyle, fmt.Sprintf("%-*s", widths[i], h))
	}
	fmt.Fprintln(r.out, strings.Join(headerParts, "  "))

	// Print separator
	sepParts := make([]string, len(headers))
	for i, w := range widths {
		sepParts[i] = strings.Repeat("-", w)
	}
	fmt.Fprintln(r.out, r.render(MutedStyle, strings.Join(sepParts, "  ")))

	// Print rows
	for _, row := range rows {
		rowParts := make([]string, len(headers))
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			rowParts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		fmt.Fprintln(r.out, strings.Join(rowParts, "  "))
	}
}
