package local

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jmurray2011/lexicon/internal/dictionary"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a dataset file.
type Format int

const (
	FormatAuto Format = iota
	FormatJSON
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "auto"
	}
}

// parseFormat converts a format hint to a Format.
func parseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// DetectFormat picks a format from the file extension, then from the
// first non-space byte of the content.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}

// rawEntry mirrors one dataset entry. Pointers distinguish a missing
// field from an empty one.
type rawEntry struct {
	Word         *string `json:"word" yaml:"word"`
	PartOfSpeech *string `json:"part_of_speech" yaml:"part_of_speech"`
	Definition   *string `json:"definition" yaml:"definition"`
	Example      *string `json:"example" yaml:"example"`
}

func (e rawEntry) record() (dictionary.Record, bool) {
	if e.Word == nil || e.PartOfSpeech == nil || e.Definition == nil {
		return dictionary.Record{}, false
	}
	rec := dictionary.Record{
		Word:         *e.Word,
		PartOfSpeech: *e.PartOfSpeech,
		Definition:   *e.Definition,
	}
	if e.Example != nil {
		rec.Example = *e.Example
	}
	return rec, rec.Validate() == nil
}

// Dataset is the decoded content of a dataset file.
type Dataset struct {
	Records map[string]dictionary.Record
	Skipped int // entries dropped for missing or malformed fields
}

// Parse decodes a dataset of the form {"entries": [...]}. Entries that
// lack a required field or have the wrong shape are skipped rather than
// failing the whole file. A later entry for the same word replaces an
// earlier one.
func Parse(r io.Reader, format Format) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON:
		return parseJSON(data)
	case FormatYAML:
		return parseYAML(data)
	default:
		return Parse(bytes.NewReader(data), DetectFormat("", data))
	}
}

func parseJSON(data []byte) (*Dataset, error) {
	var doc struct {
		Entries []json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON dataset: %w", err)
	}

	ds := &Dataset{Records: make(map[string]dictionary.Record, len(doc.Entries))}
	for _, raw := range doc.Entries {
		var e rawEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			ds.Skipped++
			continue
		}
		ds.add(e)
	}
	return ds, nil
}

func parseYAML(data []byte) (*Dataset, error) {
	var doc struct {
		Entries []yaml.Node `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML dataset: %w", err)
	}

	ds := &Dataset{Records: make(map[string]dictionary.Record, len(doc.Entries))}
	for i := range doc.Entries {
		var e rawEntry
		if err := doc.Entries[i].Decode(&e); err != nil {
			ds.Skipped++
			continue
		}
		ds.add(e)
	}
	return ds, nil
}

func (ds *Dataset) add(e rawEntry) {
	rec, ok := e.record()
	if !ok {
		ds.Skipped++
		return
	}
	ds.Records[rec.Word] = rec
}
