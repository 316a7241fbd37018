package dictionary

import (
	"fmt"
	"strings"
)

// Record is one resolved word. Records are compared by value; the cache
// identifies them by Word.
type Record struct {
	Word         string `json:"word" yaml:"word"`
	PartOfSpeech string `json:"part_of_speech" yaml:"part_of_speech"`
	Definition   string `json:"definition" yaml:"definition"`
	Example      string `json:"example,omitempty" yaml:"example,omitempty"` // empty means no example
}

// Key returns the cache key for r.
func (r Record) Key() string {
	return r.Word
}

// HasExample reports whether r carries a usage example.
func (r Record) HasExample() bool {
	return r.Example != ""
}

// Validate reports ErrInvalidRecord if a required field is empty.
func (r Record) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Word) == "" {
		missing = append(missing, "word")
	}
	if strings.TrimSpace(r.PartOfSpeech) == "" {
		missing = append(missing, "part_of_speech")
	}
	if strings.TrimSpace(r.Definition) == "" {
		missing = append(missing, "definition")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRecord, strings.Join(missing, ", "))
	}
	return nil
}

func (r Record) String() string {
	example := "None"
	if r.HasExample() {
		example = r.Example
	}
	return fmt.Sprintf("Word          : %s\n"+
		"Part of speech: %s\n"+
		"Definition    : %s\n"+
		"Example       : %s", r.Word, r.PartOfSpeech, r.Definition, example)
}
