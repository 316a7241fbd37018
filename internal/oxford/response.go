package oxford

import (
	"fmt"

	"github.com/jmurray2011/lexicon/internal/dictionary"
)

// response is the subset of the entries payload we read.
type response struct {
	ID      string   `json:"id"`
	Results []result `json:"results"`
}

type result struct {
	LexicalEntries []lexicalEntry `json:"lexicalEntries"`
}

type lexicalEntry struct {
	LexicalCategory struct {
		ID string `json:"id"`
	} `json:"lexicalCategory"`
	Entries []entry `json:"entries"`
}

type entry struct {
	Senses []sense `json:"senses"`
}

type sense struct {
	Definitions []string `json:"definitions"`
	Examples    []struct {
		Text string `json:"text"`
	} `json:"examples"`
}

// record extracts the first lexical entry's category, the first sense's
// first definition and, when present, its first example. Any missing
// required field is reported as dictionary.ErrNotFound.
func (r response) record() (dictionary.Record, error) {
	if r.ID == "" {
		return dictionary.Record{}, fmt.Errorf("%w: response has no id", dictionary.ErrNotFound)
	}
	if len(r.Results) == 0 || len(r.Results[0].LexicalEntries) == 0 {
		return dictionary.Record{}, fmt.Errorf("%w: response has no lexical entries", dictionary.ErrNotFound)
	}

	lex := r.Results[0].LexicalEntries[0]
	if lex.LexicalCategory.ID == "" {
		return dictionary.Record{}, fmt.Errorf("%w: response has no lexical category", dictionary.ErrNotFound)
	}
	if len(lex.Entries) == 0 || len(lex.Entries[0].Senses) == 0 {
		return dictionary.Record{}, fmt.Errorf("%w: response has no senses", dictionary.ErrNotFound)
	}

	first := lex.Entries[0].Senses[0]
	if len(first.Definitions) == 0 || first.Definitions[0] == "" {
		return dictionary.Record{}, fmt.Errorf("%w: response has no definition", dictionary.ErrNotFound)
	}

	rec := dictionary.Record{
		Word:         r.ID,
		PartOfSpeech: lex.LexicalCategory.ID,
		Definition:   first.Definitions[0],
	}
	if len(first.Examples) > 0 {
		rec.Example = first.Examples[0].Text
	}
	return rec, nil
}
