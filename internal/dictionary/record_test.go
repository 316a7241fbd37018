package dictionary

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr bool
		missing string
	}{
		{name: "complete", rec: run},
		{name: "no example", rec: walk},
		{name: "missing word", rec: Record{PartOfSpeech: "noun", Definition: "d"}, wantErr: true, missing: "word"},
		{name: "blank part of speech", rec: Record{Word: "w", PartOfSpeech: "  ", Definition: "d"}, wantErr: true, missing: "part_of_speech"},
		{name: "missing definition", rec: Record{Word: "w", PartOfSpeech: "noun"}, wantErr: true, missing: "definition"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			if !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("Validate() error = %v, want ErrInvalidRecord", err)
			}
			if !strings.Contains(err.Error(), tt.missing) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.missing)
			}
		})
	}
}

func TestRecord_String(t *testing.T) {
	got := run.String()
	for _, want := range []string{
		"Word          : run",
		"Part of speech: verb",
		"Definition    : move at speed",
		"Example       : he can run fast",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("String() missing %q:\n%s", want, got)
		}
	}

	if !strings.Contains(walk.String(), "Example       : None") {
		t.Errorf("String() without example should print None:\n%s", walk.String())
	}
}

func TestSourceError_Is(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("search: %w", &SourceError{Tier: TierOxford, Word: "run", Err: cause})

	if !errors.Is(err, ErrSourceUnavailable) {
		t.Error("SourceError should match ErrSourceUnavailable")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("SourceError should match ErrNotFound")
	}
	if !errors.Is(err, cause) {
		t.Error("SourceError should unwrap to its cause")
	}
	if errors.Is(err, ErrInvalidRecord) {
		t.Error("SourceError should not match ErrInvalidRecord")
	}
}

func TestSourceError_Error(t *testing.T) {
	tests := []struct {
		err  *SourceError
		want string
	}{
		{
			err:  &SourceError{Tier: TierOxford, Word: "run", Status: 403},
			want: `oxford lookup of "run" failed: code 403`,
		},
		{
			err:  &SourceError{Tier: TierOxford, Word: "run", Err: errors.New("timeout")},
			want: `oxford lookup of "run" failed: timeout`,
		},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestNotFoundError(t *testing.T) {
	err := NotFoundError(TierLocal, "zzz")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("NotFoundError() = %v, want ErrNotFound", err)
	}
	if errors.Is(err, ErrSourceUnavailable) {
		t.Error("NotFoundError() should not match ErrSourceUnavailable")
	}
	if !strings.Contains(err.Error(), `"zzz"`) {
		t.Errorf("NotFoundError() = %v, want the word quoted", err)
	}
}
