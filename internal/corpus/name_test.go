package corpus

import (
	"errors"
	"strings"
	"testing"
)

func TestNameFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://www.example.com/", want: "example_com"},
		{in: "https://en.wikipedia.org/wiki/Go", want: "en_wikipedia_org"},
		{in: "example.com", want: "example_com"},
		{in: "HTTPS://WWW.Example.COM", want: "example_com"},
		{in: "https://example.com:8443/", want: "example_com"},
		{in: "https://127.0.0.1/", wantErr: true},
		{in: "https://my-site.com/", wantErr: true},
		{in: "https://" + strings.Repeat("a", 40) + ".com/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := NameFromURL(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCorpusName) {
					t.Errorf("expected ErrInvalidCorpusName, got %v (name %q)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	t.Parallel()

	valid := []string{"a", "example_com", "_private", "A1_b2", strings.Repeat("x", MaxNameLength)}
	for _, name := range valid {
		if err := ValidateName(name); err != nil {
			t.Errorf("expected %q to be valid, got %v", name, err)
		}
	}

	invalid := []string{
		"",
		"1abc",
		"has space",
		"semi;colon",
		`quo"te`,
		"dash-ed",
		"ünicode",
		strings.Repeat("x", MaxNameLength+1),
		"crawl_runs",
		"sqlite_sequence",
	}
	for _, name := range invalid {
		if err := ValidateName(name); !errors.Is(err, ErrInvalidCorpusName) {
			t.Errorf("expected %q to be invalid, got %v", name, err)
		}
	}
}

func TestPreprocessedName(t *testing.T) {
	t.Parallel()

	if got := PreprocessedName("example_com"); got != "example_com_pp" {
		t.Errorf("expected example_com_pp, got %s", got)
	}
	if !IsPreprocessed("example_com_pp") || IsPreprocessed("example_com") {
		t.Error("IsPreprocessed gave the wrong answer")
	}
}
