package corpus

import (
	"context"
	"errors"
	"testing"

	"github.com/nao1215/crawlsearch/internal/model"
)

func TestStopWordFilter(t *testing.T) {
	t.Parallel()

	f := NewStopWordFilter(StopWords())
	tests := []struct {
		in   string
		want string
	}{
		{in: "The cat sat on the mat", want: "cat sat mat"},
		{in: "  I   AM   here, now!  ", want: ""},
		{in: "Gophers love Go.", want: "Gophers love Go."},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := f.Apply(tt.in); got != tt.want {
			t.Errorf("Apply(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestPreprocess(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) Store {
		t.Helper()
		s, err := Open(t.TempDir(), DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })

		ctx := context.Background()
		_ = s.CreateCorpus(ctx, "site")
		_ = s.AppendRecord(ctx, "site", &model.PageRecord{URL: "u1", BodyText: "the quick fox"})
		_ = s.AppendRecord(ctx, "site", &model.PageRecord{URL: "u2", BodyText: "a lazy dog"})
		return s
	}

	t.Run("in place renames the corpus", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s := setup(t)

		name, err := Preprocess(ctx, s, "site", PreprocessOptions{})
		if err != nil {
			t.Fatalf("preprocess failed: %v", err)
		}
		if name != "site_pp" {
			t.Errorf("expected site_pp, got %s", name)
		}
		if ok, _ := s.CorpusExists(ctx, "site"); ok {
			t.Error("expected original corpus to be renamed")
		}
		records, _ := s.FetchAll(ctx, "site_pp")
		if len(records) != 2 || records[0].BodyText != "quick fox" || records[1].BodyText != "lazy dog" {
			t.Errorf("unexpected records %+v", records)
		}
	})

	t.Run("copy keeps the original", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s := setup(t)

		if _, err := Preprocess(ctx, s, "site", PreprocessOptions{Copy: true, StopWords: []string{"fox"}}); err != nil {
			t.Fatalf("preprocess failed: %v", err)
		}
		original, _ := s.FetchAll(ctx, "site")
		if original[0].BodyText != "the quick fox" {
			t.Errorf("expected original untouched, got %q", original[0].BodyText)
		}
		processed, _ := s.FetchAll(ctx, "site_pp")
		if processed[0].BodyText != "the quick" {
			t.Errorf("expected custom stop words applied, got %q", processed[0].BodyText)
		}
	})

	t.Run("rejects preprocessed input", func(t *testing.T) {
		t.Parallel()
		s := setup(t)

		if _, err := Preprocess(context.Background(), s, "site_pp", PreprocessOptions{}); !errors.Is(err, ErrInvalidCorpusName) {
			t.Errorf("expected ErrInvalidCorpusName, got %v", err)
		}
	})

	t.Run("missing corpus", func(t *testing.T) {
		t.Parallel()
		s := setup(t)

		if _, err := Preprocess(context.Background(), s, "nothing", PreprocessOptions{}); !errors.Is(err, ErrCorpusNotFound) {
			t.Errorf("expected ErrCorpusNotFound, got %v", err)
		}
	})
}
