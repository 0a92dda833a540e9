package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/crawlsearch/internal/corpus"
	"github.com/nao1215/crawlsearch/internal/model"
)

// openSeeded opens the database in dir for assertions.
func openSeeded(t *testing.T, dir string) *corpus.SQLiteStore {
	t.Helper()

	store, err := corpus.Open(dir, corpus.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// TestCorpusCmd tests the corpus management subcommands.
func TestCorpusCmd(t *testing.T) {
	t.Parallel()

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{"list", "pages", "drop", "rename", "delete-page", "preprocess", "history", "export"} {
			cmd := findCommand(t, "corpus", name)
			if cmd.Name() != name {
				t.Errorf("expected subcommand %q, got %q", name, cmd.Name())
			}
		}
	})

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		dir := seedCorpus(t, "example_com", gopherRecords()...)
		out, err := execute(t, "corpus", "list", "--db-dir", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "example_com") {
			t.Errorf("expected corpus in listing, got:\n%s", out)
		}
	})

	t.Run("pages", func(t *testing.T) {
		t.Parallel()

		dir := seedCorpus(t, "example_com", gopherRecords()...)
		out, err := execute(t, "corpus", "pages", "--db-dir", dir, "example_com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Index(out, "https://example.com/a") > strings.Index(out, "https://example.com/b") {
			t.Errorf("expected crawl order, got:\n%s", out)
		}
	})

	t.Run("rename and drop", func(t *testing.T) {
		t.Parallel()

		dir := seedCorpus(t, "example_com", gopherRecords()...)
		if _, err := execute(t, "corpus", "rename", "--db-dir", dir, "example_com", "renamed"); err != nil {
			t.Fatalf("rename failed: %v", err)
		}
		if _, err := execute(t, "corpus", "drop", "--db-dir", dir, "renamed"); err != nil {
			t.Fatalf("drop failed: %v", err)
		}

		corpora, err := openSeeded(t, dir).ListCorpora(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(corpora) != 0 {
			t.Errorf("expected no corpora, got %v", corpora)
		}
	})

	t.Run("delete page", func(t *testing.T) {
		t.Parallel()

		dir := seedCorpus(t, "example_com", gopherRecords()...)
		if _, err := execute(t, "corpus", "delete-page", "--db-dir", dir, "example_com", "https://example.com/b"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err := execute(t, "corpus", "delete-page", "--db-dir", dir, "example_com", "https://example.com/b")
		if !errors.Is(err, corpus.ErrPageNotFound) {
			t.Errorf("expected ErrPageNotFound on second delete, got %v", err)
		}
	})

	t.Run("preprocess copy keeps source", func(t *testing.T) {
		t.Parallel()

		dir := seedCorpus(t, "example_com",
			&model.PageRecord{URL: "https://example.com/", Title: "Home", BodyText: "The gopher is in the garden"})
		out, err := execute(t, "corpus", "preprocess", "--db-dir", dir, "--copy", "example_com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "example_com_pp") {
			t.Errorf("expected target name, got %q", out)
		}

		store := openSeeded(t, dir)
		ctx := context.Background()
		for _, name := range []string{"example_com", "example_com_pp"} {
			ok, err := store.CorpusExists(ctx, name)
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				t.Errorf("expected corpus %s to exist", name)
			}
		}
		records, err := store.FetchAll(ctx, "example_com_pp")
		if err != nil {
			t.Fatal(err)
		}
		if records[0].BodyText != "gopher garden" {
			t.Errorf("expected stop words removed, got %q", records[0].BodyText)
		}
	})

	t.Run("history", func(t *testing.T) {
		t.Parallel()

		dir := seedCorpus(t, "example_com")
		out, err := execute(t, "corpus", "history", "--db-dir", dir, "example_com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "No crawls recorded.") {
			t.Errorf("expected empty history, got %q", out)
		}
	})

	t.Run("export to file", func(t *testing.T) {
		t.Parallel()

		dir := seedCorpus(t, "example_com", gopherRecords()...)
		path := filepath.Join(t.TempDir(), "export", "pages.csv")
		if _, err := execute(t, "corpus", "export", "--db-dir", dir, "-o", path, "example_com"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		lines := strings.Split(strings.TrimSpace(string(content)), "\n")
		if len(lines) != 5 {
			t.Errorf("expected header and 4 rows, got %d lines", len(lines))
		}
		if lines[0] != "url,title,description,body_text" {
			t.Errorf("unexpected header: %s", lines[0])
		}
	})

	t.Run("invalid name", func(t *testing.T) {
		t.Parallel()

		_, err := execute(t, "corpus", "pages", "--db-dir", t.TempDir(), "bad-name")
		if !errors.Is(err, corpus.ErrInvalidCorpusName) {
			t.Errorf("expected ErrInvalidCorpusName, got %v", err)
		}
	})
}
