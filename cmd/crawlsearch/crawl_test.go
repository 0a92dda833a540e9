package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/crawlsearch/internal/config"
	"github.com/nao1215/crawlsearch/internal/corpus"
	"github.com/nao1215/crawlsearch/internal/crawler"
)

// TestNewCrawlCmd tests the crawl command flags.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"workers", "w", "8"},
		{"rate", "r", "5"},
		{"timeout", "t", "15s"},
		{"max-pages", "p", "0"},
		{"name", "n", ""},
		{"batch", "b", "2"},
		{"config", "c", ""},
		{"frontier", "", "memory"},
		{"crawl-timeout", "", "0s"},
		{"db-dir", "", ""},
		{"json", "j", "false"},
		{"csv", "", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected flag %q", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

// writeConfigFile writes content to a config file in a temp directory.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".crawlsearch")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestBuildCrawlConfig tests flag parsing into a Config.
func TestBuildCrawlConfig(t *testing.T) {
	t.Parallel()

	t.Run("reads flags", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, "sites:\n  example.com:\n    maxPages: 7\n")
		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{
			"-w", "3", "-r", "0", "-p", "50", "-n", "docs", "--crawl-timeout", "1m",
			"--frontier", "redis", "--redis-addr", "localhost:6379",
			"--db-dir", "/tmp/cs", "--markdown", "-c", path,
		}); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildCrawlConfig(cmd, []string{"example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Workers != 3 {
			t.Errorf("expected 3 workers, got %d", cfg.Workers)
		}
		if cfg.Rate != 0 {
			t.Errorf("expected rate 0, got %v", cfg.Rate)
		}
		if cfg.MaxPages != 50 {
			t.Errorf("expected max pages 50, got %d", cfg.MaxPages)
		}
		if cfg.CorpusName != "docs" {
			t.Errorf("expected name docs, got %q", cfg.CorpusName)
		}
		if cfg.CrawlTimeout != time.Minute {
			t.Errorf("expected crawl timeout 1m, got %v", cfg.CrawlTimeout)
		}
		if cfg.Frontier != config.FrontierRedis || cfg.RedisAddr != "localhost:6379" {
			t.Errorf("unexpected frontier settings: %q %q", cfg.Frontier, cfg.RedisAddr)
		}
		if cfg.StorageDir() != "/tmp/cs" {
			t.Errorf("expected db dir /tmp/cs, got %q", cfg.StorageDir())
		}
		if !cfg.MarkdownReport {
			t.Error("expected markdown report")
		}
		if got := cfg.SiteConfigs.GetSiteConfig("example.com").MaxPages; got != 7 {
			t.Errorf("expected site max pages 7, got %d", got)
		}
		if len(cfg.Origins) != 1 || cfg.Origins[0] != "example.com" {
			t.Errorf("unexpected origins: %v", cfg.Origins)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		missing := filepath.Join(t.TempDir(), "nope.yaml")
		if err := cmd.ParseFlags([]string{"-c", missing}); err != nil {
			t.Fatal(err)
		}
		if _, err := buildCrawlConfig(cmd, []string{"example.com"}); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("invalid config file", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, "sites: [unclosed\n")
		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-c", path}); err != nil {
			t.Fatal(err)
		}
		if _, err := buildCrawlConfig(cmd, []string{"example.com"}); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestRunCrawlCmdValidation tests that bad flags fail before any I/O.
func TestRunCrawlCmdValidation(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "sites: {}\n")

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"no origins", []string{"crawl", "-c", path}, config.ErrNoTarget},
		{"zero workers", []string{"crawl", "-c", path, "-w", "0", "example.com"}, config.ErrInvalidWorkers},
		{"name with many origins", []string{"crawl", "-c", path, "-n", "x", "a.com", "b.com"}, config.ErrNameWithManyOrigins},
		{"redis without address", []string{"crawl", "-c", path, "--frontier", "redis", "example.com"}, config.ErrRedisAddrRequired},
		{"two formats", []string{"crawl", "-c", path, "--json", "--csv", "example.com"}, config.ErrConflictingReportFormats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := execute(t, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// newSite starts a TLS server serving pages by path.
func newSite(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

// testCrawlConfig returns a Config crawling origin into a temp database.
func testCrawlConfig(t *testing.T, name string, origins ...string) *config.Config {
	t.Helper()

	cfg := config.NewConfig()
	cfg.Origins = origins
	cfg.CorpusName = name
	cfg.DBDir = t.TempDir()
	cfg.Rate = 0
	cfg.DequeueTimeout = 50 * time.Millisecond
	cfg.Retries = 0
	cfg.SiteConfigs = &config.File{Sites: map[string]config.SiteConfig{}}
	return cfg
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// TestRunCrawl crawls a local site through the CLI wiring.
func TestRunCrawl(t *testing.T) {
	t.Parallel()

	t.Run("crawls site and records history", func(t *testing.T) {
		t.Parallel()

		server := newSite(t, map[string]string{
			"/":  `<html><head><title>Home</title></head><body>gopher <a href="/a">a</a> <a href="/b">b</a></body></html>`,
			"/a": `<html><head><title>A</title></head><body>gopher gopher <a href="/">home</a></body></html>`,
			"/b": `<html><head><title>B</title></head><body>nothing <a href="/photo.png">img</a></body></html>`,
		})
		cfg := testCrawlConfig(t, "site", server.URL)

		var out bytes.Buffer
		if err := runCrawl(context.Background(), cfg, discardLogger, &out, server.Client()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "Visited:  3 pages") {
			t.Errorf("expected 3 visited pages, got:\n%s", out.String())
		}

		store, err := corpus.Open(cfg.DBDir, corpus.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		defer store.Close()

		rows, err := store.RowCount(context.Background(), "site")
		if err != nil {
			t.Fatal(err)
		}
		if rows != 3 {
			t.Errorf("expected 3 rows, got %d", rows)
		}

		runs, err := store.CrawlRuns(context.Background(), "site")
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 1 || runs[0].Visited != 3 {
			t.Errorf("expected one recorded run with 3 visits, got %+v", runs)
		}
	})

	t.Run("site config limits pages", func(t *testing.T) {
		t.Parallel()

		server := newSite(t, map[string]string{
			"/":  `<html><head><title>Home</title></head><body><a href="/a">a</a><a href="/b">b</a></body></html>`,
			"/a": `<html><head><title>A</title></head><body>a</body></html>`,
			"/b": `<html><head><title>B</title></head><body>b</body></html>`,
		})
		cfg := testCrawlConfig(t, "limited", server.URL)
		cfg.SiteConfigs.Defaults = config.SiteConfig{MaxPages: 1}
		cfg.JSONReport = true

		var out bytes.Buffer
		if err := runCrawl(context.Background(), cfg, discardLogger, &out, server.Client()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var summary struct {
			Visited int `json:"visited"`
		}
		if err := json.Unmarshal(out.Bytes(), &summary); err != nil {
			t.Fatalf("invalid JSON report: %v", err)
		}
		if summary.Visited != 1 {
			t.Errorf("expected 1 visited page, got %d", summary.Visited)
		}
	})

	t.Run("unreachable origin fails", func(t *testing.T) {
		t.Parallel()

		server := newSite(t, map[string]string{})
		url := server.URL
		server.Close()

		cfg := testCrawlConfig(t, "gone", url)
		cfg.ReportFile = filepath.Join(t.TempDir(), "out", "report.txt")

		err := runCrawl(context.Background(), cfg, discardLogger, io.Discard, server.Client())
		if !errors.Is(err, crawler.ErrOriginUnreachable) {
			t.Fatalf("expected ErrOriginUnreachable, got %v", err)
		}

		content, readErr := os.ReadFile(cfg.ReportFile)
		if readErr != nil {
			t.Fatalf("expected report file: %v", readErr)
		}
		if !strings.Contains(string(content), "FAILED") {
			t.Errorf("expected failure in report, got:\n%s", content)
		}
	})
}
