package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestCrawlStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state CrawlState
		want  string
	}{
		{CrawlSeeding, "seeding"},
		{CrawlRunning, "running"},
		{CrawlDraining, "draining"},
		{CrawlDone, "done"},
		{CrawlFailed, "failed"},
		{CrawlState(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestCrawlStateIsTerminal(t *testing.T) {
	t.Parallel()

	if !CrawlDone.IsTerminal() || !CrawlFailed.IsTerminal() {
		t.Error("expected done and failed to be terminal")
	}
	if CrawlRunning.IsTerminal() || CrawlSeeding.IsTerminal() || CrawlDraining.IsTerminal() {
		t.Error("expected seeding, running and draining to be non-terminal")
	}
}

func TestNewCrawlJob(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	a := NewCrawlJob("https://example.com/", "example.com", "example_com", now)
	b := NewCrawlJob("https://example.com/", "example.com", "example_com", now)

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty IDs, got %q and %q", a.ID, b.ID)
	}
	if a.Status != CrawlSeeding {
		t.Errorf("expected seeding, got %v", a.Status)
	}

	summary := NewCrawlSummary(a)
	if summary.JobID != a.ID || summary.Corpus != "example_com" || !summary.StartedAt.Equal(now) {
		t.Errorf("summary does not mirror job: %+v", summary)
	}
}

func TestCrawlSummaryJSON(t *testing.T) {
	t.Parallel()

	s := &CrawlSummary{State: CrawlDone, Visited: 3, Elapsed: 1500 * time.Millisecond}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"state":"done"`) {
		t.Errorf("expected state by name, got %s", data)
	}
	if s.ElapsedSeconds() != 1.5 {
		t.Errorf("expected 1.5 seconds, got %v", s.ElapsedSeconds())
	}
}
