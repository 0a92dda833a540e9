package report

import (
	"io"

	"github.com/nao1215/crawlsearch/internal/model"
)

// Writer defines the interface for report output.
// Implementations write crawl summaries and search reports in various formats.
type Writer interface {
	// WriteCrawl outputs the outcome of one crawl.
	// Returns the number of bytes written and any error encountered.
	WriteCrawl(summary *model.CrawlSummary) (int, error)

	// WriteSearch outputs the ranked results of one search.
	WriteSearch(report *model.SearchReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteCrawl outputs the summary to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) WriteCrawl(summary *model.CrawlSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteCrawl(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSearch outputs the search report to all configured Writers.
func (m *MultiWriter) WriteSearch(report *model.SearchReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSearch(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// orDash returns "-" for an empty string.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
