package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rodaine/table"

	"github.com/nao1215/crawlsearch/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteCrawl outputs the crawl summary: pages visited and elapsed seconds,
// plus the failure reason when the crawl failed.
func (w *SimpleWriter) WriteCrawl(summary *model.CrawlSummary) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Crawled %s into corpus %s\n", summary.OriginURL, orDash(summary.Corpus))

	switch {
	case summary.State == model.CrawlFailed:
		fmt.Fprintf(&sb, "  Status:   FAILED - %s\n", summary.Error)
	case summary.TimedOut:
		sb.WriteString("  Status:   TIMED OUT (partial results)\n")
	default:
		sb.WriteString("  Status:   Complete\n")
	}

	fmt.Fprintf(&sb, "  Visited:  %d pages\n", summary.Visited)
	if w.verbose || summary.Failed > 0 {
		fmt.Fprintf(&sb, "  Stored:   %d pages\n", summary.Stored)
		fmt.Fprintf(&sb, "  Failed:   %d pages\n", summary.Failed)
	}
	fmt.Fprintf(&sb, "  Elapsed:  %.3f s\n", summary.ElapsedSeconds())
	if w.verbose && summary.JobID != "" {
		fmt.Fprintf(&sb, "  Job:      %s\n", summary.JobID)
	}
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// WriteSearch outputs the ranked results as a table.
func (w *SimpleWriter) WriteSearch(report *model.SearchReport) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Search %q in %s (%s)\n", report.Query.Pattern, report.Query.Corpus, report.Algorithm)
	fmt.Fprintf(&sb, "Found %d of %d pages in %.6f s\n\n",
		report.FoundPages, report.TotalPages, report.Elapsed.Seconds())

	if len(report.Results) == 0 {
		sb.WriteString("No matching pages.\n\n")
		return io.WriteString(w.output, sb.String())
	}

	tbl := table.New("#", "Matches", "Title", "URL").WithWriter(&sb)
	for i, r := range report.Results {
		tbl.AddRow(i+1, r.MatchCount, truncateString(orDash(r.Title), 60), r.URL)
	}
	tbl.Print()

	if shown := len(report.Results); shown < report.FoundPages {
		fmt.Fprintf(&sb, "\n(%d more not shown)\n", report.FoundPages-shown)
	}
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// WriteCorpora prints one row per corpus with its record count.
func WriteCorpora(output io.Writer, corpora []model.CorpusInfo) (int, error) {
	if len(corpora) == 0 {
		return io.WriteString(output, "No corpora.\n")
	}

	var sb strings.Builder
	tbl := table.New("Corpus", "Pages").WithWriter(&sb)
	for _, c := range corpora {
		tbl.AddRow(c.Name, c.Rows)
	}
	tbl.Print()

	return io.WriteString(output, sb.String())
}

// WritePages prints one row per stored page.
func WritePages(output io.Writer, records []*model.PageRecord) (int, error) {
	if len(records) == 0 {
		return io.WriteString(output, "No pages.\n")
	}

	var sb strings.Builder
	tbl := table.New("#", "Title", "URL", "Body").WithWriter(&sb)
	for i, r := range records {
		tbl.AddRow(i+1, truncateString(orDash(r.Title), 50), r.URL, strconv.Itoa(len(r.BodyText))+" B")
	}
	tbl.Print()

	return io.WriteString(output, sb.String())
}

// WriteCrawlHistory prints past crawls of a corpus, most recent first.
func WriteCrawlHistory(output io.Writer, runs []model.CrawlSummary) (int, error) {
	if len(runs) == 0 {
		return io.WriteString(output, "No crawls recorded.\n")
	}

	var sb strings.Builder
	tbl := table.New("Started", "State", "Visited", "Stored", "Failed", "Elapsed", "Origin").WithWriter(&sb)
	for _, r := range runs {
		tbl.AddRow(
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.State,
			r.Visited,
			r.Stored,
			r.Failed,
			fmt.Sprintf("%.3fs", r.ElapsedSeconds()),
			r.OriginURL,
		)
	}
	tbl.Print()

	return io.WriteString(output, sb.String())
}
