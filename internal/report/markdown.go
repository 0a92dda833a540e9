package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/crawlsearch/internal/model"
)

// piechartLimit is the number of top results shown in the match chart.
const piechartLimit = 8

// MarkdownWriter outputs reports in GitHub Flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteCrawl outputs the crawl summary in Markdown format.
func (w *MarkdownWriter) WriteCrawl(summary *model.CrawlSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Origin", "`" + summary.OriginURL + "`"},
			{"Corpus", "`" + orDash(summary.Corpus) + "`"},
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages Visited", strconv.Itoa(summary.Visited)},
			{"Pages Stored", strconv.Itoa(summary.Stored)},
			{"Pages Failed", strconv.Itoa(summary.Failed)},
			{"Elapsed", fmt.Sprintf("%.3f s", summary.ElapsedSeconds())},
			{"Status", crawlStatusText(summary)},
		},
	})
	md.PlainText("")

	switch {
	case summary.State == model.CrawlFailed:
		md.Cautionf("The crawl failed: %s", summary.Error)
	case summary.TimedOut:
		md.Warningf("The crawl timed out after %.1f s; the corpus holds a partial crawl.", summary.ElapsedSeconds())
	case summary.Failed > 0:
		md.Note(fmt.Sprintf("%d page(s) could not be fetched or parsed.", summary.Failed))
	}
	md.PlainText("")

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// crawlStatusText returns the status text based on summary state.
func crawlStatusText(summary *model.CrawlSummary) string {
	switch {
	case summary.State == model.CrawlFailed:
		return "❌ Failed"
	case summary.TimedOut:
		return "⚠️ Timed Out (partial results)"
	default:
		return "✅ Complete"
	}
}

// WriteSearch outputs the search report in Markdown format.
func (w *MarkdownWriter) WriteSearch(report *model.SearchReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Search Results")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Corpus", "`" + report.Query.Corpus + "`"},
			{"Pattern", "`" + report.Query.Pattern + "`"},
			{"Algorithm", report.Algorithm},
			{"Pages Found", fmt.Sprintf("%d of %d", report.FoundPages, report.TotalPages)},
			{"Elapsed", fmt.Sprintf("%.6f s", report.Elapsed.Seconds())},
		},
	})
	md.PlainText("")

	if len(report.Results) == 0 {
		md.Note("No page contains the pattern.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	md.H2("Pages")
	md.PlainText("")

	rows := make([][]string, len(report.Results))
	for i, r := range report.Results {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(r.MatchCount),
			truncateString(orDash(r.Title), 60),
			r.URL,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Matches", "Title", "URL"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(report.Results) > 1 {
		w.writePieChart(md, report)
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writePieChart writes a mermaid pie chart of matches per top page.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.SearchReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Matches per page"),
		piechart.WithShowData(true),
	)

	for i, r := range report.Results {
		if i == piechartLimit {
			break
		}
		chart.LabelAndIntValue(truncateString(orDash(r.Title), 30), uint64(r.MatchCount)) //nolint:gosec // counts are non-negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [crawlsearch](https://github.com/nao1215/crawlsearch)*")
}
