package report

import (
	"bytes"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/nao1215/crawlsearch/internal/model"
)

// CSVWriter outputs reports as CSV with a header row, for spreadsheets.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteCrawl outputs the summary as a single CSV row.
func (w *CSVWriter) WriteCrawl(summary *model.CrawlSummary) (int, error) {
	return w.marshal([]*model.CrawlSummary{summary})
}

// WriteSearch outputs one CSV row per result.
func (w *CSVWriter) WriteSearch(report *model.SearchReport) (int, error) {
	return w.marshal(report.Results)
}

func (w *CSVWriter) marshal(rows any) (int, error) {
	var buf bytes.Buffer
	if err := gocsv.Marshal(rows, &buf); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}

// ExportRecords writes every record of a corpus as CSV.
func ExportRecords(output io.Writer, records []*model.PageRecord) error {
	return gocsv.Marshal(records, output)
}
