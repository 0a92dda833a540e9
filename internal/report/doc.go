// Package report writes crawl summaries and search reports.
//
// Writers for the output formats:
//   - SimpleWriter: human-readable text with result tables for terminal display
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: GitHub Flavored Markdown with a mermaid chart of matches
//   - CSVWriter: CSV rows for spreadsheets
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed with MultiWriter. WriteCorpora, WritePages,
// WriteCrawlHistory and ExportRecords serve the corpus management commands.
package report
