// Package model defines the core data structures shared by the crawler,
// the corpus store, the search engine and the report writers.
//
// This package contains the following main types:
//   - CrawlJob and CrawlSummary: one crawl of one origin and its outcome
//   - Page and PageRecord: scraped page content and its stored form
//   - SearchQuery, SearchResult and SearchReport: substring search input and output
//   - CorpusInfo: a stored corpus and its size
//
// Keeping the types here lets crawler, corpus, search and report share them
// without import cycles.
package model
