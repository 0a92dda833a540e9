package model

import "time"

// SearchQuery describes one substring search over a corpus.
type SearchQuery struct {
	// Corpus is the name of the corpus to search.
	Corpus string `json:"corpus"`

	// Pattern is matched case-insensitively as an exact substring.
	Pattern string `json:"pattern"`

	// Algorithm selects the matcher by code or name (for example "KMP").
	Algorithm string `json:"algorithm"`

	// MaxResults caps the number of results. Zero or less means no cap.
	MaxResults int `json:"max_results"`
}

// SearchResult is one ranked page.
type SearchResult struct {
	MatchCount int    `json:"match_count" csv:"matches"`
	URL        string `json:"url" csv:"url"`
	Title      string `json:"title" csv:"title"`
}

// SearchReport is the answer to a SearchQuery.
type SearchReport struct {
	Query SearchQuery `json:"query"`

	// Algorithm is the canonical name of the matcher that ran.
	Algorithm string `json:"algorithm"`

	// Results are sorted by MatchCount descending, ties in corpus order.
	Results []SearchResult `json:"results"`

	// FoundPages is the number of pages with at least one match after
	// title de-duplication and before truncation.
	FoundPages int `json:"found_pages"`

	// TotalPages is the number of records in the corpus.
	TotalPages int `json:"total_pages"`

	// Elapsed is the time spent loading and scanning the corpus.
	Elapsed time.Duration `json:"elapsed_ns"`
}

// NewSearchReport creates an empty report for q.
func NewSearchReport(q SearchQuery) *SearchReport {
	return &SearchReport{
		Query:   q,
		Results: []SearchResult{},
	}
}
