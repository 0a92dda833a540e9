// Package main provides the entry point for the crawlsearch CLI.
//
// crawlsearch crawls a single website breadth-first, stores the text of
// every page in a named corpus, and answers exact substring queries against
// that corpus with one of five string-search algorithms.
//
// Usage:
//
//	crawlsearch crawl <url>
//	crawlsearch search <corpus> <pattern>
//	crawlsearch corpus list
//
// See --help for all available options.
package main

// main is the entry point for crawlsearch.
func main() {
	Execute()
}
