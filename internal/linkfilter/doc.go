// Package linkfilter decides which hyperlinks found on a crawled page are
// worth following and rewrites the survivors into canonical absolute URLs.
//
// Filter is a pure function: it performs no I/O and holds no state, so it can
// be called from any number of crawl workers concurrently. Its output is a
// fixed point, meaning that filtering an already filtered URL returns the
// same URL.
package linkfilter
