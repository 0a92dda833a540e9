// Package search answers exact-substring queries over a stored corpus.
//
// Five interchangeable algorithms count overlapping occurrences of a pattern
// in a text: a naive scan, Boyer-Moore, Knuth-Morris-Pratt, Rabin-Karp and
// Aho-Corasick. They are selected by name or short code through Lookup and
// always agree on the result; only their running time differs.
//
// Engine loads every record of a corpus, counts matches case-insensitively,
// drops pages without matches or with an already seen title, and ranks the
// rest by match count.
package search
