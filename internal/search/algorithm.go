package search

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAlgorithm is returned by Lookup for an unrecognized name.
var ErrUnknownAlgorithm = errors.New("unknown search algorithm")

// Algorithm is a substring search strategy.
type Algorithm interface {
	// Name is the canonical lower-case name, for example "boyer-moore".
	Name() string

	// Code is the short upper-case code, for example "BM".
	Code() string

	// Compile preprocesses pattern. The returned Matcher can be reused for
	// any number of texts and is safe for concurrent use.
	Compile(pattern string) Matcher
}

// Matcher finds the occurrences of one compiled pattern.
// Occurrences may overlap: "aa" occurs three times in "aaaa".
// An empty pattern never matches.
type Matcher interface {
	// FindAll returns the byte offsets of every occurrence, in increasing order.
	FindAll(text string) []int

	// Count returns len(FindAll(text)) without allocating the offsets.
	Count(text string) int
}

// Count is a convenience for a.Compile(pattern).Count(text).
func Count(a Algorithm, pattern, text string) int {
	return a.Compile(pattern).Count(text)
}

// FindAll is a convenience for a.Compile(pattern).FindAll(text).
func FindAll(a Algorithm, pattern, text string) []int {
	return a.Compile(pattern).FindAll(text)
}

// registry is the single dispatch table for every algorithm.
var registry = []Algorithm{
	Naive{},
	BoyerMoore{},
	KMP{},
	RabinKarp{},
	AhoCorasick{},
}

// DefaultAlgorithm is used when no algorithm is named.
const DefaultAlgorithm = "naive"

// All returns every available algorithm in a stable order.
func All() []Algorithm {
	out := make([]Algorithm, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the algorithm with the given code (COUNT, BM, KMP, RK, AC)
// or name (naive, boyer-moore, kmp, rabin-karp, aho-corasick). Matching is
// case-insensitive and ignores '-' and '_'. An empty name selects the
// default algorithm.
func Lookup(name string) (Algorithm, error) {
	key := canonical(name)
	if key == "" {
		key = canonical(DefaultAlgorithm)
	}
	for _, a := range registry {
		if key == canonical(a.Name()) || key == canonical(a.Code()) {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownAlgorithm, name, strings.Join(Codes(), ", "))
}

// Codes lists the short codes of every algorithm.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for _, a := range registry {
		codes = append(codes, a.Code())
	}
	return codes
}

func canonical(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

// scanner reports every occurrence start to emit, in increasing order.
type scanner interface {
	scan(text string, emit func(start int))
}

// scanMatcher adapts a scanner to Matcher.
type scanMatcher struct {
	scanner
}

func (m scanMatcher) FindAll(text string) []int {
	var out []int
	m.scan(text, func(start int) {
		out = append(out, start)
	})
	return out
}

func (m scanMatcher) Count(text string) int {
	n := 0
	m.scan(text, func(int) {
		n++
	})
	return n
}

// noMatch is the Matcher of the empty pattern.
type noMatch struct{}

func (noMatch) FindAll(string) []int { return nil }
func (noMatch) Count(string) int     { return 0 }
