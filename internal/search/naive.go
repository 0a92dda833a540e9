package search

import "strings"

// Naive restarts strings.Index one byte after every hit.
type Naive struct{}

// Name implements Algorithm.
func (Naive) Name() string { return "naive" }

// Code implements Algorithm.
func (Naive) Code() string { return "COUNT" }

// Compile implements Algorithm.
func (Naive) Compile(pattern string) Matcher {
	if pattern == "" {
		return noMatch{}
	}
	return scanMatcher{naiveScanner(pattern)}
}

type naiveScanner string

func (p naiveScanner) scan(text string, emit func(int)) {
	pattern := string(p)
	for i := 0; i+len(pattern) <= len(text); {
		j := strings.Index(text[i:], pattern)
		if j < 0 {
			return
		}
		emit(i + j)
		i += j + 1
	}
}
