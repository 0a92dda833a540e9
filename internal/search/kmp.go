package search

// KMP is the Knuth-Morris-Pratt algorithm. It never re-reads a text byte.
type KMP struct{}

// Name implements Algorithm.
func (KMP) Name() string { return "kmp" }

// Code implements Algorithm.
func (KMP) Code() string { return "KMP" }

// Compile implements Algorithm.
func (KMP) Compile(pattern string) Matcher {
	if pattern == "" {
		return noMatch{}
	}
	return scanMatcher{&kmp{pattern: pattern, prefix: prefixFunction(pattern)}}
}

type kmp struct {
	pattern string
	// prefix[i] is the length of the longest proper prefix of pattern[:i+1]
	// that is also its suffix.
	prefix []int
}

func (k *kmp) scan(text string, emit func(int)) {
	m := len(k.pattern)
	j := 0
	for i := 0; i < len(text); i++ {
		for j > 0 && text[i] != k.pattern[j] {
			j = k.prefix[j-1]
		}
		if text[i] == k.pattern[j] {
			j++
		}
		if j == m {
			emit(i - m + 1)
			j = k.prefix[j-1]
		}
	}
}

func prefixFunction(pattern string) []int {
	prefix := make([]int, len(pattern))
	k := 0
	for i := 1; i < len(pattern); i++ {
		for k > 0 && pattern[i] != pattern[k] {
			k = prefix[k-1]
		}
		if pattern[i] == pattern[k] {
			k++
		}
		prefix[i] = k
	}
	return prefix
}
