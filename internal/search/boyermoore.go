package search

// BoyerMoore compares right to left and skips ahead using the
// bad-character and strong good-suffix rules.
type BoyerMoore struct{}

// Name implements Algorithm.
func (BoyerMoore) Name() string { return "boyer-moore" }

// Code implements Algorithm.
func (BoyerMoore) Code() string { return "BM" }

// Compile implements Algorithm.
func (BoyerMoore) Compile(pattern string) Matcher {
	if pattern == "" {
		return noMatch{}
	}
	bm := &boyerMoore{pattern: pattern, goodSuffix: goodSuffixShifts(pattern)}
	for i := range bm.lastIndex {
		bm.lastIndex[i] = -1
	}
	for i := 0; i < len(pattern); i++ {
		bm.lastIndex[pattern[i]] = i
	}
	return scanMatcher{bm}
}

type boyerMoore struct {
	pattern string
	// lastIndex is the rightmost position of each byte in pattern, or -1.
	lastIndex [256]int
	// goodSuffix[j] is the shift after a mismatch at j-1; goodSuffix[0]
	// is the shift after a full match.
	goodSuffix []int
}

func (bm *boyerMoore) scan(text string, emit func(int)) {
	m, n := len(bm.pattern), len(text)
	for s := 0; s <= n-m; {
		j := m - 1
		for j >= 0 && bm.pattern[j] == text[s+j] {
			j--
		}
		if j < 0 {
			emit(s)
			s += bm.goodSuffix[0]
			continue
		}
		s += max(bm.goodSuffix[j+1], j-bm.lastIndex[text[s+j]])
	}
}

// goodSuffixShifts computes the strong good-suffix table.
// border[i] is the start of the widest border of pattern[i:].
func goodSuffixShifts(pattern string) []int {
	m := len(pattern)
	shift := make([]int, m+1)
	border := make([]int, m+1)

	i, j := m, m+1
	border[i] = j
	for i > 0 {
		for j <= m && pattern[i-1] != pattern[j-1] {
			if shift[j] == 0 {
				shift[j] = j - i
			}
			j = border[j]
		}
		i--
		j--
		border[i] = j
	}

	j = border[0]
	for i = 0; i <= m; i++ {
		if shift[i] == 0 {
			shift[i] = j
		}
		if i == j {
			j = border[j]
		}
	}
	return shift
}
