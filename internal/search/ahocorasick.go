package search

// AhoCorasick runs a single-pattern Automaton. The automaton itself accepts
// any number of patterns; see NewAutomaton.
type AhoCorasick struct{}

// Name implements Algorithm.
func (AhoCorasick) Name() string { return "aho-corasick" }

// Code implements Algorithm.
func (AhoCorasick) Code() string { return "AC" }

// Compile implements Algorithm.
func (AhoCorasick) Compile(pattern string) Matcher {
	if pattern == "" {
		return noMatch{}
	}
	return scanMatcher{acScanner{NewAutomaton(pattern)}}
}

type acScanner struct {
	a *Automaton
}

func (s acScanner) scan(text string, emit func(int)) {
	s.a.Scan(text, func(m Match) {
		emit(m.Start)
	})
}

// Match is one occurrence found by an Automaton.
type Match struct {
	// Pattern is the index of the matched pattern in NewAutomaton's arguments.
	Pattern int
	// Start is the byte offset of the occurrence in the text.
	Start int
}

// Automaton is an Aho-Corasick trie with failure links.
// It is immutable after construction and safe for concurrent use.
type Automaton struct {
	patterns []string
	nodes    []acNode
}

type acNode struct {
	next map[byte]int
	fail int
	// out lists every pattern ending at this node, including those
	// reached through failure links.
	out []int
}

// NewAutomaton builds an automaton for patterns. Empty patterns never match.
func NewAutomaton(patterns ...string) *Automaton {
	a := &Automaton{
		patterns: patterns,
		nodes:    []acNode{{next: map[byte]int{}}},
	}
	for i, p := range patterns {
		if p == "" {
			continue
		}
		a.insert(i, p)
	}
	a.link()
	return a
}

func (a *Automaton) insert(index int, pattern string) {
	cur := 0
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		nxt, ok := a.nodes[cur].next[c]
		if !ok {
			a.nodes = append(a.nodes, acNode{next: map[byte]int{}})
			nxt = len(a.nodes) - 1
			a.nodes[cur].next[c] = nxt
		}
		cur = nxt
	}
	a.nodes[cur].out = append(a.nodes[cur].out, index)
}

// link computes failure links breadth-first so every node's failure
// target is finished before the node itself.
func (a *Automaton) link() {
	queue := make([]int, 0, len(a.nodes))
	for _, child := range a.nodes[0].next {
		a.nodes[child].fail = 0
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for c, v := range a.nodes[u].next {
			f := a.nodes[u].fail
			for f != 0 {
				if _, ok := a.nodes[f].next[c]; ok {
					break
				}
				f = a.nodes[f].fail
			}
			if target, ok := a.nodes[f].next[c]; ok && target != v {
				a.nodes[v].fail = target
			} else {
				a.nodes[v].fail = 0
			}
			a.nodes[v].out = append(a.nodes[v].out, a.nodes[a.nodes[v].fail].out...)
			queue = append(queue, v)
		}
	}
}

// Scan reports every occurrence of every pattern to emit, ordered by end
// position.
func (a *Automaton) Scan(text string, emit func(Match)) {
	state := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		for state != 0 {
			if _, ok := a.nodes[state].next[c]; ok {
				break
			}
			state = a.nodes[state].fail
		}
		if nxt, ok := a.nodes[state].next[c]; ok {
			state = nxt
		}
		for _, p := range a.nodes[state].out {
			emit(Match{Pattern: p, Start: i - len(a.patterns[p]) + 1})
		}
	}
}

// FindAll returns every occurrence of every pattern in text.
func (a *Automaton) FindAll(text string) []Match {
	var out []Match
	a.Scan(text, func(m Match) {
		out = append(out, m)
	})
	return out
}

// Counts returns the number of occurrences of each pattern, indexed like
// the patterns passed to NewAutomaton.
func (a *Automaton) Counts(text string) []int {
	counts := make([]int, len(a.patterns))
	a.Scan(text, func(m Match) {
		counts[m.Pattern]++
	})
	return counts
}
