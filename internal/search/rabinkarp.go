package search

// Default rolling hash parameters.
const (
	DefaultRabinKarpBase    = 256
	DefaultRabinKarpModulus = 1_000_000_007
)

// RabinKarp compares rolling hashes of the pattern and each text window.
// Every hash hit is verified byte for byte, so collisions never produce
// false matches. The zero value uses the default base and modulus.
// Modulus must stay below 2^56 so intermediate products fit in a uint64.
type RabinKarp struct {
	Base    uint64
	Modulus uint64
}

// Name implements Algorithm.
func (RabinKarp) Name() string { return "rabin-karp" }

// Code implements Algorithm.
func (RabinKarp) Code() string { return "RK" }

// Compile implements Algorithm.
func (r RabinKarp) Compile(pattern string) Matcher {
	if pattern == "" {
		return noMatch{}
	}
	rk := &rabinKarp{pattern: pattern, base: r.Base, mod: r.Modulus}
	if rk.base == 0 {
		rk.base = DefaultRabinKarpBase
	}
	if rk.mod == 0 {
		rk.mod = DefaultRabinKarpModulus
	}
	rk.base %= rk.mod

	// high = base^(m-1) mod q, the weight of the byte leaving the window.
	rk.high = 1
	for i := 1; i < len(pattern); i++ {
		rk.high = rk.high * rk.base % rk.mod
	}
	rk.hash = rk.sum(pattern)
	return scanMatcher{rk}
}

type rabinKarp struct {
	pattern string
	base    uint64
	mod     uint64
	high    uint64
	hash    uint64
}

func (rk *rabinKarp) sum(s string) uint64 {
	var h uint64
	for i := 0; i < len(s); i++ {
		h = (h*rk.base + uint64(s[i])) % rk.mod
	}
	return h
}

func (rk *rabinKarp) scan(text string, emit func(int)) {
	m, n := len(rk.pattern), len(text)
	if m > n {
		return
	}
	h := rk.sum(text[:m])
	for s := 0; ; s++ {
		if h == rk.hash && text[s:s+m] == rk.pattern {
			emit(s)
		}
		if s+m >= n {
			return
		}
		out := uint64(text[s]) % rk.mod * rk.high % rk.mod
		h = ((h+rk.mod-out)%rk.mod*rk.base + uint64(text[s+m])) % rk.mod
	}
}
