package linkfilter

import "slices"

// Rules holds the denylists applied by Filter.
// The lists are configuration data; DefaultRules returns the built-in set
// tuned for wiki-style sites, and the config file may replace or extend it.
type Rules struct {
	// BannedSchemes are scheme prefixes that never lead to crawlable pages.
	// Matching is case-insensitive and anchored at the start of the link.
	BannedSchemes []string `yaml:"bannedSchemes,omitempty" json:"bannedSchemes,omitempty"`

	// BannedExtensions are file extensions (without the dot) of the final
	// path segment that identify non-HTML resources.
	BannedExtensions []string `yaml:"bannedExtensions,omitempty" json:"bannedExtensions,omitempty"`

	// BannedSegments are substrings that disqualify a link wherever they
	// appear, such as wiki namespaces ("/Category:") or locale prefixes ("/ru/").
	BannedSegments []string `yaml:"bannedSegments,omitempty" json:"bannedSegments,omitempty"`

	// BannedSuffixes disqualify a link whose path ends with them,
	// typically locale roots such as "/es" or "/pt-br".
	BannedSuffixes []string `yaml:"bannedSuffixes,omitempty" json:"bannedSuffixes,omitempty"`
}

// DefaultRules returns the built-in denylists.
func DefaultRules() Rules {
	return Rules{
		BannedSchemes: []string{"mailto:", "tel:", "javascript:", "data:"},
		BannedExtensions: []string{
			"jpg", "jpeg", "png", "gif", "svg", "webp", "ico", "pdf", "aspx",
			"zip", "mp3", "mp4",
		},
		BannedSegments: []string{
			"/Category:", "/File:", "/Talk:", "/User:", "/Blog:", "/User_blog:",
			"/Special:", "/Template:", "/Template_talk:", "Wiki_talk:", "/Help:",
			"/Source:", "/Forum:", "/Forum_talk:", "/javascript:void",
			"/ru/", "/es/", "/ja/", "/de/", "/fi/", "/fr/", "/f/", "/pt-br/",
			"/uk/", "/he/", "/tr/", "/vi/", "/sv/", "/lt/", "/pl/", "/hu/",
			"/ko/", "/da/", "/zh/", "/cs/", "/nl/", "/it/", "/el/", "/pt/",
			"/th/", "/id/",
		},
		BannedSuffixes: []string{
			"/es", "/de", "/ja", "/fr", "/zh", "/pl", "/ru", "/nl", "/uk",
			"/ko", "/it", "/hu", "/sv", "/cs", "/ms", "/da", "/pt-br",
		},
	}
}

// IsZero reports whether no denylist is set.
func (r Rules) IsZero() bool {
	return len(r.BannedSchemes) == 0 && len(r.BannedExtensions) == 0 &&
		len(r.BannedSegments) == 0 && len(r.BannedSuffixes) == 0
}

// Merge returns a copy of r extended with the entries of other.
// Entries already present in r are not duplicated.
func (r Rules) Merge(other Rules) Rules {
	return Rules{
		BannedSchemes:    appendUnique(r.BannedSchemes, other.BannedSchemes),
		BannedExtensions: appendUnique(r.BannedExtensions, other.BannedExtensions),
		BannedSegments:   appendUnique(r.BannedSegments, other.BannedSegments),
		BannedSuffixes:   appendUnique(r.BannedSuffixes, other.BannedSuffixes),
	}
}

func appendUnique(base, extra []string) []string {
	out := slices.Clone(base)
	for _, e := range extra {
		if !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	return out
}
