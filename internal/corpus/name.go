package corpus

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Errors returned by corpus operations.
var (
	// ErrInvalidCorpusName is returned when a name is not a safe identifier.
	ErrInvalidCorpusName = errors.New("invalid corpus name")

	// ErrCorpusNotFound is returned when an operation targets a missing corpus.
	ErrCorpusNotFound = errors.New("corpus not found")

	// ErrCorpusExists is returned when creating or renaming onto an existing corpus.
	ErrCorpusExists = errors.New("corpus already exists")

	// ErrPageNotFound is returned when deleting or updating a URL the corpus does not hold.
	ErrPageNotFound = errors.New("page not found in corpus")
)

// MaxNameLength is the longest accepted corpus name.
const MaxNameLength = 31

// PreprocessedSuffix is appended to the name of a stop-word filtered corpus.
const PreprocessedSuffix = "_pp"

// crawlRunsTable holds the crawl history and is never listed as a corpus.
const crawlRunsTable = "crawl_runs"

// NameFromURL derives the corpus name of a site: the lower-cased host
// without a leading "www." and with dots replaced by underscores.
// The result is validated; hosts that yield an invalid name need an
// explicit name.
func NameFromURL(rawURL string) (string, error) {
	s := strings.TrimSpace(rawURL)
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: cannot parse %q: %w", ErrInvalidCorpusName, rawURL, err)
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	name := strings.ReplaceAll(host, ".", "_")
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}

// ValidateName checks that name is non-empty, at most MaxNameLength bytes,
// made of ASCII letters, digits and underscores, does not start with a
// digit and is not reserved.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidCorpusName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidCorpusName, name, MaxNameLength)
	}
	if name[0] >= '0' && name[0] <= '9' {
		return fmt.Errorf("%w: %q starts with a digit", ErrInvalidCorpusName, name)
	}
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidCorpusName, name, r)
		}
	}
	if strings.EqualFold(name, crawlRunsTable) || strings.HasPrefix(strings.ToLower(name), "sqlite_") {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidCorpusName, name)
	}
	return nil
}

// PreprocessedName returns the name of the stop-word filtered variant of name.
func PreprocessedName(name string) string {
	return name + PreprocessedSuffix
}

// IsPreprocessed reports whether name carries the preprocessed suffix.
func IsPreprocessed(name string) bool {
	return strings.HasSuffix(name, PreprocessedSuffix)
}
