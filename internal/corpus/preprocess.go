package corpus

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// englishStopWords are removed from page bodies by Preprocess.
var englishStopWords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you",
	"your", "yours", "yourself", "yourselves", "he", "him", "his", "himself", "she",
	"her", "hers", "herself", "it", "its", "itself", "they", "them", "their", "theirs",
	"themselves", "what", "which", "who", "whom", "this", "that", "these", "those",
	"am", "is", "are", "was", "were", "be", "been", "being", "have", "has", "had",
	"having", "do", "does", "did", "doing", "a", "an", "the", "and", "but", "if", "or",
	"because", "as", "until", "while", "of", "at", "by", "for", "with", "about",
	"against", "between", "into", "through", "during", "before", "after", "above",
	"below", "to", "from", "up", "down", "in", "out", "on", "off", "over", "under",
	"again", "further", "then", "once", "here", "there", "when", "where", "why", "how",
	"all", "any", "both", "each", "few", "more", "most", "other", "some", "such", "no",
	"nor", "not", "only", "own", "same", "so", "than", "too", "very", "s", "t", "can",
	"will", "just", "don", "should", "now",
}

// StopWords returns a copy of the built-in English stop-word list.
func StopWords() []string {
	out := make([]string, len(englishStopWords))
	copy(out, englishStopWords)
	return out
}

// PreprocessOptions configures Preprocess.
type PreprocessOptions struct {
	// Copy keeps the source corpus and writes the result to a new corpus.
	// Otherwise the source corpus is renamed and rewritten in place.
	Copy bool

	// StopWords overrides the built-in list when non-empty.
	StopWords []string
}

// Preprocess removes stop words from every body of corpus name and stores
// the result under PreprocessedName(name), which it returns.
func Preprocess(ctx context.Context, store Store, name string, opts PreprocessOptions) (string, error) {
	if IsPreprocessed(name) {
		return "", fmt.Errorf("%w: %s is already preprocessed", ErrInvalidCorpusName, name)
	}
	target := PreprocessedName(name)
	if err := ValidateName(target); err != nil {
		return "", err
	}

	if opts.Copy {
		if err := store.CopyCorpus(ctx, name, target); err != nil {
			return "", err
		}
	} else if err := store.RenameCorpus(ctx, name, target); err != nil {
		return "", err
	}

	words := opts.StopWords
	if len(words) == 0 {
		words = englishStopWords
	}
	filter := NewStopWordFilter(words)

	records, err := store.FetchAll(ctx, target)
	if err != nil {
		return "", err
	}
	for _, rec := range records {
		if err := store.UpdateBody(ctx, target, rec.URL, filter.Apply(rec.BodyText)); err != nil {
			return "", err
		}
	}
	return target, nil
}

// StopWordFilter drops stop words from text.
type StopWordFilter struct {
	words map[string]struct{}
}

// NewStopWordFilter creates a filter for words. Matching is case-insensitive.
func NewStopWordFilter(words []string) *StopWordFilter {
	lower := cases.Lower(language.Und)
	f := &StopWordFilter{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		f.words[lower.String(w)] = struct{}{}
	}
	return f
}

// Apply splits text on white space, drops every token that is a stop word
// once surrounding punctuation is trimmed, and joins the rest with single
// spaces.
func (f *StopWordFilter) Apply(text string) string {
	lower := cases.Lower(language.Und)
	tokens := strings.Fields(text)
	kept := tokens[:0]
	for _, tok := range tokens {
		word := strings.TrimFunc(tok, unicode.IsPunct)
		if _, stop := f.words[lower.String(word)]; stop {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}
