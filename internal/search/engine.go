package search

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/juju/clock"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/crawlsearch/internal/corpus"
	"github.com/nao1215/crawlsearch/internal/model"
)

// RecordSource supplies the records of a corpus in insertion order.
// corpus.Store satisfies it.
type RecordSource interface {
	FetchAll(ctx context.Context, name string) ([]*model.PageRecord, error)
}

// Engine ranks the pages of a corpus by occurrence count of a pattern.
type Engine struct {
	source RecordSource
	logger *slog.Logger
	clock  clock.Clock
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock sets the clock used to measure elapsed time.
func WithClock(c clock.Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// NewEngine creates an Engine reading from source.
func NewEngine(source RecordSource, opts ...EngineOption) *Engine {
	e := &Engine{
		source: source,
		logger: slog.Default(),
		clock:  clock.WallClock,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search runs q against its corpus.
//
// Matching is case-insensitive. Pages without a match are excluded, and of
// several matching pages with the same title only the first in corpus order
// is kept. Results are sorted by match count, highest first, with ties in
// corpus order, and cut to q.MaxResults when it is positive. An empty
// pattern yields an empty report without reading the corpus.
func (e *Engine) Search(ctx context.Context, q model.SearchQuery) (*model.SearchReport, error) {
	alg, err := e.prepare(q)
	if err != nil {
		return nil, err
	}

	start := e.clock.Now()
	report := model.NewSearchReport(q)
	report.Algorithm = alg.Name()
	if q.Pattern == "" {
		e.logger.Debug("empty pattern, skipping search", "corpus", q.Corpus)
		return report, nil
	}

	records, err := e.source.FetchAll(ctx, q.Corpus)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus %s: %w", q.Corpus, err)
	}
	if err := e.rank(ctx, report, alg, records); err != nil {
		return nil, err
	}
	report.Elapsed = e.clock.Now().Sub(start)

	e.logger.Debug("search finished",
		"corpus", q.Corpus,
		"algorithm", alg.Name(),
		"found", report.FoundPages,
		"total", report.TotalPages,
		"elapsed", report.Elapsed)
	return report, nil
}

// Compare runs q once with every algorithm over a single load of the corpus.
// Each report's Elapsed covers only that algorithm's scan.
func (e *Engine) Compare(ctx context.Context, q model.SearchQuery) ([]*model.SearchReport, error) {
	if _, err := e.prepare(q); err != nil {
		return nil, err
	}

	var records []*model.PageRecord
	if q.Pattern != "" {
		var err error
		records, err = e.source.FetchAll(ctx, q.Corpus)
		if err != nil {
			return nil, fmt.Errorf("failed to load corpus %s: %w", q.Corpus, err)
		}
	}

	reports := make([]*model.SearchReport, 0, len(registry))
	for _, alg := range All() {
		aq := q
		aq.Algorithm = alg.Code()
		report := model.NewSearchReport(aq)
		report.Algorithm = alg.Name()

		start := e.clock.Now()
		if q.Pattern != "" {
			if err := e.rank(ctx, report, alg, records); err != nil {
				return nil, err
			}
		}
		report.Elapsed = e.clock.Now().Sub(start)
		reports = append(reports, report)
	}
	return reports, nil
}

func (e *Engine) prepare(q model.SearchQuery) (Algorithm, error) {
	if err := corpus.ValidateName(q.Corpus); err != nil {
		return nil, err
	}
	return Lookup(q.Algorithm)
}

func (e *Engine) rank(ctx context.Context, report *model.SearchReport, alg Algorithm, records []*model.PageRecord) error {
	lower := cases.Lower(language.Und)
	matcher := alg.Compile(lower.String(report.Query.Pattern))

	seenTitles := make(map[string]struct{})
	results := make([]model.SearchResult, 0)
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := matcher.Count(lower.String(rec.BodyText))
		if n == 0 {
			continue
		}
		if _, seen := seenTitles[rec.Title]; seen {
			continue
		}
		seenTitles[rec.Title] = struct{}{}
		results = append(results, model.SearchResult{
			MatchCount: n,
			URL:        rec.URL,
			Title:      rec.Title,
		})
	}

	slices.SortStableFunc(results, func(a, b model.SearchResult) int {
		return cmp.Compare(b.MatchCount, a.MatchCount)
	})

	report.TotalPages = len(records)
	report.FoundPages = len(results)
	if limit := report.Query.MaxResults; limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	report.Results = results
	return nil
}
