package pipeline

import (
	"context"
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/nao1215/crawlsearch/internal/crawler"
	"github.com/nao1215/crawlsearch/internal/linkfilter"
	"github.com/nao1215/crawlsearch/internal/model"
)

// errMissingInput is returned when a step runs before the step that
// produces its input.
var errMissingInput = errors.New("missing input from an earlier step")

// FetchStep downloads the task's URL.
type FetchStep struct {
	fetcher crawler.Fetcher
}

// NewFetchStep creates a FetchStep.
func NewFetchStep(fetcher crawler.Fetcher) *FetchStep {
	return &FetchStep{fetcher: fetcher}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do executes the fetch step.
func (s *FetchStep) Do(ctx context.Context, task *Task) error {
	resp, err := s.fetcher.Fetch(ctx, task.URL)
	if err != nil {
		return err
	}
	task.Response = resp
	return nil
}

// ScrapeStep parses the fetched document. Non-HTML responses are parse
// failures.
type ScrapeStep struct {
	scraper *crawler.Scraper
}

// NewScrapeStep creates a ScrapeStep.
func NewScrapeStep() *ScrapeStep {
	return &ScrapeStep{scraper: crawler.NewScraper()}
}

// Name returns the step name.
func (s *ScrapeStep) Name() string {
	return "scrape"
}

// Do executes the scrape step.
func (s *ScrapeStep) Do(_ context.Context, task *Task) error {
	if task.Response == nil {
		return errMissingInput
	}
	if !model.IsHTML(task.Response.ContentType) {
		return fmt.Errorf("%w: %s: content type %q", crawler.ErrParseFailure, task.URL, task.Response.ContentType)
	}

	page, err := s.scraper.Scrape(task.URL, task.Response.Body)
	if err != nil {
		return err
	}
	task.Page = page
	return nil
}

// RecordAppender receives page records. corpus.Store satisfies it.
type RecordAppender interface {
	AppendRecord(ctx context.Context, name string, rec *model.PageRecord) error
}

// StoreStep writes the scraped page to the job's corpus.
type StoreStep struct {
	store RecordAppender
}

// NewStoreStep creates a StoreStep.
func NewStoreStep(store RecordAppender) *StoreStep {
	return &StoreStep{store: store}
}

// Name returns the step name.
func (s *StoreStep) Name() string {
	return "store"
}

// Do executes the store step.
func (s *StoreStep) Do(ctx context.Context, task *Task) error {
	if task.Page == nil {
		return errMissingInput
	}
	if err := s.store.AppendRecord(ctx, task.Job.Corpus, task.Page.Record()); err != nil {
		return fmt.Errorf("storing %s: %w", task.URL, err)
	}
	return nil
}

// ExpandStep turns the page's raw hrefs into canonical in-scope links.
// Each link appears once per page, in document order.
type ExpandStep struct {
	rules linkfilter.Rules
}

// NewExpandStep creates an ExpandStep using rules.
func NewExpandStep(rules linkfilter.Rules) *ExpandStep {
	return &ExpandStep{rules: rules}
}

// Name returns the step name.
func (s *ExpandStep) Name() string {
	return "expand"
}

// Do executes the expand step.
func (s *ExpandStep) Do(_ context.Context, task *Task) error {
	if task.Page == nil {
		return errMissingInput
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	links := make([]string, 0, len(task.Page.Links))
	for _, href := range task.Page.Links {
		link, ok := linkfilter.Filter(href, task.URL, task.Job.OriginHost, s.rules)
		if !ok || link == task.URL {
			continue
		}
		if seen.Add(link) {
			links = append(links, link)
		}
	}
	task.Links = links
	return nil
}

// DefaultPipeline returns the standard fetch, scrape, store, expand pipeline.
func DefaultPipeline(fetcher crawler.Fetcher, store RecordAppender, rules linkfilter.Rules, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewFetchStep(fetcher),
		NewScrapeStep(),
		NewStoreStep(store),
		NewExpandStep(rules),
	)
	return p
}
