package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/crawlsearch/internal/crawler"
	"github.com/nao1215/crawlsearch/internal/model"
)

// DefaultConcurrency is the number of origins crawled at once.
const DefaultConcurrency = 2

// SpiderFactory creates the Spider for one origin. Each origin gets its own
// Spider so no crawl state is shared between them.
type SpiderFactory func(origin string) *crawler.Spider

// BatchProcessor crawls several origins concurrently.
type BatchProcessor struct {
	spiderFactory SpiderFactory

	// concurrency is the maximum number of concurrent crawls.
	concurrency int

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent crawls.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(factory SpiderFactory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		spiderFactory: factory,
		concurrency:   DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch crawls every origin and returns one summary per origin, in
// input order. A failing origin does not stop the others; all failures are
// returned together as a *multierror.Error.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, origins []string) ([]*model.CrawlSummary, error) {
	results := make([]*model.CrawlSummary, len(origins))
	err := bp.ProcessBatchWithCallback(ctx, origins, func(summary *model.CrawlSummary, index int) {
		results[index] = summary
	})
	return results, err
}

// ProcessBatchWithCallback crawls every origin and calls callback as each
// crawl finishes. The callback runs on the crawling goroutine and must be
// safe for concurrent use; writing to distinct slice indexes is.
//
// The summary passed to callback is never nil: an origin rejected before
// crawling gets a failed summary carrying the error.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	origins []string,
	callback func(summary *model.CrawlSummary, index int),
) error {
	bp.logger.Info("starting batch crawl",
		"total_origins", len(origins),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	var (
		mu   sync.Mutex
		errs *multierror.Error
	)

	var g errgroup.Group
	g.SetLimit(bp.concurrency)

	for i, origin := range origins {
		g.Go(func() error {
			bp.logger.Info("crawling origin",
				"origin", origin,
				"index", i+1,
				"total", len(origins),
			)

			summary, err := bp.spiderFactory(origin).Crawl(ctx, origin)
			if err != nil {
				bp.logger.Warn("crawl failed", "origin", origin, "error", err)
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
				if summary == nil {
					summary = &model.CrawlSummary{
						OriginURL: origin,
						State:     model.CrawlFailed,
						Error:     err.Error(),
					}
				}
			}

			callback(summary, i)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // workers never return errors

	bp.logger.Info("batch crawl complete",
		"total_origins", len(origins),
		"elapsed", time.Since(startTime),
	)

	return errs.ErrorOrNil()
}
