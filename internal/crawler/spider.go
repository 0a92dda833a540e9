package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/juju/clock"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nao1215/crawlsearch/internal/corpus"
	"github.com/nao1215/crawlsearch/internal/frontier"
	"github.com/nao1215/crawlsearch/internal/linkfilter"
	"github.com/nao1215/crawlsearch/internal/model"
)

// Spider defaults.
const (
	// DefaultWorkers is the number of pages processed concurrently.
	DefaultWorkers = 8

	// DefaultRate is the global cap on requests per second.
	DefaultRate = 5.0

	// DefaultDequeueTimeout is how long the coordinator waits for new work
	// before re-checking whether the crawl is finished.
	DefaultDequeueTimeout = 3 * time.Second
)

// Processor handles one URL of a crawl: fetch, scrape, store.
// It returns the canonical in-scope links found on the page.
// An error means only this URL yielded nothing; the crawl goes on.
type Processor interface {
	Process(ctx context.Context, job *model.CrawlJob, url string) ([]string, error)
}

// CorpusResetter prepares the destination corpus and reports its size.
// corpus.Store satisfies it.
type CorpusResetter interface {
	ResetCorpus(ctx context.Context, name string) error
	RowCount(ctx context.Context, name string) (int, error)
}

// Spider coordinates a breadth-first crawl of one origin.
//
// A crawl moves through seeding, running, draining and done, or ends in
// failed. URLs flow through a frontier.Store created for the job; each
// dequeued URL is handed to the Processor on a bounded worker pool, and
// every request waits on one global rate limiter.
//
// A Spider runs one crawl at a time. Use a new Spider, or wait for Crawl to
// return, before starting another.
type Spider struct {
	fetcher     Fetcher
	processor   Processor
	corpus      CorpusResetter
	newFrontier frontier.Factory

	workers        int
	rate           float64
	dequeueTimeout time.Duration

	// crawlTimeout bounds the whole crawl. 0 means no limit.
	crawlTimeout time.Duration

	// maxPages stops dispatching after that many URLs. 0 means unlimited.
	maxPages int

	// corpusName overrides the name derived from the origin host.
	corpusName string

	logger *slog.Logger
	clock  clock.Clock

	mu    sync.Mutex
	state model.CrawlState
	store frontier.Store

	failed atomic.Int64
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithRate sets the global request rate in requests per second.
// A non-positive rate disables the cap.
func WithRate(perSecond float64) SpiderOption {
	return func(s *Spider) {
		s.rate = perSecond
	}
}

// WithDequeueTimeout sets how long one dequeue waits for work.
func WithDequeueTimeout(d time.Duration) SpiderOption {
	return func(s *Spider) {
		if d > 0 {
			s.dequeueTimeout = d
		}
	}
}

// WithCrawlTimeout bounds the duration of the whole crawl.
func WithCrawlTimeout(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.crawlTimeout = d
	}
}

// WithMaxPages sets the maximum number of pages to crawl.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithCorpusName stores pages under name instead of the name derived
// from the origin host.
func WithCorpusName(name string) SpiderOption {
	return func(s *Spider) {
		s.corpusName = name
	}
}

// WithFrontierFactory sets how the per-job frontier is created.
func WithFrontierFactory(f frontier.Factory) SpiderOption {
	return func(s *Spider) {
		if f != nil {
			s.newFrontier = f
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// WithClock sets the clock used for timestamps and elapsed time.
func WithClock(c clock.Clock) SpiderOption {
	return func(s *Spider) {
		s.clock = c
	}
}

// NewSpider creates a Spider. fetcher probes the origin, processor handles
// each URL and store receives the pages.
func NewSpider(fetcher Fetcher, processor Processor, store CorpusResetter, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:        fetcher,
		processor:      processor,
		corpus:         store,
		newFrontier:    frontier.MemoryFactory(),
		workers:        DefaultWorkers,
		rate:           DefaultRate,
		dequeueTimeout: DefaultDequeueTimeout,
		logger:         slog.Default(),
		clock:          clock.WallClock,
		state:          model.CrawlSeeding,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Crawl crawls every in-scope page reachable from origin and writes one
// record per page to the corpus.
//
// An invalid origin or corpus name is reported before any I/O with a nil
// summary. An unreachable origin returns a failed summary and an error
// wrapping ErrOriginUnreachable. Individual page failures are counted in
// the summary and do not fail the crawl.
func (s *Spider) Crawl(ctx context.Context, origin string) (*model.CrawlSummary, error) {
	originURL, err := linkfilter.NormalizeOrigin(origin)
	if err != nil {
		return nil, err
	}
	originHost := linkfilter.Hostname(originURL)

	name := s.corpusName
	if name == "" {
		if name, err = corpus.NameFromURL(originURL); err != nil {
			return nil, err
		}
	} else if err := corpus.ValidateName(name); err != nil {
		return nil, err
	}

	start := s.clock.Now()
	job := model.NewCrawlJob(originURL, originHost, name, start)
	s.failed.Store(0)
	s.setState(job, model.CrawlSeeding)

	logger := s.logger.With("job", job.ID, "origin", originURL, "corpus", name)
	logger.Info("seeding crawl")

	if _, err := s.fetcher.Fetch(ctx, originURL); err != nil {
		return s.fail(job, start, fmt.Errorf("%w: %s: %w", ErrOriginUnreachable, originURL, err))
	}

	store := s.newFrontier(job.ID)
	s.mu.Lock()
	s.store = store
	s.mu.Unlock()
	// Bookkeeping outlives cancellation so the frontier is always cleaned up.
	cleanupCtx := context.WithoutCancel(ctx)
	defer func() {
		if err := store.Clear(cleanupCtx); err != nil {
			logger.Warn("failed to clear frontier", "error", err)
		}
	}()

	if err := store.Clear(ctx); err != nil {
		return s.fail(job, start, fmt.Errorf("clearing frontier: %w", err))
	}
	if err := s.corpus.ResetCorpus(ctx, name); err != nil {
		return s.fail(job, start, fmt.Errorf("resetting corpus %s: %w", name, err))
	}
	if _, err := store.Enqueue(ctx, originURL); err != nil {
		return s.fail(job, start, fmt.Errorf("enqueueing origin: %w", err))
	}

	s.setState(job, model.CrawlRunning)
	logger.Info("crawl running", "workers", s.workers, "rate", s.rate)

	crawlCtx := ctx
	if s.crawlTimeout > 0 {
		var cancel context.CancelFunc
		crawlCtx, cancel = context.WithTimeout(ctx, s.crawlTimeout)
		defer cancel()
	}

	loopErr, workErr := s.run(crawlCtx, job, store)

	timedOut := ctx.Err() == nil && errors.Is(crawlCtx.Err(), context.DeadlineExceeded)
	if ctx.Err() != nil {
		return s.fail(job, start, fmt.Errorf("crawl interrupted: %w", ctx.Err()))
	}
	if err := errors.Join(loopErr, workErr); err != nil {
		return s.fail(job, start, err)
	}

	summary := model.NewCrawlSummary(job)
	if summary.Visited, err = store.VisitedCount(cleanupCtx); err != nil {
		return s.fail(job, start, fmt.Errorf("counting visited pages: %w", err))
	}
	if summary.Stored, err = s.corpus.RowCount(cleanupCtx, name); err != nil {
		return s.fail(job, start, fmt.Errorf("counting stored pages: %w", err))
	}
	summary.Failed = int(s.failed.Load())
	summary.TimedOut = timedOut
	summary.Elapsed = s.clock.Now().Sub(start)

	s.setState(job, model.CrawlDone)
	summary.State = model.CrawlDone

	logger.Info("crawl done",
		"visited", summary.Visited,
		"stored", summary.Stored,
		"failed", summary.Failed,
		"timed_out", summary.TimedOut,
		"elapsed", summary.Elapsed,
	)
	return summary, nil
}

// run is the running and draining phases. It returns the coordinator's own
// error and the first worker error separately.
func (s *Spider) run(ctx context.Context, job *model.CrawlJob, store frontier.Store) (loopErr, workErr error) {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if s.rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.rate), 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	dispatched := 0
	for gctx.Err() == nil {
		if s.maxPages > 0 && dispatched >= s.maxPages {
			s.logger.Info("page limit reached", "job", job.ID, "max_pages", s.maxPages)
			break
		}

		done, err := finished(gctx, store)
		if err != nil {
			loopErr = ignoreCanceled(fmt.Errorf("reading frontier: %w", err))
			break
		}
		if done {
			break
		}

		url, ok, err := store.Dequeue(gctx, s.dequeueTimeout)
		if err != nil {
			loopErr = ignoreCanceled(fmt.Errorf("dequeueing: %w", err))
			break
		}
		if !ok {
			continue
		}

		if err := limiter.Wait(gctx); err != nil {
			break
		}

		dispatched++
		g.Go(func() error {
			return s.visit(gctx, job, store, url)
		})
	}

	s.setState(job, model.CrawlDraining)
	return loopErr, g.Wait()
}

// visit processes one URL. Links are enqueued before the URL is marked
// visited so the frontier is never empty while work is outstanding.
func (s *Spider) visit(ctx context.Context, job *model.CrawlJob, store frontier.Store, url string) error {
	links, err := s.processor.Process(ctx, job, url)
	if err != nil {
		s.failed.Add(1)
		s.logger.Warn("page failed", "url", url, "error", err)
	}

	bookkeeping := context.WithoutCancel(ctx)
	for _, link := range links {
		if _, err := store.Enqueue(bookkeeping, link); err != nil {
			return fmt.Errorf("enqueueing %s: %w", link, err)
		}
	}
	if err := store.MarkVisited(bookkeeping, url); err != nil {
		return fmt.Errorf("marking %s visited: %w", url, err)
	}
	return nil
}

func (s *Spider) fail(job *model.CrawlJob, start time.Time, err error) (*model.CrawlSummary, error) {
	s.setState(job, model.CrawlFailed)
	summary := model.NewCrawlSummary(job)
	summary.Failed = int(s.failed.Load())
	summary.Elapsed = s.clock.Now().Sub(start)
	summary.Error = err.Error()

	s.logger.Error("crawl failed", "job", job.ID, "origin", job.OriginURL, "error", err)
	return summary, err
}

func (s *Spider) setState(job *model.CrawlJob, state model.CrawlState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	job.Status = state
}

// State returns the state of the current or last crawl.
func (s *Spider) State() model.CrawlState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SpiderStats is a point-in-time view of a crawl.
type SpiderStats struct {
	State    model.CrawlState
	Queued   int
	InFlight int
	Visited  int
	Failed   int
}

// Stats returns the crawl's progress. Frontier counts are zero before the
// first crawl seeds its frontier and after a crawl has finished.
func (s *Spider) Stats(ctx context.Context) (SpiderStats, error) {
	s.mu.Lock()
	state, store := s.state, s.store
	s.mu.Unlock()

	stats := SpiderStats{
		State:  state,
		Failed: int(s.failed.Load()),
	}
	if store == nil {
		return stats, nil
	}
	counts, err := frontier.Snapshot(ctx, store)
	if err != nil {
		return stats, err
	}
	stats.Queued = counts.Queued
	stats.InFlight = counts.InFlight
	stats.Visited = counts.Visited
	return stats, nil
}

// finished reports whether nothing is queued or in flight. In-flight is read
// first: the coordinator is the only dequeuer, so once nothing is in flight
// no worker can add to the queue before it is read.
func finished(ctx context.Context, store frontier.Store) (bool, error) {
	inFlight, err := store.InFlightCount(ctx)
	if err != nil || inFlight > 0 {
		return false, err
	}
	queued, err := store.QueuedCount(ctx)
	if err != nil {
		return false, err
	}
	return queued == 0, nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
