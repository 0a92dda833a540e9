package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/spf13/cobra"

	"github.com/nao1215/crawlsearch/internal/config"
	"github.com/nao1215/crawlsearch/internal/corpus"
	"github.com/nao1215/crawlsearch/internal/crawler"
	"github.com/nao1215/crawlsearch/internal/frontier"
	"github.com/nao1215/crawlsearch/internal/linkfilter"
	"github.com/nao1215/crawlsearch/internal/model"
	"github.com/nao1215/crawlsearch/internal/pipeline"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url>...",
		Short: "Crawl a website into a corpus",
		Long: `Crawl visits every page of a website reachable from the given URL and
stores the title, description and visible text of each page in a corpus.

Only links on the same host are followed, and every URL is visited once.
Crawling the same site again replaces its corpus. The corpus is named after
the host with "www." removed and dots turned into underscores
("en.wikipedia.org" becomes "en_wikipedia_org"); use --name when the host
does not give a valid name, such as a host with hyphens.

Examples:
  # Crawl a site
  crawlsearch crawl https://example.com

  # Crawl with 16 workers and no rate cap
  crawlsearch crawl -w 16 -r 0 example.com

  # Stop after 200 pages or 5 minutes
  crawlsearch crawl -p 200 --crawl-timeout 5m example.com

  # Crawl several sites, two at a time
  crawlsearch crawl -b 2 example.com example.org

  # Keep the frontier in Redis
  crawlsearch crawl --frontier redis --redis-addr localhost:6379 example.com

Configuration file (.crawlsearch) example:
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      maxPages: 100`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of pages processed concurrently")
	cmd.Flags().Float64P("rate", "r", config.DefaultRate,
		"Maximum requests per second across all workers (0 disables the cap)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().Duration("dequeue-timeout", config.DefaultDequeueTimeout,
		"How long to wait for queued work before checking for completion")
	cmd.Flags().Duration("crawl-timeout", 0,
		"Stop the crawl after this duration and keep the pages stored so far (0 means no limit)")
	cmd.Flags().IntP("max-pages", "p", 0,
		"Maximum number of pages to crawl per site (0 means unlimited)")
	cmd.Flags().Int("retries", config.DefaultRetries,
		"Extra attempts after a network error, 429 or 5xx response")
	cmd.Flags().StringP("name", "n", "",
		"Corpus name (only with a single URL)")

	// Batch crawling flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of sites crawled concurrently")

	// Frontier flags
	cmd.Flags().String("frontier", config.FrontierMemory,
		"Frontier backend: memory or redis")
	cmd.Flags().String("redis-addr", "",
		"Redis address for --frontier redis (e.g., localhost:6379)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .crawlsearch in current or home directory)")

	addStorageFlags(cmd.Flags())
	addOutputFlags(cmd)

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout(), nil)
}

// buildCrawlConfig creates a Config from cobra command flags.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.Rate, err = cmd.Flags().GetFloat64("rate")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.DequeueTimeout, err = cmd.Flags().GetDuration("dequeue-timeout")
	if err != nil {
		return nil, err
	}

	cfg.CrawlTimeout, err = cmd.Flags().GetDuration("crawl-timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Retries, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.CorpusName, err = cmd.Flags().GetString("name")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.Frontier, err = cmd.Flags().GetString("frontier")
	if err != nil {
		return nil, err
	}

	cfg.RedisAddr, err = cmd.Flags().GetString("redis-addr")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly given config file must exist; the default locations
	// are optional.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	if err := readStorageFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if err := readOutputFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Origins = args

	return cfg, nil
}

// runCrawl crawls every origin of cfg and writes one report per origin to
// stdout or cfg.ReportFile. A nil client gets cfg.Timeout as its timeout.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer, client *http.Client) (err error) {
	logger.Info("starting crawl",
		"origins", cfg.Origins,
		"workers", cfg.Workers,
		"rate", cfg.Rate,
		"frontier", cfg.Frontier,
		"batchSize", cfg.BatchSize,
	)

	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	factory, closeFrontier, err := newFrontierFactory(ctx, cfg)
	if err != nil {
		_ = store.Close() //nolint:errcheck // Best effort cleanup
		return err
	}

	output, closeOutput, err := openOutput(cfg, stdout)
	if err != nil {
		_ = closeAll(store.Close, closeFrontier) //nolint:errcheck // Best effort cleanup
		return err
	}

	defer func() {
		if closeErr := closeAll(closeOutput, closeFrontier, store.Close); err == nil {
			err = closeErr
		}
	}()

	writer := newReportWriter(cfg, output)

	bp := pipeline.NewBatchProcessor(
		func(origin string) *crawler.Spider {
			return newSpider(cfg, origin, client, store, factory, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Reports of concurrent crawls must not interleave.
	var mu sync.Mutex
	return bp.ProcessBatchWithCallback(ctx, cfg.Origins, func(summary *model.CrawlSummary, _ int) {
		mu.Lock()
		defer mu.Unlock()

		if _, err := writer.WriteCrawl(summary); err != nil {
			logger.Error("report failed", "origin", summary.OriginURL, "error", err)
		}

		if err := saveCrawlRun(ctx, store, summary, logger); err != nil {
			logger.Error("failed to save crawl run", "origin", summary.OriginURL, "error", err)
		}
	})
}

// newSpider builds the spider for origin with its site configuration
// applied: user agent, cookie, headers, page limit and link filter rules.
func newSpider(
	cfg *config.Config,
	origin string,
	client *http.Client,
	store corpus.Store,
	factory frontier.Factory,
	logger *slog.Logger,
) *crawler.Spider {
	var host string
	if normalized, err := linkfilter.NormalizeOrigin(origin); err == nil {
		host = linkfilter.Hostname(normalized)
	}
	site := cfg.SiteConfigs.GetSiteConfig(host)

	userAgent := cfg.UserAgent
	if site.UserAgent != "" {
		userAgent = site.UserAgent
	}

	fetcherOpts := []crawler.FetcherOption{
		crawler.WithUserAgent(userAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithRetry(cfg.Retries, cfg.RetryBaseDelay, cfg.RetryMaxDelay),
		crawler.WithFetcherLogger(logger),
	}
	if site.Cookie != "" {
		fetcherOpts = append(fetcherOpts, crawler.WithCookie(site.Cookie))
	}
	if len(site.Headers) > 0 {
		fetcherOpts = append(fetcherOpts, crawler.WithHeaders(site.Headers))
	}
	fetcher := crawler.NewHTTPFetcher(client, fetcherOpts...)

	maxPages := cfg.MaxPages
	if site.MaxPages > 0 {
		maxPages = site.MaxPages
	}

	processor := pipeline.DefaultPipeline(fetcher, store, cfg.SiteConfigs.FilterRules(host),
		pipeline.WithLogger(logger))

	spiderOpts := []crawler.SpiderOption{
		crawler.WithWorkers(cfg.Workers),
		crawler.WithRate(cfg.Rate),
		crawler.WithDequeueTimeout(cfg.DequeueTimeout),
		crawler.WithCrawlTimeout(cfg.CrawlTimeout),
		crawler.WithMaxPages(maxPages),
		crawler.WithFrontierFactory(factory),
		crawler.WithLogger(logger),
	}
	if cfg.CorpusName != "" {
		spiderOpts = append(spiderOpts, crawler.WithCorpusName(cfg.CorpusName))
	}

	return crawler.NewSpider(fetcher, processor, store, spiderOpts...)
}

// saveCrawlRun records the summary in the crawl history of its corpus.
// Origins rejected before crawling have no corpus and are skipped.
func saveCrawlRun(ctx context.Context, store corpus.Store, summary *model.CrawlSummary, logger *slog.Logger) error {
	if summary.JobID == "" || summary.Corpus == "" {
		return nil
	}

	// The run is recorded even when the crawl was interrupted.
	if err := store.SaveCrawlRun(context.WithoutCancel(ctx), summary); err != nil {
		return fmt.Errorf("failed to save crawl run: %w", err)
	}

	logger.Info("crawl run saved", "corpus", summary.Corpus, "job", summary.JobID)
	return nil
}
