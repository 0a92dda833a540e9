package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "crawlsearch"

	// DefaultWorkers is the number of pages processed concurrently per crawl.
	DefaultWorkers = 8

	// DefaultRate caps requests per second across all workers of a crawl.
	// 0 disables the cap.
	DefaultRate = 5.0

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 15 * time.Second

	// DefaultDequeueTimeout is how long the coordinator waits for queued work
	// before checking whether the crawl has finished.
	DefaultDequeueTimeout = 3 * time.Second

	// DefaultRetries is the number of extra attempts after a temporary
	// failure (network error, 429 or 5xx).
	DefaultRetries = 2

	// DefaultRetryBaseDelay is the delay before the first retry.
	// It doubles after each attempt.
	DefaultRetryBaseDelay = 200 * time.Millisecond

	// DefaultRetryMaxDelay caps the delay between retries.
	DefaultRetryMaxDelay = 2 * time.Second

	// DefaultMaxBodySize limits the bytes read from one response.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultBatchSize is the number of origins crawled at once.
	DefaultBatchSize = 2

	// DefaultMaxResults is the number of search results shown.
	DefaultMaxResults = 10

	// DefaultAlgorithm is the search algorithm used when none is given.
	DefaultAlgorithm = "naive"

	// DefaultUserAgent is sent with every request. Some sites serve reduced
	// pages to agents they do not recognize as browsers.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/102.0.0.0 Safari/537.36"
)

// Frontier backends.
const (
	// FrontierMemory keeps the frontier in process memory.
	FrontierMemory = "memory"

	// FrontierRedis keeps the frontier in Redis so it can be inspected or
	// shared by several processes.
	FrontierRedis = "redis"
)

// Config holds all configuration options for crawlsearch.
// It is populated from CLI flags and passed through the application rather
// than kept in global state.
type Config struct {
	// Origins are the URLs to crawl.
	Origins []string

	// CorpusName overrides the corpus name derived from the origin host.
	// Only valid with a single origin.
	CorpusName string

	// Workers is the number of pages processed concurrently.
	Workers int

	// Rate is the global request cap in requests per second. 0 means no cap.
	Rate float64

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// DequeueTimeout is how long one dequeue waits for work.
	DequeueTimeout time.Duration

	// CrawlTimeout bounds one whole crawl. 0 means no limit.
	CrawlTimeout time.Duration

	// MaxPages stops a crawl after that many pages. 0 means unlimited.
	// A site configuration may override it.
	MaxPages int

	// Retries is the number of extra attempts after a temporary failure.
	Retries int

	// RetryBaseDelay is the delay before the first retry.
	RetryBaseDelay time.Duration

	// RetryMaxDelay caps the delay between retries.
	RetryMaxDelay time.Duration

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// BatchSize is the number of origins crawled at once.
	BatchSize int

	// Frontier selects the frontier backend: FrontierMemory or FrontierRedis.
	Frontier string

	// RedisAddr is the Redis address in "host:port" form, used with FrontierRedis.
	RedisAddr string

	// DBDir is the directory holding the SQLite corpus database.
	// Defaults to XDG data directory (~/.local/share/crawlsearch on Linux).
	DBDir string

	// PostgresDSN selects PostgreSQL as corpus storage when set.
	PostgresDSN string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .crawlsearch in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds the filter rules and site-specific configurations
	// loaded from the config file.
	SiteConfigs *File

	// Algorithm is the search algorithm name or code.
	Algorithm string

	// MaxResults limits the search results shown. 0 or less means all.
	MaxResults int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport selects JSON output.
	JSONReport bool

	// MarkdownReport selects Markdown output.
	MarkdownReport bool

	// CSVReport selects CSV output.
	CSVReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Workers:        DefaultWorkers,
		Rate:           DefaultRate,
		Timeout:        DefaultTimeout,
		DequeueTimeout: DefaultDequeueTimeout,
		Retries:        DefaultRetries,
		RetryBaseDelay: DefaultRetryBaseDelay,
		RetryMaxDelay:  DefaultRetryMaxDelay,
		MaxBodySize:    DefaultMaxBodySize,
		UserAgent:      DefaultUserAgent,
		BatchSize:      DefaultBatchSize,
		Frontier:       FrontierMemory,
		DBDir:          XDGDataDir(),
		Algorithm:      DefaultAlgorithm,
		MaxResults:     DefaultMaxResults,
	}
}

// XDGDataDir returns the XDG data directory for crawlsearch.
// On Linux: ~/.local/share/crawlsearch
// On macOS: ~/Library/Application Support/crawlsearch
// On Windows: %LOCALAPPDATA%\crawlsearch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for crawlsearch.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for crawlsearch.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// StorageDir returns the SQLite directory, falling back to XDGDataDir.
func (c *Config) StorageDir() string {
	if c.DBDir != "" {
		return c.DBDir
	}
	return XDGDataDir()
}

// Validate checks a crawl configuration and returns the first problem found.
// It is called once after CLI parsing, before any crawling begins.
func (c *Config) Validate() error {
	if len(c.Origins) == 0 {
		return ErrNoTarget
	}

	if c.CorpusName != "" && len(c.Origins) > 1 {
		return ErrNameWithManyOrigins
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.Rate < 0 {
		return ErrInvalidRate
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.DequeueTimeout <= 0 {
		return ErrInvalidDequeueTimeout
	}

	if c.CrawlTimeout < 0 {
		return ErrInvalidCrawlTimeout
	}

	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	if c.Retries < 0 || c.RetryBaseDelay < 0 || c.RetryMaxDelay < 0 {
		return ErrInvalidRetry
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	switch c.Frontier {
	case FrontierMemory:
	case FrontierRedis:
		if c.RedisAddr == "" {
			return ErrRedisAddrRequired
		}
	default:
		return ErrUnknownFrontier
	}

	return c.ValidateOutput()
}

// ValidateOutput checks the report format flags.
func (c *Config) ValidateOutput() error {
	formats := 0
	for _, on := range []bool{c.JSONReport, c.MarkdownReport, c.CSVReport} {
		if on {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}
	return nil
}
