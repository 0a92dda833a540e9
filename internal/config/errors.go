package config

import "errors"

// Configuration validation errors returned by Config.Validate and
// Config.ValidateOutput.
var (
	// ErrNoTarget is returned when no origin URL is given.
	ErrNoTarget = errors.New("no target specified: provide at least one URL to crawl")

	// ErrNameWithManyOrigins is returned when --name is combined with several origins.
	ErrNameWithManyOrigins = errors.New("--name can only be used with a single URL")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidRate is returned when the request rate is negative.
	// Use 0 to disable the cap.
	ErrInvalidRate = errors.New("invalid rate: must be non-negative")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDequeueTimeout is returned when the dequeue timeout is not positive.
	ErrInvalidDequeueTimeout = errors.New("invalid dequeue timeout: must be positive")

	// ErrInvalidCrawlTimeout is returned when the crawl timeout is negative.
	ErrInvalidCrawlTimeout = errors.New("invalid crawl timeout: must be non-negative")

	// ErrInvalidMaxPages is returned when the page limit is negative.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidRetry is returned when a retry setting is negative.
	ErrInvalidRetry = errors.New("invalid retry settings: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when more than one of --json,
	// --markdown and --csv is given.
	ErrConflictingReportFormats = errors.New("conflicting report formats: choose one of --json, --markdown or --csv")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrUnknownFrontier is returned for a frontier backend other than memory or redis.
	ErrUnknownFrontier = errors.New("unknown frontier: must be memory or redis")

	// ErrRedisAddrRequired is returned when the redis frontier has no address.
	ErrRedisAddrRequired = errors.New("redis frontier requires --redis-addr")
)
