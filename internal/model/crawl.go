package model

import (
	"time"

	"github.com/google/uuid"
)

// CrawlState is the lifecycle state of a crawl.
//
//	Seeding -> Running -> Draining -> Done
//	Seeding -> Failed
type CrawlState int

const (
	// CrawlSeeding: the origin is probed and the frontier and corpus are reset.
	CrawlSeeding CrawlState = iota
	// CrawlRunning: URLs are dequeued and dispatched to workers.
	CrawlRunning
	// CrawlDraining: no more URLs are dispatched; in-flight work finishes.
	CrawlDraining
	// CrawlDone: the crawl finished and the summary is final.
	CrawlDone
	// CrawlFailed: the origin was unreachable and nothing was crawled.
	CrawlFailed
)

// String returns the lower-case name of the state.
func (s CrawlState) String() string {
	switch s {
	case CrawlSeeding:
		return "seeding"
	case CrawlRunning:
		return "running"
	case CrawlDraining:
		return "draining"
	case CrawlDone:
		return "done"
	case CrawlFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so states appear by name in JSON.
func (s CrawlState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsTerminal reports whether no further transition can happen.
func (s CrawlState) IsTerminal() bool {
	return s == CrawlDone || s == CrawlFailed
}

// CrawlJob is one crawl of one origin. It lives for a single crawl invocation.
type CrawlJob struct {
	// ID uniquely identifies the job. It scopes shared frontier keys and
	// appears in the crawl history.
	ID string `json:"id"`

	// OriginURL is the normalized URL the crawl started from.
	OriginURL string `json:"origin_url"`

	// OriginHost is the host every crawled URL must share with OriginURL.
	OriginHost string `json:"origin_host"`

	// Corpus is the name of the corpus the pages are written to.
	Corpus string `json:"corpus"`

	// Status is the current state of the job.
	Status CrawlState `json:"status"`

	// StartedAt is when the job entered the seeding state.
	StartedAt time.Time `json:"started_at"`
}

// NewCrawlJob creates a job in the seeding state with a fresh ID.
func NewCrawlJob(originURL, originHost, corpus string, startedAt time.Time) *CrawlJob {
	return &CrawlJob{
		ID:         uuid.NewString(),
		OriginURL:  originURL,
		OriginHost: originHost,
		Corpus:     corpus,
		Status:     CrawlSeeding,
		StartedAt:  startedAt,
	}
}

// CrawlSummary is the outcome of a crawl.
type CrawlSummary struct {
	JobID     string        `json:"job_id" csv:"job_id"`
	OriginURL string        `json:"origin_url" csv:"origin_url"`
	Corpus    string        `json:"corpus" csv:"corpus"`
	State     CrawlState    `json:"state" csv:"-"`
	Visited   int           `json:"visited" csv:"visited"`
	Stored    int           `json:"stored" csv:"stored"`
	Failed    int           `json:"failed" csv:"failed"`
	Elapsed   time.Duration `json:"elapsed_ns" csv:"-"`
	TimedOut  bool          `json:"timed_out" csv:"timed_out"`
	StartedAt time.Time     `json:"started_at" csv:"-"`

	// Error holds the failure message when State is CrawlFailed.
	Error string `json:"error,omitempty" csv:"error"`
}

// NewCrawlSummary starts a summary for job.
func NewCrawlSummary(job *CrawlJob) *CrawlSummary {
	return &CrawlSummary{
		JobID:     job.ID,
		OriginURL: job.OriginURL,
		Corpus:    job.Corpus,
		State:     job.Status,
		StartedAt: job.StartedAt,
	}
}

// ElapsedSeconds returns the elapsed time in seconds.
func (s *CrawlSummary) ElapsedSeconds() float64 {
	return s.Elapsed.Seconds()
}

// CorpusInfo describes a stored corpus.
type CorpusInfo struct {
	Name string `json:"name" csv:"name"`
	Rows int    `json:"rows" csv:"rows"`
}
