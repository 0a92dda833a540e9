package frontier

import (
	"context"
	"time"
)

// Store is the crawl frontier of one crawl job.
// Implementations must be safe for concurrent use.
type Store interface {
	// Enqueue adds url to the queued set unless it is already queued,
	// in flight or visited. It reports whether the URL was added.
	Enqueue(ctx context.Context, url string) (bool, error)

	// Dequeue moves the oldest queued URL to the in-flight set.
	// It blocks for at most timeout while the queue is empty and reports
	// ok=false when nothing arrived in time.
	Dequeue(ctx context.Context, timeout time.Duration) (url string, ok bool, err error)

	// MarkVisited moves url from in-flight (or queued) to visited.
	MarkVisited(ctx context.Context, url string) error

	// IsVisited reports whether url is in the visited set.
	IsVisited(ctx context.Context, url string) (bool, error)

	// QueuedCount returns the size of the queued set.
	QueuedCount(ctx context.Context) (int, error)

	// InFlightCount returns the size of the in-flight set.
	InFlightCount(ctx context.Context) (int, error)

	// VisitedCount returns the size of the visited set.
	VisitedCount(ctx context.Context) (int, error)

	// Clear empties all three sets.
	Clear(ctx context.Context) error
}

// Factory creates the Store for one crawl job. jobID scopes any shared state.
type Factory func(jobID string) Store

// MemoryFactory returns a Factory producing independent in-memory stores.
func MemoryFactory() Factory {
	return func(string) Store {
		return NewMemoryStore()
	}
}

// Counts is a snapshot of the three set sizes.
type Counts struct {
	Queued   int `json:"queued"`
	InFlight int `json:"in_flight"`
	Visited  int `json:"visited"`
}

// Snapshot reads all three counts from s.
// The counts are read one after another and are not a consistent cut.
func Snapshot(ctx context.Context, s Store) (Counts, error) {
	var c Counts
	var err error
	if c.Queued, err = s.QueuedCount(ctx); err != nil {
		return Counts{}, err
	}
	if c.InFlight, err = s.InFlightCount(ctx); err != nil {
		return Counts{}, err
	}
	if c.Visited, err = s.VisitedCount(ctx); err != nil {
		return Counts{}, err
	}
	return c, nil
}
