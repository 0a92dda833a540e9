package frontier

import (
	"context"
	"slices"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// MemoryStore is a Store held in process memory.
// One mutex guards all three sets and the FIFO order, so every transition
// is atomic with respect to the others.
type MemoryStore struct {
	mu       sync.Mutex
	order    []string
	queued   mapset.Set[string]
	inFlight mapset.Set[string]
	visited  mapset.Set[string]

	// wake holds at most one pending signal that the queue became non-empty.
	wake chan struct{}
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory frontier.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		queued:   mapset.NewThreadUnsafeSet[string](),
		inFlight: mapset.NewThreadUnsafeSet[string](),
		visited:  mapset.NewThreadUnsafeSet[string](),
		wake:     make(chan struct{}, 1),
	}
}

// Enqueue implements Store.
func (s *MemoryStore) Enqueue(_ context.Context, url string) (bool, error) {
	s.mu.Lock()
	if s.queued.Contains(url) || s.inFlight.Contains(url) || s.visited.Contains(url) {
		s.mu.Unlock()
		return false, nil
	}
	s.queued.Add(url)
	s.order = append(s.order, url)
	s.mu.Unlock()

	s.notify()
	return true, nil
}

// Dequeue implements Store. A non-positive timeout does not block.
func (s *MemoryStore) Dequeue(ctx context.Context, timeout time.Duration) (string, bool, error) {
	if url, ok := s.pop(); ok {
		return url, true, nil
	}
	if timeout <= 0 {
		return "", false, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case <-timer.C:
			url, ok := s.pop()
			return url, ok, nil
		case <-s.wake:
			if url, ok := s.pop(); ok {
				return url, true, nil
			}
		}
	}
}

// pop moves the head of the queue to in-flight.
func (s *MemoryStore) pop() (string, bool) {
	s.mu.Lock()
	if len(s.order) == 0 {
		s.mu.Unlock()
		return "", false
	}
	url := s.order[0]
	s.order[0] = ""
	s.order = s.order[1:]
	s.queued.Remove(url)
	s.inFlight.Add(url)
	more := len(s.order) > 0
	s.mu.Unlock()

	// Pass the signal on so another waiting Dequeue sees the remaining items.
	if more {
		s.notify()
	}
	return url, true
}

func (s *MemoryStore) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// MarkVisited implements Store.
func (s *MemoryStore) MarkVisited(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight.Remove(url)
	if s.queued.Contains(url) {
		s.queued.Remove(url)
		if i := slices.Index(s.order, url); i >= 0 {
			s.order = slices.Delete(s.order, i, i+1)
		}
	}
	s.visited.Add(url)
	return nil
}

// IsVisited implements Store.
func (s *MemoryStore) IsVisited(_ context.Context, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visited.Contains(url), nil
}

// QueuedCount implements Store.
func (s *MemoryStore) QueuedCount(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queued.Cardinality(), nil
}

// InFlightCount implements Store.
func (s *MemoryStore) InFlightCount(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight.Cardinality(), nil
}

// VisitedCount implements Store.
func (s *MemoryStore) VisitedCount(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visited.Cardinality(), nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = nil
	s.queued.Clear()
	s.inFlight.Clear()
	s.visited.Clear()
	select {
	case <-s.wake:
	default:
	}
	return nil
}
