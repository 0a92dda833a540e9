package frontier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPollInterval is how often a blocked RedisStore.Dequeue retries.
const DefaultPollInterval = 50 * time.Millisecond

// DefaultKeyPrefix prefixes every Redis key written by RedisFactory stores.
const DefaultKeyPrefix = "crawlsearch:frontier:"

// Every transition runs as one script so it is atomic across processes.
// KEYS: 1 queue (list, FIFO order), 2 queued (set), 3 in-flight (set), 4 visited (set).
var (
	enqueueScript = redis.NewScript(`
if redis.call('SISMEMBER', KEYS[2], ARGV[1]) == 1
	or redis.call('SISMEMBER', KEYS[3], ARGV[1]) == 1
	or redis.call('SISMEMBER', KEYS[4], ARGV[1]) == 1 then
	return 0
end
redis.call('SADD', KEYS[2], ARGV[1])
redis.call('RPUSH', KEYS[1], ARGV[1])
return 1
`)

	dequeueScript = redis.NewScript(`
local url = redis.call('LPOP', KEYS[1])
if not url then
	return false
end
redis.call('SREM', KEYS[2], url)
redis.call('SADD', KEYS[3], url)
return url
`)

	markVisitedScript = redis.NewScript(`
redis.call('SREM', KEYS[3], ARGV[1])
if redis.call('SREM', KEYS[2], ARGV[1]) == 1 then
	redis.call('LREM', KEYS[1], 0, ARGV[1])
end
redis.call('SADD', KEYS[4], ARGV[1])
return 1
`)
)

// RedisStore is a Store kept in Redis under a key prefix.
type RedisStore struct {
	client       redis.UniversalClient
	keys         []string
	pollInterval time.Duration
}

var _ Store = (*RedisStore)(nil)

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithPollInterval sets how often a blocked Dequeue retries.
func WithPollInterval(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// NewRedisStore creates a frontier whose keys are derived from prefix.
// The prefix is wrapped in a hash tag so all keys map to one cluster slot.
func NewRedisStore(client redis.UniversalClient, prefix string, opts ...RedisOption) *RedisStore {
	tag := "{" + prefix + "}"
	s := &RedisStore{
		client: client,
		keys: []string{
			tag + ":queue",
			tag + ":queued",
			tag + ":inflight",
			tag + ":visited",
		},
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RedisFactory returns a Factory whose stores live under prefix+jobID.
func RedisFactory(client redis.UniversalClient, prefix string, opts ...RedisOption) Factory {
	return func(jobID string) Store {
		return NewRedisStore(client, prefix+jobID, opts...)
	}
}

// Enqueue implements Store.
func (s *RedisStore) Enqueue(ctx context.Context, url string) (bool, error) {
	added, err := enqueueScript.Run(ctx, s.client, s.keys, url).Int()
	if err != nil {
		return false, fmt.Errorf("failed to enqueue %s: %w", url, err)
	}
	return added == 1, nil
}

// Dequeue implements Store. Redis scripts cannot block, so an empty queue
// is polled until timeout expires.
func (s *RedisStore) Dequeue(ctx context.Context, timeout time.Duration) (string, bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		url, ok, err := s.pop(ctx)
		if err != nil || ok {
			return url, ok, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", false, nil
		}
		wait := min(s.pollInterval, remaining)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", false, ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *RedisStore) pop(ctx context.Context) (string, bool, error) {
	url, err := dequeueScript.Run(ctx, s.client, s.keys).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to dequeue: %w", err)
	}
	return url, true, nil
}

// MarkVisited implements Store.
func (s *RedisStore) MarkVisited(ctx context.Context, url string) error {
	if err := markVisitedScript.Run(ctx, s.client, s.keys, url).Err(); err != nil {
		return fmt.Errorf("failed to mark %s visited: %w", url, err)
	}
	return nil
}

// IsVisited implements Store.
func (s *RedisStore) IsVisited(ctx context.Context, url string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.keys[3], url).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check visited %s: %w", url, err)
	}
	return ok, nil
}

// QueuedCount implements Store.
func (s *RedisStore) QueuedCount(ctx context.Context) (int, error) {
	return s.card(ctx, s.keys[1])
}

// InFlightCount implements Store.
func (s *RedisStore) InFlightCount(ctx context.Context) (int, error) {
	return s.card(ctx, s.keys[2])
}

// VisitedCount implements Store.
func (s *RedisStore) VisitedCount(ctx context.Context) (int, error) {
	return s.card(ctx, s.keys[3])
}

func (s *RedisStore) card(ctx context.Context, key string) (int, error) {
	n, err := s.client.SCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", key, err)
	}
	return int(n), nil
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear frontier: %w", err)
	}
	return nil
}
