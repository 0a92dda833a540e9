// Package frontier tracks which URLs of a crawl are waiting, being fetched
// or already done.
//
// A Store keeps three pairwise disjoint sets: queued, in-flight and visited.
// Enqueue only inserts a URL that is in none of them, Dequeue moves one URL
// from queued to in-flight, and MarkVisited moves it on to visited. Every
// transition is atomic, so a URL is handed to exactly one worker per crawl.
//
// Two implementations are provided. MemoryStore serves a single process.
// RedisStore keeps the sets in Redis so several processes can share one
// crawl. Each crawl job gets its own Store through a Factory; there is no
// process-wide frontier.
package frontier
