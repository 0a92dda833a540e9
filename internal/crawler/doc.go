// Package crawler fetches, scrapes and crawls the pages of a single site.
//
// # Components
//
//   - HTTPFetcher: GETs a page with a browser-like User-Agent, a capped body
//     and bounded retries for temporary failures
//   - Scraper: extracts the title, meta description, visible text and raw
//     anchor hrefs of an HTML document
//   - Spider: the crawl coordinator
//
// # Crawl lifecycle
//
// A crawl is seeded from one origin URL. The origin is probed once; if it
// cannot be fetched the crawl fails with ErrOriginUnreachable and nothing is
// written. Otherwise the frontier and the destination corpus are reset and
// the origin is enqueued.
//
// While URLs are queued or in flight, the Spider dequeues one, waits on a
// global rate limiter and hands it to a bounded worker pool. A worker runs
// the Processor, enqueues the returned links and only then marks its URL
// visited, so the frontier never looks empty while a page is being handled.
// When both counts reach zero the pool is drained and the crawl is done.
//
// # Usage
//
//	fetcher := crawler.NewHTTPFetcher(client)
//	spider := crawler.NewSpider(fetcher, processor, store, crawler.WithWorkers(8))
//	summary, err := spider.Crawl(ctx, "https://example.com")
package crawler
