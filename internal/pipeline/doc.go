// Package pipeline processes crawled URLs as a sequence of steps.
//
// Each URL dequeued by a crawler.Spider becomes a Task that moves through
// FetchStep, ScrapeStep, StoreStep and ExpandStep. The first failing step
// ends processing of that URL only; the Spider logs the error and the crawl
// continues. Pipeline implements crawler.Processor.
//
// BatchProcessor crawls several origins concurrently, one Spider per origin,
// with concurrency control using errgroup.
package pipeline
