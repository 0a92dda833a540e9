// Package corpus stores crawled pages as named corpora.
//
// A corpus is one table holding one row per page (URL, title, description,
// body text) in insertion order. Corpora are named after the crawled host:
// "www.example.com" becomes "example_com". Names are also SQL identifiers,
// so every operation validates them before touching the database.
//
// Two backends share the same SQL core: SQLiteStore, a single file in the
// XDG data directory, and PostgresStore for a shared server. Both also keep
// a crawl_runs table with the history of finished crawls.
package corpus
