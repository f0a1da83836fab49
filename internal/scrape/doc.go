// Package scrape drives the incremental affiliation scrape.
//
// The engine drains pending author entries through the scholar client,
// persisting every outcome immediately so an interrupted run loses nothing
// and a rerun resumes from store state. After the first pass it requeues
// failed entries for up to a configured number of retry passes; entries still
// failing afterwards are marked exhausted. A lock file in the cache directory
// keeps two scrapes from running against the same cache at once.
//
// Lookups are paced with a randomized delay shared across workers, so raising
// the worker count raises overlap with slow responses rather than the
// aggregate request rate.
package scrape
