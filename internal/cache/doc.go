// Package cache persists the affiliation cache in SQLite and exposes helpers
// for driving the author-entry lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, stuck-entry recovery, and the status transitions the scrape engine
// depends on. Author entries carry the (author_id, citing_paper, cited_paper)
// tuples the upstream collector produced; affiliation records carry lookup
// results and link back to their entry, so the author identity is never lost.
//
// Duplicate affiliation tuples are rejected at insert time by a unique index;
// AddRecord reports whether a row was new so callers can count suppressed
// duplicates instead of deduplicating after the fact.
//
// Treat this package as the single source of truth for cache semantics; when
// you add statuses or columns, update schema.sql and bump schemaVersion.
package cache
