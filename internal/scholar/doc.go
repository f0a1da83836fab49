// Package scholar provides the HTTP client for author lookups against a
// Scholar-compatible API.
//
// The upstream collector resolves citing authors to opaque author IDs; this
// client fetches each author's profile so the scrape engine can record either
// the self-reported affiliation (aggressive mode) or the verified organization
// (conservative mode). Failures are tagged with the services error taxonomy so
// the engine can decide between retrying and skipping.
package scholar
