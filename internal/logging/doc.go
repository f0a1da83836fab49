// Package logging builds the slog loggers used across citemap.
//
// It provides a human-oriented console handler for interactive runs, a JSON
// handler for machine consumption, attribute helper aliases, and component
// loggers that stamp a standardized component field on every record. Scrape
// runs log to stdout and a per-run log file simultaneously.
//
// Construct loggers through New or NewFromConfig so level parsing, output
// fan-out, and handler selection stay consistent between the CLI and tests.
package logging
