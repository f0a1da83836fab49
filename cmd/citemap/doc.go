// Package main hosts the citemap CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the whole citation workflow: importing
// author lists, running the incremental affiliation scrape, inspecting the
// cache with the diagnostic subcommands, and exporting affiliation reports
// and geocoded CSVs. It centralizes configuration resolution and output-mode
// selection so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
