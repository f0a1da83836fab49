// Package importer reads externally produced citation files into the
// store: author triples collected upstream, and legacy affiliation
// four-tuples that predate the entry link.
package importer
