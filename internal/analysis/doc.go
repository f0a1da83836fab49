// Package analysis builds diagnostic reports over the affiliation cache.
//
// Each report corresponds to one cache subcommand: verify inspects the
// record set as a whole, duplicates accounts for suppressed tuple
// collisions, uniqueness examines the imported author entries, and
// matching classifies legacy records that lost their author linkage.
// Reports are plain data; rendering belongs to the CLI.
package analysis
