// Package services holds the error taxonomy and context helpers shared by the
// scrape engine and the external clients.
//
// Sentinel errors classify failures so the engine can decide between retrying
// an author entry and skipping it permanently. Context helpers stamp run and
// entry identifiers for log correlation.
package services
