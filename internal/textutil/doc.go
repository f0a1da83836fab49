// Package textutil compares free-text affiliation strings.
//
// Affiliations are self-reported and arrive in many spellings of the same
// institution ("NASA JPL", "Jet Propulsion Laboratory, NASA"). Fingerprints
// are TF-IDF weighted term vectors; cosine similarity between them surfaces
// likely duplicate spellings without exact matching.
//
// Tokenization lowercases, splits on non-alphanumeric runs, and drops
// single-character tokens so acronyms like "AI" and "UK" survive.
package textutil
