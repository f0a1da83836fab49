// Package geocode resolves affiliation strings to coordinates through a
// Nominatim-style forward geocoding API, backed by a persistent JSON file
// cache so repeat exports never hit the network for known affiliations.
package geocode
