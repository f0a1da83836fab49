// Package config loads, normalizes, and validates citemap configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the SCHOLAR_API_KEY environment
// fallback. The Config type centralizes every knob the CLI needs, so cache and
// results directories and the Scholar endpoint are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
