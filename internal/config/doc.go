// Package config loads, normalizes, and validates reelpress configuration
// data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CAPTIONER_API_KEY. The Config type centralizes every knob the batch runner
// and CLI need, so input/output directories, caption service credentials, and
// render styling are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical language tags, and clear validation errors.
package config
