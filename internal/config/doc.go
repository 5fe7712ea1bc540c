// Package config loads, normalizes, and validates converter configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// AVCONVERT_CLOUD_API_KEY. The Config type centralizes every knob the CLI and
// API server need, allowing output/state directories, tool overrides, and
// cloud credentials to be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical engine names, and clear validation errors.
package config
