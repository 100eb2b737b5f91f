// Package config loads, normalizes, and validates minutes configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OLLAMA_MODEL and MIN_TEXT_LENGTH, optionally sourced from a .env file. The
// Config type centralizes every knob the server and CLI need so the model
// endpoint, note limits, and storage directories are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
