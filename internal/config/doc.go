// Package config loads, normalizes, and validates the engine's TOML
// configuration.
//
// Load resolves the config path (explicit flag, then
// ~/.config/pinballux/config.toml, then ./pinballux.toml), decodes over
// Default(), expands ~ in every path field, and validates thresholds and
// alias tables. Matching thresholds and every category alias live here as
// data so they can change without code changes.
package config
