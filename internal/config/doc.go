// Package config loads, normalizes, and validates audiocap configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// AUDIOCAP_DATA_DIR and AUDIOCAP_FFMPEG. Validation runs struct tag rules so
// error messages name the TOML key that needs fixing.
//
// Always obtain settings through this package so downstream code receives
// absolute paths and canonical enum values.
package config
