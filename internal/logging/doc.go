// Package logging assembles structured slog loggers for audiocap.
//
// It owns the console and JSON handlers, maps the configured level and format
// onto them, and exposes attribute helpers plus a context helper that tags log
// lines with the recording session identifier. A no-op logger is provided for
// tests and for wiring code that runs before configuration is loaded.
//
// Log output goes to stderr by default so command results printed on stdout
// remain machine readable.
package logging
