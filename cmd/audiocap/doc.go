// Package main hosts the audiocap CLI entrypoint and command graph.
//
// The Cobra command tree maps terminal invocations onto the recordctl
// operations (start, stop, status, devices) plus dependency checks, manual
// uploads, and configuration scaffolding. Configuration and logger setup live
// in commandContext so subcommands only deal with presentation.
//
// Keep this package thin: behavior belongs in the internal packages and is
// surfaced here through flags and output formatting.
package main
