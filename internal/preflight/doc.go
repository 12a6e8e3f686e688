// Package preflight provides readiness checks for the filesystem paths,
// binaries, and storage audiocap depends on.
//
// The CLI "audiocap doctor" command runs RunAll and renders each Result as a
// status line. Checks for optional features are skipped when the feature is
// disabled in the configuration.
package preflight
