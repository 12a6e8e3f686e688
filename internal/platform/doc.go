// Package platform resolves the ffmpeg input backends and default capture
// devices for each supported operating system.
//
// Every backend compiles on every target and is selected at runtime from the
// GOOS value, so argument construction never branches on the platform itself.
// Device overrides replace only the identifier passed to -i; backend selection
// and per-input format flags always come from the active backend.
package platform
