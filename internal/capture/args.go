package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"audiocap/internal/platform"
)

// MixFilter mixes the system and microphone inputs into one stream.
const MixFilter = "amix=inputs=2:duration=longest:dropout_transition=2"

const filenameLayout = "2006-01-02_15-04-05"

// RecorderConfig is the platform neutral description of a recording.
type RecorderConfig struct {
	OutDir         string
	Format         Container
	PreferPipeWire bool
	WASAPI         bool
}

// DefaultRecorderConfig records WAV into ./recordings.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{OutDir: "recordings", Format: WAV}
}

// Preferences extracts the backend switches for the device resolver.
func (c RecorderConfig) Preferences() platform.Preferences {
	return platform.Preferences{PreferPipeWire: c.PreferPipeWire, WASAPI: c.WASAPI}
}

// BuildOptions holds the per-run values. Empty strings mean "not supplied".
type BuildOptions struct {
	// Duration is forwarded to ffmpeg's -t without validation.
	Duration   string
	Microphone string
	System     string
}

// FilesystemError reports a directory that could not be prepared.
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("create directory %q: %v", e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// NextFilename returns a timestamped output path inside outDir.
func NextFilename(outDir string, format Container, now time.Time) string {
	name := fmt.Sprintf("recording_%s.%s", now.Format(filenameLayout), format.Extension())
	return filepath.Join(outDir, name)
}

// BuildArguments assembles the ffmpeg argument list for one recording.
// Input 0 is always the system source and input 1 the microphone. The output
// directory and the parent of outfile are created before any device lookup.
func BuildArguments(cfg RecorderConfig, resolver platform.Resolver, outfile string, opts BuildOptions) ([]string, error) {
	for _, dir := range []string{cfg.OutDir, filepath.Dir(outfile)} {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &FilesystemError{Path: dir, Err: err}
		}
	}

	inputs, err := resolver.Resolve(cfg.Preferences(), platform.Overrides{
		Microphone: opts.Microphone,
		System:     opts.System,
	})
	if err != nil {
		return nil, err
	}

	args := []string{"-hide_banner", "-y"}
	if opts.Duration != "" {
		args = append(args, "-t", opts.Duration)
	}
	args = append(args, inputs.System.Args()...)
	args = append(args, inputs.Microphone.Args()...)
	args = append(args, "-filter_complex", MixFilter)
	args = append(args, cfg.Format.CodecArgs()...)
	return append(args, outfile), nil
}
