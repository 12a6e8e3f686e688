package platform

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
)

// ErrUnsupportedPlatform is returned when no capture backend exists for the
// requested operating system.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// DeviceSpec describes one ffmpeg input: the flags that select the backend,
// per-input format flags, and the device identifier passed to -i.
type DeviceSpec struct {
	Device  string
	Prelude []string
	Format  []string
}

// Args renders the input block in ffmpeg order: prelude, format flags, -i device.
func (d DeviceSpec) Args() []string {
	args := make([]string, 0, len(d.Prelude)+len(d.Format)+2)
	args = append(args, d.Prelude...)
	args = append(args, d.Format...)
	return append(args, "-i", d.Device)
}

// Inputs holds the resolved system (input 0) and microphone (input 1) specs.
type Inputs struct {
	System     DeviceSpec
	Microphone DeviceSpec
}

// Preferences carries the backend switches from the recorder configuration.
type Preferences struct {
	PreferPipeWire bool
	WASAPI         bool
}

// Overrides replaces default device identifiers. Empty fields keep the default.
type Overrides struct {
	Microphone string
	System     string
}

// ListCommand is one diagnostic tool invocation used for device enumeration.
type ListCommand struct {
	Title string
	Name  string
	Args  []string
}

// Resolver maps recorder preferences onto platform specific ffmpeg inputs.
type Resolver interface {
	// Backend names the ffmpeg input format selected for prefs.
	Backend(prefs Preferences) string
	Resolve(prefs Preferences, overrides Overrides) (Inputs, error)
	ListCommands(prefs Preferences, ffmpegPath string) []ListCommand
	Notes(prefs Preferences) []string
}

// ConfigError reports a recording configuration the platform cannot satisfy.
type ConfigError struct {
	Backend string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Backend, e.Message)
}

// ForOS returns the resolver for goos.
func ForOS(goos string) (Resolver, error) {
	switch goos {
	case "linux":
		return pulseResolver{}, nil
	case "darwin":
		return avfoundationResolver{}, nil
	case "windows":
		return windowsResolver{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos)
	}
}

// Current returns the resolver for the running operating system.
func Current() (Resolver, error) {
	return ForOS(runtime.GOOS)
}

func pick(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}

func spec(device string, prelude, format []string) DeviceSpec {
	return DeviceSpec{Device: device, Prelude: slices.Clone(prelude), Format: slices.Clone(format)}
}
