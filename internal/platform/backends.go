package platform

const (
	pulseSystemDefault = "@DEFAULT_SINK@.monitor"
	pulseMicDefault    = "@DEFAULT_SOURCE@"

	avfoundationMicDefault = ":0"

	wasapiDefault      = "default"
	dshowSystemDefault = "audio=virtual-audio-capturer"
	dshowMicDefault    = "audio=Microphone (default)"
)

var pulseQueueFlags = []string{"-thread_queue_size", "1024"}

// pulseResolver captures through the PulseAudio protocol, which PipeWire
// also serves through pipewire-pulse.
type pulseResolver struct{}

func (pulseResolver) Backend(Preferences) string { return "pulse" }

func (pulseResolver) Resolve(_ Preferences, o Overrides) (Inputs, error) {
	prelude := []string{"-f", "pulse"}
	return Inputs{
		System:     spec(pick(o.System, pulseSystemDefault), prelude, pulseQueueFlags),
		Microphone: spec(pick(o.Microphone, pulseMicDefault), prelude, pulseQueueFlags),
	}, nil
}

func (pulseResolver) ListCommands(prefs Preferences, _ string) []ListCommand {
	pulse := []ListCommand{
		{Title: "Linux: PulseAudio (pactl)", Name: "pactl", Args: []string{"list", "short", "sources"}},
		{Name: "pactl", Args: []string{"info"}},
	}
	pipewire := ListCommand{Title: "Linux: PipeWire (pw-cli)", Name: "pw-cli", Args: []string{"ls", "Node"}}
	if prefs.PreferPipeWire {
		return append([]ListCommand{pipewire}, pulse...)
	}
	return append(pulse, pipewire)
}

func (pulseResolver) Notes(Preferences) []string {
	return []string{"Monitor sources (*.monitor) capture system audio; pass one with --system to pick a specific sink."}
}

type avfoundationResolver struct{}

func (avfoundationResolver) Backend(Preferences) string { return "avfoundation" }

func (avfoundationResolver) Resolve(_ Preferences, o Overrides) (Inputs, error) {
	if o.System == "" {
		return Inputs{}, &ConfigError{
			Backend: "avfoundation",
			Message: "a loopback device must be supplied for system audio (e.g. 'BlackHole 2ch')",
		}
	}
	prelude := []string{"-f", "avfoundation"}
	return Inputs{
		System:     spec(o.System, prelude, nil),
		Microphone: spec(pick(o.Microphone, avfoundationMicDefault), prelude, nil),
	}, nil
}

func (avfoundationResolver) ListCommands(_ Preferences, ffmpegPath string) []ListCommand {
	return []ListCommand{{
		Title: "macOS (AVFoundation) devices",
		Name:  ffmpegPath,
		Args:  []string{"-hide_banner", "-f", "avfoundation", "-list_devices", "true", "-i", ""},
	}}
}

func (avfoundationResolver) Notes(Preferences) []string {
	return []string{"macOS requires a loopback device (BlackHole/Loopback) for system audio."}
}

// windowsResolver switches between WASAPI and DirectShow on prefs.WASAPI.
type windowsResolver struct{}

func (windowsResolver) Backend(prefs Preferences) string {
	if prefs.WASAPI {
		return "wasapi"
	}
	return "dshow"
}

func (r windowsResolver) Resolve(prefs Preferences, o Overrides) (Inputs, error) {
	if prefs.WASAPI {
		prelude := []string{"-f", "wasapi"}
		return Inputs{
			System:     spec(pick(o.System, wasapiDefault), append([]string{"-loopback", "1"}, prelude...), nil),
			Microphone: spec(pick(o.Microphone, wasapiDefault), prelude, nil),
		}, nil
	}
	prelude := []string{"-f", "dshow"}
	return Inputs{
		System:     spec(pick(o.System, dshowSystemDefault), prelude, nil),
		Microphone: spec(pick(o.Microphone, dshowMicDefault), prelude, nil),
	}, nil
}

func (windowsResolver) ListCommands(prefs Preferences, ffmpegPath string) []ListCommand {
	if prefs.WASAPI {
		return []ListCommand{{
			Title: "Windows (WASAPI) devices",
			Name:  ffmpegPath,
			Args:  []string{"-hide_banner", "-f", "wasapi", "-list_devices", "true", "-i", "dummy"},
		}}
	}
	return []ListCommand{{
		Title: "Windows (DirectShow) devices",
		Name:  ffmpegPath,
		Args:  []string{"-hide_banner", "-list_devices", "true", "-f", "dshow", "-i", "dummy"},
	}}
}

func (windowsResolver) Notes(Preferences) []string {
	return []string{"For system audio you may need Stereo Mix or a virtual loopback device."}
}
