package capture

import (
	"fmt"
	"strings"
)

// Container is the output file format.
type Container int

const (
	WAV Container = iota
	MP3
)

// ParseContainer accepts "wav" or "mp3" in any case.
func ParseContainer(value string) (Container, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "wav":
		return WAV, nil
	case "mp3":
		return MP3, nil
	default:
		return 0, fmt.Errorf("unsupported container %q (want wav or mp3)", value)
	}
}

// Extension returns the file extension without a leading dot.
func (c Container) Extension() string {
	if c == MP3 {
		return "mp3"
	}
	return "wav"
}

// CodecArgs returns the ffmpeg output codec flags.
func (c Container) CodecArgs() []string {
	if c == MP3 {
		return []string{"-c:a", "libmp3lame", "-b:a", "192k"}
	}
	return []string{"-c:a", "pcm_s16le"}
}

func (c Container) String() string { return c.Extension() }

// MarshalText implements encoding.TextMarshaler.
func (c Container) MarshalText() ([]byte, error) {
	return []byte(c.Extension()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Container) UnmarshalText(text []byte) error {
	parsed, err := ParseContainer(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
