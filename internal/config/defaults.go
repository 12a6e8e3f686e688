package config

const (
	defaultConfigPath           = "~/.config/audiocap/config.toml"
	defaultDataDir              = "~/.local/share/audiocap"
	defaultRecordingsSubdir     = "recordings"
	defaultFormat               = "wav"
	defaultFFmpegBinary         = "ffmpeg"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultUploadRegion         = "auto"
	defaultUploadTimeoutSeconds = 300
)

// Default returns a Config populated with repository defaults. The recordings
// directory is left empty and derived from the data directory during Load.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Recording: Recording{
			Format: defaultFormat,
		},
		FFmpeg: FFmpeg{
			Binary: defaultFFmpegBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Upload: Upload{
			Region:         defaultUploadRegion,
			TimeoutSeconds: defaultUploadTimeoutSeconds,
		},
	}
}
