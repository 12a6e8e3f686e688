package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// PIDFileName is the name of the background recording record inside the data directory.
const PIDFileName = "audiocap.pid"

// Paths contains directory configuration.
type Paths struct {
	DataDir       string `toml:"data_dir" validate:"required"`
	RecordingsDir string `toml:"recordings_dir" validate:"required"`
}

// Recording contains the defaults applied to every capture.
type Recording struct {
	Format         string `toml:"format" validate:"oneof=wav mp3"`
	PreferPipeWire bool   `toml:"prefer_pipewire"`
	WASAPI         bool   `toml:"wasapi"`
	// Duration is handed to ffmpeg's -t flag as written.
	Duration   string `toml:"duration"`
	Microphone string `toml:"microphone"`
	System     string `toml:"system"`
}

// FFmpeg contains configuration for the capture binary.
type FFmpeg struct {
	Binary string `toml:"binary" validate:"required"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" validate:"oneof=console json"`
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	File   string `toml:"file"`
}

// Upload contains configuration for pushing finished recordings to S3
// compatible storage.
type Upload struct {
	Enabled         bool   `toml:"enabled"`
	Bucket          string `toml:"bucket" validate:"required_if=Enabled true"`
	Endpoint        string `toml:"endpoint" validate:"omitempty,url"`
	Region          string `toml:"region"`
	Prefix          string `toml:"prefix"`
	AccessKeyID     string `toml:"access_key_id" validate:"required_if=Enabled true"`
	SecretAccessKey string `toml:"secret_access_key" validate:"required_if=Enabled true"`
	DeleteLocal     bool   `toml:"delete_local"`
	TimeoutSeconds  int    `toml:"timeout_seconds" validate:"gte=1,lte=3600"`
}

// Timeout returns the per-upload deadline.
func (u Upload) Timeout() time.Duration {
	return time.Duration(u.TimeoutSeconds) * time.Second
}

// Config encapsulates all configuration values for audiocap.
//
// Configuration sections by subsystem:
//   - Paths: data directory (PID record) and recordings directory
//   - Recording: container format, backend switches, device overrides
//   - FFmpeg: capture binary location
//   - Logging: log format, level, and optional file
//   - Upload: S3 upload of finished foreground recordings
type Config struct {
	Paths     Paths     `toml:"paths"`
	Recording Recording `toml:"recording"`
	FFmpeg    FFmpeg    `toml:"ffmpeg"`
	Logging   Logging   `toml:"logging"`
	Upload    Upload    `toml:"upload"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		if value, ok := os.LookupEnv("AUDIOCAP_CONFIG"); ok && strings.TrimSpace(value) != "" {
			path = value
		}
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the data and recordings directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.RecordingsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PIDPath returns the location of the background recording record.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.DataDir, PIDFileName)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
