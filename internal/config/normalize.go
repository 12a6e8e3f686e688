package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRecording()
	c.normalizeFFmpeg()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	c.normalizeUpload()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := lookupEnv("AUDIOCAP_DATA_DIR"); ok {
		c.Paths.DataDir = value
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	var err error
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.RecordingsDir) == "" {
		c.Paths.RecordingsDir = filepath.Join(c.Paths.DataDir, defaultRecordingsSubdir)
	}
	if c.Paths.RecordingsDir, err = expandPath(strings.TrimSpace(c.Paths.RecordingsDir)); err != nil {
		return fmt.Errorf("paths.recordings_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRecording() {
	if value, ok := lookupEnv("AUDIOCAP_FORMAT"); ok {
		c.Recording.Format = value
	}
	c.Recording.Format = strings.ToLower(strings.TrimSpace(c.Recording.Format))
	if c.Recording.Format == "" {
		c.Recording.Format = defaultFormat
	}
	c.Recording.Duration = strings.TrimSpace(c.Recording.Duration)
	c.Recording.Microphone = strings.TrimSpace(c.Recording.Microphone)
	c.Recording.System = strings.TrimSpace(c.Recording.System)
}

func (c *Config) normalizeFFmpeg() {
	if value, ok := lookupEnv("AUDIOCAP_FFMPEG"); ok {
		c.FFmpeg.Binary = value
	}
	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = defaultFFmpegBinary
	}
	// A bundled binary may be given as a path; bare names are looked up on PATH.
	if strings.ContainsAny(c.FFmpeg.Binary, `/\`) || strings.HasPrefix(c.FFmpeg.Binary, "~") {
		if expanded, err := expandPath(c.FFmpeg.Binary); err == nil {
			c.FFmpeg.Binary = expanded
		}
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	switch c.Logging.Level {
	case "":
		c.Logging.Level = defaultLogLevel
	case "warning":
		c.Logging.Level = "warn"
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		var err error
		if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeUpload() {
	if c.Upload.AccessKeyID == "" {
		if value, ok := lookupEnv("AUDIOCAP_S3_ACCESS_KEY_ID"); ok {
			c.Upload.AccessKeyID = value
		}
	}
	if c.Upload.SecretAccessKey == "" {
		if value, ok := lookupEnv("AUDIOCAP_S3_SECRET_ACCESS_KEY"); ok {
			c.Upload.SecretAccessKey = value
		}
	}
	c.Upload.Bucket = strings.TrimSpace(c.Upload.Bucket)
	c.Upload.Endpoint = strings.TrimRight(strings.TrimSpace(c.Upload.Endpoint), "/")
	c.Upload.Region = strings.TrimSpace(c.Upload.Region)
	if c.Upload.Region == "" {
		c.Upload.Region = defaultUploadRegion
	}
	c.Upload.Prefix = strings.Trim(strings.TrimSpace(c.Upload.Prefix), "/")
	c.Upload.AccessKeyID = strings.TrimSpace(c.Upload.AccessKeyID)
	c.Upload.SecretAccessKey = strings.TrimSpace(c.Upload.SecretAccessKey)
	if c.Upload.TimeoutSeconds == 0 {
		c.Upload.TimeoutSeconds = defaultUploadTimeoutSeconds
	}
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return strings.TrimSpace(value), true
}
