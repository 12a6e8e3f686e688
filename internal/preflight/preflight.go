package preflight

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"audiocap/internal/config"
	"audiocap/internal/deps"
	"audiocap/internal/upload"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, logger *slog.Logger) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Recordings", cfg.Paths.RecordingsDir),
		CheckFFmpeg(cfg.FFmpeg.Binary),
	}
	if cfg.Upload.Enabled {
		results = append(results, CheckUpload(ctx, cfg.Upload, logger))
	}
	return results
}

// CheckDirectoryAccess verifies that the directory exists and is readable and writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := checkAccess(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFFmpeg resolves the capture binary the same way a recording does.
func CheckFFmpeg(command string) Result {
	path, err := deps.ResolveFFmpeg(command)
	if err != nil {
		return Result{Name: "FFmpeg", Detail: err.Error()}
	}
	return Result{Name: "FFmpeg", Passed: true, Detail: path}
}

// CheckUpload writes and deletes a probe object in the configured bucket.
func CheckUpload(ctx context.Context, cfg config.Upload, logger *slog.Logger) Result {
	name := "Upload"
	uploader, err := upload.New(cfg, logger)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if err := uploader.Check(ctx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("s3://%s (error: %v)", cfg.Bucket, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("s3://%s (write ok)", cfg.Bucket)}
}
