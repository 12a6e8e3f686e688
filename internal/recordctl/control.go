package recordctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"audiocap/internal/capture"
	"audiocap/internal/config"
	"audiocap/internal/deps"
	"audiocap/internal/logging"
	"audiocap/internal/pidfile"
	"audiocap/internal/platform"
	"audiocap/internal/supervisor"
	"audiocap/internal/upload"
)

var (
	// ErrAlreadyRecording is returned when a background start finds a live recording.
	ErrAlreadyRecording = errors.New("a background recording is already running")
	// ErrNoRecording is returned by Stop when there is no usable pid record.
	ErrNoRecording = errors.New("no active recording: pid record not found")
	// ErrNotRunning is returned by Stop when the recorded process had already exited.
	ErrNotRunning = errors.New("recorded process is not running")
	// ErrStopFailed is returned when the process refused to terminate.
	ErrStopFailed = errors.New("failed to stop process")
)

type StartStatus string

const (
	StartStatusStarted StartStatus = "started"
	StartStatusDone    StartStatus = "done"
)

type State string

const (
	StateNoRecord   State = "no_record"
	StateRunning    State = "running"
	StateNotRunning State = "not_running"
)

// StartOptions are the per-invocation settings. Empty strings fall back to
// the [recording] section.
type StartOptions struct {
	Output     string
	Background bool
	Duration   string
	Microphone string
	System     string
	Format     string
}

// StartResult describes a started (background) or finished (foreground) recording.
type StartResult struct {
	Status      StartStatus    `json:"status"`
	PID         int            `json:"pid,omitempty"`
	File        string         `json:"file"`
	SessionID   string         `json:"session_id"`
	Upload      *upload.Result `json:"upload,omitempty"`
	UploadError string         `json:"upload_error,omitempty"`
}

// StopResult reports a terminated background recording.
type StopResult struct {
	Status string `json:"status"`
	PID    int    `json:"pid"`
}

// StatusResult reports the state of the background recording record.
type StatusResult struct {
	State State `json:"status"`
	PID   int   `json:"pid,omitempty"`
}

// Controller implements start, stop, status, and device listing against one
// configuration.
type Controller struct {
	cfg       *config.Config
	logger    *slog.Logger
	resolver  platform.Resolver
	store     *pidfile.Store
	now       func() time.Time
	stdout    io.Writer
	stderr    io.Writer
	lookup    func(string) (string, error)
	terminate func(int) (bool, error)
	isAlive   func(int) (bool, error)
}

// Option customizes a Controller.
type Option func(*Controller)

// WithResolver replaces the resolver for the running platform.
func WithResolver(r platform.Resolver) Option {
	return func(c *Controller) { c.resolver = r }
}

// WithClock replaces time.Now for generated file names.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithOutput sets where foreground ffmpeg output goes.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *Controller) {
		c.stdout = stdout
		c.stderr = stderr
	}
}

// WithProcessControl replaces how recorded processes are stopped and checked for liveness.
func WithProcessControl(terminate func(pid int) (bool, error), isAlive func(pid int) (bool, error)) Option {
	return func(c *Controller) {
		c.terminate = terminate
		c.isAlive = isAlive
	}
}

// New builds a Controller. The platform resolver defaults to the running OS.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Controller, error) {
	if cfg == nil {
		return nil, errors.New("recordctl: config is required")
	}
	c := &Controller{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "recordctl"),
		store:     pidfile.New(cfg.PIDPath()),
		now:       time.Now,
		lookup:    deps.ResolveFFmpeg,
		terminate: supervisor.Terminate,
		isAlive:   supervisor.IsAlive,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.resolver == nil {
		r, err := platform.Current()
		if err != nil {
			return nil, err
		}
		c.resolver = r
	}
	return c, nil
}

// RecorderConfig derives the capture settings from configuration and an
// optional format override.
func (c *Controller) RecorderConfig(formatOverride string) (capture.RecorderConfig, error) {
	format := c.cfg.Recording.Format
	if formatOverride != "" {
		format = formatOverride
	}
	container, err := capture.ParseContainer(format)
	if err != nil {
		return capture.RecorderConfig{}, err
	}
	return capture.RecorderConfig{
		OutDir:         c.cfg.Paths.RecordingsDir,
		Format:         container,
		PreferPipeWire: c.cfg.Recording.PreferPipeWire,
		WASAPI:         c.cfg.Recording.WASAPI,
	}, nil
}

// Start records in the foreground, blocking until ffmpeg exits, or spawns a
// detached recording and persists its pid.
func (c *Controller) Start(ctx context.Context, opts StartOptions) (StartResult, error) {
	sessionID := uuid.NewString()
	ctx = logging.WithSessionID(ctx, sessionID)
	logger := logging.WithContext(ctx, c.logger)

	ffmpegPath, err := c.lookup(c.cfg.FFmpeg.Binary)
	if err != nil {
		return StartResult{}, err
	}

	if opts.Background {
		if pid, running := c.activeRecording(); running {
			return StartResult{}, fmt.Errorf("%w (pid %d)", ErrAlreadyRecording, pid)
		}
	}

	recCfg, err := c.RecorderConfig(opts.Format)
	if err != nil {
		return StartResult{}, err
	}
	outfile := opts.Output
	if outfile == "" {
		outfile = capture.NextFilename(recCfg.OutDir, recCfg.Format, c.now())
	}
	args, err := capture.BuildArguments(recCfg, c.resolver, outfile, capture.BuildOptions{
		Duration:   firstNonEmpty(opts.Duration, c.cfg.Recording.Duration),
		Microphone: firstNonEmpty(opts.Microphone, c.cfg.Recording.Microphone),
		System:     firstNonEmpty(opts.System, c.cfg.Recording.System),
	})
	if err != nil {
		return StartResult{}, err
	}
	logger.Debug("ffmpeg arguments prepared", logging.Any("args", args))

	sup := supervisor.New(ffmpegPath, logger)
	sup.Stdout = c.stdout
	sup.Stderr = c.stderr

	if opts.Background {
		return c.startBackground(sup, args, outfile, sessionID, logger)
	}

	logger.Info("recording started",
		logging.String("file", outfile),
		logging.String("backend", c.resolver.Backend(recCfg.Preferences())),
	)
	if err := sup.RunForeground(ctx, args); err != nil {
		return StartResult{}, err
	}
	logger.Info("recording finished", logging.String("file", outfile))

	result := StartResult{Status: StartStatusDone, File: outfile, SessionID: sessionID}
	if c.cfg.Upload.Enabled {
		uploaded, err := c.Upload(ctx, outfile)
		if err != nil {
			logging.WarnWithContext(logger, "upload failed", "upload_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "recording kept locally"),
				logging.String(logging.FieldErrorHint, "retry with 'audiocap upload <file>'"),
			)
			result.UploadError = err.Error()
		} else {
			result.Upload = &uploaded
		}
	}
	return result, nil
}

func (c *Controller) startBackground(sup *supervisor.Supervisor, args []string, outfile, sessionID string, logger *slog.Logger) (StartResult, error) {
	pid, err := sup.RunBackground(args)
	if err != nil {
		return StartResult{}, err
	}
	if err := c.store.Write(pid); err != nil {
		// Stop relies on the record; do not leave an untracked ffmpeg behind.
		if _, termErr := c.terminate(pid); termErr != nil {
			logger.Warn("failed to stop unrecorded ffmpeg", logging.PID(pid), logging.Error(termErr))
		}
		return StartResult{}, fmt.Errorf("record pid %d: %w", pid, err)
	}
	logger.Info("background recording started",
		logging.PID(pid),
		logging.String("file", outfile),
		logging.String("pid_file", c.store.Path()),
	)
	return StartResult{Status: StartStatusStarted, PID: pid, File: outfile, SessionID: sessionID}, nil
}

// activeRecording reports the recorded pid when it belongs to a live process.
func (c *Controller) activeRecording() (int, bool) {
	pid, err := c.store.Read()
	if err != nil {
		return 0, false
	}
	alive, err := c.isAlive(pid)
	if err != nil {
		c.logger.Debug("liveness probe failed", logging.PID(pid), logging.Error(err))
		return pid, false
	}
	return pid, alive
}

// Stop terminates the recorded background recording and removes its record.
// Any record that cannot be read or parsed yields ErrNoRecording.
func (c *Controller) Stop() (StopResult, error) {
	pid, err := c.store.Read()
	if err != nil {
		c.logger.Debug("no usable pid record to stop", logging.Error(err))
		return StopResult{}, ErrNoRecording
	}

	ok, err := c.terminate(pid)
	if err != nil {
		return StopResult{}, fmt.Errorf("stop pid %d: %w", pid, err)
	}
	if !ok {
		alive, aliveErr := c.isAlive(pid)
		if aliveErr == nil && !alive {
			if err := c.store.Remove(); err != nil {
				return StopResult{}, err
			}
			logging.WarnWithContext(c.logger, "removed stale pid record", "pid_record_stale",
				logging.PID(pid),
				logging.String(logging.FieldImpact, "recording had already ended"),
			)
			return StopResult{}, fmt.Errorf("%w (pid %d)", ErrNotRunning, pid)
		}
		return StopResult{}, fmt.Errorf("%w (pid %d)", ErrStopFailed, pid)
	}

	if err := c.store.Remove(); err != nil {
		return StopResult{}, err
	}
	c.logger.Info("background recording stopped", logging.PID(pid))
	return StopResult{Status: "stopped", PID: pid}, nil
}

// Status reports whether the recorded process is running. A missing or
// unreadable record is reported as StateNoRecord.
func (c *Controller) Status() (StatusResult, error) {
	pid, err := c.store.Read()
	if err != nil {
		if !errors.Is(err, pidfile.ErrNotFound) {
			c.logger.Debug("pid record unreadable", logging.Error(err))
		}
		return StatusResult{State: StateNoRecord}, nil
	}
	alive, err := c.isAlive(pid)
	if err != nil {
		return StatusResult{PID: pid}, err
	}
	if alive {
		return StatusResult{State: StateRunning, PID: pid}, nil
	}
	return StatusResult{State: StateNotRunning, PID: pid}, nil
}

// ListDevices writes the platform's device listings to w.
func (c *Controller) ListDevices(ctx context.Context, w io.Writer) error {
	recCfg, err := c.RecorderConfig("")
	if err != nil {
		return err
	}
	ffmpegPath, err := c.lookup(c.cfg.FFmpeg.Binary)
	if err != nil {
		// Listing is best effort; the platform tools may still work.
		c.logger.Debug("ffmpeg not resolved for device listing", logging.Error(err))
		ffmpegPath = c.cfg.FFmpeg.Binary
	}
	return platform.Enumerate(ctx, w, c.resolver, recCfg.Preferences(), ffmpegPath, c.logger)
}

// Upload sends a finished recording to the configured bucket.
func (c *Controller) Upload(ctx context.Context, file string) (upload.Result, error) {
	uploader, err := upload.New(c.cfg.Upload, c.logger)
	if err != nil {
		return upload.Result{}, err
	}
	return uploader.Upload(ctx, file)
}

// Backend names the capture backend ffmpeg will use.
func (c *Controller) Backend() (string, error) {
	recCfg, err := c.RecorderConfig("")
	if err != nil {
		return "", err
	}
	return c.resolver.Backend(recCfg.Preferences()), nil
}

// ResolveInputs resolves the configured devices without starting anything.
func (c *Controller) ResolveInputs() (platform.Inputs, error) {
	recCfg, err := c.RecorderConfig("")
	if err != nil {
		return platform.Inputs{}, err
	}
	return c.resolver.Resolve(recCfg.Preferences(), platform.Overrides{
		Microphone: c.cfg.Recording.Microphone,
		System:     c.cfg.Recording.System,
	})
}

// PIDPath returns the location of the pid record.
func (c *Controller) PIDPath() string { return c.store.Path() }

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
