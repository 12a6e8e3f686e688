package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"audiocap/internal/config"
	"audiocap/internal/logging"
	"audiocap/internal/recordctl"
)

type commandContext struct {
	configFlag *string
	ctlOptions []recordctl.Option

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, opts ...recordctl.Option) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		ctlOptions: opts,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the logger once. Logs always go to stderr so stdout
// carries only command output.
func (c *commandContext) ensureLogger(stderr io.Writer) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg, stderr)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// controller returns a recordctl.Controller writing foreground ffmpeg output
// to stdout and stderr.
func (c *commandContext) controller(stdout, stderr io.Writer) (*recordctl.Controller, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger(stderr)
	if err != nil {
		return nil, err
	}
	opts := append([]recordctl.Option{recordctl.WithOutput(stdout, stderr)}, c.ctlOptions...)
	return recordctl.New(cfg, logger, opts...)
}
