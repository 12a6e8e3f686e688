package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"sync"

	"audiocap/internal/logging"
)

// ErrInvalidPID is returned for identifiers that must never be signalled:
// non-positive values and the calling process itself.
var ErrInvalidPID = errors.New("invalid pid")

// SpawnError reports a process that could not be started.
type SpawnError struct {
	Binary string
	Err    error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Binary, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExitError reports a foreground process that finished unsuccessfully.
type ExitError struct {
	Code int
	// Interrupted is set when the process was killed after an interrupt
	// signal or context cancellation.
	Interrupted bool
	Err         error
}

func (e *ExitError) Error() string {
	if e.Interrupted {
		return fmt.Sprintf("ffmpeg interrupted (exit status %d)", e.Code)
	}
	return fmt.Sprintf("ffmpeg exited with status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// ProbeError reports a failure of the platform tool used to query or stop a process.
type ProbeError struct {
	PID  int
	Tool string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("%s for pid %d: %v", e.Tool, e.PID, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// Supervisor launches the capture binary.
type Supervisor struct {
	Binary string
	Logger *slog.Logger
	// Stdout and Stderr receive foreground output. Nil means the caller's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a Supervisor for binary.
func New(binary string, logger *slog.Logger) *Supervisor {
	return &Supervisor{Binary: binary, Logger: logging.NewComponentLogger(logger, "supervisor")}
}

func (s *Supervisor) logger() *slog.Logger {
	if s.Logger == nil {
		return logging.NewNop()
	}
	return s.Logger
}

// RunForeground runs the binary to completion with no stdin and the caller's
// output streams. An interrupt signal or ctx cancellation kills the child.
func (s *Supervisor) RunForeground(ctx context.Context, args []string) error {
	cmd := exec.Command(s.Binary, args...)
	cmd.Stdout = writerOr(s.Stdout, os.Stdout)
	cmd.Stderr = writerOr(s.Stderr, os.Stderr)

	var cell processCell
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, shutdownSignals()...)
	defer signal.Stop(signals)

	done := make(chan struct{})
	var watcher sync.WaitGroup
	watcher.Add(1)
	go func() {
		defer watcher.Done()
		select {
		case sig := <-signals:
			s.logger().Info("interrupt received, stopping ffmpeg", logging.String("signal", sig.String()))
			cell.kill()
		case <-ctx.Done():
			cell.kill()
		case <-done:
		}
	}()
	defer func() {
		close(done)
		watcher.Wait()
	}()

	if err := cmd.Start(); err != nil {
		return &SpawnError{Binary: s.Binary, Err: err}
	}
	cell.set(cmd.Process)
	s.logger().Debug("ffmpeg started", logging.PID(cmd.Process.Pid))

	err := cmd.Wait()
	interrupted := cell.clear()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode(), Interrupted: interrupted, Err: err}
	}
	return fmt.Errorf("wait for ffmpeg: %w", err)
}

// RunBackground starts the binary detached from the caller's session with no
// inherited streams and returns its pid without waiting.
func (s *Supervisor) RunBackground(args []string) (int, error) {
	cmd := exec.Command(s.Binary, args...)
	cmd.SysProcAttr = detachedAttrs()
	if err := cmd.Start(); err != nil {
		return 0, &SpawnError{Binary: s.Binary, Err: err}
	}
	pid := cmd.Process.Pid
	// Reap the child if this process outlives it so liveness probes do not
	// see a zombie.
	go func() { _ = cmd.Wait() }()
	s.logger().Debug("ffmpeg detached", logging.PID(pid))
	return pid, nil
}

// Terminate asks the process to exit. It reports false with a nil error when
// the request was refused, for example because the process no longer exists.
func Terminate(pid int) (bool, error) {
	if err := checkPID(pid); err != nil {
		return false, err
	}
	return terminate(pid)
}

// IsAlive reports whether a process with pid currently exists.
func IsAlive(pid int) (bool, error) {
	if err := checkPID(pid); err != nil {
		return false, err
	}
	return isAlive(pid)
}

func checkPID(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	if pid == os.Getpid() {
		return fmt.Errorf("%w: %d is the current process", ErrInvalidPID, pid)
	}
	return nil
}

// processCell shares the foreground child between the waiter and the signal
// watcher. A kill requested before the child is published is applied on set.
type processCell struct {
	mu        sync.Mutex
	proc      *os.Process
	cancelled bool
}

func (c *processCell) set(p *os.Process) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.proc = p
	if c.cancelled {
		_ = p.Kill()
	}
}

func (c *processCell) kill() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelled = true
	if c.proc != nil {
		_ = c.proc.Kill()
	}
}

// clear drops the handle and reports whether a kill was requested.
func (c *processCell) clear() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.proc = nil
	return c.cancelled
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}
