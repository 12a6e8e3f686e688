//go:build unix

package supervisor

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

func shutdownSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}

// detachedAttrs makes the child a session leader so it survives the caller
// and its controlling terminal.
func detachedAttrs() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}

func terminate(pid int) (bool, error) {
	err := unix.Kill(pid, unix.SIGTERM)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, unix.ESRCH), errors.Is(err, unix.EPERM):
		return false, nil
	default:
		return false, &ProbeError{PID: pid, Tool: "kill", Err: err}
	}
}

func isAlive(pid int) (bool, error) {
	err := unix.Kill(pid, 0)
	switch {
	case err == nil, errors.Is(err, unix.EPERM):
		return true, nil
	case errors.Is(err, unix.ESRCH):
		return false, nil
	default:
		return false, &ProbeError{PID: pid, Tool: "kill -0", Err: err}
	}
}
