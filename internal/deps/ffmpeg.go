package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// MissingBinaryError reports a required tool that could not be located,
// together with platform specific install guidance.
type MissingBinaryError struct {
	Command string
	Hint    string
}

func (e *MissingBinaryError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("%s not found on PATH", e.Command)
	}
	return fmt.Sprintf("%s not found on PATH. %s", e.Command, e.Hint)
}

// InstallHint returns the ffmpeg install instructions for goos.
func InstallHint(goos string) string {
	switch goos {
	case "darwin":
		return "Install it with: brew install ffmpeg"
	case "windows":
		return "Install it with: scoop install ffmpeg (or choco install ffmpeg)"
	default:
		return "Install it with your package manager, e.g. sudo apt install ffmpeg"
	}
}

// ResolveFFmpeg locates the ffmpeg binary to run.
//
// A configured path is used as-is when it exists. A bare name is resolved in
// this order: a bundled binary next to the audiocap executable, then PATH.
func ResolveFFmpeg(command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		command = "ffmpeg"
	}

	if strings.ContainsAny(command, `/\`) {
		if info, err := os.Stat(command); err == nil && isExecutable(info) {
			return command, nil
		}
		return "", &MissingBinaryError{Command: command, Hint: "Check ffmpeg.binary in the config file."}
	}

	if self, err := os.Executable(); err == nil {
		if candidate, ok := sidecarCandidate(self, command); ok {
			if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
				return candidate, nil
			}
		}
	}

	if resolved, err := exec.LookPath(command); err == nil {
		return resolved, nil
	}
	return "", &MissingBinaryError{Command: command, Hint: InstallHint(runtime.GOOS)}
}

func sidecarCandidate(executablePath, name string) (string, bool) {
	if executablePath == "" {
		return "", false
	}
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		name += ".exe"
	}
	return filepath.Join(filepath.Dir(executablePath), name), true
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
