package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external tool audiocap relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch {
		case cmd == "":
			status.Detail = "command not configured"
		default:
			if resolved, err := exec.LookPath(cmd); err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", cmd)
			} else {
				status.Command = resolved
				status.Available = true
			}
		}
		results = append(results, status)
	}
	return results
}

// Requirements lists the tools used for recording and diagnostics on goos.
// ffmpegCommand is the configured ffmpeg binary.
func Requirements(goos, ffmpegCommand string) []Requirement {
	reqs := []Requirement{{
		Name:        "FFmpeg",
		Command:     ffmpegCommand,
		Description: "Captures and mixes audio",
	}}
	switch goos {
	case "linux":
		reqs = append(reqs,
			Requirement{Name: "pactl", Command: "pactl", Description: "Lists PulseAudio sources", Optional: true},
			Requirement{Name: "pw-cli", Command: "pw-cli", Description: "Lists PipeWire nodes", Optional: true},
		)
	case "windows":
		reqs = append(reqs,
			Requirement{Name: "taskkill", Command: "taskkill", Description: "Stops background recordings"},
			Requirement{Name: "tasklist", Command: "tasklist", Description: "Checks whether a recording is running"},
		)
	}
	return reqs
}
