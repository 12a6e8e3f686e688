package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"audiocap/internal/recordctl"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 16
	statusIndent     = "  "
)

var statusStyles = map[statusKind]struct{ tag, color string }{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

var titleCaser = cases.Title(language.English)

// renderStatusLine formats "  Label:  [TAG] message", coloured when colorize is set.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style := statusStyles[kind]
	body := "[" + style.tag + "]"
	if message != "" {
		body += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", body)
	if colorize && style.color != "" {
		return style.color + line + ansiReset
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	rule := strings.Repeat("-", len(heading))
	if colorize {
		return []string{ansiBlue + heading + ansiReset, ansiBlue + rule + ansiReset}
	}
	return []string{heading, rule}
}

// stateLabel turns "not_running" into "Not Running".
func stateLabel(state recordctl.State) string {
	return titleCaser.String(strings.ReplaceAll(string(state), "_", " "))
}

func stateKind(state recordctl.State) statusKind {
	switch state {
	case recordctl.StateRunning:
		return statusOK
	case recordctl.StateNotRunning:
		return statusWarn
	default:
		return statusInfo
	}
}

func renderRecordingStatus(w io.Writer, status recordctl.StatusResult, pidPath string, colorize bool) {
	for _, line := range renderSectionHeader("Recording", colorize) {
		fmt.Fprintln(w, line)
	}
	message := stateLabel(status.State)
	if status.PID > 0 {
		message = fmt.Sprintf("%s (pid %d)", message, status.PID)
	}
	fmt.Fprintln(w, renderStatusLine("State", stateKind(status.State), message, colorize))
	fmt.Fprintln(w, renderStatusLine("PID record", statusInfo, pidPath, colorize))
	if status.State == recordctl.StateNotRunning {
		fmt.Fprintln(w, renderStatusLine("Hint", statusWarn, "run 'audiocap stop' to clear the stale record", colorize))
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
