package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"audiocap/internal/deps"
	"audiocap/internal/recordctl"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("State", statusError, "Not running", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "State:", "[ERROR] Not running")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("State", statusOK, "Running", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestStateLabel(t *testing.T) {
	cases := map[recordctl.State]string{
		recordctl.StateNoRecord:   "No Record",
		recordctl.StateRunning:    "Running",
		recordctl.StateNotRunning: "Not Running",
	}
	for state, want := range cases {
		if got := stateLabel(state); got != want {
			t.Fatalf("stateLabel(%q) = %q, want %q", state, got, want)
		}
	}
}

func TestRenderRecordingStatusStaleHint(t *testing.T) {
	var buf bytes.Buffer
	renderRecordingStatus(&buf, recordctl.StatusResult{State: recordctl.StateNotRunning, PID: 42}, "/tmp/audiocap.pid", false)
	out := buf.String()
	for _, want := range []string{"== Recording ==", "[WARN] Not Running (pid 42)", "/tmp/audiocap.pid", "audiocap stop"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestRenderDependencyTable(t *testing.T) {
	out := renderDependencyTable([]deps.Status{
		{Name: "FFmpeg", Command: "/usr/bin/ffmpeg", Available: true, Description: "Captures and mixes audio"},
		{Name: "pw-cli", Optional: true, Detail: `binary "pw-cli" not found`},
		{Name: "tasklist", Detail: `binary "tasklist" not found`},
	}, false)
	for _, want := range []string{"FFmpeg", "/usr/bin/ffmpeg", "pw-cli (optional)", "WARN", "ERROR"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table:\n%s", want, out)
		}
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
