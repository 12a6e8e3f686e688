package recordctl_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"audiocap/internal/deps"
	"audiocap/internal/pidfile"
	"audiocap/internal/platform"
	"audiocap/internal/recordctl"
	"audiocap/internal/supervisor"
	"audiocap/internal/testsupport"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub ffmpeg scripts use /bin/sh")
	}
}

func linuxResolver(t *testing.T) platform.Resolver {
	t.Helper()
	r, err := platform.ForOS("linux")
	if err != nil {
		t.Fatalf("ForOS: %v", err)
	}
	return r
}

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)
}

func waitForState(t *testing.T, ctl *recordctl.Controller, want recordctl.State) recordctl.StatusResult {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		status, err := ctl.Status()
		if err != nil {
			t.Fatalf("Status: %v", err)
		}
		if status.State == want || time.Now().After(deadline) {
			return status
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestForegroundStartWritesRecording(t *testing.T) {
	requireUnix(t)
	cfg := testsupport.NewConfig(t, testsupport.WithFFmpegScript(testsupport.WriteOutputScript))
	ctl, err := recordctl.New(cfg, nil, recordctl.WithResolver(linuxResolver(t)), recordctl.WithClock(fixedClock))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := ctl.Start(context.Background(), recordctl.StartOptions{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	want := filepath.Join(cfg.Paths.RecordingsDir, "recording_2024-05-01_09-30-00.wav")
	if result.Status != recordctl.StartStatusDone || result.File != want || result.PID != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.SessionID == "" {
		t.Fatal("expected session id")
	}
	data, err := os.ReadFile(want)
	if err != nil || string(data) != "RIFF" {
		t.Fatalf("expected stub output in %s: %q %v", want, data, err)
	}
	if _, err := os.Stat(cfg.PIDPath()); !os.IsNotExist(err) {
		t.Fatalf("foreground run must not write a pid record: %v", err)
	}
}

func TestForegroundFailureReportsExitStatus(t *testing.T) {
	requireUnix(t)
	cfg := testsupport.NewConfig(t, testsupport.WithFFmpegScript(testsupport.FailScript))
	var stderr bytes.Buffer
	ctl, err := recordctl.New(cfg, nil, recordctl.WithResolver(linuxResolver(t)), recordctl.WithOutput(nil, &stderr))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = ctl.Start(context.Background(), recordctl.StartOptions{Output: filepath.Join(t.TempDir(), "x.mp3"), Format: "mp3"})
	var exitErr *supervisor.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 7 {
		t.Fatalf("expected exit status 7, got %v", err)
	}
	if !strings.Contains(stderr.String(), "Unknown input format") {
		t.Fatalf("expected ffmpeg stderr to be forwarded, got %q", stderr.String())
	}
}

func TestStartMissingFFmpeg(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.FFmpeg.Binary = "audiocap-test-missing-ffmpeg"
	t.Setenv("PATH", t.TempDir())
	ctl, err := recordctl.New(cfg, nil, recordctl.WithResolver(linuxResolver(t)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = ctl.Start(context.Background(), recordctl.StartOptions{})
	var missing *deps.MissingBinaryError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingBinaryError, got %v", err)
	}
}

func TestStartOnMacOSWithoutLoopbackIsConfigError(t *testing.T) {
	requireUnix(t)
	cfg := testsupport.NewConfig(t, testsupport.WithFFmpegScript(testsupport.WriteOutputScript))
	darwin, err := platform.ForOS("darwin")
	if err != nil {
		t.Fatalf("ForOS: %v", err)
	}
	ctl, err := recordctl.New(cfg, nil, recordctl.WithResolver(darwin))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = ctl.Start(context.Background(), recordctl.StartOptions{})
	var cfgErr *platform.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestBackgroundStartStopStatusScenario(t *testing.T) {
	requireUnix(t)
	cfg := testsupport.NewConfig(t, testsupport.WithFFmpegScript(testsupport.SleepScript))
	ctl, err := recordctl.New(cfg, nil, recordctl.WithResolver(linuxResolver(t)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	started, err := ctl.Start(context.Background(), recordctl.StartOptions{Background: true, Duration: "00:00:30"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _, _ = supervisor.Terminate(started.PID) })
	if started.Status != recordctl.StartStatusStarted || started.PID <= 0 {
		t.Fatalf("unexpected start result: %+v", started)
	}
	recorded, err := pidfile.New(cfg.PIDPath()).Read()
	if err != nil || recorded != started.PID {
		t.Fatalf("pid record = %d, %v; want %d", recorded, err, started.PID)
	}

	status, err := ctl.Status()
	if err != nil || status.State != recordctl.StateRunning || status.PID != started.PID {
		t.Fatalf("expected running status, got %+v %v", status, err)
	}

	if _, err := ctl.Start(context.Background(), recordctl.StartOptions{Background: true}); !errors.Is(err, recordctl.ErrAlreadyRecording) {
		t.Fatalf("expected ErrAlreadyRecording, got %v", err)
	}

	stopped, err := ctl.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if stopped.Status != "stopped" || stopped.PID != started.PID {
		t.Fatalf("unexpected stop result: %+v", stopped)
	}

	if status := waitForState(t, ctl, recordctl.StateNoRecord); status.State != recordctl.StateNoRecord {
		t.Fatalf("expected no record after stop, got %+v", status)
	}
	if _, err := ctl.Stop(); !errors.Is(err, recordctl.ErrNoRecording) {
		t.Fatalf("second stop: expected ErrNoRecording, got %v", err)
	}
}

func TestStatusTreatsCorruptRecordAsNoRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(cfg.PIDPath(), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ctl, err := recordctl.New(cfg, nil, recordctl.WithResolver(linuxResolver(t)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	status, err := ctl.Status()
	if err != nil || status.State != recordctl.StateNoRecord {
		t.Fatalf("expected no_record, got %+v %v", status, err)
	}
	if _, err := ctl.Stop(); !errors.Is(err, recordctl.ErrNoRecording) {
		t.Fatalf("expected ErrNoRecording for corrupt record, got %v", err)
	}
}

func TestStopTreatsUnreadableRecordAsNoRecording(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.PIDPath(), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	ctl, err := recordctl.New(cfg, nil, recordctl.WithResolver(linuxResolver(t)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	status, err := ctl.Status()
	if err != nil || status.State != recordctl.StateNoRecord {
		t.Fatalf("expected no_record, got %+v %v", status, err)
	}
	if _, err := ctl.Stop(); !errors.Is(err, recordctl.ErrNoRecording) {
		t.Fatalf("expected ErrNoRecording for unreadable record, got %v", err)
	}
}

func TestStopRefusedForLiveProcessKeepsRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := pidfile.New(cfg.PIDPath()).Write(4242); err != nil {
		t.Fatalf("write record: %v", err)
	}
	var terminated []int
	ctl, err := recordctl.New(cfg, nil,
		recordctl.WithResolver(linuxResolver(t)),
		recordctl.WithProcessControl(
			func(pid int) (bool, error) {
				terminated = append(terminated, pid)
				return false, nil
			},
			func(int) (bool, error) { return true, nil },
		),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := ctl.Stop(); !errors.Is(err, recordctl.ErrStopFailed) {
		t.Fatalf("expected ErrStopFailed, got %v", err)
	}
	if len(terminated) != 1 || terminated[0] != 4242 {
		t.Fatalf("terminate calls = %v, want [4242]", terminated)
	}
	if pid, err := pidfile.New(cfg.PIDPath()).Read(); err != nil || pid != 4242 {
		t.Fatalf("expected record kept, got %d %v", pid, err)
	}
}

func TestBackgroundStartStopsProcessWhenRecordCannotBeWritten(t *testing.T) {
	requireUnix(t)
	cfg := testsupport.NewConfig(t, testsupport.WithFFmpegScript(testsupport.SleepScript))
	// A regular file where the data directory should be makes the record unwritable.
	if err := os.WriteFile(cfg.Paths.DataDir, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	var terminated []int
	ctl, err := recordctl.New(cfg, nil,
		recordctl.WithResolver(linuxResolver(t)),
		recordctl.WithProcessControl(
			func(pid int) (bool, error) {
				terminated = append(terminated, pid)
				return supervisor.Terminate(pid)
			},
			supervisor.IsAlive,
		),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := ctl.Start(context.Background(), recordctl.StartOptions{Background: true}); err == nil {
		t.Fatal("expected error when the pid record cannot be written")
	}
	if len(terminated) != 1 || terminated[0] <= 0 {
		t.Fatalf("expected the spawned process to be terminated, calls = %v", terminated)
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		alive, _ := supervisor.IsAlive(terminated[0])
		if !alive {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("pid %d still alive after rollback", terminated[0])
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestStatusResultJSON(t *testing.T) {
	data, err := json.Marshal(recordctl.StatusResult{State: recordctl.StateNoRecord})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"status":"no_record"}` {
		t.Fatalf("unexpected status body %s", data)
	}
}

func TestStopStaleRecordRemovesIt(t *testing.T) {
	requireUnix(t)
	cfg := testsupport.NewConfig(t)
	ctl, err := recordctl.New(cfg, nil, recordctl.WithResolver(linuxResolver(t)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// A process that has already exited and been reaped.
	pid, err := (&supervisor.Supervisor{Binary: "true"}).RunBackground(nil)
	if err != nil {
		t.Fatalf("RunBackground: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if alive, _ := supervisor.IsAlive(pid); !alive {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err := pidfile.New(cfg.PIDPath()).Write(pid); err != nil {
		t.Fatalf("write record: %v", err)
	}

	status, err := ctl.Status()
	if err != nil || status.State != recordctl.StateNotRunning {
		t.Fatalf("expected not_running, got %+v %v", status, err)
	}
	if _, err := ctl.Stop(); !errors.Is(err, recordctl.ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
	if _, err := os.Stat(cfg.PIDPath()); !os.IsNotExist(err) {
		t.Fatalf("expected stale record removed, stat err=%v", err)
	}
}

func TestListDevicesRunsPlatformTools(t *testing.T) {
	requireUnix(t)
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("pactl"))
	ctl, err := recordctl.New(cfg, nil, recordctl.WithResolver(linuxResolver(t)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var out bytes.Buffer
	if err := ctl.ListDevices(context.Background(), &out); err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	for _, want := range []string{"=== Linux: PulseAudio (pactl) ===", "=== Linux: PipeWire (pw-cli) ===", "Note:"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestRecorderConfigFormatOverride(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFormat("mp3"))
	ctl, err := recordctl.New(cfg, nil, recordctl.WithResolver(linuxResolver(t)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rec, err := ctl.RecorderConfig("")
	if err != nil || rec.Format.Extension() != "mp3" || rec.OutDir != cfg.Paths.RecordingsDir {
		t.Fatalf("unexpected recorder config %+v %v", rec, err)
	}
	rec, err = ctl.RecorderConfig("wav")
	if err != nil || rec.Format.Extension() != "wav" {
		t.Fatalf("override not applied: %+v %v", rec, err)
	}
	if _, err := ctl.RecorderConfig("ogg"); err == nil {
		t.Fatal("expected error for unsupported override")
	}
}
