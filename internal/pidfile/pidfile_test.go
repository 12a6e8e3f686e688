package pidfile_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"audiocap/internal/pidfile"
)

func TestWriteReadRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "audiocap.pid")
	store := pidfile.New(path)

	if _, err := store.Read(); !errors.Is(err, pidfile.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before write, got %v", err)
	}
	if err := store.Write(4242); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	if string(data) != "4242\n" {
		t.Fatalf("unexpected record content %q", data)
	}
	pid, err := store.Read()
	if err != nil || pid != 4242 {
		t.Fatalf("Read = %d, %v", pid, err)
	}
	if err := store.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := store.Remove(); err != nil {
		t.Fatalf("second Remove should be a no-op: %v", err)
	}
	if _, err := store.Read(); !errors.Is(err, pidfile.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestReadParseErrors(t *testing.T) {
	for _, content := range []string{"", "abc", "-3", "0", "12 34"} {
		path := filepath.Join(t.TempDir(), "audiocap.pid")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		_, err := pidfile.New(path).Read()
		var parseErr *pidfile.ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("content %q: expected ParseError, got %v", content, err)
		}
	}
}

func TestWriteRejectsInvalidPID(t *testing.T) {
	store := pidfile.New(filepath.Join(t.TempDir(), "audiocap.pid"))
	if err := store.Write(0); err == nil {
		t.Fatal("expected error for pid 0")
	}
}

func TestConcurrentWritesLeaveWholeRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audiocap.pid")
	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			if err := pidfile.New(path).Write(pid); err != nil {
				t.Errorf("Write(%d): %v", pid, err)
			}
		}(i * 1000)
	}
	wg.Wait()
	pid, err := pidfile.New(path).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if pid%1000 != 0 || pid < 1000 || pid > 20000 {
		t.Fatalf("unexpected pid after concurrent writes: %d", pid)
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	if len(matches) != 0 {
		t.Fatalf("temp files left behind: %v", matches)
	}
}
