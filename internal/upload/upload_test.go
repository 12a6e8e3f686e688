package upload_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"audiocap/internal/config"
	"audiocap/internal/upload"
)

type recordedRequest struct {
	method      string
	path        string
	contentType string
	body        []byte
}

type fakeS3 struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		method:      r.Method,
		path:        r.URL.Path,
		contentType: r.Header.Get("Content-Type"),
		body:        body,
	})
	f.mu.Unlock()
	if r.Method == http.MethodDelete {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("ETag", `"abc"`)
	w.WriteHeader(http.StatusOK)
}

func newUploader(t *testing.T, endpoint string, deleteLocal bool) *upload.Uploader {
	t.Helper()
	u, err := upload.New(config.Upload{
		Enabled:         true,
		Bucket:          "archive",
		Endpoint:        endpoint,
		Region:          "auto",
		Prefix:          "shows",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		DeleteLocal:     deleteLocal,
		TimeoutSeconds:  10,
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return u
}

func TestUploadPutsObject(t *testing.T) {
	fake := &fakeS3{}
	server := httptest.NewServer(fake)
	defer server.Close()

	local := filepath.Join(t.TempDir(), "recording_2024-01-01_10-00-00.wav")
	if err := os.WriteFile(local, []byte("RIFF-data"), 0o644); err != nil {
		t.Fatalf("write recording: %v", err)
	}

	result, err := newUploader(t, server.URL, false).Upload(context.Background(), local)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if result.Key != "shows/recording_2024-01-01_10-00-00.wav" || result.Size != 9 || result.DeletedLocal {
		t.Fatalf("unexpected result: %+v", result)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.requests) != 1 {
		t.Fatalf("expected one request, got %d", len(fake.requests))
	}
	req := fake.requests[0]
	if req.method != http.MethodPut || req.path != "/archive/shows/recording_2024-01-01_10-00-00.wav" {
		t.Fatalf("unexpected request %s %s", req.method, req.path)
	}
	if req.contentType != "audio/wav" {
		t.Fatalf("unexpected content type %q", req.contentType)
	}
	if _, err := os.Stat(local); err != nil {
		t.Fatalf("local file should remain: %v", err)
	}
}

func TestUploadDeletesLocalWhenConfigured(t *testing.T) {
	server := httptest.NewServer(&fakeS3{})
	defer server.Close()

	local := filepath.Join(t.TempDir(), "take.mp3")
	if err := os.WriteFile(local, []byte("ID3"), 0o644); err != nil {
		t.Fatalf("write recording: %v", err)
	}
	result, err := newUploader(t, server.URL, true).Upload(context.Background(), local)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !result.DeletedLocal {
		t.Fatal("expected local file deletion")
	}
	if _, err := os.Stat(local); !os.IsNotExist(err) {
		t.Fatalf("expected local file removed, stat err=%v", err)
	}
}

func TestUploadMissingFile(t *testing.T) {
	server := httptest.NewServer(&fakeS3{})
	defer server.Close()
	if _, err := newUploader(t, server.URL, false).Upload(context.Background(), filepath.Join(t.TempDir(), "absent.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCheckWritesAndDeletesTestObject(t *testing.T) {
	fake := &fakeS3{}
	server := httptest.NewServer(fake)
	defer server.Close()

	if err := newUploader(t, server.URL, false).Check(context.Background()); err != nil {
		t.Fatalf("Check: %v", err)
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.requests) != 2 || fake.requests[0].method != http.MethodPut || fake.requests[1].method != http.MethodDelete {
		t.Fatalf("unexpected requests: %+v", fake.requests)
	}
}

func TestNewRequiresConfiguration(t *testing.T) {
	cases := []config.Upload{
		{},
		{Enabled: true},
		{Enabled: true, Bucket: "b", AccessKeyID: "a"},
	}
	for _, cfg := range cases {
		if _, err := upload.New(cfg, nil); !errors.Is(err, upload.ErrNotConfigured) {
			t.Fatalf("New(%+v) = %v, want ErrNotConfigured", cfg, err)
		}
	}
}

func TestObjectKeyWithoutPrefix(t *testing.T) {
	u, err := upload.New(config.Upload{Enabled: true, Bucket: "b", AccessKeyID: "a", SecretAccessKey: "s"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := u.ObjectKey("/tmp/x/recording.wav"); got != "recording.wav" {
		t.Fatalf("ObjectKey = %q", got)
	}
}
