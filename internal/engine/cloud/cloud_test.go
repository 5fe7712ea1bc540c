package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"avconverter/internal/engine"
	"avconverter/internal/media"
	"avconverter/internal/services"
	"avconverter/internal/services/cloudapi"
)

func writeSource(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "clip.mov")
	if err := os.WriteFile(path, []byte("raw clip bytes"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func newTestEngine(t *testing.T, baseURL string, wait cloudapi.WaitStrategy) *Engine {
	t.Helper()
	client, err := cloudapi.New(cloudapi.Config{
		BaseURL:    baseURL,
		APIKey:     "secret-key",
		Wait:       wait,
		WaitBudget: time.Second,
	})
	if err != nil {
		t.Fatalf("cloudapi.New failed: %v", err)
	}
	eng, err := New(client)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return eng
}

func TestConvertRunsFullLifecycle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/process/import/upload":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "job-77", "status": "created"})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/process/download/job-77":
			_, _ = io.WriteString(w, "converted clip bytes")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	workDir := t.TempDir()
	outputPath := filepath.Join(workDir, "out", "clip.mp4")
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		t.Fatalf("mkdir output: %v", err)
	}

	eng := newTestEngine(t, server.URL, cloudapi.FixedDelay{Delay: 5 * time.Millisecond})
	var updates []engine.ProgressUpdate
	req := engine.Request{
		InputPath:  writeSource(t, workDir),
		OutputPath: outputPath,
		Options:    media.Options{TargetFormat: "mp4"},
	}
	if err := eng.Convert(context.Background(), req, func(u engine.ProgressUpdate) {
		updates = append(updates, u)
	}); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "converted clip bytes" {
		t.Fatalf("unexpected output contents: %q", data)
	}

	// The staged download file must be moved, not left behind.
	entries, err := os.ReadDir(filepath.Dir(outputPath))
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "clip.mp4" {
		t.Fatalf("expected only the final output in place, got %v", entries)
	}

	if len(updates) == 0 {
		t.Fatal("expected progress milestones")
	}
	for i := 1; i < len(updates); i++ {
		if updates[i].Percent < updates[i-1].Percent {
			t.Fatalf("progress moved backwards: %v", updates)
		}
	}
	if last := updates[len(updates)-1]; last.Percent != 100 {
		t.Fatalf("final milestone should be 100, got %v", last.Percent)
	}
}

func TestConvertSurfacesUploadRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "error": "account quota exceeded"})
	}))
	defer server.Close()

	workDir := t.TempDir()
	outputPath := filepath.Join(workDir, "clip.mp4")
	eng := newTestEngine(t, server.URL, cloudapi.FixedDelay{Delay: time.Millisecond})

	req := engine.Request{
		InputPath:  writeSource(t, workDir),
		OutputPath: outputPath,
		Options:    media.Options{TargetFormat: "mp4"},
	}
	err := eng.Convert(context.Background(), req, nil)
	if !errors.Is(err, services.ErrUploadRejected) {
		t.Fatalf("expected UploadRejected, got %v", err)
	}
	if _, statErr := os.Stat(outputPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("no output should exist after a rejected upload")
	}
}

func TestConvertSurfacesRemoteJobFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/process/import/upload":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "job-8", "status": "created"})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/process/job-8":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "job-8", "status": "error", "error": "codec unavailable"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	workDir := t.TempDir()
	eng := newTestEngine(t, server.URL, cloudapi.Poll{Interval: 5 * time.Millisecond})

	req := engine.Request{
		InputPath:  writeSource(t, workDir),
		OutputPath: filepath.Join(workDir, "clip.mp4"),
		Options:    media.Options{TargetFormat: "mp4"},
	}
	err := eng.Convert(context.Background(), req, nil)
	if !errors.Is(err, services.ErrJobFailed) {
		t.Fatalf("expected JobFailed, got %v", err)
	}
}

func TestConvertSurfacesDownloadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/process/import/upload":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "job-9", "status": "created"})
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	workDir := t.TempDir()
	eng := newTestEngine(t, server.URL, cloudapi.FixedDelay{Delay: time.Millisecond})

	req := engine.Request{
		InputPath:  writeSource(t, workDir),
		OutputPath: filepath.Join(workDir, "clip.mp4"),
		Options:    media.Options{TargetFormat: "mp4"},
	}
	err := eng.Convert(context.Background(), req, nil)
	if !errors.Is(err, services.ErrDownloadFailed) {
		t.Fatalf("expected DownloadFailed, got %v", err)
	}
}
