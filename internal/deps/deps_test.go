package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}

	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
}

func TestResolvePrefersSearchPaths(t *testing.T) {
	tmp := t.TempDir()
	script := []byte("#!/bin/sh\nexit 0\n")

	installDir := filepath.Join(tmp, "install")
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		t.Fatalf("mkdir install: %v", err)
	}
	installed := filepath.Join(installDir, "ffmpeg")
	if err := os.WriteFile(installed, script, 0o755); err != nil {
		t.Fatalf("write install stub: %v", err)
	}

	pathDir := filepath.Join(tmp, "bin")
	if err := os.MkdirAll(pathDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pathDir, "ffmpeg"), script, 0o755); err != nil {
		t.Fatalf("write path stub: %v", err)
	}
	t.Setenv("PATH", pathDir)

	resolved, err := Resolve("ffmpeg", []string{installDir})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved != installed {
		t.Fatalf("expected install path %q to win, got %q", installed, resolved)
	}
}

func TestResolveFallsBackToPATH(t *testing.T) {
	tmp := t.TempDir()
	script := []byte("#!/bin/sh\nexit 0\n")

	pathDir := filepath.Join(tmp, "bin")
	if err := os.MkdirAll(pathDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	fromPath := filepath.Join(pathDir, "ffmpeg")
	if err := os.WriteFile(fromPath, script, 0o755); err != nil {
		t.Fatalf("write path stub: %v", err)
	}
	t.Setenv("PATH", pathDir)

	resolved, err := Resolve("ffmpeg", []string{filepath.Join(tmp, "empty")})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved != fromPath {
		t.Fatalf("expected PATH fallback %q, got %q", fromPath, resolved)
	}
}

func TestResolvePathQualifiedCommand(t *testing.T) {
	tmp := t.TempDir()
	script := []byte("#!/bin/sh\nexit 0\n")
	direct := filepath.Join(tmp, "afconvert")
	if err := os.WriteFile(direct, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	resolved, err := Resolve(direct, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved != direct {
		t.Fatalf("expected direct path %q, got %q", direct, resolved)
	}

	if _, err := Resolve(filepath.Join(tmp, "missing"), nil); err == nil {
		t.Fatal("expected error for missing path-qualified command")
	}
}

func TestResolveNotFound(t *testing.T) {
	t.Setenv("PATH", "")
	if _, err := Resolve("clearly-not-present-binary", []string{t.TempDir()}); err == nil {
		t.Fatal("expected resolution to fail")
	}
}
