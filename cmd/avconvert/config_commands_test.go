package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"avconverter/internal/testsupport"
)

func TestConfigInitCreatesSample(t *testing.T) {
	setupCLITestEnv(t)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	requireContains(t, string(data), "[conversion]")
	requireContains(t, string(data), "retention_days")
}

func TestConfigInitRefusesOverwriteWithoutFlag(t *testing.T) {
	setupCLITestEnv(t)

	target := filepath.Join(t.TempDir(), "config.toml")
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err != nil {
		t.Fatalf("config init: %v", err)
	}

	_, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowPrintsResolvedValues(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "# Config file: "+env.configPath)
	requireContains(t, out, "[conversion]")
	requireContains(t, out, env.cfg.Paths.StateDir)
}

func TestConfigShowRedactsAPIKey(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithCloud("https://convert.example.com", "secret-key-123"))

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "<redacted>")
	if strings.Contains(out, "secret-key-123") {
		t.Fatal("expected the API key to be redacted")
	}
}
