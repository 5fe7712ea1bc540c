package main

import (
	"encoding/json"
	"testing"

	"avconverter/internal/api"
	"avconverter/internal/history"
)

func TestHistoryCommandEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No conversions recorded yet")
}

func TestHistoryCommandListsAndClears(t *testing.T) {
	env := setupCLITestEnv(t)
	store := history.NewStore(env.cfg.History.Path, env.cfg.History.Limit)
	if err := store.Append(history.Record{FileName: "one.wav", OutputURL: "/out/one.m4a"}); err != nil {
		t.Fatalf("seed history: %v", err)
	}
	if err := store.Append(history.Record{FileName: "two.flac", OutputURL: "/out/two.mp3"}); err != nil {
		t.Fatalf("seed history: %v", err)
	}

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "one.wav")
	requireContains(t, out, "two.flac")

	out, _, err = runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history --json: %v", err)
	}
	var resp api.HistoryResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode history payload: %v", err)
	}
	if len(resp.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(resp.Entries))
	}
	if resp.Entries[0].FileName != "two.flac" {
		t.Fatalf("expected newest entry first, got %+v", resp.Entries[0])
	}

	out, _, err = runCLI(t, []string{"history", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "History cleared")

	records, err := store.List()
	if err != nil {
		t.Fatalf("list after clear: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty history, got %d records", len(records))
	}
}
