package queue_test

import (
	"testing"

	"avconverter/internal/queue"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input string
		want  queue.Status
		ok    bool
	}{
		{"pending", queue.StatusPending, true},
		{"  Converting ", queue.StatusConverting, true},
		{"COMPLETED", queue.StatusCompleted, true},
		{"failed", queue.StatusFailed, true},
		{"cancelled", queue.StatusCancelled, true},
		{"", "", false},
		{"exploded", "exploded", false},
	}
	for _, tc := range cases {
		got, ok := queue.ParseStatus(tc.input)
		if ok != tc.ok {
			t.Fatalf("ParseStatus(%q): expected ok=%v, got %v", tc.input, tc.ok, ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseStatus(%q): expected %s, got %s", tc.input, tc.want, got)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := map[queue.Status]bool{
		queue.StatusPending:    false,
		queue.StatusConverting: false,
		queue.StatusCompleted:  true,
		queue.StatusFailed:     true,
		queue.StatusCancelled:  true,
	}
	for status, want := range terminal {
		item := queue.Item{Status: status}
		if item.IsTerminal() != want {
			t.Fatalf("IsTerminal(%s): expected %v", status, want)
		}
	}
}

func TestSetProgressNeverMovesBackwards(t *testing.T) {
	item := queue.Item{Status: queue.StatusConverting}
	item.SetProgress("Converting", "halfway", 50)
	if item.ProgressPercent != 50 {
		t.Fatalf("expected 50, got %f", item.ProgressPercent)
	}

	// A late callback from a slower reporter must not rewind the bar.
	item.SetProgress("Converting", "stale", 30)
	if item.ProgressPercent != 50 {
		t.Fatalf("expected percent clamped at 50, got %f", item.ProgressPercent)
	}
	if item.ProgressMessage != "stale" {
		t.Fatalf("expected message updated even when percent clamped, got %q", item.ProgressMessage)
	}

	item.SetProgress("Converting", "nearly there", 90)
	if item.ProgressPercent != 90 {
		t.Fatalf("expected 90, got %f", item.ProgressPercent)
	}
}

func TestInitProgressResetsForFreshRun(t *testing.T) {
	item := queue.Item{
		Status:          queue.StatusConverting,
		ErrorMessage:    "native engine rejected preset",
		ProgressPercent: 80,
	}
	item.InitProgress("Converting", "retrying with transcoder")
	if item.ProgressPercent != 0 {
		t.Fatalf("expected percent reset, got %f", item.ProgressPercent)
	}
	if item.ErrorMessage != "" {
		t.Fatalf("expected error cleared, got %q", item.ErrorMessage)
	}
	if item.ProgressStage != "Converting" || item.ProgressMessage != "retrying with transcoder" {
		t.Fatalf("unexpected progress fields: %q %q", item.ProgressStage, item.ProgressMessage)
	}
}

func TestSetCompletedMarksTerminal(t *testing.T) {
	item := queue.Item{Status: queue.StatusConverting, ProgressPercent: 70}
	item.SetCompleted("shell", "/out/track.mp3")
	if item.Status != queue.StatusCompleted {
		t.Fatalf("expected completed, got %s", item.Status)
	}
	if item.Engine != "shell" || item.OutputPath != "/out/track.mp3" {
		t.Fatalf("unexpected completion fields: %q %q", item.Engine, item.OutputPath)
	}
	if item.ProgressPercent != 100 {
		t.Fatalf("expected 100 percent, got %f", item.ProgressPercent)
	}
	if item.CompletedAt == nil {
		t.Fatal("expected completion time set")
	}
}

func TestSetFailedKeepsProgressPercent(t *testing.T) {
	item := queue.Item{Status: queue.StatusConverting, ProgressPercent: 62}
	item.SetFailed("ffmpeg exited with status 1")
	if item.Status != queue.StatusFailed {
		t.Fatalf("expected failed, got %s", item.Status)
	}
	if item.ProgressPercent != 62 {
		t.Fatalf("expected percent untouched on failure, got %f", item.ProgressPercent)
	}
	if item.ErrorMessage == "" || item.ProgressStage != "Failed" {
		t.Fatalf("unexpected failure fields: %q %q", item.ErrorMessage, item.ProgressStage)
	}
	if item.CompletedAt == nil {
		t.Fatal("expected completion time set")
	}
}

func TestSetCancelledMarksTerminal(t *testing.T) {
	item := queue.Item{Status: queue.StatusConverting}
	item.SetCancelled()
	if item.Status != queue.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", item.Status)
	}
	if !item.IsTerminal() {
		t.Fatal("expected cancelled to be terminal")
	}
}
