package shell

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"avconverter/internal/engine"
	"avconverter/internal/media"
	"avconverter/internal/services"
)

type stubExecutor struct {
	lines  []string
	err    error
	calls  int
	binary string
	args   [][]string
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	s.calls++
	s.binary = binary
	s.args = append(s.args, append([]string(nil), args...))
	for _, line := range s.lines {
		if onLine != nil {
			onLine(line)
		}
	}
	return s.err
}

func staticProbe(duration float64, err error) DurationProbe {
	return func(ctx context.Context, binary, path string) (float64, error) {
		return duration, err
	}
}

func writeTool(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write tool stub: %v", err)
	}
	return path
}

func newTestEngine(t *testing.T, exec engine.Executor, probe DurationProbe) *Engine {
	t.Helper()
	binDir := t.TempDir()
	writeTool(t, binDir, "ffmpeg")
	writeTool(t, binDir, "ffprobe")
	eng, err := New("ffmpeg", "ffprobe", []string{binDir}, WithExecutor(exec), WithDurationProbe(probe))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return eng
}

func TestConvertBuildsAudioArgVector(t *testing.T) {
	exec := &stubExecutor{}
	eng := newTestEngine(t, exec, staticProbe(180, nil))

	req := engine.Request{
		InputPath:  "/music/track.flac",
		OutputPath: "/out/track.mp3",
		Options: media.Options{
			TargetFormat: "mp3",
			AudioBitrate: "192k",
			SampleRate:   44100,
			Channels:     2,
			Title:        "Night Drive",
			Artist:       "The Commuters",
			Album:        "Rush Hour",
			CoverArt:     "/art/cover.jpg",
		},
	}
	if err := eng.Convert(context.Background(), req, nil); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if exec.calls != 1 {
		t.Fatalf("expected one invocation, got %d", exec.calls)
	}
	want := []string{
		"-i", "/music/track.flac",
		"-c:a", "libmp3lame",
		"-b:a", "192k",
		"-ar", "44100",
		"-ac", "2",
		"-metadata", "title=Night Drive",
		"-metadata", "artist=The Commuters",
		"-metadata", "album=Rush Hour",
		"-i", "/art/cover.jpg",
		"-map", "0",
		"-map", "1",
		"-c", "copy",
		"-disposition:v:1", "attached_pic",
		"/out/track.mp3",
	}
	if !reflect.DeepEqual(exec.args[0], want) {
		t.Fatalf("args = %v, want %v", exec.args[0], want)
	}
}

func TestConvertBuildsVideoArgVector(t *testing.T) {
	exec := &stubExecutor{}
	eng := newTestEngine(t, exec, staticProbe(0, errors.New("probe unavailable")))

	req := engine.Request{
		InputPath:  "/video/clip.mov",
		OutputPath: "/out/clip.mp4",
		Options: media.Options{
			TargetFormat: "mp4",
			Resolution:   "1280x720",
			VideoBitrate: "2500k",
		},
	}
	if err := eng.Convert(context.Background(), req, nil); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	want := []string{
		"-i", "/video/clip.mov",
		"-s", "1280x720",
		"-b:v", "2500k",
		"/out/clip.mp4",
	}
	if !reflect.DeepEqual(exec.args[0], want) {
		t.Fatalf("args = %v, want %v", exec.args[0], want)
	}
}

func TestConvertToolMissing(t *testing.T) {
	t.Setenv("PATH", "")
	exec := &stubExecutor{}
	eng, err := New("ffmpeg", "ffprobe", []string{t.TempDir()}, WithExecutor(exec))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	req := engine.Request{
		InputPath:  "/music/track.flac",
		OutputPath: "/out/track.mp3",
		Options:    media.Options{TargetFormat: "mp3"},
	}
	convErr := eng.Convert(context.Background(), req, nil)
	if !errors.Is(convErr, services.ErrToolNotFound) {
		t.Fatalf("expected ToolNotFound, got %v", convErr)
	}
	if exec.calls != 0 {
		t.Fatalf("executor should not run when the tool is missing")
	}
}

func TestConvertReportsParsedProgress(t *testing.T) {
	exec := &stubExecutor{lines: []string{
		"Input #0, flac, from '/music/track.flac':",
		"frame=0 size=12kB time=00:00:25.00 bitrate=128kbits/s",
		"frame=0 size=48kB time=00:01:40.00 bitrate=128kbits/s",
	}}
	eng := newTestEngine(t, exec, staticProbe(100, nil))

	var updates []engine.ProgressUpdate
	req := engine.Request{
		InputPath:  "/music/track.flac",
		OutputPath: "/out/track.mp3",
		Options:    media.Options{TargetFormat: "mp3"},
	}
	if err := eng.Convert(context.Background(), req, func(u engine.ProgressUpdate) {
		updates = append(updates, u)
	}); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	// Start milestone, two parsed updates, completion milestone.
	if len(updates) != 4 {
		t.Fatalf("expected 4 updates, got %d: %v", len(updates), updates)
	}
	if updates[1].Percent != 25 {
		t.Fatalf("expected 25%% after 25s of 100s, got %v", updates[1].Percent)
	}
	if updates[2].Percent != 100 {
		t.Fatalf("expected elapsed past duration to clamp at 100, got %v", updates[2].Percent)
	}
	for i := 1; i < len(updates); i++ {
		if updates[i].Percent < updates[i-1].Percent {
			t.Fatalf("progress moved backwards at %d: %v", i, updates)
		}
	}
}

func TestConvertWithoutProbeReportsMilestonesOnly(t *testing.T) {
	exec := &stubExecutor{lines: []string{
		"frame=0 size=12kB time=00:00:25.00 bitrate=128kbits/s",
	}}
	eng := newTestEngine(t, exec, staticProbe(0, errors.New("no duration")))

	var updates []engine.ProgressUpdate
	req := engine.Request{
		InputPath:  "/music/track.flac",
		OutputPath: "/out/track.mp3",
		Options:    media.Options{TargetFormat: "mp3"},
	}
	if err := eng.Convert(context.Background(), req, func(u engine.ProgressUpdate) {
		updates = append(updates, u)
	}); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if len(updates) != 2 {
		t.Fatalf("expected start and completion only, got %d: %v", len(updates), updates)
	}
	if updates[0].Percent != 0 || updates[1].Percent != 100 {
		t.Fatalf("unexpected milestone percents: %v", updates)
	}
}

func TestConvertWrapsProcessFailure(t *testing.T) {
	exec := &stubExecutor{err: &engine.ExitError{Code: 1, Stderr: "Unknown encoder 'wmav9'"}}
	eng := newTestEngine(t, exec, staticProbe(0, errors.New("no duration")))

	req := engine.Request{
		InputPath:  "/music/track.flac",
		OutputPath: "/out/track.wma",
		Options:    media.Options{TargetFormat: "wma"},
	}
	err := eng.Convert(context.Background(), req, nil)
	if !errors.Is(err, services.ErrProcessFailed) {
		t.Fatalf("expected ProcessFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "Unknown encoder") {
		t.Fatalf("expected stderr detail in error, got %q", err.Error())
	}
}

func TestConvertPropagatesCancellation(t *testing.T) {
	exec := &stubExecutor{err: context.Canceled}
	eng := newTestEngine(t, exec, staticProbe(0, errors.New("no duration")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := engine.Request{
		InputPath:  "/music/track.flac",
		OutputPath: "/out/track.mp3",
		Options:    media.Options{TargetFormat: "mp3"},
	}
	err := eng.Convert(ctx, req, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, services.ErrProcessFailed) {
		t.Fatalf("cancellation should not be classified as a process failure")
	}
}

func TestParseElapsed(t *testing.T) {
	cases := []struct {
		line string
		want float64
		ok   bool
	}{
		{"frame= 120 fps=30 size=512kB time=00:00:04.96 bitrate=845.4kbits/s", 4.96, true},
		{"size=1024kB time=01:02:03.50 bitrate=128kbits/s", 3723.5, true},
		{"size=1024kB time=12:00:00 bitrate=128kbits/s", 43200, true},
		{"size=N/A time=N/A bitrate=N/A", 0, false},
		{"Press [q] to stop, [?] for help", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseElapsed(tc.line)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("parseElapsed(%q) = (%v, %v), want (%v, %v)", tc.line, got, ok, tc.want, tc.ok)
		}
	}
}
