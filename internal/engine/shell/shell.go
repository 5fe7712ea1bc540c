package shell

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"avconverter/internal/deps"
	"avconverter/internal/engine"
	"avconverter/internal/media/ffprobe"
	"avconverter/internal/services"
)

// codecs selects the transcoder's audio codec for each audio output format.
// Video containers are left to the tool's own defaults.
var codecs = map[string]string{
	"mp3":  "libmp3lame",
	"aac":  "aac",
	"m4a":  "aac",
	"flac": "flac",
	"wav":  "pcm_s16le",
	"ogg":  "libvorbis",
	"wma":  "wmav2",
	"aiff": "pcm_s16be",
	"caf":  "pcm_s16le",
}

// timePattern matches the elapsed-time marker the transcoder prints while it
// runs, e.g. "time=00:01:23.45".
var timePattern = regexp.MustCompile(`time=(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

// DurationProbe returns the source duration in seconds used as the progress
// denominator.
type DurationProbe func(ctx context.Context, binary, path string) (float64, error)

// Option configures the engine.
type Option func(*Engine)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec engine.Executor) Option {
	return func(e *Engine) {
		if exec != nil {
			e.exec = exec
		}
	}
}

// WithDurationProbe replaces the media duration probe (primarily for tests).
func WithDurationProbe(probe DurationProbe) Option {
	return func(e *Engine) {
		if probe != nil {
			e.probe = probe
		}
	}
}

// Engine converts media by invoking the external transcoding binary.
type Engine struct {
	binary      string
	probeBinary string
	searchPaths []string
	exec        engine.Executor
	probe       DurationProbe
}

// New constructs the shell engine around the configured transcoder binary.
func New(binary, probeBinary string, searchPaths []string, opts ...Option) (*Engine, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	eng := &Engine{
		binary:      binary,
		probeBinary: strings.TrimSpace(probeBinary),
		searchPaths: searchPaths,
		exec:        engine.DefaultExecutor(),
		probe:       ffprobe.Duration,
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng, nil
}

// Type identifies the engine for dispatch and reporting.
func (e *Engine) Type() engine.Type {
	return engine.Shell
}

// Convert transcodes one file. Fractional progress is estimated from the
// tool's elapsed-time output against the probed source duration; when the
// probe fails the conversion still runs but reports milestones only.
func (e *Engine) Convert(ctx context.Context, req engine.Request, progress engine.ProgressFunc) error {
	binary, err := deps.Resolve(e.binary, e.searchPaths)
	if err != nil {
		return services.Wrap(services.ErrToolNotFound, "shell", "resolve", e.binary, err)
	}

	total := e.sourceDuration(ctx, req.InputPath)
	args := buildArgs(req)

	report(progress, engine.ProgressUpdate{
		Stage:   "Transcoding",
		Percent: 0,
		Message: fmt.Sprintf("ffmpeg %s", filepath.Base(req.InputPath)),
	})

	onLine := func(line string) {
		elapsed, ok := parseElapsed(line)
		if !ok || total <= 0 {
			return
		}
		fraction := elapsed / total
		if fraction > 1.0 {
			fraction = 1.0
		}
		report(progress, engine.ProgressUpdate{
			Stage:   "Transcoding",
			Percent: fraction * 100,
			Message: fmt.Sprintf("%.1fs of %.1fs", elapsed, total),
		})
	}

	if err := e.exec.Run(ctx, binary, args, onLine); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var exitErr *engine.ExitError
		if errors.As(err, &exitErr) {
			return services.Wrap(services.ErrProcessFailed, "shell", "ffmpeg", exitErr.Stderr, exitErr)
		}
		return services.Wrap(services.ErrProcessFailed, "shell", "ffmpeg", "", err)
	}

	report(progress, engine.ProgressUpdate{Stage: "Transcoding", Percent: 100, Message: "Transcode complete"})
	return nil
}

// sourceDuration probes the input's duration. A zero return disables
// fractional progress for the run.
func (e *Engine) sourceDuration(ctx context.Context, inputPath string) float64 {
	if e.probeBinary == "" {
		return 0
	}
	binary, err := deps.Resolve(e.probeBinary, e.searchPaths)
	if err != nil {
		return 0
	}
	duration, err := e.probe(ctx, binary, inputPath)
	if err != nil {
		return 0
	}
	return duration
}

// buildArgs assembles the transcoder invocation. Flag order is part of the
// external interface contract: input, audio codec group, sample rate,
// channels, video size and bitrate, metadata pairs, optional cover-art mux,
// then the output path.
func buildArgs(req engine.Request) []string {
	opts := req.Options.Normalized()
	args := []string{"-i", req.InputPath}

	if codec, ok := codecs[opts.TargetFormat]; ok {
		args = append(args, "-c:a", codec)
	}
	if opts.AudioBitrate != "" {
		args = append(args, "-b:a", opts.AudioBitrate)
	}
	if opts.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(opts.SampleRate))
	}
	if opts.Channels > 0 {
		args = append(args, "-ac", strconv.Itoa(opts.Channels))
	}
	if opts.Resolution != "" {
		args = append(args, "-s", opts.Resolution)
	}
	if opts.VideoBitrate != "" {
		args = append(args, "-b:v", opts.VideoBitrate)
	}
	for _, field := range opts.Metadata() {
		args = append(args, "-metadata", field.Key+"="+field.Value)
	}
	if opts.CoverArt != "" {
		args = append(args,
			"-i", opts.CoverArt,
			"-map", "0",
			"-map", "1",
			"-c", "copy",
			"-disposition:v:1", "attached_pic",
		)
	}
	return append(args, req.OutputPath)
}

// parseElapsed extracts elapsed seconds from a status line.
func parseElapsed(line string) (float64, bool) {
	m := timePattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	hours, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, false
	}
	return float64(hours)*3600 + float64(minutes)*60 + seconds, true
}

func report(progress engine.ProgressFunc, update engine.ProgressUpdate) {
	if progress != nil {
		progress(update)
	}
}
