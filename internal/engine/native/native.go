package native

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"avconverter/internal/catalog"
	"avconverter/internal/deps"
	"avconverter/internal/engine"
	"avconverter/internal/services"
)

// preset maps one output format onto afconvert file and data format flags.
// Bitrate is only meaningful for compressed data formats.
type preset struct {
	fileFormat string
	dataFormat string
	compressed bool
}

// presets lists every output format the OS export tool can produce. Formats
// outside this table fail with UnsupportedConversion so the orchestrator can
// fall back to the shell engine.
var presets = map[string]preset{
	"m4a":  {fileFormat: "m4af", dataFormat: "aac", compressed: true},
	"aac":  {fileFormat: "adts", dataFormat: "aac", compressed: true},
	"wav":  {fileFormat: "WAVE", dataFormat: "LEI16"},
	"aiff": {fileFormat: "AIFF", dataFormat: "BEI16"},
	"caf":  {fileFormat: "caff", dataFormat: "LEI16"},
}

// Supports reports whether the native engine has an export preset for the
// format.
func Supports(format string) bool {
	_, ok := presets[catalog.Normalize(format)]
	return ok
}

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

// Engine converts audio through the operating system's export tool.
type Engine struct {
	binary      string
	searchPaths []string
	exec        engine.Executor
}

// New constructs the native engine around the configured export binary.
func New(binary string, searchPaths []string, opts ...Option) (*Engine, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("afconvert binary required")
	}
	eng := &Engine{
		binary:      binary,
		searchPaths: searchPaths,
		exec:        engine.DefaultExecutor(),
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng, nil
}

// Type identifies the engine for dispatch and reporting.
func (e *Engine) Type() engine.Type {
	return engine.Native
}

// Convert runs one export. The OS tool emits no usable progress stream, so
// callers only see a start and a completion milestone.
func (e *Engine) Convert(ctx context.Context, req engine.Request, progress engine.ProgressFunc) error {
	target := catalog.Normalize(req.Options.TargetFormat)
	p, ok := presets[target]
	if !ok {
		return services.Wrap(services.ErrUnsupportedConversion, "native", "preset",
			fmt.Sprintf("no native export preset for %q", target), nil)
	}

	binary, err := deps.Resolve(e.binary, e.searchPaths)
	if err != nil {
		return services.Wrap(services.ErrToolNotFound, "native", "resolve", e.binary, err)
	}

	args := buildArgs(p, req)
	report(progress, engine.ProgressUpdate{
		Stage:   "Exporting",
		Percent: 5,
		Message: fmt.Sprintf("afconvert %s", filepath.Base(req.InputPath)),
	})

	if err := e.exec.Run(ctx, binary, args, nil); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var exitErr *engine.ExitError
		if errors.As(err, &exitErr) {
			return services.Wrap(services.ErrExportFailed, "native", "afconvert", exitErr.Stderr, exitErr)
		}
		return services.Wrap(services.ErrExportFailed, "native", "afconvert", "", err)
	}

	report(progress, engine.ProgressUpdate{Stage: "Exporting", Percent: 100, Message: "Export complete"})
	return nil
}

func buildArgs(p preset, req engine.Request) []string {
	args := []string{"-f", p.fileFormat}

	dataFormat := p.dataFormat
	if req.Options.SampleRate > 0 {
		dataFormat = fmt.Sprintf("%s@%d", dataFormat, req.Options.SampleRate)
	}
	args = append(args, "-d", dataFormat)

	if p.compressed {
		if bits, ok := bitrateBits(req.Options.AudioBitrate); ok {
			args = append(args, "-b", strconv.Itoa(bits))
		}
	}
	if req.Options.Channels > 0 {
		args = append(args, "-c", strconv.Itoa(req.Options.Channels))
	}

	return append(args, req.InputPath, req.OutputPath)
}

// bitrateBits converts a bitrate spelled like "192k" or "320000" into bits
// per second for the export tool's -b flag.
func bitrateBits(value string) (int, bool) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return 0, false
	}
	multiplier := 1
	switch {
	case strings.HasSuffix(value, "k"):
		multiplier = 1000
		value = strings.TrimSuffix(value, "k")
	case strings.HasSuffix(value, "m"):
		multiplier = 1000000
		value = strings.TrimSuffix(value, "m")
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n * multiplier, true
}

func report(progress engine.ProgressFunc, update engine.ProgressUpdate) {
	if progress != nil {
		progress(update)
	}
}
