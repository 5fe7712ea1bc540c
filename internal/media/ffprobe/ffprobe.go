package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Report is the subset of ffprobe's JSON output the converter reads.
type Report struct {
	Streams []Stream  `json:"streams"`
	Format  Container `json:"format"`
}

// Stream describes one elementary stream in the probed file.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Container carries container-level metadata.
type Container struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Inspect runs ffprobe against path and decodes its JSON report. Probe errors
// include ffprobe's stderr output.
func Inspect(ctx context.Context, binary, path string) (Report, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Report{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-hide_banner",
		"-show_format",
		"-show_streams",
		"-of", "json",
		"--", path,
	)
	stdout, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return Report{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Report{}, fmt.Errorf("ffprobe inspect: %w", err)
	}

	var report Report
	if err := json.Unmarshal(stdout, &report); err != nil {
		return Report{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return report, nil
}

// Duration probes the media duration in seconds. Progress estimation needs a
// real reference duration, so an unusable probe is an error rather than zero.
func Duration(ctx context.Context, binary, path string) (float64, error) {
	report, err := Inspect(ctx, binary, path)
	if err != nil {
		return 0, err
	}
	duration, ok := report.DurationSeconds()
	if !ok {
		return 0, fmt.Errorf("ffprobe duration: no usable duration for %s", path)
	}
	return duration, nil
}

// DurationSeconds returns the container duration, falling back to the longest
// stream duration when the container omits one. ok is false when neither is
// usable.
func (r Report) DurationSeconds() (duration float64, ok bool) {
	if value, valid := seconds(r.Format.Duration); valid {
		return value, true
	}
	for _, stream := range r.Streams {
		if value, valid := seconds(stream.Duration); valid && value > duration {
			duration, ok = value, true
		}
	}
	return duration, ok
}

// HasVideo reports whether the file carries at least one video stream.
func (r Report) HasVideo() bool {
	return r.hasStreamType("video")
}

// HasAudio reports whether the file carries at least one audio stream.
func (r Report) HasAudio() bool {
	return r.hasStreamType("audio")
}

func (r Report) hasStreamType(codecType string) bool {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, codecType) {
			return true
		}
	}
	return false
}

func seconds(value string) (float64, bool) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
