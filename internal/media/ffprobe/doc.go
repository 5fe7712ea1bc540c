// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no converter-specific dependencies and could be extracted
// as a standalone library.
//
// Key types:
//   - Report: parsed ffprobe output containing streams and container metadata
//   - Stream: individual audio/video stream properties
//   - Container: container-level metadata
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns a parsed Report
//   - Duration: probes the reference duration used for progress estimation
package ffprobe
