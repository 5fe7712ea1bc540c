package engine

import (
	"context"
	"strings"

	"avconverter/internal/media"
)

// Type selects one of the interchangeable conversion backends.
type Type string

const (
	// Native delegates to the operating system's media export facility.
	Native Type = "native"
	// Shell invokes the external transcoding binary.
	Shell Type = "shell"
	// Cloud drives a remote conversion job over the HTTP API.
	Cloud Type = "cloud"
)

var allTypes = []Type{Native, Shell, Cloud}

// AllTypes returns the known engine types in preference order.
func AllTypes() []Type {
	cp := make([]Type, len(allTypes))
	copy(cp, allTypes)
	return cp
}

// ParseType converts a string into a known engine Type.
func ParseType(value string) (Type, bool) {
	normalized := Type(strings.ToLower(strings.TrimSpace(value)))
	for _, t := range allTypes {
		if t == normalized {
			return t, true
		}
	}
	return "", false
}

// ProgressUpdate carries one fractional progress report during a conversion.
// Percent runs 0-100; engines that cannot estimate progress report coarse
// stage milestones instead of a continuous stream.
type ProgressUpdate struct {
	Stage   string
	Percent float64
	Message string
}

// ProgressFunc receives progress updates. Implementations must be safe to
// call from the goroutine running the conversion.
type ProgressFunc func(ProgressUpdate)

// Request describes one conversion invocation.
type Request struct {
	InputPath  string
	OutputPath string
	Options    media.Options
}

// Converter is the common contract implemented by every backend. Convert
// blocks until the conversion reaches a terminal outcome and returns exactly
// once per invocation: nil after the output file is in place, or an error
// from the services taxonomy describing why the item failed.
type Converter interface {
	Type() Type
	Convert(ctx context.Context, req Request, progress ProgressFunc) error
}
