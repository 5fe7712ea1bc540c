package logging

import (
	"math"
	"strings"
)

// ProgressSampler suppresses repetitive progress logs while preserving signal
// when stages change or the percentage passes the next sampling mark.
// Transcode progress arrives once per parsed output line, which is far too
// chatty to log verbatim.
type ProgressSampler struct {
	step     float64
	stage    string
	nextMark float64
}

// NewProgressSampler returns a sampler that emits once per step percent
// (default 5) and on every stage change.
func NewProgressSampler(step float64) *ProgressSampler {
	if step <= 0 {
		step = 5
	}
	return &ProgressSampler{step: step}
}

// ShouldLog reports whether this progress update is worth a log line. A
// negative percent means unknown progress; those emit on stage changes only.
func (s *ProgressSampler) ShouldLog(percent float64, stage string) bool {
	if s == nil {
		return true
	}

	emit := false
	if stage = strings.TrimSpace(stage); stage != "" && stage != s.stage {
		s.stage = stage
		s.nextMark = 0
		emit = true
	}

	if percent < 0 {
		return emit
	}
	percent = math.Min(percent, 100)
	if percent >= s.nextMark {
		s.nextMark = (math.Floor(percent/s.step) + 1) * s.step
		emit = true
	}
	return emit
}

// Reset clears the sampler state when a new item starts.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.stage = ""
	s.nextMark = 0
}
