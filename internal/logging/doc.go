// Package logging assembles structured slog loggers and formatting helpers
// used across the converter.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so engine and orchestrator code can
// automatically tag log lines with item IDs, stages, engines, and correlation
// IDs. The package also provides a no-op logger for tests and wiring code
// that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components
// emit data with the same shape and routing as the rest of the system.
package logging
