// Package api defines wire-format types and converters for the HTTP API
// layer. It translates internal queue, history, and catalog models into
// transport-friendly DTOs so external consumers never couple to internal
// types.
//
// # Key Types
//
// QueueItem: transport representation of a conversion with engine, fallback
// flag, progress, and timestamps.
//
// Batch: one conversion run with aggregate status.
//
// DaemonStatus: serve-mode runtime information including queue stats and the
// latest batch.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers. Internal
// enums (queue.Status, queue.BatchStatus, catalog.Kind) are exposed as
// lowercase strings. Timestamps use RFC3339 with milliseconds.
package api
