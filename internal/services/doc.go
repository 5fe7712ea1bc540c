// Package services defines shared utilities consumed by the conversion
// engines and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp batch item IDs, stage names, engine names,
//     and correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent item statuses (failed vs cancelled).
//
// Use these helpers when wiring new engine logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
