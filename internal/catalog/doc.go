// Package catalog is the static registry of supported media containers.
//
// All format-related queries (validity, audio/video kind, display names,
// native export capability) are consolidated here to avoid duplication across
// the engine, orchestrator, and CLI packages.
package catalog
