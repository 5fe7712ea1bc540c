// Package daemon coordinates serve mode and cross-process exclusion.
//
// It wires configuration, the queue store, and the history log into a single
// lifecycle with flock-based locking so only one process uses a state
// directory at a time. The API server exposes read-only JSON endpoints for
// status, queue contents, conversion history, and the format catalog.
//
// Batch runs reuse InstanceLock directly: the convert path takes the same
// lock without starting the HTTP surface.
package daemon
