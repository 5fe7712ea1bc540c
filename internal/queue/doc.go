// Package queue persists conversion batches and their items in SQLite and
// exposes helpers for driving their lifecycle.
//
// The Store manages database connections, schema migrations, stats queries,
// interrupted-run recovery, and the status transitions the orchestrator
// records. Items capture per-file progress, the engine that handled them,
// fallback usage, and error detail so the status CLI and HTTP API can report
// on a run without touching orchestrator state.
//
// The database is treated as run-state for observability rather than a
// long-term archive; completed conversions that matter to the user land in
// the history log instead.
package queue
