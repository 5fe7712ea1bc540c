// Package orchestrator drives conversion batches end to end.
//
// RunBatch walks a set of input files through the selected engine, applying
// the native-to-shell fallback policy, and emits exactly one terminal event
// per item followed by a single batch summary. Item and batch state is
// persisted to the queue store as the run progresses so the status command
// and the serve API can observe a live batch. Completed conversions are
// appended to the history log and tagged with extended attributes, both
// best-effort.
//
// Batch progress is the fraction of items in a terminal state. It never
// decreases and reaches exactly 1.0 when the last item finishes. Per-item
// failures never abort the batch; cancellation stops new items from starting
// and reports the rest as cancelled.
package orchestrator
