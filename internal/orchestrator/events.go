package orchestrator

import (
	"time"

	"avconverter/internal/engine"
	"avconverter/internal/media"
	"avconverter/internal/queue"
)

// BatchRequest describes one orchestrator invocation.
type BatchRequest struct {
	// Paths lists the input files in submission order.
	Paths []string
	// Engine selects the primary conversion backend.
	Engine engine.Type
	// Options carries the per-batch conversion parameters.
	Options media.Options
	// OutputDir receives the converted files. Empty places each output next
	// to its source.
	OutputDir string

	// OnEvent receives exactly one terminal event per item. Callbacks are
	// serialized; the next item's event is not delivered until the previous
	// callback returns. Nil is allowed.
	OnEvent func(ItemEvent)
	// OnProgress receives in-flight progress for the item currently
	// converting. Serialized like OnEvent. Nil is allowed.
	OnProgress func(ItemProgress)
}

// ItemEvent is the terminal report for one batch item.
type ItemEvent struct {
	ItemID int64
	Path   string
	Status queue.Status

	// Engine names the backend that produced the outcome. Empty when the
	// item never reached an engine.
	Engine string
	// FallbackUsed is set when the shell engine ran after a native failure.
	FallbackUsed bool
	// OutputPath is populated for completed items.
	OutputPath string
	// Err describes the failure for failed and cancelled items.
	Err error

	// BatchProgress is the fraction of items terminal after this event,
	// in [0, 1]. The final event of a batch always carries 1.0.
	BatchProgress float64
}

// ItemProgress is an in-flight progress report for one converting item.
type ItemProgress struct {
	ItemID  int64
	Path    string
	Stage   string
	Percent float64
	Message string
}

// Summary aggregates a finished batch run.
type Summary struct {
	BatchID   string
	Total     int
	Succeeded int
	Failed    int
	Cancelled int
	Duration  time.Duration
}

// DoneWithErrors reports whether any item ended failed.
func (s Summary) DoneWithErrors() bool {
	return s.Failed > 0
}

// Status derives the aggregate batch status persisted for the run.
func (s Summary) Status() queue.BatchStatus {
	switch {
	case s.Cancelled > 0:
		return queue.BatchCancelled
	case s.Failed > 0:
		return queue.BatchCompletedWithErrors
	default:
		return queue.BatchCompleted
	}
}
