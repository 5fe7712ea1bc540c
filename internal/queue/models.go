package queue

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle of a batch item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConverting Status = "converting"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

var allStatuses = []Status{
	StatusPending,
	StatusConverting,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var terminalStatuses = map[Status]struct{}{
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCancelled: {},
}

// BatchStatus represents the aggregate lifecycle of one batch run.
type BatchStatus string

const (
	BatchRunning             BatchStatus = "running"
	BatchCompleted           BatchStatus = "completed"
	BatchCompletedWithErrors BatchStatus = "completed_with_errors"
	BatchCancelled           BatchStatus = "cancelled"
)

// Batch groups the items submitted together in one orchestrator invocation.
type Batch struct {
	ID           string
	Engine       string
	TargetFormat string
	OutputDir    string
	Status       BatchStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

// Item represents a batch item persisted in SQLite.
type Item struct {
	ID              int64
	BatchID         string
	SourcePath      string
	TargetFormat    string
	Status          Status
	Engine          string
	FallbackUsed    bool
	OutputPath      string
	CloudJobID      string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	CompletedAt     *time.Time
}

// HealthSummary describes aggregated item counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Converting int
	Completed  int
	Failed     int
	Cancelled  int
}

// String renders the summary for diagnostic output.
func (h HealthSummary) String() string {
	if h.Total == 0 {
		return "none recorded"
	}
	return fmt.Sprintf("%d total (%d pending, %d converting, %d completed, %d failed, %d cancelled)",
		h.Total, h.Pending, h.Converting, h.Completed, h.Failed, h.Cancelled)
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// TerminalStatuses returns the statuses after which an item never changes.
func TerminalStatuses() []Status {
	return []Status{StatusCompleted, StatusFailed, StatusCancelled}
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight conversion.
func (i Item) IsProcessing() bool {
	return i.Status == StatusConverting
}

// IsTerminal reports whether the item has reached a final state.
func (i Item) IsTerminal() bool {
	return IsTerminalStatus(i.Status)
}

// IsTerminalStatus reports whether a status is final.
func IsTerminalStatus(status Status) bool {
	_, ok := terminalStatuses[status]
	return ok
}

// InitProgress resets progress fields for a fresh engine run. ProgressMessage
// is set to message, ProgressPercent is reset to 0, and ErrorMessage is
// cleared.
func (i *Item) InitProgress(stage, message string) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ProgressPercent = 0
	i.ErrorMessage = ""
}

// SetProgress updates all three progress fields together. Use this instead of
// setting ProgressStage, ProgressPercent, and ProgressMessage individually.
// Percent never moves backwards; a stale engine callback is clamped to the
// highest value already recorded.
func (i *Item) SetProgress(stage, message string, percent float64) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	if percent > i.ProgressPercent {
		i.ProgressPercent = percent
	}
}

// SetProgressComplete sets progress to 100% with the given stage and message.
func (i *Item) SetProgressComplete(stage, message string) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ProgressPercent = 100
}

// SetCompleted marks the item as successfully converted via the named engine.
func (i *Item) SetCompleted(engine, outputPath string) {
	now := time.Now().UTC()
	i.Status = StatusCompleted
	i.Engine = engine
	i.OutputPath = outputPath
	i.CompletedAt = &now
	i.SetProgressComplete("Completed", "conversion finished")
}

// SetFailed marks the item as failed with the given error message.
func (i *Item) SetFailed(message string) {
	now := time.Now().UTC()
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressMessage = message
	i.ProgressStage = "Failed"
	i.CompletedAt = &now
}

// SetCancelled marks the item as cancelled before or during conversion.
func (i *Item) SetCancelled() {
	now := time.Now().UTC()
	i.Status = StatusCancelled
	i.ProgressStage = "Cancelled"
	i.ProgressMessage = "cancelled before completion"
	i.CompletedAt = &now
}
