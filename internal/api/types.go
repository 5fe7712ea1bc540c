package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// QueueItem describes one conversion in a transport-friendly format.
type QueueItem struct {
	ID           int64         `json:"id"`
	BatchID      string        `json:"batchId"`
	SourcePath   string        `json:"sourcePath"`
	TargetFormat string        `json:"targetFormat"`
	Status       string        `json:"status"`
	Engine       string        `json:"engine,omitempty"`
	FallbackUsed bool          `json:"fallbackUsed"`
	OutputPath   string        `json:"outputPath,omitempty"`
	CloudJobID   string        `json:"cloudJobId,omitempty"`
	Progress     QueueProgress `json:"progress"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	CreatedAt    string        `json:"createdAt,omitempty"`
	UpdatedAt    string        `json:"updatedAt,omitempty"`
	CompletedAt  string        `json:"completedAt,omitempty"`
}

// QueueProgress captures stage progress information for a conversion.
type QueueProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// Batch summarizes one conversion run.
type Batch struct {
	ID           string `json:"id"`
	Engine       string `json:"engine"`
	TargetFormat string `json:"targetFormat"`
	OutputDir    string `json:"outputDir,omitempty"`
	Status       string `json:"status"`
	CreatedAt    string `json:"createdAt,omitempty"`
	CompletedAt  string `json:"completedAt,omitempty"`
}

// DaemonStatus aggregates serve-mode runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	Address      string         `json:"address,omitempty"`
	QueueDBPath  string         `json:"queueDbPath"`
	LockFilePath string         `json:"lockFilePath"`
	QueueStats   map[string]int `json:"queueStats"`
	LatestBatch  *Batch         `json:"latestBatch,omitempty"`
}

// HistoryEntry is one completed conversion from the history file.
type HistoryEntry struct {
	ID        string `json:"id"`
	FileName  string `json:"fileName"`
	OutputURL string `json:"outputURL"`
	Date      string `json:"date"`
}

// FormatInfo describes a supported output container.
type FormatInfo struct {
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	Display      string `json:"display"`
	NativeExport bool   `json:"nativeExport"`
}

// QueueStatsResponse provides a normalized queue stats payload.
type QueueStatsResponse struct {
	Counts map[string]int `json:"counts"`
}

// QueueListResponse wraps a collection of queue items for API responses.
type QueueListResponse struct {
	Items []QueueItem `json:"items"`
}

// QueueItemResponse wraps a single queue item.
type QueueItemResponse struct {
	Item QueueItem `json:"item"`
}

// HistoryResponse wraps the recorded conversion history.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// FormatsResponse wraps the supported format catalog.
type FormatsResponse struct {
	Formats []FormatInfo `json:"formats"`
}
