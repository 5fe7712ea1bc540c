package api

import (
	"time"

	"avconverter/internal/catalog"
	"avconverter/internal/history"
	"avconverter/internal/queue"
)

// FromQueueItem converts a queue record to its API representation.
func FromQueueItem(item *queue.Item) QueueItem {
	if item == nil {
		return QueueItem{}
	}

	dto := QueueItem{
		ID:           item.ID,
		BatchID:      item.BatchID,
		SourcePath:   item.SourcePath,
		TargetFormat: item.TargetFormat,
		Status:       string(item.Status),
		Engine:       item.Engine,
		FallbackUsed: item.FallbackUsed,
		OutputPath:   item.OutputPath,
		CloudJobID:   item.CloudJobID,
		Progress: QueueProgress{
			Stage:   item.ProgressStage,
			Percent: item.ProgressPercent,
			Message: item.ProgressMessage,
		},
		ErrorMessage: item.ErrorMessage,
		CreatedAt:    FormatTime(item.CreatedAt),
		UpdatedAt:    FormatTime(item.UpdatedAt),
	}
	if item.CompletedAt != nil {
		dto.CompletedAt = FormatTime(*item.CompletedAt)
	}
	return dto
}

// FromQueueItems converts a slice of queue records into API DTOs.
func FromQueueItems(items []*queue.Item) []QueueItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]QueueItem, 0, len(items))
	for _, item := range items {
		out = append(out, FromQueueItem(item))
	}
	return out
}

// FromBatch converts a batch record to its API representation.
func FromBatch(batch *queue.Batch) *Batch {
	if batch == nil {
		return nil
	}
	dto := &Batch{
		ID:           batch.ID,
		Engine:       batch.Engine,
		TargetFormat: batch.TargetFormat,
		OutputDir:    batch.OutputDir,
		Status:       string(batch.Status),
		CreatedAt:    FormatTime(batch.CreatedAt),
	}
	if batch.CompletedAt != nil {
		dto.CompletedAt = FormatTime(*batch.CompletedAt)
	}
	return dto
}

// FromHistoryRecords converts persisted history records into API DTOs.
func FromHistoryRecords(records []history.Record) []HistoryEntry {
	if len(records) == 0 {
		return nil
	}
	out := make([]HistoryEntry, 0, len(records))
	for _, record := range records {
		out = append(out, HistoryEntry{
			ID:        record.ID,
			FileName:  record.FileName,
			OutputURL: record.OutputURL,
			Date:      FormatTime(record.Date),
		})
	}
	return out
}

// FromFormats converts catalog entries into API DTOs, preserving catalog order.
func FromFormats(formats []catalog.Format) []FormatInfo {
	if len(formats) == 0 {
		return nil
	}
	out := make([]FormatInfo, 0, len(formats))
	for _, format := range formats {
		out = append(out, FormatInfo{
			Name:         format.Name,
			Kind:         string(format.Kind),
			Display:      format.Display,
			NativeExport: format.NativeExport,
		})
	}
	return out
}

// MergeQueueStats produces a string-keyed representation of queue stats.
func MergeQueueStats(stats map[queue.Status]int) map[string]int {
	out := make(map[string]int, len(stats))
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
