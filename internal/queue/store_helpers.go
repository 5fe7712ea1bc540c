package queue

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, batch_id, source_path, target_format, status, engine, fallback_used, output_path, cloud_job_id, error_message, created_at, updated_at, progress_stage, progress_percent, progress_message, completed_at"

const batchColumns = "id, engine, target_format, output_dir, status, created_at, updated_at, completed_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id              int64
		batchID         string
		sourcePath      string
		targetFormat    string
		statusStr       string
		engine          sql.NullString
		fallbackUsed    sql.NullInt64
		outputPath      sql.NullString
		cloudJobID      sql.NullString
		errorMessage    sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
		progressStage   sql.NullString
		progressPercent sql.NullFloat64
		progressMessage sql.NullString
		completedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&batchID,
		&sourcePath,
		&targetFormat,
		&statusStr,
		&engine,
		&fallbackUsed,
		&outputPath,
		&cloudJobID,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&completedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:              id,
		BatchID:         batchID,
		SourcePath:      sourcePath,
		TargetFormat:    targetFormat,
		Status:          Status(statusStr),
		Engine:          engine.String,
		OutputPath:      outputPath.String,
		CloudJobID:      cloudJobID.String,
		ErrorMessage:    errorMessage.String,
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
	}
	if fallbackUsed.Valid {
		item.FallbackUsed = fallbackUsed.Int64 != 0
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			item.CompletedAt = &completed
		}
	}
	return item, nil
}

func scanBatch(scanner interface{ Scan(dest ...any) error }) (*Batch, error) {
	var (
		id           string
		engine       string
		targetFormat string
		outputDir    sql.NullString
		statusStr    string
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
		completedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&engine,
		&targetFormat,
		&outputDir,
		&statusStr,
		&createdRaw,
		&updatedRaw,
		&completedRaw,
	); err != nil {
		return nil, err
	}

	batch := &Batch{
		ID:           id,
		Engine:       engine,
		TargetFormat: targetFormat,
		OutputDir:    outputDir.String,
		Status:       BatchStatus(statusStr),
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		batch.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		batch.UpdatedAt = updated
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			batch.CompletedAt = &completed
		}
	}
	return batch, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	v := value.UTC().Format(time.RFC3339Nano)
	return v
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
