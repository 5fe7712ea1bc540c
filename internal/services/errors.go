package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"avconverter/internal/queue"
)

// Sentinel markers for conversion failures. Engines and the cloud client tag
// every failure with exactly one marker so callers can branch with errors.Is
// instead of matching message strings.
var (
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrToolNotFound          = errors.New("tool not found")
	ErrProcessFailed         = errors.New("process failed")
	ErrExportFailed          = errors.New("export failed")
	ErrUploadRejected        = errors.New("upload rejected")
	ErrTransport             = errors.New("transport error")
	ErrDecode                = errors.New("decode error")
	ErrJobFailed             = errors.New("cloud job failed")
	ErrTimeout               = errors.New("timeout")
	ErrDownloadFailed        = errors.New("download failed")
	ErrValidation            = errors.New("validation error")
	ErrConfiguration         = errors.New("configuration error")
	ErrNotFound              = errors.New("not found")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a conversion error to the status the orchestrator should
// persist for the item after the engine run fails.
func FailureStatus(err error) queue.Status {
	if err != nil && errors.Is(err, context.Canceled) {
		return queue.StatusCancelled
	}
	return queue.StatusFailed
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
