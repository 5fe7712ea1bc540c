package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"avconverter/internal/config"
)

const userAgent = "AVConverter-Go/0.1.0"

// Service defines the notification surface exposed to the batch driver.
type Service interface {
	NotifyBatchStarted(ctx context.Context, count int, targetFormat, engineName string) error
	NotifyBatchCompleted(ctx context.Context, succeeded, failed int, duration time.Duration) error
	NotifyConversionFailed(ctx context.Context, fileName, detail string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		batchEvents: cfg.Notifications.Batch,
		errorEvents: cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	batchEvents bool
	errorEvents bool
}

func (n *ntfyService) NotifyBatchStarted(ctx context.Context, count int, targetFormat, engineName string) error {
	if !n.batchEvents {
		return nil
	}
	data := payload{
		title:   "AVConverter - Batch Started",
		message: fmt.Sprintf("Converting %d files to %s via the %s engine", count, targetFormat, engineName),
		tags:    []string{"avconverter", "batch", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, succeeded, failed int, duration time.Duration) error {
	if !n.batchEvents {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title string
	var message string
	if failed == 0 {
		title = "AVConverter - Batch Complete"
		message = fmt.Sprintf("✅ Converted %d files in %s", succeeded, durationText)
	} else {
		title = "AVConverter - Batch Complete (with errors)"
		message = fmt.Sprintf("Converted %d files, %d failed in %s", succeeded, failed, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"avconverter", "batch", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyConversionFailed(ctx context.Context, fileName, detail string) error {
	if !n.errorEvents {
		return nil
	}
	fileName = strings.TrimSpace(fileName)
	var builder strings.Builder
	builder.WriteString("❌ Conversion failed: ")
	builder.WriteString(fileName)
	if detail = strings.TrimSpace(detail); detail != "" {
		builder.WriteString("\n")
		builder.WriteString(detail)
	}

	data := payload{
		title:    "AVConverter - Conversion Failed",
		message:  builder.String(),
		tags:     []string{"avconverter", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "AVConverter - Test",
		message:  "Notification system test",
		tags:     []string{"avconverter", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyBatchStarted(context.Context, int, string, string) error { return nil }

func (noopService) NotifyBatchCompleted(context.Context, int, int, time.Duration) error {
	return nil
}

func (noopService) NotifyConversionFailed(context.Context, string, string) error { return nil }

func (noopService) TestNotification(context.Context) error { return nil }
