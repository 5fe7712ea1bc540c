package cloudapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"avconverter/internal/services"
)

const (
	defaultFixedDelay   = 5 * time.Second
	defaultPollInterval = 3 * time.Second
)

// StatusFunc fetches the current remote job document.
type StatusFunc func(ctx context.Context) (JobDocument, error)

// WaitStrategy decides when a remote job is ready for download. The service
// has no reliably documented status endpoint, so the strategy is swappable:
// the default proceeds optimistically after a fixed delay and lets the
// download verdict stand in for a status check.
type WaitStrategy interface {
	Await(ctx context.Context, status StatusFunc) (JobDocument, error)
}

// NewStrategy builds the wait strategy named in configuration.
func NewStrategy(name string, delay, interval time.Duration) (WaitStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "fixed_delay":
		return FixedDelay{Delay: delay}, nil
	case "poll":
		return Poll{Interval: interval}, nil
	default:
		return nil, fmt.Errorf("unknown wait strategy %q", name)
	}
}

// FixedDelay waits once, then reports the job ready without consulting the
// status resource. Degraded mode for services without a status endpoint.
type FixedDelay struct {
	Delay time.Duration
}

// Await sleeps for the configured delay or until ctx is done.
func (s FixedDelay) Await(ctx context.Context, _ StatusFunc) (JobDocument, error) {
	delay := s.Delay
	if delay <= 0 {
		delay = defaultFixedDelay
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return JobDocument{}, ctx.Err()
	case <-timer.C:
		return JobDocument{}, nil
	}
}

// Poll checks the status resource on an interval until the job reports ready
// or failed. Transport and decode errors from individual checks are treated
// as "not ready yet" since the endpoint is known to be unreliable; ctx
// bounds the overall wait.
type Poll struct {
	Interval time.Duration
}

// Await polls until a terminal answer or ctx expiry.
func (s Poll) Await(ctx context.Context, status StatusFunc) (JobDocument, error) {
	interval := s.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		doc, err := status(ctx)
		if err == nil {
			if doc.Failed() {
				message := strings.TrimSpace(doc.Error)
				if message == "" {
					message = fmt.Sprintf("remote status %q", doc.Status)
				}
				return doc, services.Wrap(services.ErrJobFailed, "cloud", "status", message, nil)
			}
			if doc.ReadyForDownload() {
				return doc, nil
			}
		}

		select {
		case <-ctx.Done():
			return JobDocument{}, ctx.Err()
		case <-ticker.C:
		}
	}
}
