package logging

import (
	"context"
	"log/slog"
)

// minLevelHandler raises the minimum level for one logger without touching
// the handler it wraps. The convert command uses it to keep interactive
// progress rendering free of INFO chatter while the log file still records
// everything.
type minLevelHandler struct {
	next  slog.Handler
	level slog.Level
}

func newMinLevelHandler(next slog.Handler, level slog.Level) slog.Handler {
	if next == nil {
		return NoopHandler{}
	}
	return &minLevelHandler{next: next, level: level}
}

func (h *minLevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < h.level {
		return false
	}
	return h.next.Enabled(ctx, level)
}

func (h *minLevelHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.level {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h *minLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &minLevelHandler{next: h.next.WithAttrs(attrs), level: h.level}
}

func (h *minLevelHandler) WithGroup(name string) slog.Handler {
	return &minLevelHandler{next: h.next.WithGroup(name), level: h.level}
}

func (h *minLevelHandler) CloneWithLevel(level slog.Level) slog.Handler {
	return &minLevelHandler{next: h.next, level: level}
}

// WithLevelOverride returns a logger that drops records below level while
// keeping the underlying handler and its attributes. Overriding an already
// overridden logger replaces the previous floor instead of stacking wrappers.
func WithLevelOverride(logger *slog.Logger, level slog.Level) *slog.Logger {
	if logger == nil {
		return slog.New(newMinLevelHandler(nil, level))
	}
	if cloner, ok := logger.Handler().(interface{ CloneWithLevel(slog.Level) slog.Handler }); ok {
		return slog.New(cloner.CloneWithLevel(level))
	}
	return slog.New(newMinLevelHandler(logger.Handler(), level))
}
