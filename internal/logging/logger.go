package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"avconverter/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level            string
	Format           string
	OutputPaths      []string
	ErrorOutputPaths []string
	Development      bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))

	writer, err := combinedWriter(opts.OutputPaths, opts.ErrorOutputPaths)
	if err != nil {
		return nil, err
	}

	addSource := opts.Development || levelVar.Level() <= slog.LevelDebug

	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "json":
		return slog.New(newJSONHandler(writer, levelVar, addSource)), nil
	case "console", "":
		return slog.New(newConsoleHandler(writer, levelVar, addSource)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig creates the standard application logger: console or JSON on
// stderr per logging.format, teed into an always-JSON avconvert.log when a
// log directory is configured.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console"})
	}

	base, err := New(Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, err
	}
	if cfg.Paths.LogDir == "" {
		return base, nil
	}
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure log directory: %w", err)
	}
	fileHandler, err := NewJSONFileHandler(filepath.Join(cfg.Paths.LogDir, LogFileName), cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	return TeeLogger(base, fileHandler), nil
}

// LogFileName is the rolling log file written beneath paths.log_dir.
const LogFileName = "avconvert.log"

// NewJSONFileHandler opens path for appending and returns a JSON handler
// writing to it. Serve mode uses it for per-run log files; NewFromConfig uses
// it for the rolling avconvert.log.
func NewJSONFileHandler(path, level string) (slog.Handler, error) {
	file, err := openLogFile(path)
	if err != nil {
		return nil, err
	}
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(level))
	return newJSONHandler(file, levelVar, false), nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// combinedWriter merges the output and error path lists into one deduplicated
// writer. Both streams share a destination so interleaving stays ordered.
func combinedWriter(outputPaths, errorPaths []string) (io.Writer, error) {
	paths := append(append([]string{}, outputPaths...), errorPaths...)
	if len(paths) == 0 {
		paths = []string{"stderr"}
	}

	seen := make(map[string]struct{}, len(paths))
	writers := make([]io.Writer, 0, len(paths))
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}

		switch path {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			file, err := openLogFile(path)
			if err != nil {
				return nil, err
			}
			writers = append(writers, file)
		}
	}

	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	opts := slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Key = "level"
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.MessageKey:
				attr.Key = "msg"
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	}

	return slog.NewJSONHandler(w, &opts)
}

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
	ansiGray   = "\x1b[90m"
)

// boundAttr is a handler-level attribute together with the group prefix that
// was open when it was attached.
type boundAttr struct {
	prefix string
	attr   slog.Attr
}

// consoleHandler renders single-line human-oriented records of the form
//
//	2025-01-02T10:04:05Z INFO daemon #7: queue opened path=/tmp/queue.db
//
// where the component and item number come from the well-known attribute keys
// and remaining attributes trail as key=value pairs.
type consoleHandler struct {
	mu        sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []boundAttr
	prefix    string
	addSource bool
	colorize  bool
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{writer: w, level: lvl, addSource: addSource, colorize: shouldColorize(w)}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	component, item := h.subject(record)

	var buf bytes.Buffer
	buf.Grow(160)
	buf.WriteString(timestamp.UTC().Format(time.RFC3339))
	buf.WriteByte(' ')
	buf.WriteString(h.levelLabel(record.Level))
	buf.WriteByte(' ')

	if component != "" {
		buf.WriteString(component)
		if item != "" {
			buf.WriteString(" #")
			buf.WriteString(item)
		}
		buf.WriteString(": ")
	}

	if msg := strings.TrimSpace(record.Message); msg != "" {
		buf.WriteString(msg)
	} else {
		buf.WriteString("(no message)")
	}

	if h.addSource {
		if src := record.Source(); src != nil {
			buf.WriteString(" [")
			buf.WriteString(filepath.Base(src.File))
			buf.WriteByte(':')
			buf.WriteString(strconv.Itoa(src.Line))
			buf.WriteByte(']')
		}
	}

	h.eachAttr(record, func(key string, value slog.Value, topLevel bool) {
		if key == "" {
			return
		}
		if topLevel && (key == FieldComponent || (key == FieldItemID && component != "" && item != "")) {
			return
		}
		buf.WriteByte(' ')
		buf.WriteString(key)
		buf.WriteByte('=')
		writeValue(&buf, value)
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

// subject extracts the component name and item number that should lead the
// line. Only top-level attributes qualify; grouped ones keep their dotted key.
func (h *consoleHandler) subject(record slog.Record) (component, item string) {
	h.eachAttr(record, func(key string, value slog.Value, topLevel bool) {
		if !topLevel {
			return
		}
		switch key {
		case FieldComponent:
			if component == "" {
				component = valueText(value)
			}
		case FieldItemID:
			if item == "" {
				item = valueText(value)
			}
		}
	})
	return component, item
}

// eachAttr visits handler attributes under the prefix they were bound with,
// then the record's own attributes under the currently open prefix.
func (h *consoleHandler) eachAttr(record slog.Record, visit func(key string, value slog.Value, topLevel bool)) {
	for _, bound := range h.attrs {
		walkAttr(bound.prefix, bound.attr, visit)
	}
	record.Attrs(func(attr slog.Attr) bool {
		walkAttr(h.prefix, attr, visit)
		return true
	})
}

func walkAttr(prefix string, attr slog.Attr, visit func(key string, value slog.Value, topLevel bool)) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	value := attr.Value.Resolve()

	if value.Kind() == slog.KindGroup {
		next := joinKey(prefix, attr.Key)
		for _, nested := range value.Group() {
			walkAttr(next, nested, visit)
		}
		return
	}

	visit(joinKey(prefix, attr.Key), value, prefix == "")
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := h.clone()
	for _, attr := range attrs {
		clone.attrs = append(clone.attrs, boundAttr{prefix: h.prefix, attr: attr})
	}
	return clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.prefix = joinKey(h.prefix, name)
	return clone
}

func (h *consoleHandler) clone() *consoleHandler {
	clone := &consoleHandler{
		writer:    h.writer,
		level:     h.level,
		prefix:    h.prefix,
		addSource: h.addSource,
		colorize:  h.colorize,
	}
	clone.attrs = append(clone.attrs, h.attrs...)
	return clone
}

func (h *consoleHandler) levelLabel(level slog.Level) string {
	label, color := "DEBUG", ansiGray
	switch {
	case level >= slog.LevelError:
		label, color = "ERROR", ansiRed
	case level >= slog.LevelWarn:
		label, color = "WARN", ansiYellow
	case level >= slog.LevelInfo:
		label, color = "INFO", ansiCyan
	}
	if !h.colorize {
		return label
	}
	return color + label + ansiReset
}

// writeValue appends a console rendering of the value, quoting strings that
// contain spaces, quotes, or '='.
func writeValue(buf *bytes.Buffer, v slog.Value) {
	switch v.Kind() {
	case slog.KindBool:
		buf.WriteString(strconv.FormatBool(v.Bool()))
	case slog.KindInt64:
		buf.WriteString(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		buf.WriteString(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		buf.WriteString(strconv.FormatFloat(v.Float64(), 'f', -1, 64))
	case slog.KindDuration:
		buf.WriteString(v.Duration().String())
	case slog.KindTime:
		buf.WriteString(v.Time().UTC().Format(time.RFC3339))
	default:
		text := valueText(v)
		if needsQuotes(text) {
			buf.WriteString(strconv.Quote(text))
		} else {
			buf.WriteString(text)
		}
	}
}

func valueText(v slog.Value) string {
	v = v.Resolve()
	if v.Kind() == slog.KindAny {
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	}
	return v.String()
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsFunc(s, func(r rune) bool {
		return r <= ' ' || r == '=' || r == '"'
	})
}
