package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/thoreinstein/appcfg/internal/errors"
)

// Additional levels matching the names accepted in log_level.
const (
	// LevelTrace is more verbose than Debug.
	LevelTrace = slog.Level(-8)
	// LevelSuccess sits between Info and Warn.
	LevelSuccess = slog.LevelInfo + 2
	// LevelCritical is the highest severity.
	LevelCritical = slog.LevelError + 4
)

// ParseLevel converts a level name (TRACE, DEBUG, INFO, SUCCESS, WARNING,
// WARN, ERROR, CRITICAL; case-insensitive) to an slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "SUCCESS":
		return LevelSuccess, nil
	case "WARNING", "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "CRITICAL":
		return LevelCritical, nil
	}
	return 0, errors.Wrapf(errors.ErrInvalidLevel, "level %q", name)
}

// LevelName returns the display name for level.
func LevelName(level slog.Level) string {
	switch {
	case level >= LevelCritical:
		return "CRITICAL"
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARNING"
	case level >= LevelSuccess:
		return "SUCCESS"
	case level >= slog.LevelInfo:
		return "INFO"
	case level >= slog.LevelDebug:
		return "DEBUG"
	default:
		return "TRACE"
	}
}

// LevelFromVerbosity maps a -v count to a level: 0 → Warn, 1 → Info,
// 2 → Debug, 3+ → Trace.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	case v == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// Format specifies the output format for log messages.
type Format string

const (
	// FormatText produces the colorized console format.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// Config holds the configuration for creating a new logger.
type Config struct {
	// Level sets the minimum log level. Messages below this level are discarded.
	Level slog.Level
	// Format specifies the output format (text or JSON).
	Format Format
	// Output is where log messages are written. Defaults to os.Stderr if nil.
	Output io.Writer
	// Root is the directory source paths are shown relative to in text
	// output. Defaults to the module source root.
	Root string
}

// New creates a logger with the given configuration.
// If cfg.Output is nil, it defaults to os.Stderr.
// If cfg.Format is not recognized, it defaults to FormatText.
func New(cfg Config) *slog.Logger {
	return slog.New(newHandler(cfg))
}

func newHandler(cfg Config) slog.Handler {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	switch cfg.Format {
	case FormatJSON:
		return slog.NewJSONHandler(output, &slog.HandlerOptions{Level: cfg.Level, AddSource: true})
	default:
		return NewHandler(output, &HandlerOptions{Level: cfg.Level, Root: cfg.Root})
	}
}

// NewDiscard creates a logger that discards all output.
func NewDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}

// testWriter adapts testing.T to io.Writer for use with slog handlers.
type testWriter struct {
	t *testing.T
}

// Write implements io.Writer by logging to the test.
func (w *testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	msg := strings.TrimSuffix(string(p), "\n")
	w.t.Log(msg)
	return len(p), nil
}

// ForTest creates a logger that writes to the test's log output.
// Log messages appear only when the test fails or when running with -v.
func ForTest(t *testing.T) *slog.Logger {
	t.Helper()
	return New(Config{
		Level:  LevelTrace,
		Format: FormatText,
		Output: &testWriter{t: t},
	})
}
