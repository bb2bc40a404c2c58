package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/thoreinstein/appcfg/internal/errors"
)

// DefaultLevelName is used when no level is configured.
const DefaultLevelName = "INFO"

// console is the process-wide sink installed by EnsureInitialized. A failed
// attempt leaves it uninstalled so a later call can retry.
var console struct {
	mu       sync.Mutex
	logger   *slog.Logger
	installs int
}

// stdout is swapped in tests.
var stdout io.Writer = os.Stdout

// EnsureInitialized installs the console sink on first successful call and
// returns the installed logger on every call. levelName is a log_level
// value such as "DEBUG"; empty means INFO. Later calls ignore levelName.
//
// Setup failures (unknown level, unusable output) are logged through the
// current default logger and returned: without a working sink the process
// has no observability.
func EnsureInitialized(levelName string) (*slog.Logger, error) {
	return ensureInitialized(levelName, stdout)
}

// EnsureInitializedTo is EnsureInitialized with an explicit console writer.
// A nil out means stdout.
func EnsureInitializedTo(levelName string, out io.Writer) (*slog.Logger, error) {
	if out == nil {
		out = stdout
	}
	return ensureInitialized(levelName, out)
}

func ensureInitialized(levelName string, out io.Writer) (*slog.Logger, error) {
	console.mu.Lock()
	defer console.mu.Unlock()

	if console.logger != nil {
		return console.logger, nil
	}

	logger, err := newConsoleLogger(levelName, out)
	if err != nil {
		slog.Error("logger init failed", "error", err)
		return nil, err
	}

	// Replacing the default drops whatever sink was installed before.
	slog.SetDefault(logger)
	console.logger = logger
	console.installs++
	return logger, nil
}

func newConsoleLogger(levelName string, out io.Writer) (*slog.Logger, error) {
	if levelName == "" {
		levelName = DefaultLevelName
	}
	level, err := ParseLevel(levelName)
	if err != nil {
		return nil, err
	}

	if out == nil {
		return nil, errors.New("no console output available")
	}
	if f, ok := out.(*os.File); ok {
		if _, err := f.Stat(); err != nil {
			return nil, errors.Wrap(err, "console output unusable")
		}
	}

	return slog.New(NewHandler(out, &HandlerOptions{Level: level})), nil
}

// Initialized reports whether the console sink is installed.
func Initialized() bool {
	console.mu.Lock()
	defer console.mu.Unlock()
	return console.logger != nil
}
