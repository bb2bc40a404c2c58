// Package startup wires the configuration store and the console logger in
// the order the rest of the application expects: configuration first, so
// its log_level can select the logger level.
package startup

import (
	"io"
	"log/slog"

	"github.com/thoreinstein/appcfg/internal/config"
	"github.com/thoreinstein/appcfg/internal/errors"
	"github.com/thoreinstein/appcfg/internal/logging"
)

// Options controls InitAll.
type Options struct {
	Config config.Options

	// LogLevel overrides the document's log_level when non-empty.
	LogLevel string

	// Output receives console log records. Nil means stdout.
	Output io.Writer
}

// Swapped in tests.
var (
	initConfig = config.Init
	initLogger = logging.EnsureInitializedTo
)

// InitAll opens the process-wide configuration store and installs the
// console logger. Both steps are idempotent. Configuration problems never
// fail startup; a logger that cannot be installed does.
func InitAll(opts Options) (*config.Store, *slog.Logger, error) {
	store := initConfig(opts.Config)

	level := opts.LogLevel
	if level == "" {
		level = store.Document().LogLevel
	}

	logger, err := initLogger(level, opts.Output)
	if err != nil {
		return store, nil, errors.Wrap(err, "initializing logger")
	}

	logger.Debug("startup complete", "config", store.Path(), "level", level)
	for _, w := range store.Warnings() {
		logger.Warn("config warning", "field", w.Key, "message", w.Message)
	}
	return store, logger, nil
}
