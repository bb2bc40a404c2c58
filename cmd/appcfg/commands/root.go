// Package commands implements the CLI commands for appcfg.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/appcfg/cmd"
	"github.com/thoreinstein/appcfg/internal/config"
	"github.com/thoreinstein/appcfg/internal/errors"
	"github.com/thoreinstein/appcfg/internal/logging"
	"github.com/thoreinstein/appcfg/internal/paths"
	"github.com/thoreinstein/appcfg/internal/startup"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configPath holds the value of the --config flag.
var configPath string

// store is the configuration opened before a command runs. It stays nil for
// commands annotated with skipStore.
var store *config.Store

// skipStore marks commands that must not open (and possibly create) the
// configuration file.
const skipStore = "appcfg/skip-store"

// levelFallback marks commands that repair the configuration file. They run
// at the default level when the file's log_level is unknown.
const levelFallback = "appcfg/level-fallback"

// Swapped in tests.
var (
	initAll    = startup.InitAll
	initLogger = logging.EnsureInitializedTo
)

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv); overrides log_level")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"only log errors")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"also write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default $CONFIG_FILE or <install dir>/config.toml)")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("appcfg version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

var rootCmd = &cobra.Command{
	Use:   "appcfg",
	Short: "Inspect and maintain the application configuration",
	Long: `appcfg manages the TOML configuration file shared by the application's
subsystems (whisper, proxy, azure, siliconflow, ui).

The file is config.toml next to the installed binary unless CONFIG_FILE or
--config points elsewhere. Missing keys are filled with defaults when the
file is loaded; nothing is written back until a command saves it.`,
	Example: `  # Create the config file with all defaults
  appcfg init

  # Show the merged configuration, secrets masked
  appcfg config list

  # Change the log level
  appcfg config set log_level DEBUG

  # Check the file for problems
  appcfg doctor

  See Also: appcfg init, appcfg doctor, appcfg config`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setup(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// consoleLevel returns the level name selected by flags or APPCFG_DEBUG,
// or "" to use the file's log_level.
func consoleLevel() (string, error) {
	if quiet && verbosity > 0 {
		return "", errors.NewUserError(
			errors.New("cannot use --quiet and --verbose together"),
			"Use either -q or -v")
	}
	if quiet {
		return "ERROR", nil
	}

	v := verbosity
	// CLI flags take precedence, but if not set, check env var
	if v == 0 {
		if val, ok := os.LookupEnv("APPCFG_DEBUG"); ok {
			switch val {
			case "1", "true":
				v = 2 // Debug
			case "2":
				v = 3 // Trace
			}
		}
	}
	if v == 0 {
		return "", nil
	}
	return logging.LevelName(logging.LevelFromVerbosity(v)), nil
}

// setup opens the configuration store and installs the loggers.
func setup(cmd *cobra.Command) error {
	store = nil

	switch logging.Format(logFormat) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return errors.NewUserError(errors.Newf("unknown log format %q", logFormat), "Use --log-format text or json")
	}

	level, err := consoleLevel()
	if err != nil {
		return err
	}

	var logger *slog.Logger
	if cmd.Annotations[skipStore] != "" {
		logger, err = initLogger(level, cmd.ErrOrStderr())
	} else {
		opts := startup.Options{LogLevel: level, Output: cmd.ErrOrStderr()}
		opts.Config.Path = configPath
		store, logger, err = initAll(opts)
		if err != nil && level == "" && cmd.Annotations[levelFallback] != "" &&
			errors.Is(err, errors.ErrInvalidLevel) {
			level = logging.DefaultLevelName
			opts.LogLevel = level
			store, logger, err = initAll(opts)
			if err == nil {
				logger.Warn("unknown log_level in config, using "+level,
					"value", store.Document().LogLevel)
			}
		}
	}
	if err != nil {
		return errors.NewConfigError(err)
	}

	if level == "" && store != nil {
		level = store.Document().LogLevel
	}
	logger, err = addSinks(logger, level, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))
	return nil
}

// addSinks swaps the console sink for JSON and adds the --log-file sink
// when requested. Otherwise the bootstrap logger is returned unchanged.
func addSinks(base *slog.Logger, levelName string, stderr io.Writer) (*slog.Logger, error) {
	if logging.Format(logFormat) != logging.FormatJSON && logFile == "" {
		return base, nil
	}

	if levelName == "" {
		levelName = logging.DefaultLevelName
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, errors.NewConfigError(err)
	}

	primary := base.Handler()
	if logging.Format(logFormat) == logging.FormatJSON {
		primary = logging.New(logging.Config{
			Level:  level,
			Format: logging.FormatJSON,
			Output: stderr,
		}).Handler()
	}
	handlers := []slog.Handler{primary}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, errors.NewUserError(errors.Wrap(err, "opening log file"), "Check the --log-file path")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	}

	logger := slog.New(logging.NewMultiHandler(handlers...))
	slog.SetDefault(logger)
	return logger, nil
}

// resolvedConfigPath returns the file commands operate on.
func resolvedConfigPath() string {
	if store != nil {
		return store.Path()
	}
	if configPath != "" {
		return configPath
	}
	return paths.ConfigFile()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
