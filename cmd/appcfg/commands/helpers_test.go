package commands

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/thoreinstein/appcfg/internal/config"
	"github.com/thoreinstein/appcfg/internal/logging"
	"github.com/thoreinstein/appcfg/internal/startup"
)

// setupCLI points the CLI at a fresh install root and replaces the
// process-wide initializers with per-test ones. It returns the config path.
func setupCLI(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("APPCFG_ROOT", dir)
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("APPCFG_DEBUG", "")

	origAll, origLogger := initAll, initLogger
	origInteractive, origPick := isInteractive, pickKey
	origDefault := slog.Default()

	initAll = func(o startup.Options) (*config.Store, *slog.Logger, error) {
		return config.Open(o.Config), logging.NewDiscard(), nil
	}
	initLogger = func(string, io.Writer) (*slog.Logger, error) {
		return logging.NewDiscard(), nil
	}
	isInteractive = func() bool { return false }
	resetFlags()

	t.Cleanup(func() {
		initAll, initLogger = origAll, origLogger
		isInteractive, pickKey = origInteractive, origPick
		slog.SetDefault(origDefault)
		store = nil
		resetFlags()
	})

	return filepath.Join(dir, "config.toml")
}

func resetFlags() {
	verbosity = 0
	quiet = false
	logFormat = "text"
	logFile = ""
	configPath = ""
	listFormat = "toml"
	listShowSecrets = false
	doctorJSON = false
	doctorQuiet = false
	doctorVerbose = false
	doctorFix = false
}

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	// A nil slice makes cobra fall back to os.Args.
	if args == nil {
		args = []string{}
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}
