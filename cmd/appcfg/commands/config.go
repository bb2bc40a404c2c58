package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/appcfg/internal/config"
	"github.com/thoreinstein/appcfg/internal/editor"
	"github.com/thoreinstein/appcfg/internal/errors"
	"github.com/thoreinstein/appcfg/internal/logging"
	"github.com/thoreinstein/appcfg/internal/paths"
)

var (
	listFormat      string
	listShowSecrets bool
)

func init() {
	for _, c := range []*cobra.Command{configCmd, configListCmd} {
		c.Flags().StringVarP(&listFormat, "format", "f", "toml", "output format: toml, yaml, json")
		c.Flags().BoolVar(&listShowSecrets, "show-secrets", false, "print API keys and passwords unmasked")
	}

	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage appcfg configuration",
	Long: `Manage the configuration file.

Without a subcommand, lists the merged configuration (file values plus
defaults for anything missing).`,
	Example: `  # List all configuration
  appcfg config

  # Get a specific value
  appcfg config get ui.language

  # Set a value
  appcfg config set whisper.threads 4

See Also: appcfg init, appcfg doctor`,
	RunE: runConfigList,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the configuration file path",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), resolvedConfigPath())
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get a configuration value",
	Long: `Get a single configuration value by key.

Supports dot notation for nested keys. Tables are printed as TOML and array
values one per line. Without a key, an interactive picker is shown when
running in a terminal.`,
	Example: `  # Get the log level
  appcfg config get log_level

  # Get a whole section
  appcfg config get ui

  # Pick a key interactively
  appcfg config get

See Also: appcfg config set, appcfg config list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save the file.

Values that look like booleans, integers or floats are stored as such;
everything else is stored as a string. log_level and project_version are
always strings.`,
	Example: `  # Hide the log panel
  appcfg config set ui.hide_log true

  # Set a nested value, creating tables as needed
  appcfg config set azure.speech.region eastus

See Also: appcfg config get, appcfg config list`,
	Args:        cobra.ExactArgs(2),
	RunE:        runConfigSet,
	Annotations: map[string]string{levelFallback: "true"},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long: `List the merged configuration.

Values whose key looks like a credential, or that start with a known token
prefix, are masked unless --show-secrets is given.`,
	Example: `  # List all configuration
  appcfg config list

  # As JSON
  appcfg config list --format json

See Also: appcfg config get, appcfg config set`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open configuration in $EDITOR",
	Long: `Open the configuration file in your default editor.

Uses $EDITOR, then $VISUAL, then nano or vi. The file is checked again after
the editor exits.`,
	Example: `  # Open config in default editor
  appcfg config edit

  # Open with specific editor
  EDITOR=nano appcfg config edit

See Also: appcfg config list, appcfg init`,
	Args:        cobra.NoArgs,
	RunE:        runConfigEdit,
	Annotations: map[string]string{levelFallback: "true"},
}

// Swapped in tests.
var (
	isInteractive = func() bool {
		return logging.IsTTY(os.Stdin) && logging.IsTTY(os.Stdout)
	}
	pickKey = findKey
)

// findKey shows a fuzzy finder over keys with a value preview.
func findKey(keys []string, preview func(key string) string) (string, error) {
	idx, err := fuzzyfinder.Find(
		keys,
		func(i int) string { return keys[i] },
		fuzzyfinder.WithHeader("Select a configuration key"),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return preview(keys[i])
		}),
	)
	if err != nil {
		return "", err
	}
	return keys[idx], nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	doc := store.Snapshot()

	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		if !isInteractive() {
			return errors.NewUserError(errors.New("no key given"), "Run: appcfg config get <key>")
		}
		keys, err := config.Keys(doc)
		if err != nil {
			return err
		}
		masked := logging.MaskTable(doc.Map())
		key, err = pickKey(keys, func(k string) string {
			return previewValue(masked, k)
		})
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "interactive key selection failed")
		}
	}

	val, err := config.Lookup(doc, key)
	if err != nil {
		return errors.NewUserError(err, "Run: appcfg config list")
	}
	return printValue(cmd.OutOrStdout(), val)
}

// previewValue renders a key's value from an already masked table.
func previewValue(masked map[string]any, key string) string {
	v, ok := config.ValueAt(masked, key)
	if !ok {
		return ""
	}
	var b strings.Builder
	_ = printValue(&b, v)
	return b.String()
}

func printValue(w io.Writer, val any) error {
	switch v := val.(type) {
	case map[string]any:
		data, err := toml.Marshal(v)
		if err != nil {
			return errors.Wrap(err, "encoding table")
		}
		_, err = w.Write(data)
		return err
	case []any:
		// Array values - print one per line
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	default:
		fmt.Fprintln(w, v)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	if key == config.KeyLogLevel {
		if _, err := logging.ParseLevel(value); err != nil {
			return errors.NewUserError(err, "Valid levels: TRACE, DEBUG, INFO, SUCCESS, WARNING, ERROR, CRITICAL")
		}
	}

	if err := refuseUnparsedFile(); err != nil {
		return err
	}

	err := store.Update(func(d *config.Document) error {
		return config.Set(d, key, value)
	})
	if err != nil {
		return errors.NewUserError(err, "Run: appcfg config list")
	}
	if err := store.Save(); err != nil {
		return errors.NewSystemError(err, "Check write permissions for "+store.Path())
	}

	got, err := config.Lookup(store.Snapshot(), key)
	if err != nil {
		return err
	}
	logging.FromContext(cmd.Context()).Debug("config value set", "field", key, "path", store.Path())
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, got)
	return nil
}

// refuseUnparsedFile stops commands that save from replacing a file that
// exists but could not be decoded, which would drop every value in it.
func refuseUnparsedFile() error {
	if !store.Loaded().Invalid {
		return nil
	}
	return errors.NewConfigError(errors.Wrapf(errors.ErrInvalidConfig, "config file %s could not be parsed", store.Path()))
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	table := store.Snapshot().Map()
	if !listShowSecrets {
		table = logging.MaskTable(table)
	}

	data, err := marshalTable(table, listFormat)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// marshalTable encodes a configuration table in the requested format.
func marshalTable(table map[string]any, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "toml":
		data, err := toml.Marshal(table)
		return data, errors.Wrap(err, "marshaling TOML")
	case "yaml", "yml":
		data, err := yaml.Marshal(table)
		return data, errors.Wrap(err, "marshaling YAML")
	case "json":
		data, err := json.MarshalIndent(table, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "marshaling JSON")
		}
		return append(data, '\n'), nil
	default:
		return nil, errors.NewUserError(errors.Newf("unknown format %q", format), "Use one of: toml, yaml, json")
	}
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	path := store.Path()
	if !paths.Exists(path) {
		return errors.NewUserError(errors.Wrapf(errors.ErrNotFound, "config file %s", path), "Run: appcfg init")
	}

	if err := editor.Open(path, cmd.OutOrStdout()); err != nil {
		return errors.NewSystemError(err, "Set $EDITOR to an installed editor")
	}

	res := config.Load(path)
	_, repairs := config.ApplyDefaults(res.Raw)
	if res.Invalid || len(repairs) > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "The edited file has problems; run: appcfg doctor")
	}
	return nil
}
