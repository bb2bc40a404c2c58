package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/appcfg/internal/config"
	"github.com/thoreinstein/appcfg/internal/errors"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or complete the configuration file",
	Long: `Create the configuration file, or add missing keys to an existing one.

If the file does not exist it is first copied from config.example.toml in
the install directory when that template is present. Defaults are then
written for every required key that is missing. Existing values are never
changed.`,
	Example: `  # Initialize the default config file
  appcfg init

  # Initialize a config file somewhere else
  appcfg init --config /etc/myapp/config.toml

  See Also: appcfg config, appcfg doctor`,
	Args:        cobra.NoArgs,
	RunE:        runInit,
	Annotations: map[string]string{levelFallback: "true"},
}

func runInit(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	loaded := store.Loaded()

	if err := refuseUnparsedFile(); err != nil {
		return err
	}

	if loaded.Created {
		fmt.Fprintf(w, "Created %s from example template\n", store.Path())
	}

	var missing []string
	for _, k := range config.RequiredKeys() {
		if _, ok := loaded.Raw[k]; !ok {
			missing = append(missing, k)
		}
	}
	if loaded.Exists && len(missing) == 0 && len(store.Warnings()) == 0 {
		fmt.Fprintf(w, "Configuration already complete at %s\n", store.Path())
		return nil
	}

	if err := store.Save(); err != nil {
		return errors.NewSystemError(err, "Check write permissions for "+store.Path())
	}

	if len(missing) > 0 {
		fmt.Fprintf(w, "Added defaults for: %s\n", strings.Join(missing, ", "))
	}
	for _, warn := range store.Warnings() {
		if warn.Key != "" {
			fmt.Fprintf(w, "Replaced %s\n", warn)
		}
	}
	fmt.Fprintf(w, "Wrote %s\n", store.Path())
	return nil
}
