package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/appcfg/cmd"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version information",
	Long:        `Print the version, commit, and build date of appcfg.`,
	Annotations: map[string]string{skipStore: "true"},
	Run: func(c *cobra.Command, _ []string) {
		w := c.OutOrStdout()
		fmt.Fprintf(w, "appcfg version %s\n", cmd.Version)
		fmt.Fprintf(w, "  commit: %s\n", cmd.Commit)
		fmt.Fprintf(w, "  built:  %s\n", cmd.Date)
	},
}
