package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/thoreinstein/appcfg/internal/errors"
	"github.com/thoreinstein/appcfg/internal/paths"
)

var genDocCmd = &cobra.Command{
	Use:         "gen-doc",
	Short:       "Generate Markdown documentation for the CLI",
	Hidden:      true,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		outputDir, _ := cmd.Flags().GetString("dir")
		if outputDir == "" {
			return errors.NewUserError(errors.New("output directory is required"), "Use --dir <path>")
		}

		if err := paths.EnsureDir(outputDir, 0o755); err != nil {
			return errors.Wrap(err, "creating output directory")
		}

		// Frontmatter is added for the docs site.
		if err := doc.GenMarkdownTreeCustom(rootCmd, outputDir, filePrepender, linkHandler); err != nil {
			return errors.Wrap(err, "generating markdown")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Documentation generated in %s\n", outputDir)
		return nil
	},
}

func init() {
	genDocCmd.Flags().StringP("dir", "d", "", "Output directory for documentation")
	rootCmd.AddCommand(genDocCmd)
}

func filePrepender(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	// appcfg_config_get.md -> appcfg config get
	title := strings.ReplaceAll(base, "_", " ")

	return fmt.Sprintf(`---
title: "%s"
description: "Reference for %s command"
draft: false
---
`, title, title)
}

func linkHandler(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return "/docs/reference/" + strings.ToLower(base) + "/"
}
