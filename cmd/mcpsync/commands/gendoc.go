package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/neilforest7/mcp-coordinator/internal/errors"
)

var genDocCmd = &cobra.Command{
	Use:    "gen-doc",
	Short:  "Generate Markdown or man page documentation for the CLI",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE:   runGenDoc,
}

func init() {
	genDocCmd.Flags().StringP("dir", "d", "", "output directory for documentation")
	genDocCmd.Flags().Bool("man", false, "generate man pages instead of Markdown")
	rootCmd.AddCommand(genDocCmd)
}

func runGenDoc(cmd *cobra.Command, _ []string) error {
	outputDir, _ := cmd.Flags().GetString("dir")
	if outputDir == "" {
		return errors.NewUserError(errors.New("output directory is required"), "Pass --dir")
	}
	man, _ := cmd.Flags().GetBool("man")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	if man {
		header := &doc.GenManHeader{Title: "MCPSYNC", Section: "1", Source: "mcpsync"}
		if err := doc.GenManTree(rootCmd, header, outputDir); err != nil {
			return errors.Wrap(err, "generating man pages")
		}
	} else if err := doc.GenMarkdownTreeCustom(rootCmd, outputDir, filePrepender, linkHandler); err != nil {
		return errors.Wrap(err, "generating markdown")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Documentation generated in %s\n", outputDir)
	return nil
}

// filePrepender adds front matter, titling mcpsync_baseline_list.md as
// "mcpsync baseline list".
func filePrepender(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	title := strings.ReplaceAll(base, "_", " ")

	return fmt.Sprintf(`---
title: "%s"
description: "Reference for %s command"
---
`, title, title)
}

func linkHandler(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.ToLower(base) + "/"
}
