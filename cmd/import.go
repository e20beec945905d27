package cmd

import (
	"fmt"
	"os"

	"github.com/gaurav-prasanna/mdpreview/core"
	"github.com/gaurav-prasanna/mdpreview/core/extract"
	"github.com/gaurav-prasanna/mdpreview/core/normalize"
	"github.com/spf13/cobra"
)

var flagImportOut string

var importCmd = &cobra.Command{
	Use:   "import [file.html]",
	Short: "Convert an HTML page to markdown",
	Long: `Import strips navigation, scripts and other page chrome from an HTML file
(or stdin), then converts the main content to markdown.

Examples:
  mdpreview import page.html > page.md
  mdpreview import page.html -o page.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&flagImportOut, "output", "o", "", "Write markdown to this file instead of stdout")
}

func runImport(cmd *cobra.Command, args []string) error {
	html, err := readInput(cmd, inputArg(args))
	if err != nil {
		return err
	}
	markdown, err := core.ImportHTML(html, extract.New(), normalize.New())
	if err != nil {
		return err
	}
	if flagImportOut == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), markdown)
		return err
	}
	if err := os.WriteFile(flagImportOut, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", flagImportOut, err)
	}
	return nil
}
