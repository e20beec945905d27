// Package cmd: export command.
// It runs a markdown file through parse and render, then writes one
// export format: the source itself, a printable HTML document, a PDF, or
// the JSON node tree.
package cmd

import (
	"fmt"

	"github.com/gaurav-prasanna/mdpreview/core"
	"github.com/gaurav-prasanna/mdpreview/core/export"
	"github.com/gaurav-prasanna/mdpreview/core/output"
	"github.com/gaurav-prasanna/mdpreview/core/shell"
	"github.com/spf13/cobra"
)

// Flag variables.
var (
	flagSource    bool
	flagHTML      bool
	flagPDF       bool
	flagJSON      bool
	flagAutoPrint bool
	flagOutputDir string
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export a markdown file to the specified format",
	Long: `Export renders a markdown file (or stdin) and writes it in one format.
Output files are named after the input file (notes.md becomes notes.pdf);
stdin input is named markdown.*.

Examples:
  mdpreview export notes.md --html
  mdpreview export notes.md --pdf --theme dark --output_dir ./out
  mdpreview export notes.md --json
  cat notes.md | mdpreview export --source`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	// Output format flags (mutually exclusive).
	exportCmd.Flags().BoolVar(&flagSource, "source", false, "Output the markdown source unchanged")
	exportCmd.Flags().BoolVar(&flagHTML, "html", false, "Output a standalone printable HTML document")
	exportCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Output PDF")
	exportCmd.Flags().BoolVar(&flagJSON, "json", false, "Output the node tree as JSON")

	exportCmd.Flags().BoolVar(&flagAutoPrint, "print", false, "Open the print dialog when the HTML document loads")

	// Output directory.
	exportCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default from config, then current directory)")
}

func runExport(cmd *cobra.Command, args []string) error {
	// --- Validate flags ---
	if err := validateFlags(); err != nil {
		return err
	}

	input := inputArg(args)
	text, err := readInput(cmd, input)
	if err != nil {
		return err
	}

	dir := cfg.Export.OutputDir
	if flagOutputDir != "" {
		dir = flagOutputDir
	}
	writer, err := output.New(dir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	exporter := selectExporter()
	opts := []shell.Option{
		shell.WithText(text),
		shell.WithSourceFilename(output.NameFor(input) + ".md"),
	}
	if flagHTML {
		opts = append(opts, shell.WithDocumentExporter(exporter))
	}
	sh := newShell(opts...)

	// The printable document goes through the same print path as the
	// browser; the writer is the CLI's print machinery.
	if flagHTML {
		if err := sh.DownloadDocument(writer); err != nil {
			return err
		}
	} else {
		doc, err := sh.Export(exporter)
		if err != nil {
			return err
		}
		if err := writer.Print(doc); err != nil {
			return err
		}
	}

	logger.Info("exported", "format", exporter.Extension(), "dir", writer.OutputDir, "name", output.NameFor(input))
	return nil
}

// validateFlags checks that exactly one output format is chosen.
func validateFlags() error {
	formatCount := 0
	for _, set := range []bool{flagSource, flagHTML, flagPDF, flagJSON} {
		if set {
			formatCount++
		}
	}

	if formatCount == 0 {
		return fmt.Errorf("exactly one output format is required: --source, --html, --pdf, or --json")
	}
	if formatCount > 1 {
		return fmt.Errorf("only one output format allowed per run (got %d)", formatCount)
	}
	if flagAutoPrint && !flagHTML {
		return fmt.Errorf("--print requires --html")
	}
	return nil
}

// selectExporter creates the appropriate Exporter based on flags.
func selectExporter() core.Exporter {
	switch {
	case flagSource:
		return export.NewSourceExporter()
	case flagJSON:
		return export.NewJSONExporter()
	case flagPDF:
		return export.NewPDFExporter()
	default:
		return export.NewDocumentExporter(flagAutoPrint)
	}
}
