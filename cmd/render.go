package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/gaurav-prasanna/mdpreview/core/export"
	"github.com/gaurav-prasanna/mdpreview/core/render"
	"github.com/gaurav-prasanna/mdpreview/core/shell"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var (
	flagRenderJSON bool
	flagRenderHTML bool
	flagWidth      int
	flagNoColor    bool
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render markdown to the terminal, an HTML fragment, or a JSON tree",
	Long: `Render parses a markdown file (or stdin) and writes the preview. By
default the preview is drawn in the terminal with highlighted code blocks.

Examples:
  mdpreview render README.md
  mdpreview render README.md --theme dark --width 100
  mdpreview render README.md --html > preview.html
  cat notes.md | mdpreview render --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().BoolVar(&flagRenderJSON, "json", false, "Output the node tree and structure summary as JSON")
	renderCmd.Flags().BoolVar(&flagRenderHTML, "html", false, "Output the rendered HTML fragment")
	renderCmd.Flags().IntVar(&flagWidth, "width", 80, "Wrap width for terminal output")
	renderCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable colors in terminal output")
}

func runRender(cmd *cobra.Command, args []string) error {
	if flagRenderJSON && flagRenderHTML {
		return fmt.Errorf("--json and --html are mutually exclusive")
	}
	text, err := readInput(cmd, inputArg(args))
	if err != nil {
		return err
	}

	sh := newShell(shell.WithText(text))
	out := cmd.OutOrStdout()

	switch {
	case flagRenderJSON:
		data, err := export.NewJSONExporter().Export(sh.Snapshot())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case flagRenderHTML:
		html, err := sh.PreviewHTML()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, html)
		return err
	default:
		return render.WriteTerminal(out, sh.Preview(), render.TerminalOptions{
			Width:   flagWidth,
			Profile: colorProfile(out),
			Theme:   theme(),
		})
	}
}

// colorProfile picks the terminal color profile: none unless out is a
// terminal.
func colorProfile(out io.Writer) termenv.Profile {
	if flagNoColor {
		return termenv.Ascii
	}
	f, ok := out.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}
