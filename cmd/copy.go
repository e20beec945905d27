package cmd

import (
	"fmt"

	"github.com/gaurav-prasanna/mdpreview/core/clipboard"
	"github.com/gaurav-prasanna/mdpreview/core/shell"
	"github.com/spf13/cobra"
)

var copyCmd = &cobra.Command{
	Use:   "copy [file]",
	Short: "Copy markdown to the terminal clipboard",
	Long: `Copy sends the markdown text verbatim to the system clipboard through the
terminal (OSC 52), which also works over SSH and inside tmux.

Examples:
  mdpreview copy notes.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCopy,
}

func init() {
	rootCmd.AddCommand(copyCmd)
}

func runCopy(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, inputArg(args))
	if err != nil {
		return err
	}
	sh := newShell(shell.WithText(text))
	if err := sh.Copy(clipboard.New()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Copied!")
	return nil
}
