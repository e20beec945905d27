package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gaurav-prasanna/mdpreview/core/shell"
	"github.com/gaurav-prasanna/mdpreview/core/store"
	"github.com/gaurav-prasanna/mdpreview/server"
	"github.com/spf13/cobra"
)

var (
	flagAddr  string
	flagState string
	flagOpen  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the split-pane editor in the browser",
	Long: `Serve starts the editor on a local address. The left pane edits markdown,
the right pane shows the live preview. With a state file the draft, theme
and layout survive restarts.

Examples:
  mdpreview serve
  mdpreview serve --addr 127.0.0.1:3000 --theme dark
  mdpreview serve --state ~/.mdpreview.db
  mdpreview serve --open notes.md`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config, 127.0.0.1:8080)")
	serveCmd.Flags().StringVar(&flagState, "state", "", "Draft store file (default from config; empty disables)")
	serveCmd.Flags().StringVar(&flagOpen, "open", "", "Markdown file to start with instead of the saved draft")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Addr
	if flagAddr != "" {
		addr = flagAddr
	}
	statePath := cfg.State.Path
	if flagState != "" {
		statePath = flagState
	}

	var opts []shell.Option
	if statePath != "" {
		drafts, err := store.Open(statePath)
		if err != nil {
			return err
		}
		defer drafts.Close()
		opts = append(opts, shell.WithStore(drafts))
	}

	sh := newShell(opts...)
	if err := sh.Load(); err != nil {
		logger.Warn("restoring draft failed, starting fresh", "error", err)
	}
	if flagOpen != "" {
		text, err := readInput(cmd, flagOpen)
		if err != nil {
			return err
		}
		sh.SetText(text)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{Shell: sh, Logger: logger})
	return srv.Serve(ctx, addr)
}
