// Package cmd implements the CLI commands for mdpreview using Cobra.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gaurav-prasanna/mdpreview/core"
	"github.com/gaurav-prasanna/mdpreview/core/config"
	"github.com/gaurav-prasanna/mdpreview/core/highlight"
	"github.com/gaurav-prasanna/mdpreview/core/render"
	"github.com/gaurav-prasanna/mdpreview/core/shell"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Persistent flag variables.
var (
	flagConfig   string
	flagLogLevel string
	flagTheme    string
)

// Loaded by the root command before any subcommand runs.
var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mdpreview",
	Short: "mdpreview: live markdown editor and previewer",
	Long: `mdpreview renders GitHub-flavored markdown with syntax-highlighted code
blocks in a light or dark theme. It serves a split-pane browser editor and
renders, exports, or imports documents from the command line.

Usage:
  mdpreview serve [flags]
  mdpreview render <file> [flags]
  mdpreview export <file> --html|--pdf|--json|--source [flags]`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: $"+config.EnvVar+")")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagTheme, "theme", "", "Theme: light or dark (default from config)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration, applies flag overrides and configures
// logging.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagLogLevel != "" {
		loaded.Log.Level = flagLogLevel
	}
	if flagTheme != "" {
		loaded.Render.Theme = flagTheme
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	level, _ := config.ParseLevel(cfg.Log.Level)
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cmd.Flags().Visit(func(f *pflag.Flag) {
		logger.Debug("flag set", "command", cmd.Name(), "flag", f.Name, "value", f.Value.String())
	})
	return nil
}

// newRenderer builds a renderer from the loaded config.
func newRenderer() *render.Renderer {
	return render.New(
		render.WithHighlighter(highlight.New(highlight.WithStyles(cfg.Render.LightStyle, cfg.Render.DarkStyle))),
		render.WithUnsafeHTML(cfg.Render.UnsafeHTML),
	)
}

// newShell builds a shell from the loaded config plus opts.
func newShell(opts ...shell.Option) *shell.Shell {
	base := []shell.Option{
		shell.WithRenderer(newRenderer()),
		shell.WithTheme(cfg.Theme()),
		shell.WithSourceFilename(cfg.Export.SourceFilename),
		shell.WithLogger(logger),
	}
	return shell.New(append(base, opts...)...)
}

// readInput reads a file, or stdin when path is empty or "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return string(data), nil
}

// inputArg returns the optional single positional argument.
func inputArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// theme returns the configured theme.
func theme() core.Theme {
	return cfg.Theme()
}
