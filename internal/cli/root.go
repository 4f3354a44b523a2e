// Package cli implements the cobra command tree for mdview.
package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/mdview/internal/app"
	"github.com/hupe1980/mdview/internal/config"
	"github.com/hupe1980/mdview/internal/logging"
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it, and returns the exit code.
func Execute() int {
	cmd := NewRootCommand()

	if err := cmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}

		return 1
	}

	return 0
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "mdview",
		Short: "Render Markdown and reload it live as the file changes",
		Long: `mdview renders Markdown files to HTML (GitHub flavoured: tables,
task lists, strikethrough and footnotes) and keeps the output in sync
with the source file while you edit it.

The watcher follows a single file. Saves made by editors that write a
temporary file and rename it into place are picked up the same way as
plain in-place writes, and bursts of events are collapsed so every save
triggers one re-render.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			logger := logging.SetupWithWriter(cfg, cmd.ErrOrStderr())

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.LogLevel),
				slog.String("logFormat", cfg.LogFormat),
				slog.String("configFile", cfg.ConfigFile),
			)

			return nil
		},
	}

	// Global persistent flags.
	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .mdview.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")
	pf.String("themes-dir", "", "directory holding theme files (default: <config dir>/mdview/themes)")
	pf.String("state-file", "", "application state file (default: <config dir>/mdview/state.yaml)")
	pf.Bool("raw-html", true, "pass raw HTML embedded in Markdown through")

	// Flag parsing errors return exit code 2.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Err: err}
	})

	// Register subcommands.
	cmd.AddCommand(
		newVersionCommand(),
		newRenderCommand(),
		newWatchCommand(),
		newThemesCommand(),
		newRecentCommand(),
		newCompletionCommand(),
	)

	return cmd
}

// newApp builds the application host from the config and logger stored in
// the command context by PersistentPreRunE.
func newApp(cmd *cobra.Command) (*app.App, error) {
	ctx := cmd.Context()

	a, err := app.New(config.FromContext(ctx), logging.FromContext(ctx))
	if err != nil {
		return nil, &ExitError{Code: 1, Err: err}
	}

	return a, nil
}
