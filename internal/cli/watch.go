package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/mdview/internal/app"
	"github.com/hupe1980/mdview/internal/config"
	"github.com/hupe1980/mdview/internal/logging"
	"github.com/hupe1980/mdview/internal/notify"
	"github.com/hupe1980/mdview/internal/output"
	"github.com/hupe1980/mdview/internal/render"
)

type watchOptions struct {
	output     string
	standalone bool
	theme      string
	diff       bool
	showDiff   bool
	emitJSON   bool
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Watch a Markdown file and re-render it on every save",
		Long: `Watch renders a Markdown file to --output and re-renders it each time
the file changes on disk. Without an argument the last opened file is
used.

Change events are debounced (--debounce, default 100ms): the first event
of a burst triggers a render and the rest of the burst is dropped. Each
render prints a status line; --diff adds a summary of the lines that
changed in the HTML and --show-diff prints the full unified diff.

Use --emit-json to print every change signal as a JSON line on stdout.
Watching stops on SIGINT or SIGTERM.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeMarkdownFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			if len(args) == 1 {
				file = args[0]
			}

			return runWatch(cmd.Context(), cmd, file, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file path (required)")
	f.BoolVar(&opts.standalone, "standalone", false, "wrap the output in a complete HTML document")
	f.StringVar(&opts.theme, "theme", "", "theme to embed into a standalone document")
	f.BoolVar(&opts.diff, "diff", false, "print a summary of changed HTML lines after each render")
	f.BoolVar(&opts.showDiff, "show-diff", false, "print the unified HTML diff after each render")
	f.BoolVar(&opts.emitJSON, "emit-json", false, "print change signals as JSON lines on stdout")
	f.Duration("debounce", config.DefaultDebounce, "minimum interval between two re-renders")

	registerThemeCompletion(cmd)

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, file string, opts *watchOptions) error {
	if opts.output == "" {
		return &ExitError{Code: 2, Err: fmt.Errorf("--output (-o) is required for watch mode")}
	}

	if opts.theme != "" && !opts.standalone {
		return &ExitError{Code: 2, Err: fmt.Errorf("--theme requires --standalone")}
	}

	var appOpts []app.Option
	if opts.emitJSON {
		appOpts = append(appOpts, app.WithSink(notify.NewWriterSink(cmd.OutOrStdout())))
	}

	a, err := app.New(config.FromContext(ctx), logging.FromContext(ctx), appOpts...)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	defer a.Close()

	if file == "" {
		file = a.State().LastFile
		if file == "" {
			return &ExitError{Code: 2, Err: errors.New("no file given and no last opened file recorded")}
		}
	}

	path, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", file, err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	signals, cancel := a.Signals()
	defer cancel()

	if err := a.StartWatch(path); err != nil {
		return err
	}

	var theme *string
	if opts.theme != "" {
		theme = &opts.theme
	}

	if err := a.SaveState(theme, &path); err != nil {
		logging.FromContext(ctx).Warn("recording last file failed", slog.String("error", err.Error()))
	}

	r := &reloader{
		app:    a,
		path:   path,
		opts:   opts,
		writer: output.NewFileWriter(opts.output),
		out:    cmd.ErrOrStderr(),
		color:  !config.FromContext(ctx).NoColor,
	}

	fmt.Fprintf(r.out, "Watching %s → %s (Ctrl+C to stop)\n", path, opts.output)

	r.reload("initial")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for sig := range signals {
			r.reload(sig.Name)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Close()

		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintln(r.out, "Stopped watching.")

	return nil
}

// reloader renders the watched file to the output and reports each run.
// reload is only called from one goroutine at a time.
type reloader struct {
	app    *app.App
	path   string
	opts   *watchOptions
	writer output.Writer
	out    io.Writer
	color  bool

	prev string
}

func (r *reloader) reload(trigger string) {
	now := time.Now().Format("15:04:05")

	data, err := renderDocument(r.app, r.path, r.opts.standalone, r.opts.theme)
	if err == nil {
		err = r.writer.Write(data)
	}

	if err != nil {
		fmt.Fprintf(r.out, "[%s] %s → ERROR: %v\n", now, trigger, err)
		return
	}

	fmt.Fprintf(r.out, "[%s] %s → OK (%d bytes)\n", now, trigger, len(data))

	cur := string(data)
	defer func() { r.prev = cur }()

	if !r.opts.diff && !r.opts.showDiff {
		return
	}

	result, err := render.Diff(r.prev, cur, render.DefaultDiffOptions())
	if err != nil {
		fmt.Fprintf(r.out, "  diff: FAILED: %v\n", err)
		return
	}

	if r.opts.diff {
		fmt.Fprintf(r.out, "  diff: %s\n", result.Summary())
	}

	if r.opts.showDiff {
		render.WriteDiff(r.out, result, r.color)
	}
}
