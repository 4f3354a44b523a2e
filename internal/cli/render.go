package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/mdview/internal/app"
	"github.com/hupe1980/mdview/internal/output"
)

type renderOptions struct {
	output     string
	standalone bool
	theme      string
	noRecord   bool
}

func newRenderCommand() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a Markdown file to HTML",
		Long: `Render converts a Markdown file to HTML and prints it, or writes it
to --output. With --standalone the fragment is wrapped in a complete HTML
document; --theme embeds a theme definition into that document.

The file is recorded as the last opened file in the application state.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeMarkdownFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return runRender(cmd, a, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file path (default: stdout)")
	f.BoolVar(&opts.standalone, "standalone", false, "wrap the output in a complete HTML document")
	f.StringVar(&opts.theme, "theme", "", "theme to embed into a standalone document")
	f.BoolVar(&opts.noRecord, "no-record", false, "do not record the file in the recent file list")

	registerThemeCompletion(cmd)

	return cmd
}

func runRender(cmd *cobra.Command, a *app.App, file string, opts *renderOptions) error {
	if opts.theme != "" && !opts.standalone {
		return &ExitError{Code: 2, Err: fmt.Errorf("--theme requires --standalone")}
	}

	path, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", file, err)
	}

	data, err := renderDocument(a, path, opts.standalone, opts.theme)
	if err != nil {
		return err
	}

	var w output.Writer = output.NewStdoutWriter(cmd.OutOrStdout())
	if opts.output != "" {
		w = output.NewFileWriter(opts.output)
	}

	if err := w.Write(data); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if opts.noRecord {
		return nil
	}

	var theme *string
	if opts.theme != "" {
		theme = &opts.theme
	}

	if err := a.SaveState(theme, &path); err != nil {
		return err
	}

	return nil
}

// renderDocument renders path and optionally wraps it in a standalone page.
func renderDocument(a *app.App, path string, standalone bool, themeName string) ([]byte, error) {
	html, err := a.LoadFile(path)
	if err != nil {
		return nil, err
	}

	if !standalone {
		return []byte(html), nil
	}

	page := output.Page{
		Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Body:  html,
	}

	if themeName != "" {
		themeJSON, err := a.LoadTheme(themeName)
		if err != nil {
			return nil, &ExitError{Code: 2, Err: fmt.Errorf("loading theme: %w", err)}
		}

		page.ThemeJSON = themeJSON
	}

	return page.Bytes()
}
