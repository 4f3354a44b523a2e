package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/mdview/internal/theme"
)

func newThemesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "List and inspect themes",
		Long: `Themes are JSON documents stored in the themes directory as
<name>.json. YAML themes (<name>.yaml, <name>.yml) are converted to JSON
when loaded.`,
	}

	cmd.AddCommand(newThemesListCommand(), newThemesShowCommand())

	return cmd
}

func newThemesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available theme names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			names, err := a.ListThemes()
			if err != nil {
				return err
			}

			last := a.State().LastTheme

			for _, name := range names {
				marker := " "
				if name == last {
					marker = "*"
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
			}

			return nil
		},
	}
}

func newThemesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a theme as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := a.LoadTheme(args[0])
			if err != nil {
				if errors.Is(err, theme.ErrInvalidName) {
					return &ExitError{Code: 2, Err: err}
				}

				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), data)

			return err
		},
	}
}
