package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRecentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show or clear recently opened files",
	}

	cmd.AddCommand(newRecentListCommand(), newRecentClearCommand())

	return cmd
}

func newRecentListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recently opened files, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			for _, path := range a.State().RecentFiles {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}

			return nil
		},
	}
}

func newRecentClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget all recently opened files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ClearRecent(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.ErrOrStderr(), "Recent files cleared.")

			return nil
		},
	}
}
