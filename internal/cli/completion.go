package cli

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/mdview/internal/app"
	"github.com/hupe1980/mdview/internal/config"
	"github.com/hupe1980/mdview/internal/logging"
)

func newCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for mdview.

Bash:
  $ source <(mdview completion bash)

Zsh:
  $ mdview completion zsh > "${fpath[1]}/_mdview"

Fish:
  $ mdview completion fish > ~/.config/fish/completions/mdview.fish

PowerShell:
  PS> mdview completion powershell | Out-String | Invoke-Expression

Markdown file arguments complete to *.md and *.markdown files, and
--theme completes to the available theme names.
`,
		// Override parent PersistentPreRunE — completion needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Args:              cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:         []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}

			return nil
		},
	}

	return cmd
}

// completeMarkdownFiles restricts positional completion to Markdown files.
func completeMarkdownFiles(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	return []string{"md", "markdown"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeThemes lists theme names. Completion runs without
// PersistentPreRunE, so the config is loaded here.
func completeThemes(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.Load(cmd, "")
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	a, err := app.New(cfg, logging.Discard())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer a.Close()

	names, err := a.ListThemes()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	return names, cobra.ShellCompDirectiveNoFileComp
}

// registerThemeCompletion wires completeThemes to the --theme flag of cmd.
func registerThemeCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("theme", completeThemes)
}
