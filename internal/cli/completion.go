package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for catup.

To load completions:

Bash:
  $ source <(catup completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ catup completion bash > /etc/bash_completion.d/catup
  # macOS:
  $ catup completion bash > $(brew --prefix)/etc/bash_completion.d/catup

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ catup completion zsh > "${fpath[1]}/_catup"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ catup completion fish | source

  # To load completions for each session, execute once:
  $ catup completion fish > ~/.config/fish/completions/catup.fish

PowerShell:
  PS> catup completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> catup completion powershell > catup.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		// Completion needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(c.Stdout, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(c.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(c.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(c.Stdout)
			}
			return nil
		},
	}

	return cmd
}
