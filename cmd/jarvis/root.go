package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/jarvis/core/config"
	"github.com/leofalp/jarvis/providers/tool/webfetch"
)

// rootFlags are shared by every command.
type rootFlags struct {
	envFiles []string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "jarvis",
		Short: "Talk to a tool-using assistant from the terminal",
		Long: `Jarvis reads one utterance per line and answers it. The model may open
applications, set the volume, empty the recycle bin or search the web before
answering.

Settings come from a .env file and the environment:
  MISTRAL_API_KEY        completion service key (required for chat)
  MISTRAL_MODEL          model name (default mistral-small-2506)
  GOOGLE_SEARCH_API_KEY  Custom Search key for web_search
  GOOGLE_SEARCH_CX       Custom Search engine id for web_search
  JARVIS_LOG_LEVEL       trace, debug, info, warn or error`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.envFiles...)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			return runChat(cmd, newApp(cfg, webfetch.FormatText))
		},
	}

	cmd.PersistentFlags().StringSliceVar(&flags.envFiles, "env-file", nil, "env files to load instead of ./.env")

	cmd.AddCommand(
		newSearchCmd(flags),
		newFetchCmd(flags),
		newToolsCmd(flags),
	)
	return cmd
}

// readConfig loads settings for commands that never call the completion
// service, so a missing MISTRAL_API_KEY is tolerated.
func readConfig(flags *rootFlags) (config.Config, error) {
	cfg, err := config.Read(flags.envFiles...)
	if err != nil {
		return cfg, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}
