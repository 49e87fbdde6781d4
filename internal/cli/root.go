package cli

import (
	"github.com/spf13/cobra"
)

// RootCmd creates the dictation command with every subcommand attached.
func RootCmd(env *Env, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "dictation",
		Short: "Generate timestamp drafts for a dictation page",
		Long: `Segment a recording into utterances and write a JSON draft of
segment boundaries and text for a dictation or listening page.

Segment by fixed interval (grid), ffmpeg silence detection (silence),
PCM energy (energy), or speech recognition (transcribe). Then turn the
edited draft into a sampleSentences literal (sentences).`,
		Version: version,
		// Silence Cobra's default error/usage printing; main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if env.NewLogger != nil {
				env.Logger = env.NewLogger(env.Verbose)
			}
		},
	}

	root.PersistentFlags().StringVar(&env.ConfigPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/dictation/config.yaml)")
	root.PersistentFlags().BoolVarP(&env.Verbose, "verbose", "v", false, "Log debug details to stderr")

	root.AddCommand(GridCmd(env))
	root.AddCommand(SilenceCmd(env))
	root.AddCommand(EnergyCmd(env))
	root.AddCommand(TranscribeCmd(env))
	root.AddCommand(SentencesCmd(env))
	root.AddCommand(ConfigCmd(env))

	return root
}
