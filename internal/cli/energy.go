package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alnah/go-dictation/internal/config"
	"github.com/alnah/go-dictation/internal/draft"
	"github.com/alnah/go-dictation/internal/segment"
)

// energyFlagKeys binds energy flags to their config keys.
var energyFlagKeys = map[string]string{
	"threshold":   config.KeyEnergyThresholdDBFS,
	"min-silence": config.KeyEnergyMinSilenceLen,
	"min-sound":   config.KeyEnergyMinSoundLen,
	"seek-step":   config.KeyEnergySeekStep,
}

// EnergyCmd creates the energy command.
// The env parameter provides injectable dependencies for testing.
func EnergyCmd(env *Env) *cobra.Command {
	var opts outputOptions
	defaults := config.Default().Energy

	cmd := &cobra.Command{
		Use:   "energy <audio-file>",
		Short: "Segment speech by measuring PCM loudness",
		Long: `Decode the recording to PCM and mark windows quieter than --threshold
dBFS as silence. The sounds between silences shorter than --min-sound
seconds are dropped. Non-WAV input is converted with ffmpeg first.

The draft includes a stats block with the segment count and average length.`,
		Example: `  dictation energy lesson.wav
  dictation energy lesson.mp3 --threshold -45 --min-sound 0.8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnergy(cmd, env, args[0], opts)
		},
	}

	cmd.Flags().Float64("threshold", defaults.ThresholdDBFS, "Silence threshold in dBFS")
	cmd.Flags().Float64("min-silence", defaults.MinSilenceLen, "Window length in seconds; shorter silences are ignored")
	cmd.Flags().Float64("min-sound", defaults.MinSoundLen, "Shortest segment kept, in seconds")
	cmd.Flags().Float64("seek-step", defaults.SeekStep, "Window step in seconds")
	addOutputFlags(cmd, &opts)

	return cmd
}

// runEnergy executes the PCM energy pipeline.
// Validation order: file exists -> config -> output -> ffmpeg
func runEnergy(cmd *cobra.Command, env *Env, inputPath string, opts outputOptions) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	if err := checkInput(inputPath); err != nil {
		return err
	}
	cfg, err := loadConfig(env, cmd, energyFlagKeys)
	if err != nil {
		return err
	}
	output, err := resolveOutput(opts.output, cfg.OutputDir)
	if err != nil {
		return err
	}

	// === SETUP ===

	ffmpegPath, err := resolveFFmpeg(ctx, env)
	if err != nil {
		return err
	}
	analyzer, err := env.DetectorFactory.NewEnergyAnalyzer(ffmpegPath, cfg.Energy, env.Logger)
	if err != nil {
		return err
	}

	// === DETECTION ===

	_, _ = fmt.Fprintln(env.Stderr, "Analyzing audio energy...")
	analysis, err := analyzer.Analyze(ctx, inputPath)
	if err != nil {
		return err
	}
	printDuration(env.Stderr, analysis.Duration)
	_, _ = fmt.Fprintf(env.Stderr, "Found %d silences\n", len(analysis.Silences))

	sounds := segment.Infer(analysis.Silences, analysis.Duration, 0, 0)
	kept := segment.Resolvable(segment.Filter(sounds, cfg.Energy.MinSoundLen))
	env.Logger.Debug("sounds filtered",
		zap.Int("sounds", len(sounds)),
		zap.Int("kept", len(kept)),
		zap.Float64("min_sound", cfg.Energy.MinSoundLen))
	if dropped := len(sounds) - len(kept); dropped > 0 {
		_, _ = fmt.Fprintf(env.Stderr, "Dropped %d segments shorter than %ss\n",
			dropped, segment.Seconds(cfg.Energy.MinSoundLen))
	}
	if len(kept) == 0 {
		warnNoSpeech(env, "try a lower --threshold or a shorter --min-sound")
		return nil
	}
	_, _ = fmt.Fprintf(env.Stderr, "Kept %d speech segments\n", len(kept))

	records := segment.Assemble(kept, segment.PlaceholderText, segment.WithMillis())
	e := draft.New(draftTitle(cfg.Title, inputPath), filepath.Base(inputPath), analysis.Duration, records, draft.WithStats())

	return saveDraft(env, output, e, opts.preview)
}
