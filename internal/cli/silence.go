package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-dictation/internal/config"
	"github.com/alnah/go-dictation/internal/draft"
	"github.com/alnah/go-dictation/internal/segment"
)

// silenceFlagKeys binds silence flags to their config keys.
var silenceFlagKeys = map[string]string{
	"noise-db":    config.KeySilenceNoiseDB,
	"min-silence": config.KeySilenceMinSilenceLen,
	"min-gap":     config.KeySilenceMinGap,
	"min-tail":    config.KeySilenceMinTail,
}

// SilenceCmd creates the silence command.
// The env parameter provides injectable dependencies for testing.
func SilenceCmd(env *Env) *cobra.Command {
	var opts outputOptions
	defaults := config.Default().Silence

	cmd := &cobra.Command{
		Use:   "silence <audio-file>",
		Short: "Segment speech between silences found by ffmpeg",
		Long: `Run ffmpeg's silencedetect filter and keep the speech between silences.

A gap between two silences becomes a segment only when it is longer than
--min-gap; the stretch after the last silence only when it is longer than
--min-tail. Segment text is a placeholder such as "[Segment 3] (2.4s)".`,
		Example: `  dictation silence lesson.mp3
  dictation silence lesson.mp3 --noise-db -30 --min-silence 0.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSilence(cmd, env, args[0], opts)
		},
	}

	cmd.Flags().Float64("noise-db", defaults.NoiseDB, "Noise floor in dB; quieter audio counts as silence")
	cmd.Flags().Float64("min-silence", defaults.MinSilenceLen, "Shortest silence detected, in seconds")
	cmd.Flags().Float64("min-gap", defaults.MinGap, "Speech between silences must be longer than this")
	cmd.Flags().Float64("min-tail", defaults.MinTail, "Speech after the last silence must be longer than this")
	addOutputFlags(cmd, &opts)

	return cmd
}

// runSilence executes the silencedetect pipeline.
// Validation order: file exists -> config -> output -> ffmpeg
func runSilence(cmd *cobra.Command, env *Env, inputPath string, opts outputOptions) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	if err := checkInput(inputPath); err != nil {
		return err
	}
	cfg, err := loadConfig(env, cmd, silenceFlagKeys)
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
	probe, err := env.ProbeFactory.NewProbe(ffmpegPath, env.Logger)
	if err != nil {
		return err
	}
	detector, err := env.DetectorFactory.NewSilenceDetector(ffmpegPath, cfg.Silence, env.Logger)
	if err != nil {
		return err
	}

	// === DETECTION ===

	// Both passes decode the whole file; run them side by side.
	_, _ = fmt.Fprintln(env.Stderr, "Detecting silences...")
	var (
		total    float64
		silences []segment.Interval
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := probe.Probe(gctx, inputPath)
		total = d
		return err
	})
	g.Go(func() error {
		s, err := detector.Detect(gctx, inputPath)
		silences = s
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	printDuration(env.Stderr, total)
	_, _ = fmt.Fprintf(env.Stderr, "Found %d silences\n", len(silences))

	speech := segment.Resolvable(segment.Infer(silences, total, cfg.Silence.MinGap, cfg.Silence.MinTail))
	env.Logger.Debug("speech inferred",
		zap.Int("silences", len(silences)),
		zap.Int("segments", len(speech)))
	if len(speech) == 0 {
		warnNoSpeech(env, "try a lower --noise-db or a longer --min-silence")
		return nil
	}
	_, _ = fmt.Fprintf(env.Stderr, "Inferred %d speech segments\n", len(speech))

	records := segment.Assemble(speech, segment.PlaceholderText, segment.WithMillis())
	e := draft.New(draftTitle(cfg.Title, inputPath), filepath.Base(inputPath), total, records)

	return saveDraft(env, output, e, opts.preview)
}
